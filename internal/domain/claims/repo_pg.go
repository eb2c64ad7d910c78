package claims

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospitalops/opsim/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type claimRepoPG struct{ pool *pgxpool.Pool }

func NewClaimRepoPG(pool *pgxpool.Pool) ClaimRepository {
	return &claimRepoPG{pool: pool}
}

func (r *claimRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *claimRepoPG) ListUnclaimedDischarges(ctx context.Context, limit int) ([]UnclaimedVisit, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT v.id, v.patient_id
		FROM visit v
		LEFT JOIN insurance_claim c ON c.visit_id = v.id
		WHERE v.status = 'DISCHARGED' AND c.id IS NULL
		ORDER BY v.discharged_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []UnclaimedVisit
	for rows.Next() {
		var u UnclaimedVisit
		if err := rows.Scan(&u.VisitID, &u.PatientID); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *claimRepoPG) CreateClaim(ctx context.Context, c *InsuranceClaim) (bool, error) {
	c.ID = uuid.New()
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO insurance_claim (id, claim_number, visit_id, patient_id, insurance_provider,
			total_amount, status, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (visit_id) DO NOTHING`,
		c.ID, c.ClaimNumber, c.VisitID, c.PatientID, c.InsuranceProvider,
		c.TotalAmount, c.Status, c.SubmittedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *claimRepoPG) CreateTransaction(ctx context.Context, t *BillingTransaction) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO billing_transaction (id, visit_id, patient_id, type, status, description, amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.VisitID, t.PatientID, t.Type, t.Status, t.Description, t.Amount)
	return err
}

const claimCols = `id, claim_number, visit_id, patient_id, insurance_provider, total_amount,
	paid_amount, status, submitted_at, resolution_date, processing_time_days, created_at`

func scanClaim(row pgx.Row) (*InsuranceClaim, error) {
	var c InsuranceClaim
	err := row.Scan(&c.ID, &c.ClaimNumber, &c.VisitID, &c.PatientID, &c.InsuranceProvider,
		&c.TotalAmount, &c.PaidAmount, &c.Status, &c.SubmittedAt, &c.ResolutionDate,
		&c.ProcessingTimeDays, &c.CreatedAt)
	return &c, err
}

func (r *claimRepoPG) ListOpen(ctx context.Context, limit int) ([]*InsuranceClaim, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+claimCols+` FROM insurance_claim WHERE status IN ($1, $2) ORDER BY submitted_at LIMIT $3`,
		StatusSubmitted, StatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*InsuranceClaim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *claimRepoPG) MarkPending(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE insurance_claim SET status = $1 WHERE id = $2 AND status = $3`,
		StatusPending, id, StatusSubmitted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *claimRepoPG) Resolve(ctx context.Context, id uuid.UUID, res Resolution) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE insurance_claim
		SET status = $1, paid_amount = $2, resolution_date = $3, processing_time_days = $4
		WHERE id = $5 AND status = $6`,
		res.Status, res.PaidAmount, res.ResolutionDate, res.ProcessingTimeDays,
		id, StatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *claimRepoPG) CreateDenial(ctx context.Context, d *ClaimDenial) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO claim_denial (id, claim_id, reason, notes) VALUES ($1,$2,$3,$4)`,
		d.ID, d.ClaimID, d.Reason, d.Notes)
	return err
}
