package lab

import (
	"context"
	"time"

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

// =========== Lab Test Repository ===========

type labTestRepoPG struct{ pool *pgxpool.Pool }

func NewLabTestRepoPG(pool *pgxpool.Pool) LabTestRepository {
	return &labTestRepoPG{pool: pool}
}

func (r *labTestRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const labTestCols = `id, visit_id, patient_id, test_type_id, ordered_by_id, status,
	ordered_at, collected_at, completed_at, result_value, result_unit,
	is_abnormal, is_critical, turnaround_time_minutes, created_at`

func scanLabTest(row pgx.Row) (*LabTest, error) {
	var t LabTest
	err := row.Scan(&t.ID, &t.VisitID, &t.PatientID, &t.TestTypeID, &t.OrderedByID,
		&t.Status, &t.OrderedAt, &t.CollectedAt, &t.CompletedAt, &t.ResultValue,
		&t.ResultUnit, &t.IsAbnormal, &t.IsCritical, &t.TurnaroundTimeMinutes, &t.CreatedAt)
	return &t, err
}

func (r *labTestRepoPG) ListPending(ctx context.Context) ([]*LabTest, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+labTestCols+` FROM lab_test WHERE status IN ($1, $2) ORDER BY ordered_at`,
		StatusOrdered, StatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*LabTest
	for rows.Next() {
		t, err := scanLabTest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *labTestRepoPG) Create(ctx context.Context, t *LabTest) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_test (id, visit_id, patient_id, test_type_id, ordered_by_id, status, ordered_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.VisitID, t.PatientID, t.TestTypeID, t.OrderedByID, t.Status, t.OrderedAt)
	return err
}

func (r *labTestRepoPG) CollectSpecimen(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_test SET status = $1, collected_at = $2
		WHERE id = $3 AND status = $4`,
		StatusInProgress, at, id, StatusOrdered)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *labTestRepoPG) Complete(ctx context.Context, id uuid.UUID, result Result) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_test SET status = $1, completed_at = $2, result_value = $3, result_unit = $4,
			is_abnormal = $5, is_critical = $6, turnaround_time_minutes = $7
		WHERE id = $8 AND status = $9`,
		StatusCompleted, result.CompletedAt, result.Value, result.Unit,
		result.IsAbnormal, result.IsCritical, result.TurnaroundTimeMinutes,
		id, StatusInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// =========== Pickers ===========

type visitPickerPG struct{ pool *pgxpool.Pool }

func NewVisitPickerPG(pool *pgxpool.Pool) VisitPicker {
	return &visitPickerPG{pool: pool}
}

func (r *visitPickerPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *visitPickerPG) ListActiveVisitRefs(ctx context.Context) ([]VisitRef, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, patient_id FROM visit WHERE status = 'ACTIVE'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var refs []VisitRef
	for rows.Next() {
		var ref VisitRef
		if err := rows.Scan(&ref.VisitID, &ref.PatientID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

type staffPickerPG struct{ pool *pgxpool.Pool }

func NewStaffPickerPG(pool *pgxpool.Pool) StaffPicker {
	return &staffPickerPG{pool: pool}
}

func (r *staffPickerPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *staffPickerPG) ListStaffIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id FROM staff`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
