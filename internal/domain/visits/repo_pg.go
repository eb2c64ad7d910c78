package visits

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

// =========== Visit Repository ===========

type visitRepoPG struct{ pool *pgxpool.Pool }

func NewVisitRepoPG(pool *pgxpool.Pool) VisitRepository {
	return &visitRepoPG{pool: pool}
}

func (r *visitRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const visitCols = `id, visit_number, patient_id, department_id, bed_id, visit_type, status,
	chief_complaint, diagnosis, vital_signs, medications, admitted_at, discharged_at, created_at`

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(&v.ID, &v.VisitNumber, &v.PatientID, &v.DepartmentID, &v.BedID,
		&v.VisitType, &v.Status, &v.ChiefComplaint, &v.Diagnosis, &v.VitalSigns,
		&v.Medications, &v.AdmittedAt, &v.DischargedAt, &v.CreatedAt)
	return &v, err
}

func (r *visitRepoPG) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM visit WHERE status = $1`, StatusActive).Scan(&n)
	return n, err
}

func (r *visitRepoPG) ListActive(ctx context.Context) ([]*Visit, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+visitCols+` FROM visit WHERE status = $1 ORDER BY admitted_at`, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *visitRepoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO visit (id, visit_number, patient_id, department_id, bed_id, visit_type, status,
			chief_complaint, diagnosis, vital_signs, medications, admitted_at, discharged_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		v.ID, v.VisitNumber, v.PatientID, v.DepartmentID, v.BedID, v.VisitType, v.Status,
		v.ChiefComplaint, v.Diagnosis, v.VitalSigns, v.Medications, v.AdmittedAt, v.DischargedAt)
	return err
}

func (r *visitRepoPG) Discharge(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE visit SET status = $1, discharged_at = $2
		WHERE id = $3 AND status = $4`,
		StatusDischarged, at, id, StatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *visitRepoPG) DischargeByBed(ctx context.Context, bedID uuid.UUID, at time.Time) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE visit SET status = $1, discharged_at = $2
		WHERE bed_id = $3 AND status = $4`,
		StatusDischarged, at, bedID, StatusActive)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *patientRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&n)
	return n, err
}

func (r *patientRepoPG) ListIDsWithoutActiveVisit(ctx context.Context, limit int) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id FROM patient p
		WHERE NOT EXISTS (
			SELECT 1 FROM visit v WHERE v.patient_id = p.id AND v.status = $1
		)
		ORDER BY random()
		LIMIT $2`, StatusActive, limit)
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
