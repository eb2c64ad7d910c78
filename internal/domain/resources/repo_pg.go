package resources

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

// =========== Bed Repository ===========

type bedRepoPG struct{ pool *pgxpool.Pool }

func NewBedRepoPG(pool *pgxpool.Pool) BedRepository {
	return &bedRepoPG{pool: pool}
}

func (r *bedRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const bedCols = `id, bed_number, room_number, department_id, status, patient_id, created_at, updated_at`

func scanBed(row pgx.Row) (*Bed, error) {
	var b Bed
	err := row.Scan(&b.ID, &b.BedNumber, &b.RoomNumber, &b.DepartmentID,
		&b.Status, &b.PatientID, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *bedRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bed`).Scan(&n)
	return n, err
}

func (r *bedRepoPG) DeleteAll(ctx context.Context) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM bed`)
	return err
}

func (r *bedRepoPG) Create(ctx context.Context, b *Bed) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bed (id, bed_number, room_number, department_id, status, patient_id)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		b.ID, b.BedNumber, b.RoomNumber, b.DepartmentID, b.Status, b.PatientID)
	return err
}

func (r *bedRepoPG) list(ctx context.Context, query string, args ...interface{}) ([]*Bed, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var beds []*Bed
	for rows.Next() {
		b, err := scanBed(rows)
		if err != nil {
			return nil, err
		}
		beds = append(beds, b)
	}
	return beds, rows.Err()
}

func (r *bedRepoPG) List(ctx context.Context) ([]*Bed, error) {
	return r.list(ctx, `SELECT `+bedCols+` FROM bed ORDER BY bed_number`)
}

func (r *bedRepoPG) ListByStatus(ctx context.Context, status string) ([]*Bed, error) {
	return r.list(ctx, `SELECT `+bedCols+` FROM bed WHERE status = $1 ORDER BY bed_number`, status)
}

func (r *bedRepoPG) ListAvailableByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*Bed, error) {
	return r.list(ctx, `SELECT `+bedCols+` FROM bed WHERE department_id = $1 AND status = $2 ORDER BY bed_number`,
		departmentID, BedStatusAvailable)
}

func (r *bedRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string, patientID *uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE bed SET status = $1, patient_id = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4`,
		to, patientID, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// =========== Staff Repository ===========

type staffRepoPG struct{ pool *pgxpool.Pool }

func NewStaffRepoPG(pool *pgxpool.Pool) StaffRepository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *staffRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&n)
	return n, err
}

func (r *staffRepoPG) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `INSERT INTO staff (id, name, role) VALUES ($1,$2,$3)`,
		s.ID, s.Name, s.Role)
	return err
}

func (r *staffRepoPG) List(ctx context.Context) ([]*Staff, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, name, role, created_at FROM staff ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var staff []*Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Role, &s.CreatedAt); err != nil {
			return nil, err
		}
		staff = append(staff, &s)
	}
	return staff, rows.Err()
}
