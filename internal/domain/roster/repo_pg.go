package roster

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

type scheduleRepoPG struct{ pool *pgxpool.Pool }

func NewScheduleRepoPG(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepoPG{pool: pool}
}

func (r *scheduleRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *scheduleRepoPG) ReplaceAll(ctx context.Context, schedules []*StaffSchedule) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `DELETE FROM staff_schedule`); err != nil {
		return err
	}
	for _, s := range schedules {
		s.ID = uuid.New()
		_, err := q.Exec(ctx, `
			INSERT INTO staff_schedule (id, staff_id, department_id, shift_start, shift_end, role)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			s.ID, s.StaffID, s.DepartmentID, s.ShiftStart, s.ShiftEnd, s.Role)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *scheduleRepoPG) List(ctx context.Context) ([]*StaffSchedule, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, staff_id, department_id, shift_start, shift_end, role, created_at
		FROM staff_schedule ORDER BY shift_start`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*StaffSchedule
	for rows.Next() {
		var s StaffSchedule
		if err := rows.Scan(&s.ID, &s.StaffID, &s.DepartmentID, &s.ShiftStart, &s.ShiftEnd, &s.Role, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
