package quality

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

type qualityRepoPG struct{ pool *pgxpool.Pool }

func NewQualityRepoPG(pool *pgxpool.Pool) QualityRepository {
	return &qualityRepoPG{pool: pool}
}

func (r *qualityRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *qualityRepoPG) CreateSurvey(ctx context.Context, s *PatientSurvey) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_survey (id, visit_id, patient_id, overall_rating,
			communication_rating, cleanliness_rating, would_recommend)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.VisitID, s.PatientID, s.OverallRating,
		s.CommunicationRating, s.CleanlinessRating, s.WouldRecommend)
	return err
}

func (r *qualityRepoPG) CreateEducationLog(ctx context.Context, l *PatientEducationLog) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_education_log (id, visit_id, patient_id, material_id, provided_by)
		VALUES ($1,$2,$3,$4,$5)`,
		l.ID, l.VisitID, l.PatientID, l.MaterialID, l.ProvidedBy)
	return err
}

func (r *qualityRepoPG) CreateMeasurement(ctx context.Context, m *QualityMeasurement) error {
	m.ID = uuid.New()
	if m.MeasuredAt.IsZero() {
		m.MeasuredAt = time.Now()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO quality_measurement (id, indicator_id, value, measured_at)
		VALUES ($1,$2,$3,$4)`,
		m.ID, m.IndicatorID, m.Value, m.MeasuredAt)
	return err
}

// =========== Samplers ===========

type visitSamplerPG struct{ pool *pgxpool.Pool }

func NewVisitSamplerPG(pool *pgxpool.Pool) VisitSampler {
	return &visitSamplerPG{pool: pool}
}

func (r *visitSamplerPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *visitSamplerPG) ListRecentVisitRefs(ctx context.Context, limit int) ([]VisitRef, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, patient_id FROM visit ORDER BY admitted_at DESC LIMIT $1`, limit)
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

type staffSamplerPG struct{ pool *pgxpool.Pool }

func NewStaffSamplerPG(pool *pgxpool.Pool) StaffSampler {
	return &staffSamplerPG{pool: pool}
}

func (r *staffSamplerPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *staffSamplerPG) ListStaffIDs(ctx context.Context) ([]uuid.UUID, error) {
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
