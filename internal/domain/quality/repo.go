package quality

import (
	"context"

	"github.com/google/uuid"
)

type QualityRepository interface {
	CreateSurvey(ctx context.Context, s *PatientSurvey) error
	CreateEducationLog(ctx context.Context, l *PatientEducationLog) error
	CreateMeasurement(ctx context.Context, m *QualityMeasurement) error
}

// VisitSampler supplies visits to attach surveys and education logs to.
type VisitSampler interface {
	ListRecentVisitRefs(ctx context.Context, limit int) ([]VisitRef, error)
}

type VisitRef struct {
	VisitID   uuid.UUID
	PatientID uuid.UUID
}

// StaffSampler supplies staff IDs for education provenance.
type StaffSampler interface {
	ListStaffIDs(ctx context.Context) ([]uuid.UUID, error)
}
