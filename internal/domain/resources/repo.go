package resources

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type BedRepository interface {
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
	Create(ctx context.Context, b *Bed) error
	List(ctx context.Context) ([]*Bed, error)
	ListByStatus(ctx context.Context, status string) ([]*Bed, error)
	ListAvailableByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*Bed, error)
	// UpdateStatus transitions a bed from one status to another only if
	// it is still in the expected status. Returns false when the bed
	// was concurrently modified.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string, patientID *uuid.UUID) (bool, error)
}

type StaffRepository interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, s *Staff) error
	List(ctx context.Context) ([]*Staff, error)
}

// VisitReleaser discharges any active visit tied to a bed. Implemented
// by the visit store; declared here so bed turnover can close out the
// occupying visit in the same transaction that frees the bed.
type VisitReleaser interface {
	DischargeByBed(ctx context.Context, bedID uuid.UUID, at time.Time) (int, error)
}
