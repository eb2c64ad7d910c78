package visits

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type VisitRepository interface {
	CountActive(ctx context.Context) (int, error)
	ListActive(ctx context.Context) ([]*Visit, error)
	Create(ctx context.Context, v *Visit) error
	// Discharge closes an active visit. Returns false when the visit
	// was already discharged.
	Discharge(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// DischargeByBed closes any active visit occupying the bed and
	// returns how many were closed.
	DischargeByBed(ctx context.Context, bedID uuid.UUID, at time.Time) (int, error)
}

// PatientRepository reads from the patient roster. The simulator never
// writes patients; they are provisioned outside the tick cycle.
type PatientRepository interface {
	Count(ctx context.Context) (int, error)
	// ListIDsWithoutActiveVisit returns up to limit patients who have
	// no ACTIVE visit, so each patient holds at most one bed.
	ListIDsWithoutActiveVisit(ctx context.Context, limit int) ([]uuid.UUID, error)
}
