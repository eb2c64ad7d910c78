package claims

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UnclaimedVisit identifies a discharged visit that has no claim yet.
type UnclaimedVisit struct {
	VisitID   uuid.UUID
	PatientID uuid.UUID
}

// Resolution carries the fields written when a claim is adjudicated.
type Resolution struct {
	Status             string
	PaidAmount         float64
	ResolutionDate     time.Time
	ProcessingTimeDays int
}

type ClaimRepository interface {
	// ListUnclaimedDischarges returns up to limit discharged visits
	// without a claim.
	ListUnclaimedDischarges(ctx context.Context, limit int) ([]UnclaimedVisit, error)
	// CreateClaim inserts the claim unless one already exists for the
	// visit. Returns false when the visit was already claimed.
	CreateClaim(ctx context.Context, c *InsuranceClaim) (bool, error)
	CreateTransaction(ctx context.Context, t *BillingTransaction) error
	// ListOpen returns up to limit SUBMITTED or PENDING claims.
	ListOpen(ctx context.Context, limit int) ([]*InsuranceClaim, error)
	// MarkPending moves a claim from SUBMITTED to PENDING only if it is
	// still SUBMITTED.
	MarkPending(ctx context.Context, id uuid.UUID) (bool, error)
	// Resolve closes a PENDING claim only if it is still PENDING.
	Resolve(ctx context.Context, id uuid.UUID, r Resolution) (bool, error)
	CreateDenial(ctx context.Context, d *ClaimDenial) error
}
