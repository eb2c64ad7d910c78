package lab

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Result carries the fields written when a test completes.
type Result struct {
	Value                 string
	Unit                  string
	IsAbnormal            bool
	IsCritical            bool
	TurnaroundTimeMinutes int
	CompletedAt           time.Time
}

type LabTestRepository interface {
	// ListPending returns tests that are ORDERED or IN_PROGRESS.
	ListPending(ctx context.Context) ([]*LabTest, error)
	Create(ctx context.Context, t *LabTest) error
	// CollectSpecimen moves a test from ORDERED to IN_PROGRESS only if
	// it is still ORDERED.
	CollectSpecimen(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// Complete moves a test from IN_PROGRESS to COMPLETED with its
	// result, only if it is still IN_PROGRESS.
	Complete(ctx context.Context, id uuid.UUID, result Result) (bool, error)
}

// VisitPicker supplies active visits to order new tests against.
type VisitPicker interface {
	ListActiveVisitRefs(ctx context.Context) ([]VisitRef, error)
}

// VisitRef is the minimal visit identity needed to place an order.
type VisitRef struct {
	VisitID   uuid.UUID
	PatientID uuid.UUID
}

// StaffPicker supplies ordering clinician IDs.
type StaffPicker interface {
	ListStaffIDs(ctx context.Context) ([]uuid.UUID, error)
}
