package lab

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOrdered    = "ORDERED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

const (
	ResultPositive = "POSITIVE"
	ResultNegative = "NEGATIVE"
)

// LabTest is one ordered lab test on a visit. Result fields are set
// only once Status is COMPLETED.
type LabTest struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	VisitID               uuid.UUID  `db:"visit_id" json:"visit_id"`
	PatientID             uuid.UUID  `db:"patient_id" json:"patient_id"`
	TestTypeID            uuid.UUID  `db:"test_type_id" json:"test_type_id"`
	OrderedByID           uuid.UUID  `db:"ordered_by_id" json:"ordered_by_id"`
	Status                string     `db:"status" json:"status"`
	OrderedAt             time.Time  `db:"ordered_at" json:"ordered_at"`
	CollectedAt           *time.Time `db:"collected_at" json:"collected_at,omitempty"`
	CompletedAt           *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ResultValue           *string    `db:"result_value" json:"result_value,omitempty"`
	ResultUnit            string     `db:"result_unit" json:"result_unit"`
	IsAbnormal            bool       `db:"is_abnormal" json:"is_abnormal"`
	IsCritical            bool       `db:"is_critical" json:"is_critical"`
	TurnaroundTimeMinutes *int       `db:"turnaround_time_minutes" json:"turnaround_time_minutes,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
}
