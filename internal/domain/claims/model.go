package claims

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusSubmitted = "SUBMITTED"
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusDenied    = "DENIED"
)

const (
	TransactionCharge = "CHARGE"
)

const (
	TransactionStatusBilled = "BILLED"
)

// DenialReasons is the closed set of payer denial codes.
var DenialReasons = []string{
	"NOT_COVERED",
	"MISSING_DOCUMENTATION",
	"OUT_OF_NETWORK",
	"PRIOR_AUTH_REQUIRED",
	"DUPLICATE_CLAIM",
	"CODING_ERROR",
}

// BillingTransaction is the charge recorded when a claim is filed.
type BillingTransaction struct {
	ID          uuid.UUID `db:"id" json:"id"`
	VisitID     uuid.UUID `db:"visit_id" json:"visit_id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Type        string    `db:"type" json:"type"`
	Status      string    `db:"status" json:"status"`
	Description string    `db:"description" json:"description"`
	Amount      float64   `db:"amount" json:"amount"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// InsuranceClaim tracks one claim per discharged visit. Adjudication
// moves it SUBMITTED to PENDING to APPROVED or DENIED.
type InsuranceClaim struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	ClaimNumber        string     `db:"claim_number" json:"claim_number"`
	VisitID            uuid.UUID  `db:"visit_id" json:"visit_id"`
	PatientID          uuid.UUID  `db:"patient_id" json:"patient_id"`
	InsuranceProvider  string     `db:"insurance_provider" json:"insurance_provider"`
	TotalAmount        float64    `db:"total_amount" json:"total_amount"`
	PaidAmount         *float64   `db:"paid_amount" json:"paid_amount,omitempty"`
	Status             string     `db:"status" json:"status"`
	SubmittedAt        time.Time  `db:"submitted_at" json:"submitted_at"`
	ResolutionDate     *time.Time `db:"resolution_date" json:"resolution_date,omitempty"`
	ProcessingTimeDays *int       `db:"processing_time_days" json:"processing_time_days,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// ClaimDenial records why a claim was denied.
type ClaimDenial struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ClaimID   uuid.UUID `db:"claim_id" json:"claim_id"`
	Reason    string    `db:"reason" json:"reason"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
