package visits

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive     = "ACTIVE"
	StatusDischarged = "DISCHARGED"
)

const (
	TypeEmergency  = "EMERGENCY"
	TypeInpatient  = "INPATIENT"
	TypeOutpatient = "OUTPATIENT"
)

// Diagnosis is stored as a JSONB document on the visit row.
type Diagnosis struct {
	Primary   string   `json:"primary"`
	Secondary []string `json:"secondary,omitempty"`
}

// VitalSigns is the admission vitals snapshot, stored as JSONB.
type VitalSigns struct {
	Temperature      float64 `json:"temperature"`
	HeartRate        int     `json:"heart_rate"`
	RespiratoryRate  int     `json:"respiratory_rate"`
	SystolicBP       int     `json:"systolic_bp"`
	DiastolicBP      int     `json:"diastolic_bp"`
	OxygenSaturation int     `json:"oxygen_saturation"`
}

// Visit is one patient encounter. BedID is nil for historical visits
// generated without a bed and for visits whose bed was removed.
type Visit struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	VisitNumber    string     `db:"visit_number" json:"visit_number"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	DepartmentID   uuid.UUID  `db:"department_id" json:"department_id"`
	BedID          *uuid.UUID `db:"bed_id" json:"bed_id,omitempty"`
	VisitType      string     `db:"visit_type" json:"visit_type"`
	Status         string     `db:"status" json:"status"`
	ChiefComplaint string     `db:"chief_complaint" json:"chief_complaint"`
	Diagnosis      Diagnosis  `db:"diagnosis" json:"diagnosis"`
	VitalSigns     VitalSigns `db:"vital_signs" json:"vital_signs"`
	Medications    []string   `db:"medications" json:"medications"`
	AdmittedAt     time.Time  `db:"admitted_at" json:"admitted_at"`
	DischargedAt   *time.Time `db:"discharged_at" json:"discharged_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
