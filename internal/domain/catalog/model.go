package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Department types.
const (
	DeptEmergency  = "EMERGENCY"
	DeptCardiology = "CARDIOLOGY"
	DeptOncology   = "ONCOLOGY"
	DeptPediatrics = "PEDIATRICS"
	DeptSurgery    = "SURGERY"
	DeptICU        = "ICU"
	DeptOrthopedic = "ORTHOPEDICS"
	DeptGeneral    = "GENERAL"
)

// Department maps to the department table. Created once, immutable thereafter.
type Department struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Type      string    `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LabTestType maps to the lab_test_type table. A nil reference range means the
// test reports a binary POSITIVE/NEGATIVE result.
type LabTestType struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Code               string    `db:"code" json:"code"`
	Category           string    `db:"category" json:"category"`
	ReferenceRangeLow  *float64  `db:"reference_range_low" json:"reference_range_low,omitempty"`
	ReferenceRangeHigh *float64  `db:"reference_range_high" json:"reference_range_high,omitempty"`
	Unit               string    `db:"unit" json:"unit"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// HasRange reports whether the type defines a numeric reference range.
func (t *LabTestType) HasRange() bool {
	return t.ReferenceRangeLow != nil && t.ReferenceRangeHigh != nil
}

// CriticalLabValue maps to the critical_lab_value table. Thresholds tighter
// than the reference range; breaching one flags a result as critical.
type CriticalLabValue struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TestTypeID   uuid.UUID `db:"test_type_id" json:"test_type_id"`
	CriticalLow  *float64  `db:"critical_low" json:"critical_low,omitempty"`
	CriticalHigh *float64  `db:"critical_high" json:"critical_high,omitempty"`
	Description  string    `db:"description" json:"description"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Breached reports whether value crosses either critical threshold.
func (c *CriticalLabValue) Breached(value float64) bool {
	if c.CriticalLow != nil && value < *c.CriticalLow {
		return true
	}
	if c.CriticalHigh != nil && value > *c.CriticalHigh {
		return true
	}
	return false
}

// QualityIndicator maps to the quality_indicator table. Unit drives the
// sampling bounds for measurements: "%" is clamped to [0,100], "score" to
// [0,5], anything else to non-negative.
type QualityIndicator struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	TargetValue float64   `db:"target_value" json:"target_value"`
	Unit        string    `db:"unit" json:"unit"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Accreditation maps to the accreditation table.
type Accreditation struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Body       string    `db:"body" json:"body"`
	Program    string    `db:"program" json:"program"`
	Status     string    `db:"status" json:"status"`
	ValidUntil time.Time `db:"valid_until" json:"valid_until"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ComplianceArea maps to the compliance_area table.
type ComplianceArea struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Score         float64   `db:"score" json:"score"`
	LastAuditDate time.Time `db:"last_audit_date" json:"last_audit_date"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// RiskAssessment maps to the risk_assessment table.
type RiskAssessment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Area           string    `db:"area" json:"area"`
	Severity       string    `db:"severity" json:"severity"`
	Likelihood     string    `db:"likelihood" json:"likelihood"`
	MitigationPlan string    `db:"mitigation_plan" json:"mitigation_plan"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// QualityImprovementInitiative maps to the quality_improvement_initiative table.
type QualityImprovementInitiative struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Status    string    `db:"status" json:"status"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	Owner     string    `db:"owner" json:"owner"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EducationMaterial maps to the education_material table.
type EducationMaterial struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Topic     string    `db:"topic" json:"topic"`
	Format    string    `db:"format" json:"format"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
