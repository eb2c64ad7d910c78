package quality

import (
	"time"

	"github.com/google/uuid"
)

// PatientSurvey is a post-visit satisfaction survey. Ratings are on a
// 1 to 5 scale.
type PatientSurvey struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	VisitID             uuid.UUID `db:"visit_id" json:"visit_id"`
	PatientID           uuid.UUID `db:"patient_id" json:"patient_id"`
	OverallRating       int       `db:"overall_rating" json:"overall_rating"`
	CommunicationRating int       `db:"communication_rating" json:"communication_rating"`
	CleanlinessRating   int       `db:"cleanliness_rating" json:"cleanliness_rating"`
	WouldRecommend      bool      `db:"would_recommend" json:"would_recommend"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// PatientEducationLog records education material given to a patient
// during a visit.
type PatientEducationLog struct {
	ID         uuid.UUID `db:"id" json:"id"`
	VisitID    uuid.UUID `db:"visit_id" json:"visit_id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	MaterialID uuid.UUID `db:"material_id" json:"material_id"`
	ProvidedBy uuid.UUID `db:"provided_by" json:"provided_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// QualityMeasurement is one observed value for a quality indicator.
type QualityMeasurement struct {
	ID          uuid.UUID `db:"id" json:"id"`
	IndicatorID uuid.UUID `db:"indicator_id" json:"indicator_id"`
	Value       float64   `db:"value" json:"value"`
	MeasuredAt  time.Time `db:"measured_at" json:"measured_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
