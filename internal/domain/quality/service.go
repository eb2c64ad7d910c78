package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hospitalops/opsim/internal/domain/catalog"
	"github.com/hospitalops/opsim/internal/sim"
)

const visitSampleSize = 50

// Report summarizes one quality generation pass.
type Report struct {
	Surveys       int `json:"surveys"`
	EducationLogs int `json:"education_logs"`
	Measurements  int `json:"measurements"`
	Errors        int `json:"errors"`
}

// Service generates patient surveys, education logs and indicator
// measurements from recent activity.
type Service struct {
	quality    QualityRepository
	qualityCat catalog.QualityCatalogRepository
	visits     VisitSampler
	staff      StaffSampler
	rnd        *sim.Rand
	profile    sim.Profile
	logger     zerolog.Logger
}

func NewService(quality QualityRepository, qualityCat catalog.QualityCatalogRepository, visits VisitSampler, staff StaffSampler, rnd *sim.Rand, profile sim.Profile, logger zerolog.Logger) *Service {
	return &Service{
		quality:    quality,
		qualityCat: qualityCat,
		visits:     visits,
		staff:      staff,
		rnd:        rnd,
		profile:    profile,
		logger:     logger.With().Str("component", "quality").Logger(),
	}
}

func (s *Service) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	if err := s.generateFromVisits(ctx, report); err != nil {
		return report, err
	}
	if err := s.measureIndicators(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Service) generateFromVisits(ctx context.Context, report *Report) error {
	visits, err := s.visits.ListRecentVisitRefs(ctx, visitSampleSize)
	if err != nil {
		return fmt.Errorf("sampling visits: %w", err)
	}
	if len(visits) == 0 {
		return nil
	}

	staffIDs, err := s.staff.ListStaffIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing staff: %w", err)
	}
	materials, err := s.qualityCat.ListEducationMaterials(ctx)
	if err != nil {
		return fmt.Errorf("listing education materials: %w", err)
	}

	for _, visit := range visits {
		if s.rnd.Chance(s.profile.SurveyRate) {
			overall := s.rnd.IntBetween(1, 5)
			survey := &PatientSurvey{
				VisitID:             visit.VisitID,
				PatientID:           visit.PatientID,
				OverallRating:       overall,
				CommunicationRating: s.rnd.IntBetween(1, 5),
				CleanlinessRating:   s.rnd.IntBetween(1, 5),
				WouldRecommend:      overall >= 4,
			}
			if err := s.quality.CreateSurvey(ctx, survey); err != nil {
				s.logger.Error().Err(err).Msg("survey creation failed")
				report.Errors++
			} else {
				report.Surveys++
			}
		}

		if len(materials) > 0 && len(staffIDs) > 0 && s.rnd.Chance(s.profile.EducationRate) {
			log := &PatientEducationLog{
				VisitID:    visit.VisitID,
				PatientID:  visit.PatientID,
				MaterialID: materials[s.rnd.Intn(len(materials))].ID,
				ProvidedBy: staffIDs[s.rnd.Intn(len(staffIDs))],
			}
			if err := s.quality.CreateEducationLog(ctx, log); err != nil {
				s.logger.Error().Err(err).Msg("education log creation failed")
				report.Errors++
			} else {
				report.EducationLogs++
			}
		}
	}
	return nil
}

// measureIndicators records a value near each indicator's target,
// clamped to the unit's valid range.
func (s *Service) measureIndicators(ctx context.Context, report *Report) error {
	indicators, err := s.qualityCat.ListIndicators(ctx)
	if err != nil {
		return fmt.Errorf("listing indicators: %w", err)
	}

	now := time.Now()
	for _, ind := range indicators {
		if !s.rnd.Chance(s.profile.MeasurementRate) {
			continue
		}
		value := ind.TargetValue * s.rnd.FloatBetween(0.85, 1.1)
		value = clampForUnit(value, ind.Unit)
		m := &QualityMeasurement{
			IndicatorID: ind.ID,
			Value:       value,
			MeasuredAt:  now,
		}
		if err := s.quality.CreateMeasurement(ctx, m); err != nil {
			s.logger.Error().Err(err).Str("indicator", ind.Name).Msg("measurement creation failed")
			report.Errors++
			continue
		}
		report.Measurements++
	}
	return nil
}

func clampForUnit(value float64, unit string) float64 {
	switch unit {
	case "%":
		if value < 0 {
			return 0
		}
		if value > 100 {
			return 100
		}
	case "score":
		if value < 0 {
			return 0
		}
		if value > 5 {
			return 5
		}
	default:
		if value < 0 {
			return 0
		}
	}
	return value
}
