package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hospitalops/opsim/internal/domain/catalog"
	"github.com/hospitalops/opsim/internal/domain/resources"
	"github.com/hospitalops/opsim/internal/platform/db"
	"github.com/hospitalops/opsim/internal/sim"
)

const shiftLength = 8 * time.Hour

// Report summarizes one roster rebuild.
type Report struct {
	Scheduled int `json:"scheduled"`
	Skipped   int `json:"skipped"`
}

// Service rebuilds the current shift roster. Each rebuild replaces the
// whole snapshot in one transaction.
type Service struct {
	schedules   ScheduleRepository
	staff       resources.StaffRepository
	departments catalog.DepartmentRepository
	runner      db.TxRunner
	rnd         *sim.Rand
	profile     sim.Profile
	logger      zerolog.Logger
}

func NewService(schedules ScheduleRepository, staff resources.StaffRepository, departments catalog.DepartmentRepository, runner db.TxRunner, rnd *sim.Rand, profile sim.Profile, logger zerolog.Logger) *Service {
	return &Service{
		schedules:   schedules,
		staff:       staff,
		departments: departments,
		runner:      runner,
		rnd:         rnd,
		profile:     profile,
		logger:      logger.With().Str("component", "roster").Logger(),
	}
}

func (s *Service) Rebuild(ctx context.Context) (*Report, error) {
	report := &Report{}

	staff, err := s.staff.List(ctx)
	if err != nil {
		return report, fmt.Errorf("listing staff: %w", err)
	}
	if len(staff) == 0 {
		s.logger.Warn().Msg("no staff found, skipping roster rebuild")
		return report, nil
	}
	departments, err := s.departments.List(ctx)
	if err != nil {
		return report, fmt.Errorf("listing departments: %w", err)
	}
	if len(departments) == 0 {
		s.logger.Warn().Msg("no departments found, skipping roster rebuild")
		return report, nil
	}

	start := time.Now().Add(-shiftLength / 2)
	var snapshot []*StaffSchedule
	for _, member := range staff {
		if !s.rnd.Chance(s.profile.ScheduleCoverage) {
			report.Skipped++
			continue
		}
		dept := departments[s.rnd.Intn(len(departments))]
		snapshot = append(snapshot, &StaffSchedule{
			StaffID:      member.ID,
			DepartmentID: dept.ID,
			ShiftStart:   start,
			ShiftEnd:     start.Add(shiftLength),
			Role:         member.Role,
		})
	}

	err = s.runner.InTx(ctx, func(ctx context.Context) error {
		return s.schedules.ReplaceAll(ctx, snapshot)
	})
	if err != nil {
		return report, fmt.Errorf("replacing roster: %w", err)
	}
	report.Scheduled = len(snapshot)
	s.logger.Info().Int("scheduled", report.Scheduled).Int("off_shift", report.Skipped).Msg("roster rebuilt")
	return report, nil
}
