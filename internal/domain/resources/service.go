package resources

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hospitalops/opsim/internal/domain/catalog"
	"github.com/hospitalops/opsim/internal/platform/db"
	"github.com/hospitalops/opsim/internal/sim"
)

var staffRoleCycle = []string{RoleNurse, RolePhysician, RoleNurse, RoleReceptionist}

var firstNames = []string{
	"Sarah", "James", "Maria", "David", "Jennifer", "Michael", "Lisa",
	"Robert", "Emily", "Daniel", "Amanda", "Kevin", "Rachel", "Thomas", "Nicole",
}

var lastNames = []string{
	"Johnson", "Chen", "Garcia", "Smith", "Patel", "Williams", "Nguyen",
	"Brown", "Martinez", "Kim", "Davis", "Okafor", "Wilson", "Ali", "Taylor",
}

// Report summarizes one resource management pass.
type Report struct {
	BedsCreated   int `json:"beds_created"`
	StaffCreated  int `json:"staff_created"`
	BedsReleased  int `json:"beds_released"`
	VisitsClosed  int `json:"visits_closed"`
	ReleaseErrors int `json:"release_errors"`
}

// Service maintains the bed and staff pools and turns over occupied
// beds at discharge.
type Service struct {
	beds        BedRepository
	staff       StaffRepository
	departments catalog.DepartmentRepository
	releaser    VisitReleaser
	runner      db.TxRunner
	rnd         *sim.Rand
	profile     sim.Profile
	logger      zerolog.Logger
	bedCount    int
	staffCount  int
}

func NewService(beds BedRepository, staff StaffRepository, departments catalog.DepartmentRepository, releaser VisitReleaser, runner db.TxRunner, rnd *sim.Rand, profile sim.Profile, logger zerolog.Logger, bedCount, staffCount int) *Service {
	return &Service{
		beds:        beds,
		staff:       staff,
		departments: departments,
		releaser:    releaser,
		runner:      runner,
		rnd:         rnd,
		profile:     profile,
		logger:      logger.With().Str("component", "resources").Logger(),
		bedCount:    bedCount,
		staffCount:  staffCount,
	}
}

// Run ensures the bed and staff pools exist, then turns over a fraction
// of occupied beds.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	if err := s.ensureBeds(ctx, report); err != nil {
		return report, err
	}
	if err := s.ensureStaff(ctx, report); err != nil {
		return report, err
	}
	s.turnOverBeds(ctx, report)
	return report, nil
}

// ensureBeds rebuilds the bed pool when it is below the configured
// size. Rebuilding is destructive only for the bed table itself; any
// visits pointing at removed beds keep their bed_id nulled by the FK.
func (s *Service) ensureBeds(ctx context.Context, report *Report) error {
	existing, err := s.beds.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting beds: %w", err)
	}
	if existing >= s.bedCount {
		return nil
	}

	departments, err := s.departments.List(ctx)
	if err != nil {
		return fmt.Errorf("listing departments: %w", err)
	}
	if len(departments) == 0 {
		s.logger.Warn().Msg("no departments found, skipping bed pool build")
		return nil
	}

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if existing > 0 {
			if err := s.beds.DeleteAll(ctx); err != nil {
				return fmt.Errorf("clearing bed pool: %w", err)
			}
		}
		for i := 0; i < s.bedCount; i++ {
			dept := departments[i%len(departments)]
			bed := &Bed{
				BedNumber:    fmt.Sprintf("B-%03d", i+1),
				RoomNumber:   fmt.Sprintf("R-%03d", i/2+1),
				DepartmentID: dept.ID,
				Status:       BedStatusAvailable,
			}
			if err := s.beds.Create(ctx, bed); err != nil {
				return fmt.Errorf("creating bed %s: %w", bed.BedNumber, err)
			}
			report.BedsCreated++
		}
		s.logger.Info().Int("beds", report.BedsCreated).Msg("bed pool rebuilt")
		return nil
	})
}

func (s *Service) ensureStaff(ctx context.Context, report *Report) error {
	existing, err := s.staff.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting staff: %w", err)
	}
	for i := existing; i < s.staffCount; i++ {
		member := &Staff{
			Name: s.rnd.Pick(firstNames) + " " + s.rnd.Pick(lastNames),
			Role: staffRoleCycle[i%len(staffRoleCycle)],
		}
		if err := s.staff.Create(ctx, member); err != nil {
			return fmt.Errorf("creating staff member: %w", err)
		}
		report.StaffCreated++
	}
	if report.StaffCreated > 0 {
		s.logger.Info().Int("staff", report.StaffCreated).Msg("staff pool topped up")
	}
	return nil
}

// turnOverBeds discharges the occupying visit and frees the bed in a
// single transaction per bed. A failure on one bed does not stop the
// others.
func (s *Service) turnOverBeds(ctx context.Context, report *Report) {
	occupied, err := s.beds.ListByStatus(ctx, BedStatusOccupied)
	if err != nil {
		s.logger.Error().Err(err).Msg("listing occupied beds failed")
		report.ReleaseErrors++
		return
	}

	now := time.Now()
	for _, bed := range occupied {
		if !s.rnd.Chance(s.profile.BedTurnover) {
			continue
		}
		var closed int
		err := s.runner.InTx(ctx, func(ctx context.Context) error {
			n, err := s.releaser.DischargeByBed(ctx, bed.ID, now)
			if err != nil {
				return fmt.Errorf("discharging visit for bed %s: %w", bed.BedNumber, err)
			}
			closed = n
			ok, err := s.beds.UpdateStatus(ctx, bed.ID, BedStatusOccupied, BedStatusAvailable, nil)
			if err != nil {
				return fmt.Errorf("releasing bed %s: %w", bed.BedNumber, err)
			}
			if !ok {
				return fmt.Errorf("bed %s changed state concurrently", bed.BedNumber)
			}
			return nil
		})
		if err != nil {
			s.logger.Error().Err(err).Str("bed", bed.BedNumber).Msg("bed turnover failed")
			report.ReleaseErrors++
			continue
		}
		report.VisitsClosed += closed
		report.BedsReleased++
	}
}
