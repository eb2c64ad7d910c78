package lab

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hospitalops/opsim/internal/domain/catalog"
	"github.com/hospitalops/opsim/internal/sim"
)

// Report summarizes one lab workflow pass.
type Report struct {
	Collected int `json:"collected"`
	Completed int `json:"completed"`
	Ordered   int `json:"ordered"`
	Criticals int `json:"criticals"`
	Errors    int `json:"errors"`
}

// Engine advances pending lab tests through their lifecycle and places
// new orders against active visits.
type Engine struct {
	tests      LabTestRepository
	labCatalog catalog.LabCatalogRepository
	visits     VisitPicker
	staff      StaffPicker
	rnd        *sim.Rand
	profile    sim.Profile
	logger     zerolog.Logger
}

func NewEngine(tests LabTestRepository, labCatalog catalog.LabCatalogRepository, visits VisitPicker, staff StaffPicker, rnd *sim.Rand, profile sim.Profile, logger zerolog.Logger) *Engine {
	return &Engine{
		tests:      tests,
		labCatalog: labCatalog,
		visits:     visits,
		staff:      staff,
		rnd:        rnd,
		profile:    profile,
		logger:     logger.With().Str("component", "lab").Logger(),
	}
}

func (e *Engine) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	testTypes, err := e.labCatalog.ListTestTypes(ctx)
	if err != nil {
		return report, fmt.Errorf("listing test types: %w", err)
	}
	if len(testTypes) == 0 {
		e.logger.Warn().Msg("no lab test types found, skipping lab workflow")
		return report, nil
	}
	typeByID := make(map[uuid.UUID]*catalog.LabTestType, len(testTypes))
	for _, t := range testTypes {
		typeByID[t.ID] = t
	}

	criticals, err := e.labCatalog.ListCriticalValues(ctx)
	if err != nil {
		return report, fmt.Errorf("listing critical values: %w", err)
	}
	criticalByType := make(map[uuid.UUID]*catalog.CriticalLabValue, len(criticals))
	for _, c := range criticals {
		criticalByType[c.TestTypeID] = c
	}

	e.advancePending(ctx, typeByID, criticalByType, report)
	if err := e.placeOrders(ctx, testTypes, report); err != nil {
		return report, err
	}
	return report, nil
}

// advancePending moves a random fraction of pending tests one step
// forward. Transitions only go ORDERED to IN_PROGRESS to COMPLETED.
func (e *Engine) advancePending(ctx context.Context, typeByID map[uuid.UUID]*catalog.LabTestType, criticalByType map[uuid.UUID]*catalog.CriticalLabValue, report *Report) {
	pending, err := e.tests.ListPending(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("listing pending tests failed")
		report.Errors++
		return
	}

	now := time.Now()
	for _, t := range pending {
		if !e.rnd.Chance(e.profile.LabAdvance) {
			continue
		}
		switch t.Status {
		case StatusOrdered:
			ok, err := e.tests.CollectSpecimen(ctx, t.ID, now)
			if err != nil {
				e.logger.Error().Err(err).Str("test", t.ID.String()).Msg("specimen collection failed")
				report.Errors++
				continue
			}
			if ok {
				report.Collected++
			}
		case StatusInProgress:
			tt, ok := typeByID[t.TestTypeID]
			if !ok {
				e.logger.Warn().Str("test", t.ID.String()).Msg("test type missing, skipping completion")
				continue
			}
			result := e.drawResult(t, tt, criticalByType[t.TestTypeID], now)
			done, err := e.tests.Complete(ctx, t.ID, result)
			if err != nil {
				e.logger.Error().Err(err).Str("test", t.ID.String()).Msg("completion failed")
				report.Errors++
				continue
			}
			if done {
				report.Completed++
				if result.IsCritical {
					report.Criticals++
					e.logger.Warn().Str("test", tt.Code).Str("value", result.Value).
						Msg("critical lab value reported")
				}
			}
		}
	}
}

// drawResult produces a result for a completing test. Ranged tests
// draw from [low, low+1.5*(high-low)] so most results are normal but
// a meaningful share lands above range. Tests without a reference
// range report POSITIVE or NEGATIVE.
func (e *Engine) drawResult(t *LabTest, tt *catalog.LabTestType, critical *catalog.CriticalLabValue, now time.Time) Result {
	result := Result{
		Unit:                  tt.Unit,
		CompletedAt:           now,
		TurnaroundTimeMinutes: int(now.Sub(t.OrderedAt).Minutes()),
	}
	if result.TurnaroundTimeMinutes < 0 {
		result.TurnaroundTimeMinutes = 0
	}

	if !tt.HasRange() {
		if e.rnd.Chance(0.3) {
			result.Value = ResultPositive
			result.IsAbnormal = true
		} else {
			result.Value = ResultNegative
		}
		return result
	}

	low, high := *tt.ReferenceRangeLow, *tt.ReferenceRangeHigh
	value := e.rnd.FloatBetween(low, low+1.5*(high-low))
	result.Value = fmt.Sprintf("%.2f", value)
	result.IsAbnormal = value < low || value > high
	if critical != nil && critical.Breached(value) {
		result.IsCritical = true
	}
	return result
}

// placeOrders creates at most one new ORDERED test per pass, against a
// randomly chosen active visit. The order rate does not scale with the
// census size.
func (e *Engine) placeOrders(ctx context.Context, testTypes []*catalog.LabTestType, report *Report) error {
	if !e.rnd.Chance(e.profile.LabNewOrder) {
		return nil
	}
	visits, err := e.visits.ListActiveVisitRefs(ctx)
	if err != nil {
		return fmt.Errorf("listing active visits: %w", err)
	}
	if len(visits) == 0 {
		return nil
	}
	staffIDs, err := e.staff.ListStaffIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing staff: %w", err)
	}
	if len(staffIDs) == 0 {
		e.logger.Warn().Msg("no staff found, skipping lab orders")
		return nil
	}

	now := time.Now()
	visit := visits[e.rnd.Intn(len(visits))]
	tt := testTypes[e.rnd.Intn(len(testTypes))]
	order := &LabTest{
		VisitID:     visit.VisitID,
		PatientID:   visit.PatientID,
		TestTypeID:  tt.ID,
		OrderedByID: staffIDs[e.rnd.Intn(len(staffIDs))],
		Status:      StatusOrdered,
		OrderedAt:   now.Add(-time.Duration(e.rnd.IntBetween(0, 120)) * time.Minute),
	}
	if err := e.tests.Create(ctx, order); err != nil {
		e.logger.Error().Err(err).Str("test_type", tt.Code).Msg("order creation failed")
		report.Errors++
		return nil
	}
	report.Ordered++
	return nil
}
