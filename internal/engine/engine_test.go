package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hospitalops/opsim/internal/domain/catalog"
	"github.com/hospitalops/opsim/internal/domain/claims"
	"github.com/hospitalops/opsim/internal/domain/lab"
	"github.com/hospitalops/opsim/internal/domain/quality"
	"github.com/hospitalops/opsim/internal/domain/resources"
	"github.com/hospitalops/opsim/internal/domain/roster"
	"github.com/hospitalops/opsim/internal/domain/visits"
)

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) record(name string) {
	l.mu.Lock()
	l.calls = append(l.calls, name)
	l.mu.Unlock()
}

func (l *callLog) index(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, c := range l.calls {
		if c == name {
			return i
		}
	}
	return -1
}

type mockSeeder struct {
	log *callLog
	err error
}

func (m *mockSeeder) Run(ctx context.Context) (*catalog.SeedReport, error) {
	m.log.record("seeder")
	if m.err != nil {
		return nil, m.err
	}
	return &catalog.SeedReport{Created: map[string]int{}}, nil
}

type mockResources struct {
	log *callLog
	err error
}

func (m *mockResources) Run(ctx context.Context) (*resources.Report, error) {
	m.log.record("resources")
	if m.err != nil {
		return nil, m.err
	}
	return &resources.Report{}, nil
}

type mockVisits struct {
	log *callLog
	err error
}

func (m *mockVisits) Run(ctx context.Context) (*visits.Report, error) {
	m.log.record("visits")
	if m.err != nil {
		return nil, m.err
	}
	return &visits.Report{}, nil
}

type mockLab struct {
	log   *callLog
	err   error
	panic bool
}

func (m *mockLab) Run(ctx context.Context) (*lab.Report, error) {
	m.log.record("lab")
	if m.panic {
		panic("lab exploded")
	}
	if m.err != nil {
		return nil, m.err
	}
	return &lab.Report{}, nil
}

type mockClaims struct {
	log *callLog
	err error
}

func (m *mockClaims) Run(ctx context.Context) (*claims.Report, error) {
	m.log.record("claims")
	if m.err != nil {
		return nil, m.err
	}
	return &claims.Report{}, nil
}

type mockRoster struct {
	log *callLog
	err error
}

func (m *mockRoster) Rebuild(ctx context.Context) (*roster.Report, error) {
	m.log.record("roster")
	if m.err != nil {
		return nil, m.err
	}
	return &roster.Report{}, nil
}

type mockQuality struct {
	log *callLog
	err error
}

func (m *mockQuality) Run(ctx context.Context) (*quality.Report, error) {
	m.log.record("quality")
	if m.err != nil {
		return nil, m.err
	}
	return &quality.Report{}, nil
}

type fixture struct {
	log     *callLog
	seeder  *mockSeeder
	res     *mockResources
	visits  *mockVisits
	lab     *mockLab
	claims  *mockClaims
	roster  *mockRoster
	quality *mockQuality
	engine  *Engine
}

func newFixture() *fixture {
	log := &callLog{}
	f := &fixture{
		log:     log,
		seeder:  &mockSeeder{log: log},
		res:     &mockResources{log: log},
		visits:  &mockVisits{log: log},
		lab:     &mockLab{log: log},
		claims:  &mockClaims{log: log},
		roster:  &mockRoster{log: log},
		quality: &mockQuality{log: log},
	}
	f.engine = New(f.seeder, f.res, f.visits, f.lab, f.claims, f.roster, f.quality, zerolog.Nop())
	return f
}

func TestRunTickRunsEveryStep(t *testing.T) {
	f := newFixture()

	report, err := f.engine.RunTick(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Success {
		t.Error("report should be successful")
	}
	for _, step := range []string{"seeder", "resources", "visits", "lab", "claims", "roster", "quality"} {
		if f.log.index(step) < 0 {
			t.Errorf("step %s did not run", step)
		}
	}
	if report.Seed == nil || report.Resources == nil || report.Visits == nil ||
		report.Lab == nil || report.Claims == nil || report.Roster == nil || report.Quality == nil {
		t.Error("every step report should be attached")
	}
}

func TestRunTickOrdering(t *testing.T) {
	f := newFixture()

	if _, err := f.engine.RunTick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seeder, res, vis := f.log.index("seeder"), f.log.index("resources"), f.log.index("visits")
	if !(seeder < res && res < vis) {
		t.Errorf("sequential steps out of order: %v", f.log.calls)
	}
	for _, step := range []string{"lab", "claims", "roster", "quality"} {
		if f.log.index(step) < vis {
			t.Errorf("%s ran before the visit census settled: %v", step, f.log.calls)
		}
	}
}

func TestRunTickAbortsOnSeederFailure(t *testing.T) {
	f := newFixture()
	f.seeder.err = errors.New("database down")

	report, err := f.engine.RunTick(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if report.Success {
		t.Error("report should not be successful")
	}
	if f.log.index("resources") >= 0 || f.log.index("lab") >= 0 {
		t.Errorf("later steps should not run after the seeder fails: %v", f.log.calls)
	}
}

func TestRunTickConcurrentFailureFailsTick(t *testing.T) {
	f := newFixture()
	f.claims.err = errors.New("claims backend unavailable")

	report, err := f.engine.RunTick(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if report.Success {
		t.Error("report should not be successful")
	}
	if f.log.index("lab") < 0 || f.log.index("roster") < 0 || f.log.index("quality") < 0 {
		t.Errorf("other concurrent steps should still run: %v", f.log.calls)
	}
	if len(report.Errors) != 1 {
		t.Errorf("expected 1 recorded error, got %v", report.Errors)
	}
}

func TestRunTickRecoversStepPanic(t *testing.T) {
	f := newFixture()
	f.lab.panic = true

	report, err := f.engine.RunTick(context.Background())
	if err == nil {
		t.Fatal("expected an error from the panicking step")
	}
	if report.Success {
		t.Error("report should not be successful")
	}
	if f.log.index("claims") < 0 {
		t.Error("a panic in one step should not stop the others")
	}
}
