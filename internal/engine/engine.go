package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hospitalops/opsim/internal/domain/catalog"
	"github.com/hospitalops/opsim/internal/domain/claims"
	"github.com/hospitalops/opsim/internal/domain/lab"
	"github.com/hospitalops/opsim/internal/domain/quality"
	"github.com/hospitalops/opsim/internal/domain/resources"
	"github.com/hospitalops/opsim/internal/domain/roster"
	"github.com/hospitalops/opsim/internal/domain/visits"
)

type Seeder interface {
	Run(ctx context.Context) (*catalog.SeedReport, error)
}

type ResourceManager interface {
	Run(ctx context.Context) (*resources.Report, error)
}

type VisitGenerator interface {
	Run(ctx context.Context) (*visits.Report, error)
}

type LabEngine interface {
	Run(ctx context.Context) (*lab.Report, error)
}

type ClaimsPipeline interface {
	Run(ctx context.Context) (*claims.Report, error)
}

type RosterService interface {
	Rebuild(ctx context.Context) (*roster.Report, error)
}

type QualityService interface {
	Run(ctx context.Context) (*quality.Report, error)
}

// TickReport is the outcome of one simulation tick.
type TickReport struct {
	StartedAt  time.Time           `json:"started_at"`
	DurationMS int64               `json:"duration_ms"`
	Success    bool                `json:"success"`
	Seed       *catalog.SeedReport `json:"seed,omitempty"`
	Resources  *resources.Report   `json:"resources,omitempty"`
	Visits     *visits.Report      `json:"visits,omitempty"`
	Lab        *lab.Report         `json:"lab,omitempty"`
	Claims     *claims.Report      `json:"claims,omitempty"`
	Roster     *roster.Report      `json:"roster,omitempty"`
	Quality    *quality.Report     `json:"quality,omitempty"`
	Errors     []string            `json:"errors,omitempty"`
}

// Engine runs one tick of the simulation. Reference data, resource
// pools and the visit census are updated in order; the downstream
// generators then run concurrently since they touch disjoint tables.
type Engine struct {
	seeder    Seeder
	resources ResourceManager
	visits    VisitGenerator
	lab       LabEngine
	claims    ClaimsPipeline
	roster    RosterService
	quality   QualityService
	logger    zerolog.Logger
}

func New(seeder Seeder, res ResourceManager, visitGen VisitGenerator, labEng LabEngine, claimsPipe ClaimsPipeline, rosterSvc RosterService, qualitySvc QualityService, logger zerolog.Logger) *Engine {
	return &Engine{
		seeder:    seeder,
		resources: res,
		visits:    visitGen,
		lab:       labEng,
		claims:    claimsPipe,
		roster:    rosterSvc,
		quality:   qualitySvc,
		logger:    logger.With().Str("component", "engine").Logger(),
	}
}

// RunTick executes one full simulation tick. A failing sequential step
// aborts the tick; the concurrent steps run to completion and report
// every failure.
func (e *Engine) RunTick(ctx context.Context) (*TickReport, error) {
	start := time.Now()
	report := &TickReport{StartedAt: start}
	defer func() {
		report.DurationMS = time.Since(start).Milliseconds()
	}()

	seedReport, err := runStep(ctx, "seeder", e.seeder.Run)
	if err != nil {
		return e.fail(report, err)
	}
	report.Seed = seedReport

	resReport, err := runStep(ctx, "resources", e.resources.Run)
	if err != nil {
		return e.fail(report, err)
	}
	report.Resources = resReport

	visitReport, err := runStep(ctx, "visits", e.visits.Run)
	if err != nil {
		return e.fail(report, err)
	}
	report.Visits = visitReport

	var mu sync.Mutex
	addErr := func(err error) {
		mu.Lock()
		report.Errors = append(report.Errors, err.Error())
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := runStep(gctx, "lab", e.lab.Run)
		if err != nil {
			addErr(err)
			return nil
		}
		report.Lab = r
		return nil
	})
	g.Go(func() error {
		r, err := runStep(gctx, "claims", e.claims.Run)
		if err != nil {
			addErr(err)
			return nil
		}
		report.Claims = r
		return nil
	})
	g.Go(func() error {
		r, err := runStep(gctx, "roster", e.roster.Rebuild)
		if err != nil {
			addErr(err)
			return nil
		}
		report.Roster = r
		return nil
	})
	g.Go(func() error {
		r, err := runStep(gctx, "quality", e.quality.Run)
		if err != nil {
			addErr(err)
			return nil
		}
		report.Quality = r
		return nil
	})
	// Goroutines never return errors directly; Wait is for completion.
	_ = g.Wait()

	if len(report.Errors) > 0 {
		report.Success = false
		err := fmt.Errorf("tick finished with errors: %s", report.Errors[0])
		e.logger.Error().Strs("errors", report.Errors).Msg("tick failed")
		return report, err
	}

	report.Success = true
	e.logger.Info().Int64("duration_ms", time.Since(start).Milliseconds()).Msg("tick completed")
	return report, nil
}

func (e *Engine) fail(report *TickReport, err error) (*TickReport, error) {
	report.Success = false
	report.Errors = append(report.Errors, err.Error())
	e.logger.Error().Err(err).Msg("tick aborted")
	return report, err
}

// runStep wraps a step so a panic inside one generator becomes an
// error instead of taking down the server.
func runStep[T any](ctx context.Context, name string, fn func(context.Context) (*T, error)) (result *T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", name, r)
		}
	}()
	result, err = fn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return result, nil
}
