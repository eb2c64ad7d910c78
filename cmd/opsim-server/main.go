package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hospitalops/opsim/internal/config"
	"github.com/hospitalops/opsim/internal/domain/catalog"
	"github.com/hospitalops/opsim/internal/domain/claims"
	"github.com/hospitalops/opsim/internal/domain/lab"
	"github.com/hospitalops/opsim/internal/domain/quality"
	"github.com/hospitalops/opsim/internal/domain/resources"
	"github.com/hospitalops/opsim/internal/domain/roster"
	"github.com/hospitalops/opsim/internal/domain/visits"
	"github.com/hospitalops/opsim/internal/engine"
	"github.com/hospitalops/opsim/internal/platform/db"
	"github.com/hospitalops/opsim/internal/platform/middleware"
	"github.com/hospitalops/opsim/internal/sim"
)

func main() {
	root := &cobra.Command{
		Use:   "opsim-server",
		Short: "Hospital operations simulation server",
	}

	root.AddCommand(serveCmd())
	root.AddCommand(tickCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}

// buildEngine wires repositories and services into a tick engine.
func buildEngine(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) *engine.Engine {
	rnd := sim.New(cfg.SimSeed)
	profile := sim.DefaultProfile()
	runner := db.NewPoolRunner(pool)

	departmentRepo := catalog.NewDepartmentRepoPG(pool)
	labCatalogRepo := catalog.NewLabCatalogRepoPG(pool)
	qualityCatalogRepo := catalog.NewQualityCatalogRepoPG(pool)
	bedRepo := resources.NewBedRepoPG(pool)
	staffRepo := resources.NewStaffRepoPG(pool)
	visitRepo := visits.NewVisitRepoPG(pool)
	patientRepo := visits.NewPatientRepoPG(pool)
	labTestRepo := lab.NewLabTestRepoPG(pool)
	claimRepo := claims.NewClaimRepoPG(pool)
	scheduleRepo := roster.NewScheduleRepoPG(pool)
	qualityRepo := quality.NewQualityRepoPG(pool)

	seeder := catalog.NewSeeder(departmentRepo, labCatalogRepo, qualityCatalogRepo,
		rnd, logger, catalog.DefaultTargets())
	resourceSvc := resources.NewService(bedRepo, staffRepo, departmentRepo, visitRepo,
		runner, rnd, profile, logger, cfg.BedCount, cfg.StaffCount)
	visitGen := visits.NewGenerator(visitRepo, patientRepo, bedRepo, departmentRepo,
		runner, rnd, profile, logger, cfg.TargetActiveVisits)
	labEngine := lab.NewEngine(labTestRepo, labCatalogRepo,
		lab.NewVisitPickerPG(pool), lab.NewStaffPickerPG(pool), rnd, profile, logger)
	claimsPipeline := claims.NewPipeline(claimRepo, runner, rnd, profile, logger)
	rosterSvc := roster.NewService(scheduleRepo, staffRepo, departmentRepo,
		runner, rnd, profile, logger)
	qualitySvc := quality.NewService(qualityRepo, qualityCatalogRepo,
		quality.NewVisitSamplerPG(pool), quality.NewStaffSamplerPG(pool), rnd, profile, logger)

	return engine.New(seeder, resourceSvc, visitGen, labEngine, claimsPipeline,
		rosterSvc, qualitySvc, logger)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger := newLogger(cfg)

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer pool.Close()

			e := echo.New()
			e.HideBanner = true
			e.HidePort = true

			e.Use(middleware.Recovery(logger))
			e.Use(middleware.RequestID())
			e.Use(middleware.Logger(logger))
			e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
				AllowOrigins: cfg.CORSOrigins,
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			}))

			e.GET("/health", db.HealthHandler(pool))

			tickEngine := buildEngine(cfg, pool, logger)
			engine.NewHandler(tickEngine, logger).RegisterRoutes(e)

			go func() {
				logger.Info().Str("port", cfg.Port).Msg("server started")
				if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server stopped")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			<-quit

			logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}

func tickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run a single simulation tick and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger := newLogger(cfg)

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer pool.Close()

			report, err := buildEngine(cfg, pool, logger).RunTick(ctx)
			if err != nil {
				return fmt.Errorf("tick failed: %w", err)
			}
			logger.Info().
				Int64("duration_ms", report.DurationMS).
				Msg("tick completed")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	var dir string

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}
	migrate.PersistentFlags().StringVar(&dir, "dir", "migrations", "migrations directory")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger := newLogger(cfg)

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			if err := migrator.EnsureMigrationsTable(ctx); err != nil {
				return fmt.Errorf("ensuring migrations table: %w", err)
			}
			applied, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("applying migrations: %w", err)
			}
			logger.Info().Int("applied", applied).Msg("migrations complete")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			if err := migrator.EnsureMigrationsTable(ctx); err != nil {
				return fmt.Errorf("ensuring migrations table: %w", err)
			}
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("reading migration status: %w", err)
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Printf("%03d %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}

	migrate.AddCommand(up)
	migrate.AddCommand(status)
	return migrate
}
