package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tycoonsim/tycoon-go/internal/adapters/httpapi"
	"github.com/tycoonsim/tycoon-go/internal/adapters/persistence"
	syncbridge "github.com/tycoonsim/tycoon-go/internal/adapters/sync"
	"github.com/tycoonsim/tycoon-go/internal/application/common"
	"github.com/tycoonsim/tycoon-go/internal/application/simulation"
	"github.com/tycoonsim/tycoon-go/internal/application/simulation/commands"
	"github.com/tycoonsim/tycoon-go/internal/application/simulation/queries"
	"github.com/tycoonsim/tycoon-go/internal/domain/calendar"
	"github.com/tycoonsim/tycoon-go/internal/domain/recipe"
	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
	"github.com/tycoonsim/tycoon-go/internal/infrastructure/config"
	"github.com/tycoonsim/tycoon-go/internal/infrastructure/database"
	"github.com/tycoonsim/tycoon-go/internal/infrastructure/logging"
	"github.com/tycoonsim/tycoon-go/internal/infrastructure/metrics"
	"github.com/tycoonsim/tycoon-go/internal/infrastructure/pidfile"
	"github.com/tycoonsim/tycoon-go/internal/infrastructure/scheduler"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: search standard paths)")
	flag.Parse()

	cfg := config.MustLoadConfig(*configPath)
	logger := logging.NewLogger(&cfg.Logging)

	if cfg.Simulation.PIDFile != "" {
		pf := pidfile.New(cfg.Simulation.PIDFile)
		if err := pf.Acquire(); err != nil {
			log.Fatalf("Failed to acquire PID file lock: %v", err)
		}
		defer func() {
			if err := pf.Release(); err != nil {
				logger.Warn("failed to release pid file", "error", err)
			}
		}()
	}

	if err := run(cfg, logger); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("database connected", "type", cfg.Database.Type)

	// Recipe catalog
	recipes, err := recipe.LoadCatalog(cfg.Simulation.RecipeCatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load recipe catalog: %w", err)
	}
	registry := recipe.NewRegistry(recipes)
	logger.Info("recipe catalog loaded",
		"path", cfg.Simulation.RecipeCatalogPath, "recipes", registry.Len())

	// Metrics
	var (
		promRegistry *prometheus.Registry
		tickMetrics  simulation.TickMetrics = simulation.NopMetrics{}
	)
	if cfg.Metrics.Enabled {
		promRegistry = prometheus.NewRegistry()
		tickMetrics = metrics.NewTickMetricsCollector(promRegistry)
	}

	// Repositories and guard
	wallClock := shared.NewSystemClock()
	clockRepo := persistence.NewClockRepository(db, wallClock, cfg.Simulation.StartYear)
	facilityRepo := persistence.NewFacilityRepository(db, tickMetrics)
	tickGuard := persistence.NewTickGuard(db, wallClock)

	// Sync bridge
	hub := syncbridge.NewHub(logger)
	go hub.Run(ctx)

	// Mediator and handlers
	med := common.NewMediator()

	calendarCfg := calendar.Config{
		DaysPerMonth:  cfg.Simulation.DaysPerMonth,
		MonthsPerYear: cfg.Simulation.MonthsPerYear,
	}
	runTickHandler := commands.NewRunTickHandler(
		clockRepo, facilityRepo, tickGuard, registry,
		simulation.NoEffectivityCap{}, hub, tickMetrics,
		wallClock, calendarCfg, cfg.Simulation.GuardTTL,
	)
	if err := common.RegisterHandler[commands.RunTickCommand](med, runTickHandler); err != nil {
		return fmt.Errorf("failed to register RunTick handler: %w", err)
	}

	if err := common.RegisterHandler[commands.CreateFacilityCommand](med,
		commands.NewCreateFacilityHandler(facilityRepo)); err != nil {
		return fmt.Errorf("failed to register CreateFacility handler: %w", err)
	}
	if err := common.RegisterHandler[commands.SetRecipeCommand](med,
		commands.NewSetRecipeHandler(facilityRepo, registry)); err != nil {
		return fmt.Errorf("failed to register SetRecipe handler: %w", err)
	}
	if err := common.RegisterHandler[commands.StartProductionCommand](med,
		commands.NewStartProductionHandler(facilityRepo, registry)); err != nil {
		return fmt.Errorf("failed to register StartProduction handler: %w", err)
	}
	if err := common.RegisterHandler[commands.StopProductionCommand](med,
		commands.NewStopProductionHandler(facilityRepo)); err != nil {
		return fmt.Errorf("failed to register StopProduction handler: %w", err)
	}
	if err := common.RegisterHandler[queries.GetClockQuery](med,
		queries.NewGetClockHandler(clockRepo)); err != nil {
		return fmt.Errorf("failed to register GetClock handler: %w", err)
	}
	if err := common.RegisterHandler[queries.GetFacilityQuery](med,
		queries.NewGetFacilityHandler(facilityRepo)); err != nil {
		return fmt.Errorf("failed to register GetFacility handler: %w", err)
	}
	if err := common.RegisterHandler[queries.ListFacilitiesQuery](med,
		queries.NewListFacilitiesHandler(facilityRepo)); err != nil {
		return fmt.Errorf("failed to register ListFacilities handler: %w", err)
	}

	// SIGHUP swaps in a freshly parsed recipe catalog without a restart.
	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	go func() {
		for range hupCh {
			reloaded, err := recipe.LoadCatalog(cfg.Simulation.RecipeCatalogPath)
			if err != nil {
				logger.Error("recipe catalog reload failed", "error", err)
				continue
			}
			registry.Reload(reloaded)
			logger.Info("recipe catalog reloaded", "recipes", registry.Len())
		}
	}()

	// Automatic tick scheduler
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(med, logger, cfg.Scheduler.PollInterval)
		go sched.Run(ctx)
	}

	// HTTP surface
	server := httpapi.NewServer(&cfg.Server, med, hub, promRegistry, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	logger.Info("daemon ready", "address", cfg.Server.Address)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	logger.Info("daemon stopped")
	return nil
}
