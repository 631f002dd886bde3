package commands

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tycoonsim/tycoon-go/internal/application/common"
	"github.com/tycoonsim/tycoon-go/internal/application/simulation"
	"github.com/tycoonsim/tycoon-go/internal/domain/calendar"
	"github.com/tycoonsim/tycoon-go/internal/domain/facility"
	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
)

// RunTickCommand advances the simulation by exactly one tick. Scheduled
// triggers (Manual=false) are no-ops until the clock's next scheduled
// time has passed; manual triggers always run and leave the automatic
// cadence untouched.
type RunTickCommand struct {
	Manual bool
}

// RunTickResult is the outcome of a tick run.
type RunTickResult struct {
	// NotDue is set when a scheduled trigger arrived early. Nothing was
	// mutated.
	NotDue           bool
	SecondsRemaining float64

	Clock              calendar.Clock
	FacilitiesAdvanced int
	Manual             bool
}

// RunTickHandler is the tick orchestrator. At most one run is in flight
// at any time: an in-process flag rejects redundant local triggers
// cheaply, and a persisted guard with an expiry deadline enforces the
// same across process instances.
type RunTickHandler struct {
	clockRepo    simulation.ClockRepository
	facilityRepo simulation.FacilityRepository
	guard        simulation.TickGuard
	recipes      facility.RecipeSource
	effectivity  simulation.EffectivitySource
	notifier     simulation.TickNotifier
	metrics      simulation.TickMetrics
	wallClock    shared.Clock
	calendarCfg  calendar.Config
	guardTTL     time.Duration

	holderID string
	running  atomic.Bool
}

// NewRunTickHandler creates the orchestrator.
func NewRunTickHandler(
	clockRepo simulation.ClockRepository,
	facilityRepo simulation.FacilityRepository,
	guard simulation.TickGuard,
	recipes facility.RecipeSource,
	effectivity simulation.EffectivitySource,
	notifier simulation.TickNotifier,
	metrics simulation.TickMetrics,
	wallClock shared.Clock,
	calendarCfg calendar.Config,
	guardTTL time.Duration,
) *RunTickHandler {
	return &RunTickHandler{
		clockRepo:    clockRepo,
		facilityRepo: facilityRepo,
		guard:        guard,
		recipes:      recipes,
		effectivity:  effectivity,
		notifier:     notifier,
		metrics:      metrics,
		wallClock:    wallClock,
		calendarCfg:  calendarCfg,
		guardTTL:     guardTTL,
		holderID:     "tick-" + uuid.New().String()[:8],
	}
}

// Handle runs one tick.
func (h *RunTickHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(RunTickCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type %T for RunTickHandler", request)
	}
	return h.runTick(ctx, cmd.Manual)
}

func (h *RunTickHandler) runTick(ctx context.Context, manual bool) (*RunTickResult, error) {
	logger := common.LoggerFromContext(ctx)

	// Local fast path: a redundant trigger from this process is the
	// expected outcome of concurrent timers, not an error.
	if !h.running.CompareAndSwap(false, true) {
		h.metrics.RecordBusyRejection()
		return nil, shared.NewTickInProgressError(h.holderID)
	}
	defer h.running.Store(false)

	acquired, err := h.guard.Acquire(ctx, h.holderID, h.guardTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire tick guard: %w", err)
	}
	if !acquired {
		h.metrics.RecordBusyRejection()
		return nil, shared.NewTickInProgressError("another instance")
	}
	defer func() {
		if err := h.guard.Release(ctx, h.holderID); err != nil {
			logger.Warn("failed to release tick guard", "holder", h.holderID, "error", err)
		}
	}()

	started := h.wallClock.Now()

	clock, err := h.clockRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load simulation clock: %w", err)
	}

	if !manual && !clock.IsDue(started) {
		return &RunTickResult{
			NotDue:           true,
			SecondsRemaining: clock.UntilDue(started).Seconds(),
			Clock:            *clock,
		}, nil
	}

	newClock := clock.Advance(h.calendarCfg, started, !manual)

	advanced, err := h.advanceFacilities(ctx, newClock.Tick)
	if err != nil {
		return nil, err
	}

	// The clock commit is the one failure that invalidates the whole
	// run: without it the tick never happened.
	if err := h.clockRepo.Save(ctx, &newClock); err != nil {
		return nil, shared.NewClockPersistenceError(fmt.Sprintf("failed to persist clock at tick %d: %v", newClock.Tick, err))
	}

	duration := h.wallClock.Now().Sub(started)
	h.metrics.RecordTickRun(manual, duration, advanced)
	h.notifier.PublishTickSummary(simulation.TickSummary{
		Tick:               newClock.Tick,
		Day:                newClock.Day,
		Month:              newClock.Month,
		Year:               newClock.Year,
		FacilitiesAdvanced: advanced,
		Manual:             manual,
		CompletedAt:        h.wallClock.Now(),
	})

	logger.Info("tick completed",
		"tick", newClock.Tick,
		"day", newClock.Day,
		"month", newClock.Month,
		"year", newClock.Year,
		"facilitiesAdvanced", advanced,
		"manual", manual,
		"duration", duration,
	)

	return &RunTickResult{
		Clock:              newClock,
		FacilitiesAdvanced: advanced,
		Manual:             manual,
	}, nil
}

// advanceFacilities steps every production facility in id order and
// persists the mutated ones. Per-facility failures are logged and
// skipped; they never block the rest of the batch.
func (h *RunTickHandler) advanceFacilities(ctx context.Context, tick uint64) (int, error) {
	logger := common.LoggerFromContext(ctx)

	facilities, err := h.facilityRepo.ListProduction(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load production facilities: %w", err)
	}

	completed := 0
	for _, f := range facilities {
		parentCap, err := h.effectivity.ParentCap(ctx, f.OwnerID)
		if err != nil {
			logger.Warn("failed to resolve effectivity cap, using base",
				"facility", f.ID, "owner", f.OwnerID, "error", err)
			parentCap = nil
		}
		f.RecomputeEffectivity(parentCap)

		result, err := f.Step(h.recipes)
		if err != nil {
			h.metrics.RecordFacilitySkipped("step")
			logger.Warn("facility skipped for tick", "facility", f.ID, "tick", tick, "error", err)
			continue
		}

		if len(result.Discarded) > 0 {
			logger.Warn("output discarded at full capacity",
				"facility", f.ID, "tick", tick, "discarded", result.Discarded)
		}

		if err := h.facilityRepo.Save(ctx, f); err != nil {
			h.metrics.RecordFacilitySkipped("persistence")
			logger.Error("failed to persist facility", "facility", f.ID, "tick", tick, "error", err)
			continue
		}

		if result.Completed {
			completed++
		}
	}

	return completed, nil
}
