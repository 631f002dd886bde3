package commands_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tycoonsim/tycoon-go/internal/application/simulation"
	"github.com/tycoonsim/tycoon-go/internal/application/simulation/commands"
	"github.com/tycoonsim/tycoon-go/internal/domain/calendar"
	"github.com/tycoonsim/tycoon-go/internal/domain/facility"
	"github.com/tycoonsim/tycoon-go/internal/domain/inventory"
	"github.com/tycoonsim/tycoon-go/internal/domain/recipe"
	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
)

// In-memory fakes for the orchestrator's ports.

type fakeClockRepo struct {
	mu      sync.Mutex
	clock   calendar.Clock
	saveErr error
	saves   int
}

func (r *fakeClockRepo) Get(ctx context.Context) (*calendar.Clock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.clock
	return &c, nil
}

func (r *fakeClockRepo) Save(ctx context.Context, clock *calendar.Clock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.clock = *clock
	r.saves++
	return nil
}

type fakeFacilityRepo struct {
	mu          sync.Mutex
	facilities  map[string]*facility.Facility
	saveErrFor  map[string]error
	listEntered chan struct{}
	listRelease chan struct{}
}

func newFakeFacilityRepo() *fakeFacilityRepo {
	return &fakeFacilityRepo{
		facilities: make(map[string]*facility.Facility),
		saveErrFor: make(map[string]error),
	}
}

func (r *fakeFacilityRepo) add(f *facility.Facility) {
	r.facilities[f.ID] = f
}

func (r *fakeFacilityRepo) GetByID(ctx context.Context, id string) (*facility.Facility, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.facilities[id]
	if !ok {
		return nil, shared.NewFacilityNotFoundError(id)
	}
	return f, nil
}

func (r *fakeFacilityRepo) ListProduction(ctx context.Context) ([]*facility.Facility, error) {
	if r.listEntered != nil {
		r.listEntered <- struct{}{}
		<-r.listRelease
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*facility.Facility
	for _, f := range r.facilities {
		if f.Kind == facility.KindProduction {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r *fakeFacilityRepo) ListAll(ctx context.Context) ([]*facility.Facility, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*facility.Facility
	for _, f := range r.facilities {
		out = append(out, f)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r *fakeFacilityRepo) Save(ctx context.Context, f *facility.Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.saveErrFor[f.ID]; err != nil {
		return err
	}
	r.facilities[f.ID] = f
	return nil
}

type fakeGuard struct {
	mu     sync.Mutex
	holder string
}

func (g *fakeGuard) Acquire(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.holder != "" && g.holder != holder {
		return false, nil
	}
	g.holder = holder
	return true, nil
}

func (g *fakeGuard) Release(ctx context.Context, holder string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.holder == holder {
		g.holder = ""
	}
	return nil
}

func testRecipes(t *testing.T) *recipe.Registry {
	t.Helper()
	bake, err := recipe.New("BAKE_BREAD", "Bake bread",
		[]inventory.Stack{{Resource: "FLOUR", Quantity: 4}},
		[]inventory.Stack{{Resource: "BREAD", Quantity: 2}},
		1)
	require.NoError(t, err)
	return recipe.NewRegistry([]*recipe.Recipe{bake})
}

type fixture struct {
	handler      *commands.RunTickHandler
	clockRepo    *fakeClockRepo
	facilityRepo *fakeFacilityRepo
	wallClock    *shared.FrozenClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	clockRepo := &fakeClockRepo{clock: calendar.Clock{
		Day: 1, Month: 1, Year: 1,
		NextScheduledTime: time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC),
	}}
	facilityRepo := newFakeFacilityRepo()
	wallClock := shared.NewFrozenClock(now)

	handler := commands.NewRunTickHandler(
		clockRepo,
		facilityRepo,
		&fakeGuard{},
		testRecipes(t),
		simulation.NoEffectivityCap{},
		simulation.NopNotifier{},
		simulation.NopMetrics{},
		wallClock,
		calendar.DefaultConfig(),
		2*time.Minute,
	)

	return &fixture{
		handler:      handler,
		clockRepo:    clockRepo,
		facilityRepo: facilityRepo,
		wallClock:    wallClock,
	}
}

func TestRunTick_MonotonicTick(t *testing.T) {
	fix := newFixture(t)

	for i := 1; i <= 5; i++ {
		response, err := fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: true})
		require.NoError(t, err)

		result := response.(*commands.RunTickResult)
		assert.Equal(t, uint64(i), result.Clock.Tick)
		assert.True(t, result.Manual)
	}
	assert.Equal(t, 5, fix.clockRepo.saves)
}

func TestRunTick_ScheduledBeforeDueIsNoOp(t *testing.T) {
	fix := newFixture(t)

	response, err := fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: false})
	require.NoError(t, err)

	result := response.(*commands.RunTickResult)
	assert.True(t, result.NotDue)
	assert.InDelta(t, 1800, result.SecondsRemaining, 1)
	assert.Equal(t, uint64(0), fix.clockRepo.clock.Tick, "nothing mutated")
	assert.Equal(t, 0, fix.clockRepo.saves)
}

func TestRunTick_ScheduledWhenDueAdvancesAndReschedules(t *testing.T) {
	fix := newFixture(t)
	fix.wallClock.SetTime(time.Date(2025, 6, 1, 13, 0, 5, 0, time.UTC))

	response, err := fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: false})
	require.NoError(t, err)

	result := response.(*commands.RunTickResult)
	assert.False(t, result.NotDue)
	assert.Equal(t, uint64(1), result.Clock.Tick)
	assert.Equal(t, time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC), result.Clock.NextScheduledTime)
}

func TestRunTick_ManualPreservesSchedule(t *testing.T) {
	fix := newFixture(t)
	due := fix.clockRepo.clock.NextScheduledTime

	response, err := fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: true})
	require.NoError(t, err)

	result := response.(*commands.RunTickResult)
	assert.Equal(t, due, result.Clock.NextScheduledTime)
}

func TestRunTick_SingleFlight(t *testing.T) {
	fix := newFixture(t)
	fix.facilityRepo.listEntered = make(chan struct{})
	fix.facilityRepo.listRelease = make(chan struct{})

	type outcome struct {
		result *commands.RunTickResult
		err    error
	}
	first := make(chan outcome, 1)

	go func() {
		response, err := fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: true})
		result, _ := response.(*commands.RunTickResult)
		first <- outcome{result: result, err: err}
	}()

	// Wait until the first run is inside the facility pass, then issue
	// a concurrent trigger.
	<-fix.facilityRepo.listEntered
	_, err := fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: true})

	var busy *shared.TickInProgressError
	require.ErrorAs(t, err, &busy)

	close(fix.facilityRepo.listRelease)
	got := <-first
	require.NoError(t, got.err)
	assert.Equal(t, uint64(1), got.result.Clock.Tick)

	// Guard released: a later run succeeds.
	fix.facilityRepo.listEntered = nil
	response, err := fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: true})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), response.(*commands.RunTickResult).Clock.Tick)
}

func TestRunTick_IdleFacilityAutoStartsWithinOneTick(t *testing.T) {
	fix := newFixture(t)

	f, err := facility.New("bakery-1", "company-1", facility.KindProduction, 100)
	require.NoError(t, err)
	f.AllowedRecipeIDs = []string{"BAKE_BREAD"}
	f.Inventory.Produce([]inventory.Stack{{Resource: "FLOUR", Quantity: 8}})
	fix.facilityRepo.add(f)

	_, err = fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: true})
	require.NoError(t, err)

	stepped, err := fix.facilityRepo.GetByID(context.Background(), "bakery-1")
	require.NoError(t, err)
	assert.True(t, stepped.IsProducing)
	assert.Equal(t, "BAKE_BREAD", stepped.ActiveRecipeID)
}

func TestRunTick_FacilityCompletionCounted(t *testing.T) {
	fix := newFixture(t)

	f, err := facility.New("bakery-1", "company-1", facility.KindProduction, 100)
	require.NoError(t, err)
	f.Inventory.Produce([]inventory.Stack{{Resource: "FLOUR", Quantity: 4}})
	require.NoError(t, f.SetRecipe("BAKE_BREAD"))
	f.IsProducing = true // mid-cycle on a 1-tick recipe
	fix.facilityRepo.add(f)

	response, err := fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: true})
	require.NoError(t, err)

	result := response.(*commands.RunTickResult)
	assert.Equal(t, 1, result.FacilitiesAdvanced)

	baked, err := fix.facilityRepo.GetByID(context.Background(), "bakery-1")
	require.NoError(t, err)
	assert.Equal(t, uint(2), baked.Inventory.Quantity("BREAD"))
}

func TestRunTick_BrokenFacilityDoesNotAbortBatch(t *testing.T) {
	fix := newFixture(t)

	broken, err := facility.New("a-broken", "company-1", facility.KindProduction, 100)
	require.NoError(t, err)
	broken.ActiveRecipeID = "DELETED_RECIPE"
	broken.IsProducing = true
	fix.facilityRepo.add(broken)

	healthy, err := facility.New("b-healthy", "company-1", facility.KindProduction, 100)
	require.NoError(t, err)
	healthy.Inventory.Produce([]inventory.Stack{{Resource: "FLOUR", Quantity: 4}})
	require.NoError(t, healthy.SetRecipe("BAKE_BREAD"))
	healthy.IsProducing = true
	fix.facilityRepo.add(healthy)

	response, err := fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: true})
	require.NoError(t, err)

	result := response.(*commands.RunTickResult)
	assert.Equal(t, uint64(1), result.Clock.Tick)
	assert.Equal(t, 1, result.FacilitiesAdvanced, "healthy facility still advanced")
}

func TestRunTick_FacilityPersistenceFailureDoesNotBlockClockCommit(t *testing.T) {
	fix := newFixture(t)

	f, err := facility.New("bakery-1", "company-1", facility.KindProduction, 100)
	require.NoError(t, err)
	f.Inventory.Produce([]inventory.Stack{{Resource: "FLOUR", Quantity: 4}})
	require.NoError(t, f.SetRecipe("BAKE_BREAD"))
	f.IsProducing = true
	fix.facilityRepo.add(f)
	fix.facilityRepo.saveErrFor["bakery-1"] = errors.New("disk full")

	response, err := fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: true})
	require.NoError(t, err)

	result := response.(*commands.RunTickResult)
	assert.Equal(t, uint64(1), result.Clock.Tick)
	assert.Equal(t, 0, result.FacilitiesAdvanced, "unpersisted completion is not counted")
	assert.Equal(t, 1, fix.clockRepo.saves)
}

func TestRunTick_ClockPersistenceFailureIsFatal(t *testing.T) {
	fix := newFixture(t)
	fix.clockRepo.saveErr = errors.New("connection lost")

	_, err := fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: true})

	var fatal *shared.ClockPersistenceError
	require.ErrorAs(t, err, &fatal)

	// Guard released on the error path: the next trigger works.
	fix.clockRepo.saveErr = nil
	_, err = fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: true})
	require.NoError(t, err)
}

func TestRunTick_CalendarWrapsThroughOrchestrator(t *testing.T) {
	fix := newFixture(t)
	cfg := calendar.DefaultConfig()
	fix.clockRepo.clock.Day = cfg.DaysPerMonth
	fix.clockRepo.clock.Month = cfg.MonthsPerYear

	response, err := fix.handler.Handle(context.Background(), commands.RunTickCommand{Manual: true})
	require.NoError(t, err)

	result := response.(*commands.RunTickResult)
	assert.Equal(t, 1, result.Clock.Day)
	assert.Equal(t, 1, result.Clock.Month)
	assert.Equal(t, 2, result.Clock.Year)
}
