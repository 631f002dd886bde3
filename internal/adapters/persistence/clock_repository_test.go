package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tycoonsim/tycoon-go/internal/adapters/persistence"
	"github.com/tycoonsim/tycoon-go/internal/domain/calendar"
	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
	"github.com/tycoonsim/tycoon-go/test/helpers"
)

func TestClockRepository_CreatesInitialClockOnFirstGet(t *testing.T) {
	db := helpers.NewTestDB(t)
	now := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	wallClock := shared.NewFrozenClock(now)
	repo := persistence.NewClockRepository(db, wallClock, 2249)

	clock, err := repo.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint64(0), clock.Tick)
	assert.Equal(t, 1, clock.Day)
	assert.Equal(t, 1, clock.Month)
	assert.Equal(t, 2249, clock.Year)
	assert.Equal(t, now, clock.LastAdvanceTime)
	assert.Equal(t, time.Date(2026, 1, 15, 11, 0, 0, 0, time.UTC), clock.NextScheduledTime)
}

func TestClockRepository_SaveAndGetRoundTrip(t *testing.T) {
	db := helpers.NewTestDB(t)
	wallClock := shared.NewFrozenClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	repo := persistence.NewClockRepository(db, wallClock, 2249)

	saved := &calendar.Clock{
		Tick:              1234,
		Day:               17,
		Month:             4,
		Year:              2251,
		LastAdvanceTime:   time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		NextScheduledTime: time.Date(2026, 1, 15, 11, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(context.Background(), saved))

	loaded, err := repo.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, saved.Tick, loaded.Tick)
	assert.Equal(t, saved.Day, loaded.Day)
	assert.Equal(t, saved.Month, loaded.Month)
	assert.Equal(t, saved.Year, loaded.Year)
	assert.True(t, saved.NextScheduledTime.Equal(loaded.NextScheduledTime))
}

func TestClockRepository_SaveOverwritesExistingRow(t *testing.T) {
	db := helpers.NewTestDB(t)
	wallClock := shared.NewFrozenClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	repo := persistence.NewClockRepository(db, wallClock, 2249)

	first, err := repo.Get(context.Background())
	require.NoError(t, err)

	updated := *first
	updated.Tick = first.Tick + 1
	updated.Day = 2
	require.NoError(t, repo.Save(context.Background(), &updated))

	loaded, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Tick+1, loaded.Tick)
	assert.Equal(t, 2, loaded.Day)
}
