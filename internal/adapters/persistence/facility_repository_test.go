package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tycoonsim/tycoon-go/internal/adapters/persistence"
	"github.com/tycoonsim/tycoon-go/internal/domain/facility"
	"github.com/tycoonsim/tycoon-go/internal/domain/inventory"
	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
	"github.com/tycoonsim/tycoon-go/test/helpers"
)

func newFacility(t *testing.T, id string, kind facility.Kind) *facility.Facility {
	t.Helper()
	f, err := facility.New(id, "owner-1", kind, 100)
	require.NoError(t, err)
	return f
}

func TestFacilityRepository_SaveAndGetRoundTrip(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewFacilityRepository(db, nil)

	f := newFacility(t, "production-aa11bb22", facility.KindProduction)
	f.AllowedRecipeIDs = []string{"iron-smelting", "steel-casting"}
	f.ActiveRecipeID = "iron-smelting"
	f.IsProducing = true
	f.ProgressTicks = 2
	f.Effectivity = 85
	_, discarded := f.Inventory.Produce([]inventory.Stack{
		{Resource: "iron_ore", Quantity: 30},
		{Resource: "coal", Quantity: 10},
	})
	require.Empty(t, discarded)

	require.NoError(t, repo.Save(context.Background(), f))

	loaded, err := repo.GetByID(context.Background(), "production-aa11bb22")
	require.NoError(t, err)

	assert.Equal(t, f.ID, loaded.ID)
	assert.Equal(t, f.OwnerID, loaded.OwnerID)
	assert.Equal(t, f.Kind, loaded.Kind)
	assert.Equal(t, f.ActiveRecipeID, loaded.ActiveRecipeID)
	assert.Equal(t, f.AllowedRecipeIDs, loaded.AllowedRecipeIDs)
	assert.True(t, loaded.IsProducing)
	assert.Equal(t, uint(2), loaded.ProgressTicks)
	assert.Equal(t, float64(85), loaded.Effectivity)
	assert.Equal(t, uint(100), loaded.Inventory.Capacity())
	assert.Equal(t, uint(40), loaded.Inventory.Usage())
	assert.Equal(t, uint(30), loaded.Inventory.Quantity("iron_ore"))
	assert.Equal(t, uint(10), loaded.Inventory.Quantity("coal"))
}

func TestFacilityRepository_GetByIDNotFound(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewFacilityRepository(db, nil)

	_, err := repo.GetByID(context.Background(), "production-unknown")

	var notFound *shared.FacilityNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "production-unknown", notFound.FacilityID)
}

func TestFacilityRepository_ListProductionFiltersAndOrders(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewFacilityRepository(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newFacility(t, "production-cc", facility.KindProduction)))
	require.NoError(t, repo.Save(ctx, newFacility(t, "warehouse-aa", facility.KindWarehouse)))
	require.NoError(t, repo.Save(ctx, newFacility(t, "production-aa", facility.KindProduction)))
	require.NoError(t, repo.Save(ctx, newFacility(t, "production-bb", facility.KindProduction)))

	listed, err := repo.ListProduction(ctx)

	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "production-aa", listed[0].ID)
	assert.Equal(t, "production-bb", listed[1].ID)
	assert.Equal(t, "production-cc", listed[2].ID)
}

func TestFacilityRepository_ListAllIncludesEveryKind(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewFacilityRepository(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newFacility(t, "production-aa", facility.KindProduction)))
	require.NoError(t, repo.Save(ctx, newFacility(t, "retail-aa", facility.KindRetail)))
	require.NoError(t, repo.Save(ctx, newFacility(t, "warehouse-aa", facility.KindWarehouse)))

	listed, err := repo.ListAll(ctx)

	require.NoError(t, err)
	assert.Len(t, listed, 3)
}

type recordingSkips struct {
	reasons []string
}

func (r *recordingSkips) RecordFacilitySkipped(reason string) {
	r.reasons = append(r.reasons, reason)
}

func TestFacilityRepository_ListSkipsRowsThatFailRestore(t *testing.T) {
	db := helpers.NewTestDB(t)
	skips := &recordingSkips{}
	repo := persistence.NewFacilityRepository(db, skips)
	ctx := context.Background()

	// Seed a row whose item sum exceeds its capacity, bypassing the
	// repository the way external corruption would.
	require.NoError(t, db.Create(&persistence.FacilityModel{
		ID:             "production-corrupt",
		OwnerID:        "owner-1",
		Kind:           string(facility.KindProduction),
		InventoryItems: `{"iron_ore":50}`,
		Capacity:       10,
		Usage:          50,
	}).Error)
	require.NoError(t, repo.Save(ctx, newFacility(t, "production-healthy", facility.KindProduction)))

	listed, err := repo.ListProduction(ctx)

	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "production-healthy", listed[0].ID)
	assert.Equal(t, []string{"restore"}, skips.reasons)

	// A direct lookup still surfaces the corruption.
	_, err = repo.GetByID(ctx, "production-corrupt")
	var invariant *shared.InventoryInvariantError
	require.ErrorAs(t, err, &invariant)
}

func TestFacilityRepository_SaveUpdatesExistingRow(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewFacilityRepository(db, nil)
	ctx := context.Background()

	f := newFacility(t, "production-aa", facility.KindProduction)
	require.NoError(t, repo.Save(ctx, f))

	f.ActiveRecipeID = "iron-smelting"
	f.IsProducing = true
	require.NoError(t, repo.Save(ctx, f))

	loaded, err := repo.GetByID(ctx, "production-aa")
	require.NoError(t, err)
	assert.Equal(t, "iron-smelting", loaded.ActiveRecipeID)
	assert.True(t, loaded.IsProducing)

	listed, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
