package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tycoonsim/tycoon-go/internal/application/common"
	"github.com/tycoonsim/tycoon-go/internal/domain/facility"
	"github.com/tycoonsim/tycoon-go/internal/domain/inventory"
	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
)

// SkipRecorder counts facility rows dropped during listing. Satisfied
// by the tick metrics collector.
type SkipRecorder interface {
	RecordFacilitySkipped(reason string)
}

// FacilityRepositoryGORM persists facilities using GORM.
type FacilityRepositoryGORM struct {
	db    *gorm.DB
	skips SkipRecorder
}

// NewFacilityRepository creates a GORM-based facility repository. A nil
// recorder drops the skip counts.
func NewFacilityRepository(db *gorm.DB, skips SkipRecorder) *FacilityRepositoryGORM {
	if skips == nil {
		skips = nopSkipRecorder{}
	}
	return &FacilityRepositoryGORM{db: db, skips: skips}
}

type nopSkipRecorder struct{}

func (nopSkipRecorder) RecordFacilitySkipped(string) {}

// GetByID retrieves a single facility.
func (r *FacilityRepositoryGORM) GetByID(ctx context.Context, facilityID string) (*facility.Facility, error) {
	var model FacilityModel

	err := r.db.WithContext(ctx).Where("id = ?", facilityID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewFacilityNotFoundError(facilityID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get facility: %w", err)
	}

	return toDomain(&model)
}

// ListProduction returns all production facilities ordered by ascending
// id, the deterministic order the tick orchestrator iterates in.
func (r *FacilityRepositoryGORM) ListProduction(ctx context.Context) ([]*facility.Facility, error) {
	return r.list(ctx, string(facility.KindProduction))
}

// ListAll returns every facility ordered by ascending id.
func (r *FacilityRepositoryGORM) ListAll(ctx context.Context) ([]*facility.Facility, error) {
	return r.list(ctx, "")
}

func (r *FacilityRepositoryGORM) list(ctx context.Context, kind string) ([]*facility.Facility, error) {
	var models []*FacilityModel

	query := r.db.WithContext(ctx).Order("id ASC")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}

	// A row that no longer restores must not take the whole batch down
	// with it: the tick orchestrator keeps advancing the healthy
	// facilities while the corrupt one is logged and skipped.
	logger := common.LoggerFromContext(ctx)
	facilities := make([]*facility.Facility, 0, len(models))
	for _, model := range models {
		f, err := toDomain(model)
		if err != nil {
			r.skips.RecordFacilitySkipped("restore")
			logger.Error("failed to restore facility, skipping", "facility", model.ID, "error", err)
			continue
		}
		facilities = append(facilities, f)
	}
	return facilities, nil
}

// Save upserts a facility.
func (r *FacilityRepositoryGORM) Save(ctx context.Context, f *facility.Facility) error {
	model, err := toModel(f)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save facility %s: %w", f.ID, err)
	}
	return nil
}

func toModel(f *facility.Facility) (*FacilityModel, error) {
	itemsJSON, err := json.Marshal(f.Inventory.Items())
	if err != nil {
		return nil, fmt.Errorf("failed to serialize inventory for facility %s: %w", f.ID, err)
	}

	allowedJSON, err := json.Marshal(f.AllowedRecipeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize allowed recipes for facility %s: %w", f.ID, err)
	}

	return &FacilityModel{
		ID:              f.ID,
		OwnerID:         f.OwnerID,
		Kind:            string(f.Kind),
		InventoryItems:  string(itemsJSON),
		Capacity:        f.Inventory.Capacity(),
		Usage:           f.Inventory.Usage(),
		ActiveRecipeID:  f.ActiveRecipeID,
		AllowedRecipes:  string(allowedJSON),
		ProgressTicks:   f.ProgressTicks,
		BaseEffectivity: f.BaseEffectivity,
		Effectivity:     f.Effectivity,
		IsProducing:     f.IsProducing,
	}, nil
}

func toDomain(model *FacilityModel) (*facility.Facility, error) {
	items := make(map[string]uint)
	if model.InventoryItems != "" {
		if err := json.Unmarshal([]byte(model.InventoryItems), &items); err != nil {
			return nil, fmt.Errorf("failed to parse inventory for facility %s: %w", model.ID, err)
		}
	}

	// Usage is recomputed from the item sum on restore; the stored
	// column is write-only denormalization for inspection queries.
	// Restore rejects an item sum that exceeds capacity.
	inv, err := inventory.Restore(model.Capacity, items)
	if err != nil {
		return nil, fmt.Errorf("facility %s: %w", model.ID, err)
	}

	var allowed []string
	if model.AllowedRecipes != "" {
		if err := json.Unmarshal([]byte(model.AllowedRecipes), &allowed); err != nil {
			return nil, fmt.Errorf("failed to parse allowed recipes for facility %s: %w", model.ID, err)
		}
	}

	return &facility.Facility{
		ID:               model.ID,
		OwnerID:          model.OwnerID,
		Kind:             facility.Kind(model.Kind),
		Inventory:        inv,
		ActiveRecipeID:   model.ActiveRecipeID,
		AllowedRecipeIDs: allowed,
		ProgressTicks:    model.ProgressTicks,
		BaseEffectivity:  model.BaseEffectivity,
		Effectivity:      model.Effectivity,
		IsProducing:      model.IsProducing,
	}, nil
}
