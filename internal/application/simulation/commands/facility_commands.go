package commands

import (
	"context"
	"fmt"

	"github.com/tycoonsim/tycoon-go/internal/application/common"
	"github.com/tycoonsim/tycoon-go/internal/application/simulation"
	"github.com/tycoonsim/tycoon-go/internal/domain/facility"
)

// User commands run between ticks: the tick orchestrator is the only
// writer during a run, and these handlers the only writers outside one.

// CreateFacilityCommand registers a new facility.
type CreateFacilityCommand struct {
	OwnerID          string
	Kind             facility.Kind
	Capacity         uint
	AllowedRecipeIDs []string
}

// CreateFacilityHandler handles facility creation.
type CreateFacilityHandler struct {
	facilityRepo simulation.FacilityRepository
}

func NewCreateFacilityHandler(facilityRepo simulation.FacilityRepository) *CreateFacilityHandler {
	return &CreateFacilityHandler{facilityRepo: facilityRepo}
}

func (h *CreateFacilityHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(CreateFacilityCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type %T for CreateFacilityHandler", request)
	}

	f, err := facility.New("", cmd.OwnerID, cmd.Kind, cmd.Capacity)
	if err != nil {
		return nil, err
	}
	f.AllowedRecipeIDs = cmd.AllowedRecipeIDs

	if err := h.facilityRepo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to persist facility: %w", err)
	}

	common.LoggerFromContext(ctx).Info("facility created",
		"facility", f.ID, "owner", f.OwnerID, "kind", f.Kind)
	return f, nil
}

// SetRecipeCommand assigns (or clears, with an empty recipe id) the
// active recipe of a production facility. Any in-flight cycle stops.
type SetRecipeCommand struct {
	FacilityID string
	RecipeID   string
}

// SetRecipeHandler handles recipe assignment.
type SetRecipeHandler struct {
	facilityRepo simulation.FacilityRepository
	recipes      facility.RecipeSource
}

func NewSetRecipeHandler(facilityRepo simulation.FacilityRepository, recipes facility.RecipeSource) *SetRecipeHandler {
	return &SetRecipeHandler{facilityRepo: facilityRepo, recipes: recipes}
}

func (h *SetRecipeHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(SetRecipeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type %T for SetRecipeHandler", request)
	}

	f, err := h.facilityRepo.GetByID(ctx, cmd.FacilityID)
	if err != nil {
		return nil, err
	}

	if cmd.RecipeID != "" {
		if _, err := h.recipes.Lookup(cmd.RecipeID); err != nil {
			return nil, err
		}
	}
	if err := f.SetRecipe(cmd.RecipeID); err != nil {
		return nil, err
	}

	if err := h.facilityRepo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to persist facility: %w", err)
	}
	return f, nil
}

// StartProductionCommand begins a cycle immediately instead of waiting
// for the next tick to pick the facility up.
type StartProductionCommand struct {
	FacilityID string
}

// StartProductionHandler handles immediate production starts.
type StartProductionHandler struct {
	facilityRepo simulation.FacilityRepository
	recipes      facility.RecipeSource
}

func NewStartProductionHandler(facilityRepo simulation.FacilityRepository, recipes facility.RecipeSource) *StartProductionHandler {
	return &StartProductionHandler{facilityRepo: facilityRepo, recipes: recipes}
}

func (h *StartProductionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(StartProductionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type %T for StartProductionHandler", request)
	}

	f, err := h.facilityRepo.GetByID(ctx, cmd.FacilityID)
	if err != nil {
		return nil, err
	}

	if err := f.StartProduction(h.recipes); err != nil {
		return nil, err
	}

	if err := h.facilityRepo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to persist facility: %w", err)
	}

	common.LoggerFromContext(ctx).Info("production started",
		"facility", f.ID, "recipe", f.ActiveRecipeID)
	return f, nil
}

// StopProductionCommand halts the facility's current cycle. Progress is
// zeroed; consumed inputs of the abandoned cycle are lost.
type StopProductionCommand struct {
	FacilityID string
}

// StopProductionHandler handles production stops.
type StopProductionHandler struct {
	facilityRepo simulation.FacilityRepository
}

func NewStopProductionHandler(facilityRepo simulation.FacilityRepository) *StopProductionHandler {
	return &StopProductionHandler{facilityRepo: facilityRepo}
}

func (h *StopProductionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(StopProductionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type %T for StopProductionHandler", request)
	}

	f, err := h.facilityRepo.GetByID(ctx, cmd.FacilityID)
	if err != nil {
		return nil, err
	}

	f.StopProduction()

	if err := h.facilityRepo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to persist facility: %w", err)
	}

	common.LoggerFromContext(ctx).Info("production stopped", "facility", f.ID)
	return f, nil
}
