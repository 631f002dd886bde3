// Package recipe defines production recipes and the immutable registry
// they are served from.
package recipe

import (
	"fmt"

	"github.com/tycoonsim/tycoon-go/internal/domain/inventory"
	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
)

// Recipe is an immutable transformation rule: consume the inputs, wait
// ProcessingTicks ticks, emit the outputs. Recipes are never mutated
// after load; facilities reference them by id only.
type Recipe struct {
	ID              string
	Name            string
	Inputs          []inventory.Stack
	Outputs         []inventory.Stack
	ProcessingTicks uint
}

// New validates and creates a recipe.
func New(id, name string, inputs, outputs []inventory.Stack, processingTicks uint) (*Recipe, error) {
	if id == "" {
		return nil, shared.NewInvalidRecipeError("recipe id cannot be empty")
	}
	if processingTicks < 1 {
		return nil, shared.NewInvalidRecipeError(fmt.Sprintf("recipe %s: processing ticks must be >= 1", id))
	}
	if len(outputs) == 0 {
		return nil, shared.NewInvalidRecipeError(fmt.Sprintf("recipe %s: must have at least one output", id))
	}
	for _, in := range inputs {
		if in.Resource == "" || in.Quantity == 0 {
			return nil, shared.NewInvalidRecipeError(fmt.Sprintf("recipe %s: invalid input %q x%d", id, in.Resource, in.Quantity))
		}
	}
	for _, out := range outputs {
		if out.Resource == "" || out.Quantity == 0 {
			return nil, shared.NewInvalidRecipeError(fmt.Sprintf("recipe %s: invalid output %q x%d", id, out.Resource, out.Quantity))
		}
	}

	return &Recipe{
		ID:              id,
		Name:            name,
		Inputs:          inputs,
		Outputs:         outputs,
		ProcessingTicks: processingTicks,
	}, nil
}

func (r *Recipe) String() string {
	return fmt.Sprintf("Recipe(%s, %d inputs -> %d outputs, %d ticks)", r.ID, len(r.Inputs), len(r.Outputs), r.ProcessingTicks)
}
