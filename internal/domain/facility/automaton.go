package facility

import (
	"math"

	"github.com/tycoonsim/tycoon-go/internal/domain/inventory"
	"github.com/tycoonsim/tycoon-go/internal/domain/recipe"
	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
)

// RecipeSource resolves recipe ids. Satisfied by recipe.Registry.
type RecipeSource interface {
	Lookup(recipeID string) (*recipe.Recipe, error)
}

// StepResult reports what the automaton did to a facility during one
// tick.
type StepResult struct {
	// Started is true when a new production cycle began this tick
	// (inputs consumed, state moved to producing).
	Started bool

	// Completed is true when a cycle finished this tick and its outputs
	// were emitted.
	Completed bool

	// Stopped is true when a completed cycle could not be followed by
	// another because inputs ran short; the facility is idle again.
	Stopped bool

	// Discarded lists output units dropped because the inventory was
	// full. Reported for logging only; the loss is not tracked.
	Discarded []inventory.Stack
}

// Step advances the facility's production automaton by one tick.
//
// Progress accrues one whole tick per call regardless of effectivity;
// effectivity scales only the output quantity of a completed cycle.
// When a cycle completes but the next one cannot start, progress is
// zeroed rather than carried.
//
// Errors (unknown recipe, corrupted inventory) mean the facility must
// be skipped for this tick; they never abort the batch.
func (f *Facility) Step(recipes RecipeSource) (StepResult, error) {
	var result StepResult

	if f.Kind != KindProduction {
		return result, nil
	}
	if err := f.Inventory.CheckInvariant(); err != nil {
		return result, err
	}

	// No recipe assigned: try to auto-select from the allowed list.
	// Finding nothing is a normal idle outcome, not an error.
	if f.ActiveRecipeID == "" {
		for _, candidateID := range f.AllowedRecipeIDs {
			candidate, err := recipes.Lookup(candidateID)
			if err != nil {
				continue
			}
			if ok, _ := f.Inventory.HasSufficient(candidate.Inputs); !ok {
				continue
			}
			if err := f.Inventory.Consume(candidate.Inputs); err != nil {
				return result, err
			}
			f.ActiveRecipeID = candidate.ID
			f.IsProducing = true
			f.ProgressTicks = 0
			result.Started = true
			return result, nil
		}
		return result, nil
	}

	active, err := recipes.Lookup(f.ActiveRecipeID)
	if err != nil {
		return result, err
	}

	// Idle with an assigned recipe: start a cycle if inputs allow.
	if !f.IsProducing {
		if ok, _ := f.Inventory.HasSufficient(active.Inputs); !ok {
			return result, nil
		}
		if err := f.Inventory.Consume(active.Inputs); err != nil {
			return result, err
		}
		f.IsProducing = true
		f.ProgressTicks = 0
		result.Started = true
		return result, nil
	}

	f.ProgressTicks++
	if f.ProgressTicks < active.ProcessingTicks {
		return result, nil
	}

	// Cycle complete: emit outputs scaled by effectivity, then try to
	// roll straight into the next cycle, carrying any overflow ticks.
	overflow := f.ProgressTicks - active.ProcessingTicks
	outputs := f.effectiveOutputs(active)
	_, discarded := f.Inventory.Produce(outputs)
	result.Completed = true
	result.Discarded = discarded

	if ok, _ := f.Inventory.HasSufficient(active.Inputs); ok {
		if err := f.Inventory.Consume(active.Inputs); err != nil {
			return result, err
		}
		f.ProgressTicks = overflow
		return result, nil
	}

	f.IsProducing = false
	f.ProgressTicks = 0
	result.Stopped = true
	return result, nil
}

// StartProduction begins a cycle immediately instead of waiting for
// the next tick. Requires an assigned recipe and sufficient inputs;
// already-producing facilities are left untouched.
func (f *Facility) StartProduction(recipes RecipeSource) error {
	if f.ActiveRecipeID == "" {
		return shared.NewInvalidRecipeError("no recipe assigned")
	}
	if f.IsProducing {
		return nil
	}

	active, err := recipes.Lookup(f.ActiveRecipeID)
	if err != nil {
		return err
	}

	if ok, shortages := f.Inventory.HasSufficient(active.Inputs); !ok {
		s := shortages[0]
		return shared.NewInsufficientInputError(s.Resource, s.Required, s.Available)
	}
	if err := f.Inventory.Consume(active.Inputs); err != nil {
		return err
	}

	f.IsProducing = true
	f.ProgressTicks = 0
	return nil
}

// effectiveOutputs scales the recipe outputs by the facility's current
// effectivity, flooring each quantity.
func (f *Facility) effectiveOutputs(r *recipe.Recipe) []inventory.Stack {
	outputs := make([]inventory.Stack, 0, len(r.Outputs))
	for _, out := range r.Outputs {
		scaled := uint(math.Floor(float64(out.Quantity) * f.Effectivity / 100))
		outputs = append(outputs, inventory.Stack{Resource: out.Resource, Quantity: scaled})
	}
	return outputs
}
