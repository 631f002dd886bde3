// Package facility models production facilities and the per-tick
// automaton that drives one production cycle.
package facility

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tycoonsim/tycoon-go/internal/domain/inventory"
	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
)

// Kind distinguishes facility variants. Only production facilities are
// touched by the tick automaton; warehouses and retail outlets carry an
// inventory but no production state.
type Kind string

const (
	KindProduction Kind = "production"
	KindWarehouse  Kind = "warehouse"
	KindRetail     Kind = "retail"
)

// Valid reports whether the kind is one of the known variants.
func (k Kind) Valid() bool {
	switch k {
	case KindProduction, KindWarehouse, KindRetail:
		return true
	}
	return false
}

// Facility is an independently-owned production unit. It is mutated
// only by the automaton during a tick, or by explicit user commands
// between ticks; never both concurrently.
type Facility struct {
	ID               string
	OwnerID          string
	Kind             Kind
	Inventory        *inventory.Inventory
	ActiveRecipeID   string // empty means no recipe assigned
	AllowedRecipeIDs []string
	ProgressTicks    uint
	BaseEffectivity  float64
	Effectivity      float64
	IsProducing      bool
}

// New creates an idle facility with an empty inventory. An empty id
// gets a generated one.
func New(id, ownerID string, kind Kind, capacity uint) (*Facility, error) {
	if !kind.Valid() {
		return nil, shared.NewValidationError("kind", fmt.Sprintf("unknown facility kind %q", kind))
	}
	if ownerID == "" {
		return nil, shared.NewValidationError("ownerId", "owner id cannot be empty")
	}
	if id == "" {
		id = GenerateID(kind)
	}

	return &Facility{
		ID:              id,
		OwnerID:         ownerID,
		Kind:            kind,
		Inventory:       inventory.New(capacity),
		BaseEffectivity: 100,
		Effectivity:     100,
	}, nil
}

// GenerateID creates a readable facility id: {kind}-{8charHexUUID}.
func GenerateID(kind Kind) string {
	short := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s-%s", kind, short)
}

// SetRecipe assigns a recipe between ticks. Any in-flight cycle is
// abandoned: production stops and progress resets.
func (f *Facility) SetRecipe(recipeID string) error {
	if f.Kind != KindProduction {
		return shared.NewValidationError("kind", fmt.Sprintf("facility %s is not a production facility", f.ID))
	}
	if recipeID != "" && !f.IsRecipeAllowed(recipeID) {
		return shared.NewRecipeNotAllowedError(f.ID, recipeID)
	}

	f.ActiveRecipeID = recipeID
	f.IsProducing = false
	f.ProgressTicks = 0
	return nil
}

// IsRecipeAllowed checks the facility's allowed-recipe list. An empty
// list allows any recipe.
func (f *Facility) IsRecipeAllowed(recipeID string) bool {
	if len(f.AllowedRecipeIDs) == 0 {
		return true
	}
	for _, allowed := range f.AllowedRecipeIDs {
		if allowed == recipeID {
			return true
		}
	}
	return false
}

// StopProduction halts the current cycle. Progress is zeroed, never
// carried: the consumed inputs of the abandoned cycle are lost.
func (f *Facility) StopProduction() {
	f.IsProducing = false
	f.ProgressTicks = 0
}

// RecomputeEffectivity refreshes the effective output multiplier from
// the base value and an optional capping modifier from the owning
// company. The result is clamped to [0, 100].
func (f *Facility) RecomputeEffectivity(parentCap *float64) {
	effectivity := f.BaseEffectivity
	if parentCap != nil {
		effectivity = f.BaseEffectivity * (*parentCap) / 100
	}
	if effectivity < 0 {
		effectivity = 0
	}
	if effectivity > 100 {
		effectivity = 100
	}
	f.Effectivity = effectivity
}

func (f *Facility) String() string {
	state := "idle"
	if f.IsProducing {
		state = fmt.Sprintf("producing %s (%d ticks)", f.ActiveRecipeID, f.ProgressTicks)
	}
	return fmt.Sprintf("Facility(%s, %s, %s)", f.ID, f.Kind, state)
}
