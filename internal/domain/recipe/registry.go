package recipe

import (
	"sort"
	"sync"

	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
)

// Registry is the read-only recipe lookup table. It is loaded once at
// startup and shared by reference; Reload atomically swaps the whole
// table so in-flight lookups never observe a partial load.
type Registry struct {
	mu      sync.RWMutex
	recipes map[string]*Recipe
}

// NewRegistry creates a registry over the given recipes.
func NewRegistry(recipes []*Recipe) *Registry {
	r := &Registry{}
	r.Reload(recipes)
	return r
}

// Lookup returns the recipe for the given id. Unknown ids return a
// RecipeNotFoundError; callers handle it per-facility, it never aborts
// a tick batch.
func (r *Registry) Lookup(recipeID string) (*Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recipe, ok := r.recipes[recipeID]
	if !ok {
		return nil, shared.NewRecipeNotFoundError(recipeID)
	}
	return recipe, nil
}

// Reload replaces the entire recipe table.
func (r *Registry) Reload(recipes []*Recipe) {
	table := make(map[string]*Recipe, len(recipes))
	for _, recipe := range recipes {
		table[recipe.ID] = recipe
	}

	r.mu.Lock()
	r.recipes = table
	r.mu.Unlock()
}

// IDs returns all recipe ids in ascending order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.recipes))
	for id := range r.recipes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of loaded recipes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.recipes)
}
