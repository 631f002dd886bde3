package recipe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tycoonsim/tycoon-go/internal/domain/inventory"
)

// catalogFile is the on-disk YAML shape of the recipe catalog.
type catalogFile struct {
	Recipes []catalogRecipe `yaml:"recipes"`
}

type catalogRecipe struct {
	ID              string         `yaml:"id"`
	Name            string         `yaml:"name"`
	Inputs          []catalogStack `yaml:"inputs"`
	Outputs         []catalogStack `yaml:"outputs"`
	ProcessingTicks uint           `yaml:"processing_ticks"`
}

type catalogStack struct {
	Resource string `yaml:"resource"`
	Quantity uint   `yaml:"quantity"`
}

// LoadCatalog reads and validates a recipe catalog from a YAML file.
func LoadCatalog(path string) ([]*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses recipe catalog YAML.
func ParseCatalog(data []byte) ([]*Recipe, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse recipe catalog: %w", err)
	}

	recipes := make([]*Recipe, 0, len(file.Recipes))
	seen := make(map[string]bool, len(file.Recipes))
	for _, entry := range file.Recipes {
		if seen[entry.ID] {
			return nil, fmt.Errorf("duplicate recipe id %q in catalog", entry.ID)
		}
		seen[entry.ID] = true

		recipe, err := New(entry.ID, entry.Name, toStacks(entry.Inputs), toStacks(entry.Outputs), entry.ProcessingTicks)
		if err != nil {
			return nil, fmt.Errorf("invalid catalog entry: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

func toStacks(entries []catalogStack) []inventory.Stack {
	if len(entries) == 0 {
		return nil
	}
	stacks := make([]inventory.Stack, len(entries))
	for i, e := range entries {
		stacks[i] = inventory.Stack{Resource: e.Resource, Quantity: e.Quantity}
	}
	return stacks
}
