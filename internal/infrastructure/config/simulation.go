package config

import "time"

// SimulationConfig holds simulation rules configuration
type SimulationConfig struct {
	// Calendar period lengths
	DaysPerMonth  int `mapstructure:"days_per_month" validate:"min=1"`
	MonthsPerYear int `mapstructure:"months_per_year" validate:"min=1"`

	// Year the clock starts in when the database is empty
	StartYear int `mapstructure:"start_year" validate:"min=1"`

	// Expiry deadline on the persisted tick guard. A run that exceeds
	// it loses the guard to the next trigger.
	GuardTTL time.Duration `mapstructure:"guard_ttl"`

	// Path to the recipe catalog YAML file
	RecipeCatalogPath string `mapstructure:"recipe_catalog_path" validate:"required"`

	// PID file for daemon single-instance enforcement
	PIDFile string `mapstructure:"pid_file"`
}
