package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "tycoon"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "tycoon"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "tycoon.db"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = "localhost:8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.ManualTickRate == 0 {
		cfg.Server.ManualTickRate = 1
	}
	if cfg.Server.ManualTickBurst == 0 {
		cfg.Server.ManualTickBurst = 3
	}

	// Scheduler defaults
	if cfg.Scheduler.PollInterval == 0 {
		cfg.Scheduler.PollInterval = 30 * time.Second
	}

	// Simulation defaults
	if cfg.Simulation.DaysPerMonth == 0 {
		cfg.Simulation.DaysPerMonth = 24
	}
	if cfg.Simulation.MonthsPerYear == 0 {
		cfg.Simulation.MonthsPerYear = 7
	}
	if cfg.Simulation.StartYear == 0 {
		cfg.Simulation.StartYear = 1
	}
	if cfg.Simulation.GuardTTL == 0 {
		cfg.Simulation.GuardTTL = 2 * time.Minute
	}
	if cfg.Simulation.RecipeCatalogPath == "" {
		cfg.Simulation.RecipeCatalogPath = "configs/recipes.yaml"
	}
	if cfg.Simulation.PIDFile == "" {
		cfg.Simulation.PIDFile = "/tmp/tycoon-daemon.pid"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
