package config

import "time"

// ServerConfig holds the HTTP trigger surface configuration
type ServerConfig struct {
	// Listen address, e.g. "localhost:8080"
	Address string `mapstructure:"address" validate:"required"`

	// Request timeouts
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Rate limit for manual tick triggers (tokens per second + burst).
	// Scheduled triggers are not limited; they are already gated by the
	// clock's next scheduled time.
	ManualTickRate  float64 `mapstructure:"manual_tick_rate" validate:"min=0"`
	ManualTickBurst int     `mapstructure:"manual_tick_burst" validate:"min=0"`
}

// SchedulerConfig holds the automatic tick trigger configuration
type SchedulerConfig struct {
	// Enabled turns the background scheduler loop on
	Enabled bool `mapstructure:"enabled"`

	// Poll interval for checking whether a scheduled tick is due. The
	// clock itself decides due-ness; polling more often only reduces
	// trigger latency.
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	// Enabled turns on the prometheus registry and the /metrics endpoint
	Enabled bool `mapstructure:"enabled"`
}
