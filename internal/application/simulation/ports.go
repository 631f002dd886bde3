// Package simulation hosts the tick orchestrator and the user commands
// that mutate facilities between ticks.
package simulation

import (
	"context"
	"time"

	"github.com/tycoonsim/tycoon-go/internal/domain/calendar"
	"github.com/tycoonsim/tycoon-go/internal/domain/facility"
)

// ClockRepository persists the single global simulation clock.
type ClockRepository interface {
	// Get loads the clock, creating the initial one if none exists.
	Get(ctx context.Context) (*calendar.Clock, error)

	// Save persists the clock under its well-known key.
	Save(ctx context.Context, clock *calendar.Clock) error
}

// FacilityRepository persists facilities.
type FacilityRepository interface {
	GetByID(ctx context.Context, facilityID string) (*facility.Facility, error)

	// ListProduction returns all production-kind facilities ordered by
	// ascending id. The stable order keeps tick outcomes reproducible.
	ListProduction(ctx context.Context) ([]*facility.Facility, error)

	ListAll(ctx context.Context) ([]*facility.Facility, error)
	Save(ctx context.Context, f *facility.Facility) error
}

// TickGuard is the cross-process single-flight lock for tick runs.
// Acquire is all-or-nothing; a held guard whose deadline has passed may
// be taken over, so a hung run cannot block advancement forever.
type TickGuard interface {
	// Acquire tries to take the guard for the given holder with an
	// expiry deadline. Returns false if the guard is validly held by
	// someone else.
	Acquire(ctx context.Context, holder string, ttl time.Duration) (bool, error)

	// Release frees the guard if the holder still owns it.
	Release(ctx context.Context, holder string) error
}

// EffectivitySource resolves a company's capping effectivity modifier.
// Returns nil when the company imposes no cap.
type EffectivitySource interface {
	ParentCap(ctx context.Context, ownerID string) (*float64, error)
}

// TickSummary is broadcast to observers after a successful run.
type TickSummary struct {
	Tick               uint64    `json:"tick"`
	Day                int       `json:"day"`
	Month              int       `json:"month"`
	Year               int       `json:"year"`
	FacilitiesAdvanced int       `json:"facilitiesAdvanced"`
	Manual             bool      `json:"manual"`
	CompletedAt        time.Time `json:"completedAt"`
}

// TickNotifier propagates tick summaries to connected observers. The
// sync bridge is a collaborator: notification failures never fail the
// run.
type TickNotifier interface {
	PublishTickSummary(summary TickSummary)
}

// TickMetrics records tick instrumentation.
type TickMetrics interface {
	RecordTickRun(manual bool, duration time.Duration, facilitiesAdvanced int)
	RecordBusyRejection()
	RecordFacilitySkipped(reason string)
}

// NopNotifier discards summaries; used when no sync bridge is wired.
type NopNotifier struct{}

func (NopNotifier) PublishTickSummary(TickSummary) {}

// NopMetrics discards instrumentation; used when metrics are disabled.
type NopMetrics struct{}

func (NopMetrics) RecordTickRun(bool, time.Duration, int) {}
func (NopMetrics) RecordBusyRejection()                   {}
func (NopMetrics) RecordFacilitySkipped(string)           {}

// NoEffectivityCap is an EffectivitySource for deployments without
// company modifiers.
type NoEffectivityCap struct{}

func (NoEffectivityCap) ParentCap(context.Context, string) (*float64, error) {
	return nil, nil
}
