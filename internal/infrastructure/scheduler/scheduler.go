// Package scheduler drives automatic tick advancement off wall-clock
// time.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tycoonsim/tycoon-go/internal/application/common"
	"github.com/tycoonsim/tycoon-go/internal/application/simulation/commands"
	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
)

// Scheduler periodically fires scheduled tick triggers through the
// mediator. Due-ness is decided by the simulation clock itself, so the
// poll interval only affects trigger latency, never tick frequency.
type Scheduler struct {
	mediator     common.Mediator
	logger       *slog.Logger
	pollInterval time.Duration
}

// New creates a scheduler.
func New(mediator common.Mediator, logger *slog.Logger, pollInterval time.Duration) *Scheduler {
	return &Scheduler{
		mediator:     mediator,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// Run blocks, firing scheduled triggers until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", "pollInterval", s.pollInterval)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context) {
	ctx = common.WithLogger(ctx, s.logger)

	response, err := s.mediator.Send(ctx, commands.RunTickCommand{Manual: false})
	if err != nil {
		// A concurrent run holding the guard is the expected outcome of
		// overlapping triggers, not a failure.
		var busy *shared.TickInProgressError
		if errors.As(err, &busy) {
			s.logger.Debug("scheduled trigger skipped, tick in progress")
			return
		}
		s.logger.Error("scheduled tick failed", "error", err)
		return
	}

	if result, ok := response.(*commands.RunTickResult); ok && result.NotDue {
		s.logger.Debug("scheduled tick not yet due", "secondsRemaining", result.SecondsRemaining)
	}
}
