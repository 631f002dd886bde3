package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tycoonsim/tycoon-go/internal/domain/calendar"
	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
)

// clockKey is the well-known key of the single clock row.
const clockKey = "global"

// ClockRepositoryGORM persists the simulation clock using GORM.
type ClockRepositoryGORM struct {
	db        *gorm.DB
	wallClock shared.Clock
	startYear int
}

// NewClockRepository creates a GORM-based clock repository. startYear
// seeds the initial clock when no row exists yet.
func NewClockRepository(db *gorm.DB, wallClock shared.Clock, startYear int) *ClockRepositoryGORM {
	return &ClockRepositoryGORM{db: db, wallClock: wallClock, startYear: startYear}
}

// Get loads the clock, creating the initial one on first use.
func (r *ClockRepositoryGORM) Get(ctx context.Context) (*calendar.Clock, error) {
	var model ClockModel

	err := r.db.WithContext(ctx).Where("key = ?", clockKey).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		clock := calendar.NewClock(r.startYear, r.wallClock.Now())
		if err := r.Save(ctx, clock); err != nil {
			return nil, err
		}
		return clock, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load clock: %w", err)
	}

	return &calendar.Clock{
		Tick:              model.Tick,
		Day:               model.Day,
		Month:             model.Month,
		Year:              model.Year,
		LastAdvanceTime:   model.LastAdvanceTime,
		NextScheduledTime: model.NextScheduledTime,
	}, nil
}

// Save persists the clock under the well-known key.
func (r *ClockRepositoryGORM) Save(ctx context.Context, clock *calendar.Clock) error {
	model := ClockModel{
		Key:               clockKey,
		Tick:              clock.Tick,
		Day:               clock.Day,
		Month:             clock.Month,
		Year:              clock.Year,
		LastAdvanceTime:   clock.LastAdvanceTime,
		NextScheduledTime: clock.NextScheduledTime,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to save clock: %w", err)
	}
	return nil
}
