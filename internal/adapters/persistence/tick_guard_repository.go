package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tycoonsim/tycoon-go/internal/domain/shared"
)

// guardRowID is the id of the single guard row.
const guardRowID = 1

// TickGuardGORM is the persisted single-flight guard. Acquisition is a
// conditional update on a single row, so it stays correct across
// multiple daemon instances sharing one database. An expiry deadline
// lets a crashed holder be evicted instead of blocking advancement
// forever.
type TickGuardGORM struct {
	db        *gorm.DB
	wallClock shared.Clock
}

// NewTickGuard creates the guard over the given database.
func NewTickGuard(db *gorm.DB, wallClock shared.Clock) *TickGuardGORM {
	return &TickGuardGORM{db: db, wallClock: wallClock}
}

// Acquire tries to claim the guard row for the holder. The claim
// succeeds when the row is free, already owned by this holder, or held
// past its expiry deadline.
func (g *TickGuardGORM) Acquire(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	now := g.wallClock.Now()

	if err := g.ensureRow(ctx); err != nil {
		return false, err
	}

	result := g.db.WithContext(ctx).
		Model(&TickGuardModel{}).
		Where("id = ? AND (holder = '' OR holder = ? OR expires_at < ?)", guardRowID, holder, now).
		Updates(map[string]interface{}{
			"holder":     holder,
			"expires_at": now.Add(ttl),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to acquire tick guard: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// Release frees the guard if the holder still owns it. Releasing a
// guard that expired and was taken over is a no-op.
func (g *TickGuardGORM) Release(ctx context.Context, holder string) error {
	result := g.db.WithContext(ctx).
		Model(&TickGuardModel{}).
		Where("id = ? AND holder = ?", guardRowID, holder).
		Updates(map[string]interface{}{
			"holder":     "",
			"expires_at": time.Time{},
		})
	if result.Error != nil {
		return fmt.Errorf("failed to release tick guard: %w", result.Error)
	}
	return nil
}

// ensureRow creates the guard row on first use.
func (g *TickGuardGORM) ensureRow(ctx context.Context) error {
	var model TickGuardModel
	err := g.db.WithContext(ctx).Where("id = ?", guardRowID).First(&model).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to read tick guard: %w", err)
	}

	create := g.db.WithContext(ctx).Create(&TickGuardModel{ID: guardRowID})
	if create.Error != nil {
		// A concurrent creator is fine; the conditional update decides.
		var existing TickGuardModel
		if lookupErr := g.db.WithContext(ctx).Where("id = ?", guardRowID).First(&existing).Error; lookupErr == nil {
			return nil
		}
		return fmt.Errorf("failed to create tick guard row: %w", create.Error)
	}
	return nil
}
