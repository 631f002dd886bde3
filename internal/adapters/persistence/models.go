package persistence

import "time"

// ClockModel persists the single global simulation clock. Exactly one
// row exists, stored under the well-known key.
type ClockModel struct {
	Key               string    `gorm:"column:key;primaryKey"`
	Tick              uint64    `gorm:"column:tick;not null"`
	Day               int       `gorm:"column:day;not null"`
	Month             int       `gorm:"column:month;not null"`
	Year              int       `gorm:"column:year;not null"`
	LastAdvanceTime   time.Time `gorm:"column:last_advance_time"`
	NextScheduledTime time.Time `gorm:"column:next_scheduled_time"`
}

// TableName overrides the GORM default
func (ClockModel) TableName() string {
	return "simulation_clock"
}

// FacilityModel persists one facility. Inventory items and the allowed
// recipe list are stored as JSON text (SQLite compatible).
type FacilityModel struct {
	ID              string  `gorm:"column:id;primaryKey"`
	OwnerID         string  `gorm:"column:owner_id;not null;index"`
	Kind            string  `gorm:"column:kind;not null;index"`
	InventoryItems  string  `gorm:"column:inventory_items;type:text"` // JSON map resource -> qty
	Capacity        uint    `gorm:"column:capacity;not null"`
	Usage           uint    `gorm:"column:usage;not null"`
	ActiveRecipeID  string  `gorm:"column:active_recipe_id"`
	AllowedRecipes  string  `gorm:"column:allowed_recipes;type:text"` // JSON array
	ProgressTicks   uint    `gorm:"column:progress_ticks;not null;default:0"`
	BaseEffectivity float64 `gorm:"column:base_effectivity;not null;default:100"`
	Effectivity     float64 `gorm:"column:effectivity;not null;default:100"`
	IsProducing     bool    `gorm:"column:is_producing;not null;default:false"`
}

// TableName overrides the GORM default
func (FacilityModel) TableName() string {
	return "facilities"
}

// TickGuardModel is the persisted single-flight guard row. A single row
// (id 1) is claimed via conditional update; ExpiresAt lets a crashed
// holder be evicted.
type TickGuardModel struct {
	ID        int       `gorm:"column:id;primaryKey"`
	Holder    string    `gorm:"column:holder"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
}

// TableName overrides the GORM default
func (TickGuardModel) TableName() string {
	return "tick_guard"
}
