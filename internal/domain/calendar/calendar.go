// Package calendar holds the global simulation clock: a monotonic tick
// counter plus a day/month/year calendar that wraps according to
// configurable period lengths.
package calendar

import "time"

// Config defines the calendar period lengths. The defaults mirror the
// game world (24 days per month, 7 months per year) but every consumer
// reads them from here rather than hard-coding literals.
type Config struct {
	DaysPerMonth  int
	MonthsPerYear int
}

// DefaultConfig returns the standard game calendar.
func DefaultConfig() Config {
	return Config{
		DaysPerMonth:  24,
		MonthsPerYear: 7,
	}
}

// Clock is the single global simulation clock. Exactly one instance
// exists system-wide; it is persisted under a well-known key.
type Clock struct {
	Tick              uint64
	Day               int
	Month             int
	Year              int
	LastAdvanceTime   time.Time
	NextScheduledTime time.Time
}

// NewClock creates a clock at tick 0, day 1, month 1 of the given year,
// scheduled to advance at the next hour boundary after now.
func NewClock(year int, now time.Time) *Clock {
	return &Clock{
		Tick:              0,
		Day:               1,
		Month:             1,
		Year:              year,
		LastAdvanceTime:   now,
		NextScheduledTime: NextHourBoundary(now),
	}
}

// Advance returns the clock after one tick. The tick counter always
// increments by exactly 1 and the day wraps into month and year per the
// calendar config. NextScheduledTime moves to the next hour boundary
// only for scheduled advances; manual advances leave the automatic
// cadence untouched.
func (c Clock) Advance(cfg Config, now time.Time, scheduled bool) Clock {
	c.Tick++
	c.Day++
	if c.Day > cfg.DaysPerMonth {
		c.Day = 1
		c.Month++
		if c.Month > cfg.MonthsPerYear {
			c.Month = 1
			c.Year++
		}
	}

	c.LastAdvanceTime = now
	if scheduled {
		c.NextScheduledTime = NextHourBoundary(now)
	}
	return c
}

// IsDue reports whether a scheduled advancement is due at the given time.
func (c Clock) IsDue(now time.Time) bool {
	return !now.Before(c.NextScheduledTime)
}

// UntilDue returns how long until the next scheduled advancement.
// Negative when already due.
func (c Clock) UntilDue(now time.Time) time.Duration {
	return c.NextScheduledTime.Sub(now)
}

// NextHourBoundary returns the first whole hour strictly after t.
func NextHourBoundary(t time.Time) time.Time {
	return t.Truncate(time.Hour).Add(time.Hour)
}
