package shared

import "time"

// Clock supplies the wall-clock time that due-ness checks and guard
// expiry compare against. Everything downstream depends on Now alone,
// so tests substitute a frozen clock instead of sleeping.
type Clock interface {
	Now() time.Time
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// NewSystemClock returns a Clock backed by the system time in UTC.
func NewSystemClock() Clock {
	return clockFunc(func() time.Time { return time.Now().UTC() })
}

// FrozenClock is a Clock for tests. Time stands still until moved
// explicitly with Advance or SetTime.
type FrozenClock struct {
	now time.Time
}

// NewFrozenClock creates a FrozenClock at the given instant. A zero
// instant freezes the clock at the current system time.
func NewFrozenClock(at time.Time) *FrozenClock {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return &FrozenClock{now: at}
}

// Now returns the frozen instant.
func (c *FrozenClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *FrozenClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// SetTime jumps the clock to t.
func (c *FrozenClock) SetTime(t time.Time) { c.now = t }
