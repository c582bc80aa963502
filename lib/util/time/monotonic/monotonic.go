package monotonic

import (
	"sync"
	"time"
)

// Clock returns time.Now() corrected by the latest NTP offset. It satisfies
// epoch.Clock and sntp.UpdateListener.
type Clock struct {
	mu       sync.RWMutex
	offset   time.Duration
	stratum  uint8
	lastSync *Deadline
	maxAge   time.Duration
}

// NewClock creates a Clock with zero offset. A correction older than maxAge
// makes Synced report false; zero or a negative maxAge disables the age
// check.
func NewClock(maxAge time.Duration) *Clock {
	if maxAge < 0 {
		maxAge = 0
	}
	return &Clock{maxAge: maxAge}
}

// Now returns the current time adjusted by the stored offset.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	offset := c.offset
	c.mu.RUnlock()
	return time.Now().Add(offset)
}

// SetNow records a trusted reading of the current time. The difference to
// the local clock becomes the new offset.
func (c *Clock) SetNow(now time.Time, stratum uint8) {
	offset := time.Until(now)
	c.mu.Lock()
	c.offset = offset
	c.stratum = stratum
	c.lastSync = NewDeadline(c.maxAge)
	c.mu.Unlock()
}

// SetOffset sets the correction directly.
func (c *Clock) SetOffset(offset time.Duration) {
	c.mu.Lock()
	c.offset = offset
	c.lastSync = NewDeadline(c.maxAge)
	c.mu.Unlock()
}

// Offset returns the current correction.
func (c *Clock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

// Stratum returns the stratum reported with the last SetNow, zero if unknown.
func (c *Clock) Stratum() uint8 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stratum
}

// Synced reports whether a correction has been received and, when maxAge is
// set, whether it is recent enough.
func (c *Clock) Synced() bool {
	c.mu.RLock()
	last := c.lastSync
	maxAge := c.maxAge
	c.mu.RUnlock()
	if last == nil {
		return false
	}
	if maxAge == 0 {
		return true
	}
	return !last.IsExpired()
}

// SinceSync returns how long ago the last correction was applied, or -1 if
// there has been none.
func (c *Clock) SinceSync() time.Duration {
	c.mu.RLock()
	last := c.lastSync
	c.mu.RUnlock()
	if last == nil {
		return -1
	}
	return last.Elapsed()
}

// Deadline is a lifetime measured from its creation with the monotonic
// clock, so wall clock corrections neither shorten nor extend it.
type Deadline struct {
	createdAt time.Time
	lifetime  time.Duration
}

// NewDeadline creates a Deadline that expires after lifetime.
//
// Panics if lifetime is negative.
func NewDeadline(lifetime time.Duration) *Deadline {
	if lifetime < 0 {
		panic("monotonic: negative lifetime")
	}
	return &Deadline{createdAt: time.Now(), lifetime: lifetime}
}

// IsExpired returns true once the lifetime has elapsed.
func (d *Deadline) IsExpired() bool {
	return time.Since(d.createdAt) >= d.lifetime
}

// Remaining returns the time left, zero once expired.
func (d *Deadline) Remaining() time.Duration {
	remaining := d.lifetime - time.Since(d.createdAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Elapsed returns the time since creation.
func (d *Deadline) Elapsed() time.Duration {
	return time.Since(d.createdAt)
}
