package monotonic

import (
	"sync"
	"testing"
	"time"
)

// =============================================================================
// Clock Tests
// =============================================================================

// TestNewClock verifies a new Clock has zero offset and is not synced.
func TestNewClock(t *testing.T) {
	c := NewClock(time.Minute)
	if c.Offset() != 0 {
		t.Errorf("expected zero offset, got %s", c.Offset())
	}
	if c.Synced() {
		t.Error("expected new clock to be unsynced")
	}
	if c.SinceSync() != -1 {
		t.Errorf("expected -1 since sync, got %s", c.SinceSync())
	}
}

// TestClock_Now_WithOffset verifies Now() applies the configured offset.
func TestClock_Now_WithOffset(t *testing.T) {
	c := NewClock(0)
	c.SetOffset(5 * time.Second)

	before := time.Now().Add(5 * time.Second)
	now := c.Now()
	after := time.Now().Add(5 * time.Second)

	if now.Before(before.Add(-10*time.Millisecond)) || now.After(after.Add(10*time.Millisecond)) {
		t.Errorf("Clock.Now() with offset = %v, expected ~%v", now, before)
	}
	if !c.Synced() {
		t.Error("expected clock to be synced after SetOffset with no max age")
	}
}

// TestClock_SetNow verifies a listener update becomes the offset.
func TestClock_SetNow(t *testing.T) {
	c := NewClock(time.Hour)
	c.SetNow(time.Now().Add(-2*time.Minute), 2)

	off := c.Offset()
	if off > -2*time.Minute+time.Second || off < -2*time.Minute-time.Second {
		t.Errorf("expected offset near -2m, got %s", off)
	}
	if c.Stratum() != 2 {
		t.Errorf("expected stratum 2, got %d", c.Stratum())
	}
	if !c.Synced() {
		t.Error("expected clock to be synced")
	}
}

// TestClock_SyncExpires verifies that an old correction stops counting as synced.
func TestClock_SyncExpires(t *testing.T) {
	c := NewClock(time.Millisecond)
	c.SetOffset(0)
	time.Sleep(5 * time.Millisecond)
	if c.Synced() {
		t.Error("expected correction older than maxAge to be stale")
	}
	if c.SinceSync() < time.Millisecond {
		t.Errorf("expected SinceSync >= 1ms, got %s", c.SinceSync())
	}
}

// TestClock_NegativeMaxAge verifies a negative max age disables the age
// check instead of panicking on the first update.
func TestClock_NegativeMaxAge(t *testing.T) {
	c := NewClock(-time.Second)
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("SetNow panicked with negative max age: %v", r)
		}
	}()
	c.SetNow(time.Now(), 2)
	if !c.Synced() {
		t.Error("expected clock to be synced with the age check disabled")
	}
}

// TestClock_ConcurrentAccess exercises readers and writers under -race.
func TestClock_ConcurrentAccess(t *testing.T) {
	c := NewClock(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.SetOffset(time.Duration(i) * time.Millisecond)
		}(i)
		go func() {
			defer wg.Done()
			_ = c.Now()
			_ = c.Synced()
		}()
	}
	wg.Wait()
}

// =============================================================================
// Deadline Tests
// =============================================================================

func TestNewDeadline_NotExpiredImmediately(t *testing.T) {
	d := NewDeadline(time.Hour)
	if d.IsExpired() {
		t.Error("expected fresh deadline not to be expired")
	}
	if d.Remaining() <= 0 {
		t.Errorf("expected positive remaining, got %s", d.Remaining())
	}
}

func TestNewDeadline_ZeroLifetime(t *testing.T) {
	d := NewDeadline(0)
	if !d.IsExpired() {
		t.Error("expected zero-lifetime deadline to be expired")
	}
	if d.Remaining() != 0 {
		t.Errorf("expected zero remaining, got %s", d.Remaining())
	}
}

func TestNewDeadline_NegativeLifetimePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for negative lifetime")
		}
	}()
	NewDeadline(-time.Second)
}
