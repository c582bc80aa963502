package epoch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(unix int64) Clock {
	return ClockFunc(func() time.Time { return time.Unix(unix, 0) })
}

func TestValidatorUsesInjectedClock(t *testing.T) {
	const now = int64(1_700_000_000)
	v := NewValidator(fixedClock(now), DefaultThresholds())

	assert.Equal(t, now, v.Now())
	assert.False(t, v.IsTooOld(now-MaxEpochInterval))
	assert.True(t, v.IsTooOld(now-MaxEpochInterval-1))
	assert.True(t, v.IsOlderThanStalenessThreshold(now-7_776_001))
	assert.False(t, v.IsOlderThanStalenessThreshold(now-7_776_000))
	assert.True(t, v.IsOldEnoughForAudit(now-StalenessPeriod))
	assert.False(t, v.IsOldEnoughForAudit(now))
}

func TestValidatorRelativeChecksIgnoreClock(t *testing.T) {
	v := NewValidator(fixedClock(0), Thresholds{MaxEpochInterval: 10, AuditWindow: 10})

	assert.False(t, v.IsTooOldRelativeTo(100, 110))
	assert.True(t, v.IsTooOldRelativeTo(100, 111))
	assert.True(t, v.IsWithinSingleRange(100, 90))
	assert.False(t, v.IsWithinSingleRange(100, 89))
}

func TestValidatorClockAdvances(t *testing.T) {
	var mu sync.Mutex
	current := int64(1_000_000)
	clock := ClockFunc(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return time.Unix(current, 0)
	})
	v := NewValidator(clock, Thresholds{MaxEpochInterval: 60, AuditWindow: 60})

	assert.False(t, v.IsTooOld(1_000_000))
	mu.Lock()
	current += 61
	mu.Unlock()
	assert.True(t, v.IsTooOld(1_000_000))
}

func TestNewValidatorDefaults(t *testing.T) {
	v := NewValidator(nil, Thresholds{MaxEpochInterval: -1})
	assert.Equal(t, DefaultThresholds(), v.Thresholds())
	assert.InDelta(t, time.Now().Unix(), v.Now(), 2)
}

func TestThresholdsFromDurations(t *testing.T) {
	th := ThresholdsFromDurations(time.Hour, 2*time.Hour)
	assert.Equal(t, int64(3600), th.MaxEpochInterval)
	assert.Equal(t, int64(7200), th.AuditWindow)

	assert.Equal(t, DefaultThresholds(), ThresholdsFromDurations(-time.Second, -time.Second))

	zero := ThresholdsFromDurations(time.Hour, 0)
	assert.Equal(t, int64(0), zero.AuditWindow, "a zero audit window is kept")
}

func TestZeroAuditWindowMatchesOnlyCutoff(t *testing.T) {
	const now = 1_700_000_000
	clock := ClockFunc(func() time.Time { return time.Unix(now, 0) })
	v := NewValidator(clock, ThresholdsFromDurations(72*time.Hour, 0))

	cutoff := StalenessCutoff(now)
	assert.True(t, v.IsOldEnoughForAudit(cutoff))
	assert.False(t, v.IsOldEnoughForAudit(cutoff-1))
	assert.False(t, v.IsOldEnoughForAudit(cutoff+1))
}
