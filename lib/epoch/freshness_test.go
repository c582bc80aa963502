package epoch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStalenessPeriodIsNinetyDays(t *testing.T) {
	assert.Equal(t, int64(7_776_000), StalenessPeriod)
	assert.Equal(t, int64(259_200), MaxEpochInterval)
}

func TestIsTooOldRelativeTo(t *testing.T) {
	tests := []struct {
		name     string
		t, ref   int64
		max      int64
		expected bool
	}{
		{"same instant", 100, 100, 10, false},
		{"exactly at bound", 100, 110, 10, false},
		{"one past bound", 100, 111, 10, true},
		{"reference before timestamp", 100, 50, 10, false},
		{"zero interval equal", 5, 5, 0, false},
		{"zero interval one second", 5, 6, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsTooOldRelativeTo(tc.t, tc.ref, tc.max))
			assert.Equal(t, tc.ref > tc.max+tc.t, IsTooOldRelativeTo(tc.t, tc.ref, tc.max))
		})
	}
}

func TestIsTooOldRelativeToNearInt64Bounds(t *testing.T) {
	assert.False(t, IsTooOldRelativeTo(math.MaxInt64, 0, 1))
	assert.False(t, IsTooOldRelativeTo(math.MaxInt64, math.MaxInt64, MaxEpochInterval))
	assert.False(t, IsTooOldRelativeTo(math.MaxInt64-MaxEpochInterval, math.MaxInt64, MaxEpochInterval))
	assert.True(t, IsTooOldRelativeTo(math.MaxInt64-MaxEpochInterval-1, math.MaxInt64, MaxEpochInterval))
	assert.True(t, IsTooOldRelativeTo(math.MinInt64, 0, -1))
}

func TestIsTooOldMatchesRelative(t *testing.T) {
	for _, now := range []int64{0, 1, 1_700_000_000} {
		for _, ts := range []int64{0, now - MaxEpochInterval, now - MaxEpochInterval - 1, now} {
			assert.Equal(t, IsTooOldRelativeTo(ts, now, MaxEpochInterval), IsTooOld(ts, now, MaxEpochInterval))
		}
	}
}

func TestIsWithinSingleRange(t *testing.T) {
	tests := []struct {
		name     string
		t, ref   int64
		max      int64
		expected bool
	}{
		{"identical", 42, 42, 0, true},
		{"behind at bound", 90, 100, 10, true},
		{"ahead at bound", 110, 100, 10, true},
		{"behind past bound", 89, 100, 10, false},
		{"ahead past bound", 111, 100, 10, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsWithinSingleRange(tc.t, tc.ref, tc.max))
		})
	}

	for _, m := range []int64{0, 1, MaxEpochInterval} {
		assert.True(t, IsWithinSingleRange(1_700_000_000, 1_700_000_000, m))
	}
}

func TestIsWithinDoubleRange(t *testing.T) {
	assert.True(t, IsWithinDoubleRange(10, 10, 20), "start is inclusive")
	assert.True(t, IsWithinDoubleRange(20, 10, 20), "end is inclusive")
	assert.True(t, IsWithinDoubleRange(15, 10, 20))
	assert.False(t, IsWithinDoubleRange(9, 10, 20))
	assert.False(t, IsWithinDoubleRange(21, 10, 20))
	assert.True(t, IsWithinDoubleRange(10, 10, 10))
}

func TestIsOlderThanStalenessThreshold(t *testing.T) {
	const now = int64(1_700_000_000)
	assert.True(t, IsOlderThanStalenessThreshold(now-7_776_001, now))
	assert.False(t, IsOlderThanStalenessThreshold(now-7_776_000, now))
	assert.False(t, IsOlderThanStalenessThreshold(now, now))
}

func TestIsOldEnoughForAudit(t *testing.T) {
	const now = int64(1_700_000_000)
	const window = int64(3600)
	cutoff := StalenessCutoff(now)

	assert.Equal(t, now-StalenessPeriod, cutoff)
	assert.True(t, IsOldEnoughForAudit(cutoff, now, window))
	assert.True(t, IsOldEnoughForAudit(cutoff-window, now, window))
	assert.True(t, IsOldEnoughForAudit(cutoff+window, now, window))
	assert.False(t, IsOldEnoughForAudit(cutoff-window-1, now, window))
	assert.False(t, IsOldEnoughForAudit(cutoff+window+1, now, window))
	assert.False(t, IsOldEnoughForAudit(now, now, window))
}
