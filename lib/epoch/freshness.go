package epoch

import "time"

// Day is the length of a day used for staleness arithmetic. No calendar or
// daylight-saving adjustment is applied.
const Day int64 = 86400

// MaxEpochInterval bounds the normal cadence between two published epochs,
// in seconds.
const MaxEpochInterval = int64(72*time.Hour) / int64(time.Second)

// StalenessPeriod is the age after which a certificate or audit record is no
// longer valid for audit purposes, in seconds.
const StalenessPeriod = 90 * Day

// IsTooOldRelativeTo reports whether ref is strictly more than maxInterval
// seconds ahead of t. A timestamp exactly maxInterval old is not too old.
func IsTooOldRelativeTo(t, ref, maxInterval int64) bool {
	sum := maxInterval + t
	switch {
	case maxInterval > 0 && t > 0 && sum < 0:
		// maxInterval+t exceeds MaxInt64, so no ref can be past it
		return false
	case maxInterval < 0 && t < 0 && sum >= 0:
		return true
	}
	return ref > sum
}

// IsTooOld is IsTooOldRelativeTo with the current time as the reference.
func IsTooOld(t, now, maxInterval int64) bool {
	return IsTooOldRelativeTo(t, now, maxInterval)
}

// IsWithinSingleRange reports whether t lies within maxInterval seconds of
// ref in either direction, boundaries included.
func IsWithinSingleRange(t, ref, maxInterval int64) bool {
	d := ref - t
	if d < 0 {
		d = -d
	}
	return d <= maxInterval
}

// IsWithinDoubleRange reports whether start <= t <= end.
func IsWithinDoubleRange(t, start, end int64) bool {
	return t >= start && t <= end
}

// StalenessCutoff returns the instant StalenessPeriod before now.
func StalenessCutoff(now int64) int64 {
	return now - StalenessPeriod
}

// IsOldEnoughForAudit reports whether t lies within stalenessThreshold
// seconds of the staleness cutoff, boundaries included.
func IsOldEnoughForAudit(t, now, stalenessThreshold int64) bool {
	return IsWithinSingleRange(t, StalenessCutoff(now), stalenessThreshold)
}

// IsOlderThanStalenessThreshold reports whether t is strictly before the
// staleness cutoff.
func IsOlderThanStalenessThreshold(t, now int64) bool {
	return t < StalenessCutoff(now)
}
