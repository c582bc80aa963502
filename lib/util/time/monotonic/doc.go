// Package monotonic holds the NTP correction applied to the local clock and
// serves corrected time to the epoch validators.
//
// The offset is stored as a duration and added to time.Now(), so the values
// returned by Clock.Now keep Go's monotonic clock reading and durations
// measured between them are immune to wall clock jumps. The instant of the
// last correction is tracked with a Deadline so callers can tell when the
// correction itself has gone stale:
//
//	clock := monotonic.NewClock(30 * time.Minute)
//	timestamper.AddListener(clock)
//	// ... later ...
//	if !clock.Synced() {
//	    // no trusted correction within the last 30 minutes
//	}
package monotonic
