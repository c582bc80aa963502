// Package epoch decides whether key-transparency timestamps are fresh enough
// to trust.
//
// Timestamps are Unix seconds carried as int64. Epochs are published on a
// regular cadence bounded by MaxEpochInterval; certificates and audit records
// go stale after StalenessPeriod (90 days of exactly 86400 seconds each).
//
// The package-level predicates are pure and take "now" as an argument. Code
// that needs a trusted clock builds a Validator around one:
//
//	v := epoch.NewValidator(clock, epoch.DefaultThresholds())
//	if v.IsTooOld(ep.Timestamp) {
//	    // reject the epoch
//	}
package epoch
