// Package skew guards against epoch and token timestamps that sit too far
// from a trusted reference time.
//
// Key-transparency servers stamp epochs with their own clock. A timestamp far
// in the future of the auditor's NTP-synchronised clock is as suspect as one
// far in the past, so both directions are bounded by the same window.
//
// Usage:
//
//	if err := skew.ValidateTimestamp(ep.Timestamp, now, skew.MaxClockSkew); err != nil {
//	    // reject the epoch
//	}
package skew
