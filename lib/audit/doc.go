// Package audit checks the timing properties of a key-transparency epoch
// chain: that epochs keep their publication cadence, that the newest one is
// recent, that every epoch's certificate covers it, that obsolescence tokens
// on signed key lists are not older than the epochs they are checked
// against, and which locally stored audit records have reached the 90-day
// staleness cutoff.
//
// All decisions go through the epoch package predicates; the Auditor only
// sequences them and collects failures into a Report.
package audit
