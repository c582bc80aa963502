package epoch

import (
	"time"

	"github.com/go-i2p/logger"
)

// Clock supplies the trusted current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the local system clock. It is only as trustworthy as the
// host's time synchronisation.
var SystemClock Clock = ClockFunc(time.Now)

// Thresholds are the interval bounds a Validator applies, in seconds.
type Thresholds struct {
	// MaxEpochInterval bounds the cadence between epochs and the age of the
	// newest epoch.
	MaxEpochInterval int64
	// AuditWindow is how close to the staleness cutoff a record must be to
	// be due for audit.
	AuditWindow int64
}

// DefaultThresholds returns MaxEpochInterval for both bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxEpochInterval: MaxEpochInterval,
		AuditWindow:      MaxEpochInterval,
	}
}

// ThresholdsFromDurations converts duration bounds to seconds. Negative
// durations fall back to the defaults; zero is a valid bound.
func ThresholdsFromDurations(maxInterval, auditWindow time.Duration) Thresholds {
	th := DefaultThresholds()
	if maxInterval >= 0 {
		th.MaxEpochInterval = int64(maxInterval / time.Second)
	}
	if auditWindow >= 0 {
		th.AuditWindow = int64(auditWindow / time.Second)
	}
	return th
}

// Validator applies fixed thresholds against an injected clock. It is
// immutable and safe for concurrent use.
type Validator struct {
	clock      Clock
	thresholds Thresholds
}

// NewValidator returns a Validator reading time from clock. A nil clock
// means SystemClock.
func NewValidator(clock Clock, th Thresholds) *Validator {
	if clock == nil {
		clock = SystemClock
	}
	if th.MaxEpochInterval < 0 || th.AuditWindow < 0 {
		log.WithFields(logger.Fields{
			"max_epoch_interval": th.MaxEpochInterval,
			"audit_window":       th.AuditWindow,
		}).Warn("Negative freshness threshold, using defaults")
		th = DefaultThresholds()
	}
	return &Validator{clock: clock, thresholds: th}
}

// Thresholds returns the bounds this Validator applies.
func (v *Validator) Thresholds() Thresholds {
	return v.thresholds
}

// Now returns the clock's current time in Unix seconds.
func (v *Validator) Now() int64 {
	return v.clock.Now().Unix()
}

// IsTooOld reports whether t is more than MaxEpochInterval behind now.
func (v *Validator) IsTooOld(t int64) bool {
	now := v.Now()
	tooOld := IsTooOld(t, now, v.thresholds.MaxEpochInterval)
	if tooOld {
		log.WithFields(logger.Fields{
			"timestamp": t,
			"now":       now,
			"max":       v.thresholds.MaxEpochInterval,
		}).Debug("Timestamp is too old")
	}
	return tooOld
}

// IsTooOldRelativeTo reports whether ref is more than MaxEpochInterval ahead
// of t. The clock is not consulted.
func (v *Validator) IsTooOldRelativeTo(t, ref int64) bool {
	return IsTooOldRelativeTo(t, ref, v.thresholds.MaxEpochInterval)
}

// IsWithinSingleRange reports whether t lies within MaxEpochInterval of ref.
func (v *Validator) IsWithinSingleRange(t, ref int64) bool {
	return IsWithinSingleRange(t, ref, v.thresholds.MaxEpochInterval)
}

// IsOldEnoughForAudit reports whether t is within AuditWindow of the
// staleness cutoff.
func (v *Validator) IsOldEnoughForAudit(t int64) bool {
	return IsOldEnoughForAudit(t, v.Now(), v.thresholds.AuditWindow)
}

// IsOlderThanStalenessThreshold reports whether t is past the staleness
// cutoff.
func (v *Validator) IsOlderThanStalenessThreshold(t int64) bool {
	return IsOlderThanStalenessThreshold(t, v.Now())
}
