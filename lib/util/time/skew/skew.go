package skew

import (
	"fmt"
	"time"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// MaxClockSkew is the default tolerance, in seconds, between a server
// timestamp and the trusted current time.
const MaxClockSkew = int64(time.Hour / time.Second)

// Direction tells which side of the reference a rejected timestamp is on.
type Direction int

const (
	Past Direction = iota
	Future
)

func (d Direction) String() string {
	if d == Future {
		return "future"
	}
	return "past"
}

// Error describes a timestamp outside the skew window.
type Error struct {
	Timestamp int64
	Reference int64
	MaxSkew   int64
	Direction Direction
}

func (e *Error) Error() string {
	d := e.Reference - e.Timestamp
	if d < 0 {
		d = -d
	}
	return fmt.Sprintf("clock skew: timestamp is %s in the %s (max %s)",
		seconds(d), e.Direction, seconds(e.MaxSkew))
}

func seconds(s int64) time.Duration {
	return time.Duration(s) * time.Second
}

// ValidateTimestamp checks that ts lies within maxSkew seconds of ref in
// either direction. Zero timestamps and non-positive windows are rejected.
func ValidateTimestamp(ts, ref, maxSkew int64) error {
	if maxSkew <= 0 {
		return oops.Errorf("clock skew: maxSkew must be positive, got %d", maxSkew)
	}
	if ts == 0 {
		return oops.Errorf("clock skew: timestamp is zero")
	}

	switch {
	case ref-ts > maxSkew:
		log.WithFields(logger.Fields{
			"timestamp": time.Unix(ts, 0).UTC().Format(time.RFC3339),
			"reference": time.Unix(ref, 0).UTC().Format(time.RFC3339),
			"max":       seconds(maxSkew).String(),
		}).Warn("Rejecting timestamp too far in the past")
		return &Error{Timestamp: ts, Reference: ref, MaxSkew: maxSkew, Direction: Past}
	case ts-ref > maxSkew:
		log.WithFields(logger.Fields{
			"timestamp": time.Unix(ts, 0).UTC().Format(time.RFC3339),
			"reference": time.Unix(ref, 0).UTC().Format(time.RFC3339),
			"max":       seconds(maxSkew).String(),
		}).Warn("Rejecting timestamp too far in the future")
		return &Error{Timestamp: ts, Reference: ref, MaxSkew: maxSkew, Direction: Future}
	}
	return nil
}

// ValidateNotFuture only bounds the future side: ts may be arbitrarily old
// but not more than maxSkew seconds ahead of ref.
func ValidateNotFuture(ts, ref, maxSkew int64) error {
	if maxSkew < 0 {
		return oops.Errorf("clock skew: maxSkew must not be negative, got %d", maxSkew)
	}
	if ts-ref > maxSkew {
		return &Error{Timestamp: ts, Reference: ref, MaxSkew: maxSkew, Direction: Future}
	}
	return nil
}

// IsTimestampValid is ValidateTimestamp with MaxClockSkew, as a boolean.
func IsTimestampValid(ts, ref int64) bool {
	return ValidateTimestamp(ts, ref, MaxClockSkew) == nil
}
