package sntp

import (
	"time"

	"github.com/beevik/ntp"
	"github.com/go-i2p/logger"
)

const (
	maxRTT                = 2 * time.Second
	defaultMaxClockOffset = 10 * time.Second
	maxRootDispersion     = 1 * time.Second
	maxRootDelay          = 1 * time.Second
	maxStratum            = 15
)

// validateResponse rejects responses from unsynchronised or distant servers
// and responses whose timing metrics are implausible.
func (rt *Timestamper) validateResponse(response *ntp.Response) bool {
	return validateLeapAndStratum(response) &&
		validateTimingMetrics(response, rt.maxClockOffset) &&
		validateTimeValue(response) &&
		validateRootMetrics(response)
}

func validateLeapAndStratum(response *ntp.Response) bool {
	if response.Leap == ntp.LeapNotInSync {
		log.Warn("Invalid NTP response: server clock not synchronized (leap indicator)")
		return false
	}
	if response.Stratum == 0 || response.Stratum > maxStratum {
		log.WithField("stratum", response.Stratum).Warn("Invalid NTP response: stratum out of range")
		return false
	}
	return true
}

func validateTimingMetrics(response *ntp.Response, maxClockOffset time.Duration) bool {
	if response.RTT < 0 || response.RTT > maxRTT {
		log.WithFields(logger.Fields{
			"rtt": response.RTT.String(),
			"max": maxRTT.String(),
		}).Warn("Invalid NTP response: round-trip delay out of bounds")
		return false
	}
	if absDuration(response.ClockOffset) > maxClockOffset {
		log.WithFields(logger.Fields{
			"offset": response.ClockOffset.String(),
			"max":    maxClockOffset.String(),
		}).Warn("Invalid NTP response: clock offset out of bounds")
		return false
	}
	return true
}

func validateTimeValue(response *ntp.Response) bool {
	if response.Time.IsZero() {
		log.Warn("Invalid NTP response: zero time")
		return false
	}
	return true
}

func validateRootMetrics(response *ntp.Response) bool {
	if response.RootDispersion > maxRootDispersion {
		log.WithField("root_dispersion", response.RootDispersion.String()).Warn("Invalid NTP response: root dispersion too high")
		return false
	}
	if response.RootDelay > maxRootDelay {
		log.WithField("root_delay", response.RootDelay.String()).Warn("Invalid NTP response: root delay too high")
		return false
	}
	return true
}
