package cli

import (
	"context"

	"github.com/go-i2p/go-ktaudit/lib/config"
	"github.com/go-i2p/go-ktaudit/lib/epoch"
	"github.com/go-i2p/go-ktaudit/lib/util/time/monotonic"
	"github.com/go-i2p/go-ktaudit/lib/util/time/sntp"
	"github.com/go-i2p/logger"
)

// trustedClock is the time source handed to the validators. ts and mono are
// nil when NTP is disabled.
type trustedClock struct {
	epoch.Clock
	ts   *sntp.Timestamper
	mono *monotonic.Clock
}

// openClock returns the system clock when NTP is disabled. Otherwise it
// returns a monotonic.Clock fed by a Timestamper that has made one
// synchronisation attempt; a failed attempt leaves the offset at zero.
func openClock(ctx context.Context, cfg config.ConfigDefaults) *trustedClock {
	if cfg.NTP.Disabled {
		log.Debug("NTP disabled, using system clock")
		return &trustedClock{Clock: epoch.SystemClock}
	}

	ts := sntp.NewTimestamper(ntpClient, cfg.SNTPConfig())
	mono := monotonic.NewClock(cfg.NTP.MaxSyncAge)
	ts.AddListener(mono)

	if err := ts.SyncOnce(ctx); err != nil {
		log.WithError(err).Warn("NTP synchronization failed, using uncorrected system clock")
	} else {
		log.WithFields(logger.Fields{
			"offset":      mono.Offset().String(),
			"well_synced": ts.WellSynced(),
		}).Debug("Trusted clock synchronized")
	}
	return &trustedClock{Clock: mono, ts: ts, mono: mono}
}

// synced reports whether the clock carries a current NTP correction. The
// system clock counts as synced.
func (c *trustedClock) synced() bool {
	if c.mono == nil {
		return true
	}
	return c.mono.Synced()
}
