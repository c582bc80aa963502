package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-i2p/go-ktaudit/lib/audit/chainfile"
	"github.com/go-i2p/go-ktaudit/lib/config"
	"github.com/go-i2p/go-ktaudit/lib/util"
	"github.com/go-i2p/go-ktaudit/lib/util/signals"
	"github.com/go-i2p/logger"
	"github.com/spf13/cobra"
)

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [chain.yaml]",
		Short: "Re-audit an epoch chain file every watch.interval",
		Long: `Watch keeps the NTP time source running in the background and audits
the chain file on a fixed interval. SIGHUP reloads the configuration and
audits immediately. SIGINT and SIGTERM stop the loop.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}
}

type watcher struct {
	out   io.Writer
	path  string
	cfg   config.ConfigDefaults
	clock *trustedClock
	runs  int
	// modification time of the chain file at the last audit
	lastMod time.Time
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signals.InterruptContext(cmd.Context())
	defer cancel()

	cfg := config.CurrentConfig()
	path, err := chainPath(args, cfg)
	if err != nil {
		return err
	}

	w := &watcher{out: cmd.OutOrStdout(), path: path, cfg: cfg, clock: openClock(ctx, cfg)}
	if ts := w.clock.ts; ts != nil {
		ts.Start()
		util.RegisterCloser(ts)
		defer func() {
			if err := util.CloseAll(); err != nil {
				log.WithError(err).Warn("Closing time source failed")
			}
		}()
	}

	reload := make(chan struct{}, 1)
	id := signals.RegisterReloadHandler(func() {
		select {
		case reload <- struct{}{}:
		default:
		}
	})
	defer signals.DeregisterReloadHandler(id)

	ticker := time.NewTicker(cfg.Watch.Interval)
	defer ticker.Stop()

	log.WithFields(logger.Fields{
		"chain_file": path,
		"interval":   cfg.Watch.Interval.String(),
		"ntp":        w.clock.ts != nil,
	}).Info("Watching chain file")

	w.auditOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.WithField("runs", w.runs).Info("Watch stopped")
			return nil
		case <-ticker.C:
			w.auditOnce(ctx)
		case <-reload:
			if w.reloadConfig() {
				ticker.Reset(w.cfg.Watch.Interval)
			}
			w.auditOnce(ctx)
		}
	}
}

// reloadConfig re-reads the configuration file. An invalid file keeps the
// previous settings. The NTP source is not rebuilt.
func (w *watcher) reloadConfig() bool {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Error("Reload failed, keeping previous configuration")
		return false
	}
	cfg := config.CurrentConfig()
	if err := config.Validate(cfg); err != nil {
		log.WithError(err).Error("Reloaded configuration is invalid, keeping previous configuration")
		return false
	}
	w.cfg = cfg
	log.WithField("interval", cfg.Watch.Interval.String()).Info("Configuration reloaded")
	return true
}

// auditOnce loads the chain file afresh and audits it. Failures are reported
// and the loop continues.
func (w *watcher) auditOnce(ctx context.Context) {
	w.runs++
	if !w.clock.synced() {
		log.WithField("since_sync", w.clock.mono.SinceSync().String()).Warn("Trusted clock correction is stale")
		w.clock.ts.TimestampNow()
	}

	if mod := util.FileModTime(w.path); !mod.Equal(w.lastMod) {
		if !w.lastMod.IsZero() {
			log.WithFields(logger.Fields{
				"chain_file": w.path,
				"modified":   mod.Format(timeLayout),
			}).Info("Chain file changed since last audit")
		}
		w.lastMod = mod
	}

	chain, err := chainfile.Load(w.path)
	if err != nil {
		log.WithError(err).WithField("chain_file", w.path).Error("Cannot load chain file")
		fmt.Fprintf(w.out, "audit of %s skipped: %v\n", w.path, err)
		return
	}
	report := newAuditor(w.clock, w.cfg).Run(ctx, chain)
	printReport(w.out, w.path, report)
	if !report.OK() {
		log.WithError(report.Err()).WithField("chain_file", w.path).Warn("Audit failed")
	}
}
