package cli

import (
	"fmt"
	"strings"

	"github.com/go-i2p/go-ktaudit/lib/config"
	"github.com/go-i2p/go-ktaudit/lib/util/time/monotonic"
	"github.com/go-i2p/go-ktaudit/lib/util/time/sntp"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newNowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Synchronise with the configured NTP servers and print the trusted time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.CurrentConfig()
			if cfg.NTP.Disabled {
				return oops.Errorf("now needs NTP: drop --offline or set ntp.disabled to false")
			}

			ts := sntp.NewTimestamper(ntpClient, cfg.SNTPConfig())
			mono := monotonic.NewClock(cfg.NTP.MaxSyncAge)
			ts.AddListener(mono)
			if err := ts.SyncOnce(cmd.Context()); err != nil {
				return oops.Wrapf(err, "NTP synchronization failed")
			}

			out := cmd.OutOrStdout()
			now := mono.Now()
			fmt.Fprintf(out, "time: %d (%s)\n", now.Unix(), now.UTC().Format(timeLayout))
			fmt.Fprintf(out, "offset: %s\n", mono.Offset())
			fmt.Fprintf(out, "well_synced: %t\n", ts.WellSynced())
			fmt.Fprintf(out, "servers: %s\n", strings.Join(ts.GetServers(), ", "))
			return nil
		},
	}
}
