package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-i2p/go-ktaudit/lib/config"
	"github.com/go-i2p/go-ktaudit/lib/epoch"
	"github.com/go-i2p/go-ktaudit/lib/util/time/skew"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	reference int64
	now       int64
}

func newCheckCommand() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check <timestamp>",
		Short: "Evaluate every freshness predicate for a Unix timestamp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], opts)
		},
	}
	cmd.Flags().Int64Var(&opts.reference, "reference", 0, "reference timestamp for the relative predicates")
	cmd.Flags().Int64Var(&opts.now, "now", 0, "evaluate at this Unix time instead of the trusted clock")
	return cmd
}

func runCheck(cmd *cobra.Command, arg string, opts *checkOptions) error {
	t, err := parseTimestamp(arg)
	if err != nil {
		return err
	}
	cfg := config.CurrentConfig()

	var clock epoch.Clock
	if cmd.Flags().Changed("now") {
		fixed := time.Unix(opts.now, 0)
		clock = epoch.ClockFunc(func() time.Time { return fixed })
	} else {
		clock = openClock(cmd.Context(), cfg)
	}
	v := epoch.NewValidator(clock, cfg.Thresholds())
	now := v.Now()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "timestamp: %d (%s)\n", t, formatUnix(t))
	fmt.Fprintf(out, "now: %d (%s)\n", now, formatUnix(now))
	printPredicate(out, "too_old", v.IsTooOld(t))
	printPredicate(out, "old_enough_for_audit", v.IsOldEnoughForAudit(t))
	printPredicate(out, "older_than_staleness_threshold", v.IsOlderThanStalenessThreshold(t))
	if cmd.Flags().Changed("reference") {
		fmt.Fprintf(out, "reference: %d (%s)\n", opts.reference, formatUnix(opts.reference))
		printPredicate(out, "too_old_relative_to_reference", v.IsTooOldRelativeTo(t, opts.reference))
		printPredicate(out, "within_single_range", v.IsWithinSingleRange(t, opts.reference))
	}
	if err := skew.ValidateNotFuture(t, now, cfg.MaxClockSkewSeconds()); err != nil {
		fmt.Fprintf(out, "future_skew: %v\n", err)
	} else {
		printPredicate(out, "future_skew", false)
	}
	return nil
}

func printPredicate(w io.Writer, name string, value bool) {
	fmt.Fprintf(w, "%s: %t\n", name, value)
}

func parseTimestamp(s string) (int64, error) {
	t, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, oops.Wrapf(err, "invalid timestamp %q", s)
	}
	return t, nil
}
