package cli

import (
	"fmt"
	"time"

	"github.com/go-i2p/go-ktaudit/lib/epoch"
	"github.com/spf13/cobra"
)

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <token>",
		Short: "Decode the timestamp prefix of an obsolescence token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := epoch.ParseObsolescenceTimestamp(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "timestamp: %d\n", ts)
			if ts <= uint64(maxUnix) {
				fmt.Fprintf(out, "time: %s\n", formatUnix(int64(ts)))
			} else {
				fmt.Fprintln(out, "time: out of range")
			}
			return nil
		},
	}
}

// maxUnix is the largest timestamp time.Unix formats as a four-digit year.
const maxUnix = 253402300799

const timeLayout = time.RFC3339

func formatUnix(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(timeLayout)
}
