package cli

import (
	"fmt"
	"io"

	"github.com/go-i2p/go-ktaudit/lib/audit"
	"github.com/go-i2p/go-ktaudit/lib/audit/chainfile"
	"github.com/go-i2p/go-ktaudit/lib/config"
	"github.com/go-i2p/go-ktaudit/lib/epoch"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newAuditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "audit [chain.yaml]",
		Short: "Audit an epoch chain file once",
		Long: `Audit checks epoch cadence and age, epoch certificates, obsolescence
tokens and pending self-audit records. The command fails when any check
fails. Without an argument audit.chain_file is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAudit,
	}
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg := config.CurrentConfig()
	path, err := chainPath(args, cfg)
	if err != nil {
		return err
	}
	chain, err := chainfile.Load(path)
	if err != nil {
		return err
	}

	clock := openClock(cmd.Context(), cfg)
	report := newAuditor(clock, cfg).Run(cmd.Context(), chain)
	printReport(cmd.OutOrStdout(), path, report)
	if !report.OK() {
		return oops.Errorf("audit of %s failed with %d findings", path, len(report.Findings))
	}
	return nil
}

// chainPath picks the chain file argument, falling back to audit.chain_file.
func chainPath(args []string, cfg config.ConfigDefaults) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Audit.ChainFile != "" {
		return cfg.Audit.ChainFile, nil
	}
	return "", oops.Errorf("no chain file given and audit.chain_file is not set")
}

func newAuditor(clock epoch.Clock, cfg config.ConfigDefaults) *audit.Auditor {
	return audit.NewAuditor(epoch.NewValidator(clock, cfg.Thresholds()), cfg.MaxClockSkewSeconds())
}

func printReport(w io.Writer, path string, r *audit.Report) {
	status := "OK"
	if !r.OK() {
		status = "FAILED"
	}
	fmt.Fprintf(w, "audit %s of %s at %s: %s\n", r.ID, path, r.StartedAt.Format(timeLayout), status)
	for _, f := range r.Findings {
		fmt.Fprintf(w, "  finding: %v\n", f)
	}
	printRecords(w, "due", r.Due)
	printRecords(w, "expired", r.Expired)
	printRecords(w, "pending", r.Pending)
}

func printRecords(w io.Writer, label string, records []audit.Record) {
	fmt.Fprintf(w, "  %s: %d\n", label, len(records))
	for _, rec := range records {
		fmt.Fprintf(w, "    %s %s\n", rec.Email, formatUnix(rec.Timestamp))
	}
}
