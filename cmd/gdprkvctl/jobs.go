package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one purge sweep now",
		Long: `Physically delete tombstoned records whose purge is due, visiting
the configured lookback window of hour buckets. Every candidate is
audited as the scheduled sweeper would. Exits 1 if any purge failed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(rootOpts, cmd)
		},
	}
}

func runSweep(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Sweeper.Run(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "sweep failed", err)
	}
	for _, b := range res.PerBucket {
		if b.Error != "" {
			out.VerboseLog("bucket %s: %s", b.Bucket, b.Error)
		}
	}

	if err := out.Result(res.Failed == 0, res, func(w io.Writer) {
		fmt.Fprintf(w, "sweep %s: %d bucket(s), %d candidate(s), %d purged, %d skipped, %d failed in %s\n",
			res.JobRequestID, res.Buckets, res.Candidates, res.Purged, res.Skipped, res.Failed,
			res.Duration.Round(time.Millisecond))
	}); err != nil {
		return err
	}
	if res.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d purge(s) failed", res.Failed))
	}
	return nil
}

// NewPruneAuditCommand creates the prune-audit command.
func NewPruneAuditCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune-audit",
		Short: "Run one audit retention pass now",
		Long: `Delete audit events older than AUDIT_RETENTION_DAYS. Chains whose head
is pruned remain verifiable but are no longer anchored.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPruneAudit(rootOpts, cmd)
		},
	}
}

func runPruneAudit(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Retention.Run(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "audit retention failed", err)
	}

	if err := out.Result(res.Failed == 0, res, func(w io.Writer) {
		fmt.Fprintf(w, "pruned %d of %d event(s) older than %s, %d failed\n",
			res.Deleted, res.Found, time.UnixMilli(res.Cutoff).UTC().Format(time.RFC3339), res.Failed)
	}); err != nil {
		return err
	}
	if res.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d event(s) could not be deleted", res.Failed))
	}
	return nil
}
