package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gdprkv/internal/audit/models"
)

const verifyConcurrency = 8

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "verify [subject-id...]",
		Short: "Verify audit hash chains",
		Long: `Recompute every event hash and link of the given subjects' audit
chains. With --all every subject that has audit events is verified.
Exits 1 if any chain is invalid.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return NewExitError(ExitCommandError, "at least one subject id or --all is required")
			}
			return runVerify(rootOpts, cmd, args, all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "verify every subject with audit events")
	return cmd
}

func runVerify(opts *RootOptions, cmd *cobra.Command, subjects []string, all bool) error {
	out := opts.formatter(cmd)
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if all {
		subjects, err = a.AuditSubjects(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list subjects", err)
		}
	}
	slices.Sort(subjects)
	subjects = slices.Compact(subjects)

	reports := make([]models.VerifyReport, len(subjects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(verifyConcurrency)
	for i, subjectID := range subjects {
		g.Go(func() error {
			report, err := a.Audit.Verify(gctx, subjectID)
			if err != nil {
				return fmt.Errorf("verify %s: %w", subjectID, err)
			}
			out.VerboseLog("verified %s: %d events", subjectID, report.Events)
			reports[i] = *report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return WrapExitError(ExitCommandError, "verification aborted", err)
	}

	invalid := 0
	for _, r := range reports {
		if !r.Valid {
			invalid++
		}
	}

	if err := out.Result(invalid == 0, reports, func(w io.Writer) {
		for _, r := range reports {
			writeReport(w, r)
		}
		fmt.Fprintf(w, "%d chain(s) verified, %d invalid\n", len(reports), invalid)
	}); err != nil {
		return err
	}
	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid chain(s)", invalid))
	}
	return nil
}

func writeReport(w io.Writer, r models.VerifyReport) {
	mark := "✓"
	if !r.Valid {
		mark = "✗"
	}
	anchor := "anchored"
	switch {
	case r.Events == 0:
		anchor = "empty"
	case !r.Anchored:
		anchor = "pruned head"
	}
	fmt.Fprintf(w, "%s %s  events=%d  %s", mark, r.SubjectID, r.Events, anchor)
	if r.HeadHash != "" {
		fmt.Fprintf(w, "  head=%s", r.HeadHash)
	}
	fmt.Fprintln(w)
	for _, p := range r.Problems {
		fmt.Fprintf(w, "    #%d %s: %s\n", p.Index, p.Kind, p.Detail)
	}
}
