package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

// errChecksFailed gives a non-zero exit when any check did not pass.
var errChecksFailed = errors.New("one or more checks failed")

func newRunCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "run [check-id]",
		Short: "Run one check, or every check with --all",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("pass a check id or --all, not both")
			}
			if !all && len(args) != 1 {
				return errors.New("expected exactly one check id (or --all)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			eng, err := newEngine(cfg)
			if err != nil {
				return err
			}
			if all {
				return runAll(cmd, opts, eng)
			}
			return runOne(cmd, opts, eng, domain.CheckID(args[0]))
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "run every check in order")
	return cmd
}

func runOne(cmd *cobra.Command, opts *rootOptions, eng *engine, id domain.CheckID) error {
	entry, err := eng.svc.Get(id)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	var (
		v      domain.Verdict
		runErr error
	)
	if err := withSpinner(out, opts.plain, "Running "+entry.Definition.Name+"...", func() {
		v, runErr = eng.svc.RunOne(cmd.Context(), id)
	}); err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, domain.ErrOracleUnavailable) {
		return runErr
	}

	printHeader(out, entry.Definition.Name)
	oracleErr := ""
	if runErr != nil {
		oracleErr = runErr.Error()
	}
	printVerdict(out, entry.Definition.Name, v, oracleErr)
	fmt.Fprintln(out)
	printNotifications(out, eng.inbox.drain())
	if !v.Success {
		return errChecksFailed
	}
	return nil
}

func runAll(cmd *cobra.Command, opts *rootOptions, eng *engine) error {
	out := cmd.OutOrStdout()
	title := fmt.Sprintf("Running %d security checks...", len(eng.svc.List()))

	var runErr error
	var report *domain.BatchReport
	if err := withSpinner(out, opts.plain, title, func() {
		res, err := eng.svc.RunAll(cmd.Context())
		report, runErr = res.Report, err
	}); err != nil {
		return err
	}
	if report == nil {
		return runErr
	}

	printHeader(out, "Security Scan")
	for _, e := range report.Entries {
		printVerdict(out, e.Name, e.Verdict, e.OracleError)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s  %s\n",
		passStyle.Render(fmt.Sprintf("%d passed", report.Passed)),
		failStyle.Render(fmt.Sprintf("%d failed", report.Failed)),
	)
	fmt.Fprintf(out, "  %s\n\n", dimStyle.Render(fmt.Sprintf("batch %s in %s", report.BatchID, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))))
	printNotifications(out, eng.inbox.drain())
	if report.Failed > 0 {
		return errChecksFailed
	}
	return nil
}
