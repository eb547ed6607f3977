// ABOUTME: CLI commands to migrate legacy sessions and verify the result
// ABOUTME: Prints per-entity counts, failed sessions, and diagnostics
package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harper/discovery/internal/migrate"
)

var (
	migrateDryRun bool
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate legacy sessions into normalized tables",
		Long: `Migrate legacy JSON-blob discovery sessions into normalized tables.

The legacy table is backed up to a timestamped copy before anything is
written; if the backup fails nothing is migrated. Every write is an upsert,
so the command is safe to rerun. Sessions that fail to decode still migrate
their core attributes and content and are listed in the report.

Examples:
  discovery migrate
  discovery migrate --dry-run
  discovery migrate --format json`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	cmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Decode and count without writing or backing up")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	tr := migrate.New(store, store, migrate.Options{
		Workers:    cfg.Workers,
		Confidence: cfg.DefaultConfidence,
		DryRun:     migrateDryRun,
		Logger:     logger,
	})

	report, err := tr.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return render(cmd.OutOrStdout(), report, func(w io.Writer) {
		if report.DryRun {
			fmt.Fprintf(w, "DRY RUN: nothing was written\n")
		} else if report.Backup != nil {
			fmt.Fprintf(w, "Backup:\t%s (%d rows)\n", report.Backup.Table, report.Backup.Rows)
		}
		fmt.Fprintf(w, "Legacy sessions:\t%d\n\n", report.LegacySessions)

		fmt.Fprintf(w, "ENTITY\tROWS\n")
		fmt.Fprintf(w, "------\t----\n")
		fmt.Fprintf(w, "sessions\t%d\n", report.Written.Sessions)
		fmt.Fprintf(w, "questions\t%d\n", report.Written.Questions)
		fmt.Fprintf(w, "answers\t%d\n", report.Written.Answers)
		fmt.Fprintf(w, "content\t%d\n", report.Written.Content)
		fmt.Fprintf(w, "contacts\t%d\n", report.Written.Contacts)

		if report.Skipped > 0 {
			fmt.Fprintf(w, "\nSkipped entries:\t%d\n", report.Skipped)
		}
		if len(report.FailedSessions) > 0 {
			fmt.Fprintf(w, "\nFAILED SESSION\tSTEP\tREASON\n")
			for _, f := range report.FailedSessions {
				fmt.Fprintf(w, "%s\t%s\t%s\n", orDash(f.SessionID), f.Step, truncate(f.Reason, 60))
			}
		}
		if verbose && len(report.Diagnostics) > 0 {
			fmt.Fprintf(w, "\nDiagnostics:\n")
			for _, d := range report.Diagnostics {
				fmt.Fprintf(w, "  %s\n", d)
			}
		}
	})
}

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify migrated tables",
		Long: `Verify the normalized tables after a migration.

Reports row counts per entity and checks that every legacy session has a
progress row with a completion percentage between 0 and 100.

Examples:
  discovery verify
  discovery verify --format yaml`,
		Args: cobra.NoArgs,
		RunE: runVerify,
	}

	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	_, logger, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	v, err := migrate.New(store, store, migrate.Options{Logger: logger}).Verify(cmd.Context())
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	err = render(cmd.OutOrStdout(), v, func(w io.Writer) {
		fmt.Fprintf(w, "ENTITY\tROWS\n")
		fmt.Fprintf(w, "------\t----\n")
		fmt.Fprintf(w, "legacy sessions\t%d\n", v.LegacySessions)
		fmt.Fprintf(w, "sessions\t%d\n", v.Counts.Sessions)
		fmt.Fprintf(w, "questions\t%d\n", v.Counts.Questions)
		fmt.Fprintf(w, "answers\t%d\n", v.Counts.Answers)
		fmt.Fprintf(w, "content\t%d\n", v.Counts.Content)
		fmt.Fprintf(w, "contacts\t%d\n", v.Counts.Contacts)
		for _, violation := range v.Violations {
			fmt.Fprintf(w, "\nVIOLATION\t%s", violation)
		}
		if len(v.Violations) > 0 {
			fmt.Fprintln(w)
		}
	})
	if err != nil {
		return err
	}

	if !v.OK() {
		return fmt.Errorf("%d verification violation(s)", len(v.Violations))
	}
	return nil
}
