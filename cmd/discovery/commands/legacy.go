// ABOUTME: CLI command to load legacy session exports into the legacy table
// ABOUTME: Accepts JSON or YAML files, preserving key order of embedded documents
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/discovery/internal/storage/sqlite"
)

// NewLegacyCmd creates the legacy command group
func NewLegacyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "legacy",
		Short: "Manage the legacy session table",
		Long: `Manage the legacy JSON-blob session table that migrate reads from.

Examples:
  discovery legacy import sessions.json
  discovery legacy import export.yaml`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Load legacy sessions from a JSON or YAML export",
		Long: `Load legacy sessions from a JSON or YAML export.

The file holds either a list of sessions or an object with a "sessions"
list. Rows are inserted or replaced by session_id.`,
		Args: cobra.ExactArgs(1),
		RunE: runLegacyImport,
	})

	return cmd
}

func runLegacyImport(cmd *cobra.Command, args []string) error {
	sessions, err := sqlite.LoadLegacyFile(args[0])
	if err != nil {
		return err
	}

	_, logger, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.ImportLegacy(cmd.Context(), sessions)
	if err != nil {
		return fmt.Errorf("importing legacy sessions: %w", err)
	}
	logger.Info("legacy sessions imported", "file", args[0], "rows", n)

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d legacy session(s)\n", n)
	}
	return nil
}
