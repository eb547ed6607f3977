// ABOUTME: Root CLI command and global flags
// ABOUTME: Wires every subcommand and the shared verbose, quiet, format, and db flags
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	dbPath       string
)

const banner = `
██████╗ ██╗███████╗ ██████╗ ██████╗
██╔══██╗██║██╔════╝██╔════╝██╔═══██╗
██║  ██║██║███████╗██║     ██║   ██║
██║  ██║██║╚════██║██║     ██║   ██║
██████╔╝██║███████║╚██████╗╚██████╔╝
╚═════╝ ╚═╝╚══════╝ ╚═════╝ ╚═════╝`

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discovery",
		Short: "Sales discovery session migration and account search",
		Long: banner + `

Discovery migrates legacy JSON-blob discovery sessions into normalized
tables, tracks session progress, and searches the account directory with
prefix, fuzzy, phonetic, and multi-term matching.

Configuration is read from the environment (and a .env file):
  DISCOVERY_DB_PATH, DISCOVERY_USER_EMAIL, SEARCH_*, MIGRATE_*, LOG_LEVEL`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json, yaml")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (overrides DISCOVERY_DB_PATH)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewMigrateCmd(),
		NewVerifyCmd(),
		NewSearchCmd(),
		NewSessionCmd(),
		NewLegacyCmd(),
		NewAccountsCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
