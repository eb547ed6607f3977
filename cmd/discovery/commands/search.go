// ABOUTME: CLI command to search the account directory
// ABOUTME: Ranks accounts by match priority then relevance score
package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harper/discovery/internal/search"
)

var (
	searchLimit int
)

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search accounts",
		Long: `Search the account directory.

Short single words match name prefixes and substrings. Longer words also
match misspellings and sound-alike names. Several words score accounts by
how many of them appear in name, industry, or description. An exact account
id is looked up directly.

Examples:
  discovery search acme
  discovery search Micrsoft
  discovery search "tech company" --limit 5
  discovery search --format json 001A000001abcDE`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 20, "Maximum results to return")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}
	query := args[0]

	cfg, logger, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ranker, err := search.NewFromConfig(store, cfg, logger)
	if err != nil {
		return err
	}
	defer ranker.Close()

	results, err := ranker.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("searching accounts: %w", err)
	}
	if len(results) > searchLimit {
		results = results[:searchLimit]
	}

	if len(results) == 0 && outputFormat != "json" && outputFormat != "yaml" {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No accounts found for query: %s\n", query)
		}
		return nil
	}

	return render(cmd.OutOrStdout(), results, func(w io.Writer) {
		fmt.Fprintf(w, "PRI\tSCORE\tNAME\tTYPE\tINDUSTRY\tID\n")
		fmt.Fprintf(w, "---\t-----\t----\t----\t--------\t--\n")
		for _, m := range results {
			fmt.Fprintf(w, "%d\t%.1f\t%s\t%s\t%s\t%s\n",
				m.Priority,
				m.Score,
				truncate(m.Account.Name, 40),
				orDash(m.Account.Type),
				truncate(orDash(m.Account.Industry), 20),
				m.Account.ID)
		}
		if !quiet {
			fmt.Fprintf(w, "\nFound %d account(s) using %s search\n", len(results), results[0].Strategy)
		}
	})
}
