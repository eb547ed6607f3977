// ABOUTME: CLI commands to load the account directory and look up accounts by website
// ABOUTME: Domain lookup ignores scheme, "www." and path
package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harper/discovery/internal/models"
	"github.com/harper/discovery/internal/storage/sqlite"
)

// NewAccountsCmd creates the accounts command group
func NewAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the account directory",
		Long: `Manage the account directory that search ranks.

Examples:
  discovery accounts import accounts.yaml
  discovery accounts domain https://www.acme.io/about`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "import <file>",
			Short: "Load accounts from a JSON or YAML export",
			Args:  cobra.ExactArgs(1),
			RunE:  runAccountsImport,
		},
		&cobra.Command{
			Use:   "domain <website>",
			Short: "Find accounts whose website matches a domain",
			Args:  cobra.ExactArgs(1),
			RunE:  runAccountsDomain,
		},
	)

	return cmd
}

func runAccountsImport(cmd *cobra.Command, args []string) error {
	accounts, err := sqlite.LoadAccountsFile(args[0])
	if err != nil {
		return err
	}

	_, logger, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.ImportAccounts(cmd.Context(), accounts)
	if err != nil {
		return fmt.Errorf("importing accounts: %w", err)
	}
	logger.Info("accounts imported", "file", args[0], "rows", n)

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d account(s)\n", n)
	}
	return nil
}

func runAccountsDomain(cmd *cobra.Command, args []string) error {
	_, _, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	accounts, err := store.ByDomain(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("looking up domain: %w", err)
	}
	if accounts == nil {
		accounts = []models.Account{}
	}

	if len(accounts) == 0 && outputFormat != "json" && outputFormat != "yaml" {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No accounts found for domain: %s\n", sqlite.NormalizeDomain(args[0]))
		}
		return nil
	}

	return render(cmd.OutOrStdout(), accounts, func(w io.Writer) {
		fmt.Fprintf(w, "NAME\tTYPE\tWEBSITE\tOWNER\tID\n")
		fmt.Fprintf(w, "----\t----\t-------\t-----\t--\n")
		for _, a := range accounts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				truncate(a.Name, 40), orDash(a.Type), orDash(a.Website), orDash(a.OwnerName), a.ID)
		}
	})
}
