package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

func newDomainsCommand(app *App) *cobra.Command {
	var (
		providers []string
		search    string
	)

	domainsCmd := &cobra.Command{
		Use:     "domains",
		Aliases: []string{"zones"},
		Short:   "List zones across providers",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List zones from every configured provider",
		Long:  "List zones from every provider concurrently. Providers that are not configured or fail appear as placeholder rows.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := app.commandContext(cmd.Context(), "domains.list")
			filter, err := parseProviders(providers)
			if err != nil {
				return err
			}
			svc, err := app.Domains()
			if err != nil {
				return err
			}
			items, err := svc.List(ctx, filter, search)
			if err != nil {
				return err
			}
			if app.JSON {
				return app.printJSON(items)
			}
			if len(items) == 0 {
				fmt.Fprintln(app.Out, "No domains found.")
				return nil
			}
			fmt.Fprintln(app.Out, renderTable(
				[]string{"PROVIDER", "DOMAIN", "ZONE ID", "STATUS", "RECORDS", "UPDATED"},
				domainRows(items),
				func(row int) lipgloss.Style { return StatusStyle(items[row].Status) },
			))
			return nil
		},
	}
	listCmd.Flags().StringSliceVarP(&providers, "provider", "p", nil, "Only query these providers (repeatable)")
	listCmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive substring filter on the domain name")

	domainsCmd.AddCommand(listCmd)
	return domainsCmd
}

func parseProviders(names []string) ([]entity.Provider, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]entity.Provider, 0, len(names))
	for _, name := range names {
		p, err := entity.ParseProvider(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
