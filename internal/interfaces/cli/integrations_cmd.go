package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

func newIntegrationsCommand(app *App) *cobra.Command {
	integrationsCmd := &cobra.Command{
		Use:     "integrations",
		Aliases: []string{"integration"},
		Short:   "Manage provider credentials",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show configured providers and when they were last verified",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := app.commandContext(cmd.Context(), "integrations.status")
			svc, err := app.Integrations()
			if err != nil {
				return err
			}
			statuses, err := svc.Statuses(ctx)
			if err != nil {
				return err
			}
			if app.JSON {
				return app.printJSON(statuses)
			}
			fmt.Fprintln(app.Out, renderTable(
				[]string{"PROVIDER", "NAME", "CONFIGURED", "LAST VERIFIED"},
				integrationRows(statuses),
				func(row int) lipgloss.Style {
					if statuses[row].Configured {
						return SuccessStyle
					}
					return MutedStyle
				},
			))
			return nil
		},
	}

	testCmd := &cobra.Command{
		Use:   "test <provider> [key=value...]",
		Short: "Test credentials without saving them",
		Long:  "Test the given credentials. Without key=value pairs the stored credential is re-tested and its verification time refreshed.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := app.commandContext(cmd.Context(), "integrations.test")
			p, err := entity.ParseProvider(args[0])
			if err != nil {
				return err
			}
			svc, err := app.Integrations()
			if err != nil {
				return err
			}

			var res *entity.IntegrationTestResult
			if len(args) == 1 {
				res, err = svc.Verify(ctx, p)
			} else {
				fields, ferr := parseFields(args[1:])
				if ferr != nil {
					return ferr
				}
				res, err = svc.Test(ctx, p, fields)
			}
			if err != nil {
				return err
			}
			if app.JSON {
				if err := app.printJSON(res); err != nil {
					return err
				}
			} else {
				printTestResult(app, res)
			}
			if !res.OK {
				return &reportedError{}
			}
			return nil
		},
	}

	saveCmd := &cobra.Command{
		Use:   "save <provider> key=value...",
		Short: "Test credentials and store them on success",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := app.commandContext(cmd.Context(), "integrations.save")
			p, err := entity.ParseProvider(args[0])
			if err != nil {
				return err
			}
			fields, err := parseFields(args[1:])
			if err != nil {
				return err
			}
			svc, err := app.Integrations()
			if err != nil {
				return err
			}
			if err := svc.Save(ctx, p, fields); err != nil {
				return err
			}
			if app.JSON {
				return app.printJSON(map[string]any{"provider": p, "saved": true})
			}
			fmt.Fprintln(app.Out, SuccessStyle.Render("✓")+" "+p.DisplayName()+" credentials saved")
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear <provider>",
		Short: "Remove a provider's stored credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := app.commandContext(cmd.Context(), "integrations.clear")
			p, err := entity.ParseProvider(args[0])
			if err != nil {
				return err
			}
			svc, err := app.Integrations()
			if err != nil {
				return err
			}
			if err := svc.Clear(ctx, p); err != nil {
				return err
			}
			if app.JSON {
				return app.printJSON(map[string]any{"provider": p, "cleared": true})
			}
			fmt.Fprintln(app.Out, SuccessStyle.Render("✓")+" "+p.DisplayName()+" credentials cleared")
			return nil
		},
	}

	integrationsCmd.AddCommand(statusCmd)
	integrationsCmd.AddCommand(testCmd)
	integrationsCmd.AddCommand(saveCmd)
	integrationsCmd.AddCommand(clearCmd)
	return integrationsCmd
}

func printTestResult(app *App, res *entity.IntegrationTestResult) {
	if res.OK {
		fmt.Fprintln(app.Out, SuccessStyle.Render("✓")+" "+res.Message)
		return
	}
	fmt.Fprintln(app.Out, ErrorStyle.Render("✗")+" "+res.Provider.DisplayName()+": "+res.Message)
}

// parseFields turns key=value arguments into a credential field map.
func parseFields(args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, domain.Newf(domain.CodeInvalidInput, "expected key=value, got %q", arg)
		}
		fields[key] = value
	}
	return fields, nil
}

// reportedError signals failure after the command already printed why.
type reportedError struct{}

func (*reportedError) Error() string { return "" }
