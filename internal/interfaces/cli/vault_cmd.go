package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newVaultCommand(app *App) *cobra.Command {
	vaultCmd := &cobra.Command{
		Use:   "vault",
		Short: "Manage the encrypted credential vault",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new vault",
		Long:  "Create a new vault protected by a master password of at least 8 characters.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := app.commandContext(cmd.Context(), "vault.init")
			password, err := newPassword(app.input(), app.Err)
			if err != nil {
				return err
			}
			v := app.Vault()
			if err := v.Initialize(ctx, password); err != nil {
				return err
			}
			if app.JSON {
				return app.printJSON(map[string]any{"path": v.Path(), "initialized": true})
			}
			fmt.Fprintln(app.Out, SuccessStyle.Render("✓")+" vault created at "+v.Path())
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the vault exists and which providers it holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := app.commandContext(cmd.Context(), "vault.status")
			st, err := app.Vault().Status(ctx)
			if err != nil {
				return err
			}
			if app.JSON {
				return app.printJSON(st)
			}
			fmt.Fprintf(app.Out, "Path:        %s\n", st.Path)
			if !st.Initialized {
				fmt.Fprintln(app.Out, "Initialized: "+WarningStyle.Render("no")+" (run `dnsdesk vault init`)")
				return nil
			}
			fmt.Fprintln(app.Out, "Initialized: "+SuccessStyle.Render("yes"))
			fmt.Fprintf(app.Out, "Version:     %d\n", st.Version)

			var configured []string
			for p, ok := range st.Configured {
				if ok {
					configured = append(configured, p.DisplayName())
				}
			}
			sort.Strings(configured)
			if len(configured) == 0 {
				fmt.Fprintln(app.Out, "Providers:   "+MutedStyle.Render("none"))
			} else {
				fmt.Fprintln(app.Out, "Providers:   "+strings.Join(configured, ", "))
			}
			return nil
		},
	}

	vaultCmd.AddCommand(initCmd)
	vaultCmd.AddCommand(statusCmd)
	return vaultCmd
}
