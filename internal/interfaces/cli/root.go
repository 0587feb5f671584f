package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/vault"
)

var Version = "dev"

// NewRootCommand builds the dnsdesk command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dnsdesk",
		Short:         "Multi-provider DNS record manager",
		Long:          "dnsdesk manages zones and records across Cloudflare, DNSPod, Aliyun, Huawei, Baidu, DNS.COM, Rainyun and Tencent Cloud.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Stats {
				app.printStats()
			}
		},
	}
	rootCmd.SetIn(app.In)
	rootCmd.SetOut(app.Out)
	rootCmd.SetErr(app.Err)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.VaultPath, "vault", app.VaultPath, "Vault file path (env "+vault.EnvPath+")")
	flags.StringVar(&app.CredentialsPath, "credentials", app.CredentialsPath, "Read credentials from a YAML file instead of the vault")
	flags.BoolVar(&app.JSON, "json", app.JSON, "Print JSON instead of tables")
	flags.BoolVar(&app.Stats, "stats", app.Stats, "Print per-operation metrics after the command")
	flags.DurationVar(&app.Timeout, "timeout", app.Timeout, "HTTP timeout per provider request")

	rootCmd.AddCommand(newVaultCommand(app))
	rootCmd.AddCommand(newIntegrationsCommand(app))
	rootCmd.AddCommand(newDomainsCommand(app))
	rootCmd.AddCommand(newRecordsCommand(app))
	rootCmd.AddCommand(newBrowseCommand(app))

	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	app := NewApp()
	cmd := NewRootCommand(app)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			app.PrintError(err)
		}
		if app.Stats {
			app.printStats()
		}
		os.Exit(1)
	}
}
