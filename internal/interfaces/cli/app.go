package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/lite-lake/infra-dnsdesk/internal/application/usecase"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/contract"
	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/logger"
	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/persistence"
	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/vault"
	"github.com/lite-lake/infra-dnsdesk/internal/providers/dns"
)

// App carries the global flags and builds the services a command needs.
type App struct {
	VaultPath       string
	CredentialsPath string
	JSON            bool
	Stats           bool
	Timeout         time.Duration

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Password supplies the master password. Nil uses the environment or a
	// terminal prompt.
	Password vault.PasswordFunc

	factory *dns.Factory
	store   contract.CredentialStore
	lines   *bufio.Reader
}

func NewApp() *App {
	return &App{
		VaultPath: vault.DefaultPath(),
		Timeout:   dns.DefaultTimeout,
		In:        os.Stdin,
		Out:       os.Stdout,
		Err:       os.Stderr,
	}
}

func (a *App) Factory() *dns.Factory {
	if a.factory == nil {
		a.factory = dns.NewFactory()
		a.factory.SetDefaults(dns.Options{HTTPClient: dns.NewHTTPClient(a.Timeout)})
	}
	return a.factory
}

// SetFactory replaces the provider factory, for tests.
func (a *App) SetFactory(f *dns.Factory) {
	a.factory = f
}

func (a *App) Vault() *vault.Vault {
	password := a.Password
	if password == nil {
		password = passwordFromEnvOrPrompt(a.input, a.Err)
	}
	return vault.New(a.VaultPath, password)
}

// Store is the credential file when --credentials is set, else the vault.
func (a *App) Store() (contract.CredentialStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	if a.CredentialsPath != "" {
		src, err := persistence.LoadCredentialFile(a.CredentialsPath)
		if err != nil {
			return nil, err
		}
		a.store = src
		return a.store, nil
	}
	a.store = a.Vault()
	return a.store, nil
}

func (a *App) Domains() (*usecase.DomainService, error) {
	store, err := a.Store()
	if err != nil {
		return nil, err
	}
	return usecase.NewDomainService(store, a.Factory()), nil
}

func (a *App) Records() (*usecase.RecordService, error) {
	store, err := a.Store()
	if err != nil {
		return nil, err
	}
	return usecase.NewRecordService(store, a.Factory()), nil
}

func (a *App) Integrations() (*usecase.IntegrationService, error) {
	store, err := a.Store()
	if err != nil {
		return nil, err
	}
	return usecase.NewIntegrationService(store, a.Factory()), nil
}

// input is the raw terminal, or one shared line reader so that successive
// prompts do not lose buffered input.
func (a *App) input() io.Reader {
	if f, ok := a.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return f
	}
	if a.lines == nil {
		a.lines = bufio.NewReader(a.In)
	}
	return a.lines
}

// commandContext tags the logger with the command path and an op_id.
func (a *App) commandContext(parent context.Context, name string) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return logger.WithOperation(parent, name)
}
