package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/vault"
)

type BrowseState int

const (
	BrowseDomains BrowseState = iota
	BrowseRecords
)

type (
	DomainLister func(ctx context.Context) ([]entity.DomainItem, error)
	RecordLister func(ctx context.Context, zone entity.DomainItem) ([]entity.DNSRecord, error)
)

type domainsLoadedMsg struct {
	items []entity.DomainItem
	err   error
}

type recordsLoadedMsg struct {
	zone    entity.DomainItem
	records []entity.DNSRecord
	err     error
}

type spinnerTickMsg struct{}

// BrowseModel is the interactive zone → record browser.
type BrowseModel struct {
	ctx         context.Context
	listDomains DomainLister
	listRecords RecordLister

	State         BrowseState
	Domains       []entity.DomainItem
	Records       []entity.DNSRecord
	Zone          entity.DomainItem
	DomainCursor  int
	RecordCursor  int
	Loading       bool
	LoadingText   string
	Spinner       int
	ErrorMessage  string
	Width, Height int
}

func NewBrowseModel(ctx context.Context, domains DomainLister, records RecordLister) BrowseModel {
	return BrowseModel{
		ctx:         ctx,
		listDomains: domains,
		listRecords: records,
		State:       BrowseDomains,
		Loading:     true,
		LoadingText: "Loading domains...",
		Height:      24,
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(m.loadDomains(), tickSpinner())
}

func (m BrowseModel) loadDomains() tea.Cmd {
	ctx, list := m.ctx, m.listDomains
	return func() tea.Msg {
		items, err := list(ctx)
		return domainsLoadedMsg{items: items, err: err}
	}
}

func (m BrowseModel) loadRecords(zone entity.DomainItem) tea.Cmd {
	ctx, list := m.ctx, m.listRecords
	return func() tea.Msg {
		records, err := list(ctx, zone)
		return recordsLoadedMsg{zone: zone, records: records, err: err}
	}
}

func tickSpinner() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return spinnerTickMsg{} })
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil
	case spinnerTickMsg:
		if !m.Loading {
			return m, nil
		}
		m.Spinner = (m.Spinner + 1) % len(SpinnerFrames)
		return m, tickSpinner()
	case domainsLoadedMsg:
		m.Loading = false
		if msg.err != nil {
			m.ErrorMessage = errorLine(msg.err)
			return m, nil
		}
		m.ErrorMessage = ""
		m.Domains = msg.items
		m.DomainCursor = clampCursor(m.DomainCursor, len(m.Domains))
		return m, nil
	case recordsLoadedMsg:
		m.Loading = false
		if msg.err != nil {
			m.ErrorMessage = errorLine(msg.err)
			return m, nil
		}
		m.ErrorMessage = ""
		m.State = BrowseRecords
		m.Zone = msg.zone
		m.Records = msg.records
		m.RecordCursor = clampCursor(m.RecordCursor, len(m.Records))
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m BrowseModel) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyCtrlC, KeyQuit:
		return m, tea.Quit
	}
	if m.Loading {
		return m, nil
	}

	switch key {
	case KeyUp, KeyUpAlt:
		m.moveCursor(-1)
	case KeyDown, KeyDownAlt:
		m.moveCursor(1)
	case KeyPageUp:
		m.moveCursor(-m.listHeight())
	case KeyPageDown:
		m.moveCursor(m.listHeight())
	case KeyEscape, KeyBack:
		if m.State == BrowseRecords {
			m.State = BrowseDomains
			m.Records = nil
			m.RecordCursor = 0
		}
		m.ErrorMessage = ""
	case KeyEnter:
		if m.State != BrowseDomains || len(m.Domains) == 0 {
			return m, nil
		}
		zone := m.Domains[m.DomainCursor]
		if zone.IsPlaceholder() {
			m.ErrorMessage = fmt.Sprintf("%s: %s", zone.Status, zone.Name)
			return m, nil
		}
		return m.startLoading("Loading records for "+zone.Name+"...", m.loadRecords(zone))
	case KeyRefresh:
		if m.State == BrowseRecords {
			return m.startLoading("Loading records for "+m.Zone.Name+"...", m.loadRecords(m.Zone))
		}
		return m.startLoading("Loading domains...", m.loadDomains())
	}
	return m, nil
}

func (m BrowseModel) startLoading(text string, load tea.Cmd) (tea.Model, tea.Cmd) {
	m.Loading = true
	m.LoadingText = text
	m.ErrorMessage = ""
	return m, tea.Batch(load, tickSpinner())
}

func (m *BrowseModel) moveCursor(delta int) {
	if m.State == BrowseRecords {
		m.RecordCursor = clampCursor(m.RecordCursor+delta, len(m.Records))
		return
	}
	m.DomainCursor = clampCursor(m.DomainCursor+delta, len(m.Domains))
}

// listHeight leaves room for the title, column header, help and status.
func (m BrowseModel) listHeight() int {
	return max(1, m.Height-8)
}

func errorLine(err error) string {
	return fmt.Sprintf("%s: %s", domain.CodeOf(err), domain.MessageOf(err))
}

func newBrowseCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse zones and records interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := app.commandContext(cmd.Context(), "browse")
			store, err := app.Store()
			if err != nil {
				return err
			}
			// Prompt for the master password before the terminal goes raw.
			if v, ok := store.(*vault.Vault); ok {
				if err := v.Unlock(ctx); err != nil {
					return err
				}
			}
			domains, err := app.Domains()
			if err != nil {
				return err
			}
			records, err := app.Records()
			if err != nil {
				return err
			}

			model := NewBrowseModel(ctx,
				func(ctx context.Context) ([]entity.DomainItem, error) {
					return domains.List(ctx, nil, "")
				},
				func(ctx context.Context, zone entity.DomainItem) ([]entity.DNSRecord, error) {
					return records.List(ctx, zone.Provider, zone.ProviderID, zone.Name)
				},
			)
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return domain.Newf(domain.CodeInternal, "browser: %v", err)
			}
			return nil
		},
	}
}
