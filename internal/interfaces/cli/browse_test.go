package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

func testBrowseModel(recordsErr error) BrowseModel {
	domains := func(context.Context) ([]entity.DomainItem, error) {
		return []entity.DomainItem{
			{Provider: entity.ProviderCloudflare, Name: "example.com", ProviderID: "z1", Status: entity.DomainStatusOK, RecordsCount: entity.Ptr(uint32(3))},
			entity.NotConfiguredItem(entity.ProviderHuawei),
		}, nil
	}
	records := func(_ context.Context, zone entity.DomainItem) ([]entity.DNSRecord, error) {
		if recordsErr != nil {
			return nil, recordsErr
		}
		return []entity.DNSRecord{
			{ID: "r1", Domain: zone.Name, RecordType: entity.RecordTypeA, Name: "www", Content: "1.2.3.4", TTL: 600},
			{ID: "r2", Domain: zone.Name, RecordType: entity.RecordTypeMX, Name: "@", Content: "mail.example.com", TTL: 600, MXPriority: entity.Ptr(uint16(10))},
		}, nil
	}
	return NewBrowseModel(context.Background(), domains, records)
}

func key(s string) tea.KeyMsg {
	switch s {
	case KeyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case KeyEscape:
		return tea.KeyMsg{Type: tea.KeyEsc}
	case KeyDown:
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step applies msg and runs the returned command once, feeding its message
// back into the model when it is a load result.
func step(t *testing.T, m BrowseModel, msg tea.Msg) BrowseModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(BrowseModel)
	if cmd == nil {
		return m
	}
	msgs := []tea.Msg{cmd()}
	if batch, ok := msgs[0].(tea.BatchMsg); ok {
		msgs = msgs[:0]
		for _, c := range batch {
			if c != nil {
				msgs = append(msgs, c())
			}
		}
	}
	for _, res := range msgs {
		switch res.(type) {
		case domainsLoadedMsg, recordsLoadedMsg:
			next, _ = m.Update(res)
			m = next.(BrowseModel)
		}
	}
	return m
}

func TestBrowseModel_InitLoadsDomains(t *testing.T) {
	m := testBrowseModel(nil)
	if !m.Loading {
		t.Error("model should start loading")
	}
	if m.Init() == nil {
		t.Fatal("Init should return a command")
	}

	next, _ := m.Update(m.loadDomains()())
	m = next.(BrowseModel)
	if m.Loading || len(m.Domains) != 2 {
		t.Fatalf("unexpected state: loading=%v domains=%d", m.Loading, len(m.Domains))
	}
	if !strings.Contains(m.View(), "example.com") {
		t.Error("view should list the zone")
	}
}

func TestBrowseModel_OpenZoneAndBack(t *testing.T) {
	m := testBrowseModel(nil)
	next, _ := m.Update(m.loadDomains()())
	m = next.(BrowseModel)

	m = step(t, m, key(KeyEnter))
	if m.State != BrowseRecords {
		t.Fatalf("expected records view, got %v (%s)", m.State, m.ErrorMessage)
	}
	if m.Zone.Name != "example.com" || len(m.Records) != 2 {
		t.Errorf("unexpected zone state: %+v", m.Zone)
	}
	if !strings.Contains(m.View(), "10 mail.example.com") {
		t.Error("view should render MX priority")
	}

	m = step(t, m, key(KeyDown))
	if m.RecordCursor != 1 {
		t.Errorf("expected cursor 1, got %d", m.RecordCursor)
	}
	m = step(t, m, key(KeyDown))
	if m.RecordCursor != 1 {
		t.Errorf("cursor should stop at the last row, got %d", m.RecordCursor)
	}

	m = step(t, m, key(KeyEscape))
	if m.State != BrowseDomains || m.Records != nil {
		t.Error("esc should return to the domain list")
	}
}

func TestBrowseModel_PlaceholderNotOpened(t *testing.T) {
	m := testBrowseModel(nil)
	next, _ := m.Update(m.loadDomains()())
	m = next.(BrowseModel)

	m = step(t, m, key(KeyDown))
	m = step(t, m, key(KeyEnter))
	if m.State != BrowseDomains {
		t.Error("placeholder rows must not open")
	}
	if !strings.Contains(m.ErrorMessage, "not_configured") {
		t.Errorf("unexpected message: %q", m.ErrorMessage)
	}
}

func TestBrowseModel_RecordError(t *testing.T) {
	m := testBrowseModel(domain.New(domain.CodeAuthFailed, "bad token"))
	next, _ := m.Update(m.loadDomains()())
	m = next.(BrowseModel)

	m = step(t, m, key(KeyEnter))
	if m.State != BrowseDomains {
		t.Error("failed load should stay on the domain list")
	}
	if m.ErrorMessage != "auth_failed: bad token" {
		t.Errorf("unexpected message: %q", m.ErrorMessage)
	}
}

func TestBrowseModel_Quit(t *testing.T) {
	m := testBrowseModel(nil)
	_, cmd := m.Update(key(KeyQuit))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestViewport(t *testing.T) {
	vp := NewViewport(9, 10, 4)
	if vp.VisibleStart() != 6 || vp.VisibleEnd() != 10 {
		t.Errorf("unexpected window %d-%d", vp.VisibleStart(), vp.VisibleEnd())
	}
	if vp.Indicator() == "" {
		t.Error("indicator should show when rows overflow")
	}

	vp = NewViewport(0, 3, 10)
	if vp.VisibleStart() != 0 || vp.VisibleEnd() != 3 || vp.Indicator() != "" {
		t.Error("short lists should fit without an indicator")
	}
}
