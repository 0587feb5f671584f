package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

func (m BrowseModel) View() string {
	var content strings.Builder
	content.WriteString(m.renderHeader())
	content.WriteString("\n\n")

	switch {
	case m.Loading:
		content.WriteString(LoadingStyle.Render(SpinnerFrames[m.Spinner] + " " + m.LoadingText))
		content.WriteString("\n")
	case m.State == BrowseRecords:
		content.WriteString(m.renderRecords())
	default:
		content.WriteString(m.renderDomains())
	}

	if m.ErrorMessage != "" {
		content.WriteString("\n")
		content.WriteString(ErrorStyle.Render(m.ErrorMessage))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	if m.State == BrowseRecords {
		content.WriteString(HelpRecords())
	} else {
		content.WriteString(HelpDomains())
	}
	return BaseStyle.Render(content.String())
}

func (m BrowseModel) renderHeader() string {
	title := TitleStyle.Render("dnsdesk")
	if m.State == BrowseRecords {
		return title + " " + MutedStyle.Render(m.Zone.Provider.DisplayName()+" / ") + HeaderStyle.Render(m.Zone.Name)
	}
	return title + " " + MutedStyle.Render(fmt.Sprintf("%d domains", countZones(m.Domains)))
}

func (m BrowseModel) renderDomains() string {
	if len(m.Domains) == 0 {
		return MutedStyle.Render("  No domains found.") + "\n"
	}

	nameWidth := 0
	for _, d := range m.Domains {
		nameWidth = max(nameWidth, lipgloss.Width(d.Name))
	}

	vp := NewViewport(m.DomainCursor, len(m.Domains), m.listHeight())
	var b strings.Builder
	for i := vp.VisibleStart(); i < vp.VisibleEnd(); i++ {
		d := m.Domains[i]
		line := fmt.Sprintf("%-14s %-*s %s", d.Provider, nameWidth, d.Name, domainSummary(d))
		b.WriteString(renderRow(line, i == m.DomainCursor, StatusStyle(d.Status)))
	}
	if ind := vp.Indicator(); ind != "" {
		b.WriteString(ind + "\n")
	}
	return b.String()
}

func (m BrowseModel) renderRecords() string {
	if len(m.Records) == 0 {
		return MutedStyle.Render("  No records in this zone.") + "\n"
	}

	nameWidth := 0
	for _, r := range m.Records {
		nameWidth = max(nameWidth, lipgloss.Width(r.Name))
	}

	vp := NewViewport(m.RecordCursor, len(m.Records), m.listHeight())
	var b strings.Builder
	for i := vp.VisibleStart(); i < vp.VisibleEnd(); i++ {
		r := m.Records[i]
		line := fmt.Sprintf("%-6s %-*s %6s  %s", r.RecordType, nameWidth, r.Name, strconv.FormatUint(uint64(r.TTL), 10), recordValue(r))
		b.WriteString(renderRow(line, i == m.RecordCursor, lipgloss.NewStyle()))
	}
	if ind := vp.Indicator(); ind != "" {
		b.WriteString(ind + "\n")
	}
	return b.String()
}

func renderRow(line string, selected bool, style lipgloss.Style) string {
	if selected {
		return SelectedStyle.Render("▸ "+line) + "\n"
	}
	return "  " + style.Render(line) + "\n"
}

func domainSummary(d entity.DomainItem) string {
	if d.IsPlaceholder() {
		return string(d.Status)
	}
	parts := []string{}
	if d.RecordsCount != nil {
		parts = append(parts, fmt.Sprintf("%d records", *d.RecordsCount))
	}
	if d.LastChangedAt != nil && *d.LastChangedAt != "" {
		parts = append(parts, "updated "+*d.LastChangedAt)
	}
	return strings.Join(parts, ", ")
}

func countZones(items []entity.DomainItem) int {
	n := 0
	for _, d := range items {
		if !d.IsPlaceholder() {
			n++
		}
	}
	return n
}
