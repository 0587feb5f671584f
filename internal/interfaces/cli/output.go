package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/logger"
)

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.Newf(domain.CodeSerializeError, "%v", err)
	}
	return nil
}

// PrintError writes err as "{code}: {message}", or as a JSON payload.
func (a *App) PrintError(err error) {
	payload := domain.ToPayload(err)
	if a.JSON {
		b, _ := json.Marshal(payload)
		fmt.Fprintln(a.Err, string(b))
		return
	}
	fmt.Fprintln(a.Err, ErrorStyle.Render(payload.Code+":")+" "+payload.Message)
}

func (a *App) printStats() {
	stats := logger.Snapshot()
	if len(stats) == 0 {
		return
	}
	if a.JSON {
		b, _ := json.Marshal(stats)
		fmt.Fprintln(a.Err, string(b))
		return
	}
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.Operation,
			strconv.FormatInt(s.Total, 10),
			strconv.FormatInt(s.Failed, 10),
			strconv.FormatFloat(s.AvgLatencyMs, 'f', 1, 64),
		})
	}
	fmt.Fprintln(a.Err, renderTable([]string{"OPERATION", "TOTAL", "FAILED", "AVG MS"}, rows, nil))
}

// renderTable draws a bordered table. rowStyle, when set, styles whole
// data rows.
func renderTable(headers []string, rows [][]string, rowStyle func(row int) lipgloss.Style) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(MutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle.Padding(0, 1)
			}
			if rowStyle != nil {
				return rowStyle(row).Padding(0, 1)
			}
			return CellStyle
		})
	return t.String()
}

func domainRows(items []entity.DomainItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, d := range items {
		rows = append(rows, []string{
			string(d.Provider),
			d.Name,
			d.ProviderID,
			string(d.Status),
			optUint32(d.RecordsCount),
			optString(d.LastChangedAt),
		})
	}
	return rows
}

func recordRows(records []entity.DNSRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID,
			string(r.RecordType),
			r.Name,
			recordValue(r),
			strconv.FormatUint(uint64(r.TTL), 10),
		})
	}
	return rows
}

// recordValue renders the structured fields in front of the content the
// way zone files do.
func recordValue(r entity.DNSRecord) string {
	switch {
	case r.RecordType == entity.RecordTypeMX && r.MXPriority != nil:
		return fmt.Sprintf("%d %s", *r.MXPriority, r.Content)
	case r.RecordType == entity.RecordTypeSRV && r.SRVPriority != nil && r.SRVWeight != nil && r.SRVPort != nil:
		return fmt.Sprintf("%d %d %d %s", *r.SRVPriority, *r.SRVWeight, *r.SRVPort, r.Content)
	case r.RecordType == entity.RecordTypeCAA && r.CAAFlags != nil && r.CAATag != nil:
		return fmt.Sprintf("%d %s %q", *r.CAAFlags, *r.CAATag, r.Content)
	}
	return r.Content
}

func integrationRows(statuses []entity.IntegrationStatus) [][]string {
	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		configured := "no"
		if st.Configured {
			configured = "yes"
		}
		verified := "-"
		if st.LastVerifiedAt != nil {
			verified = st.LastVerifiedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{string(st.Provider), st.Provider.DisplayName(), configured, verified})
	}
	return rows
}

func optUint32(v *uint32) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatUint(uint64(*v), 10)
}

func optString(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}
