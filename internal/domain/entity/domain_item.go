package entity

import (
	"fmt"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
)

type DomainStatus string

const (
	DomainStatusOK            DomainStatus = "ok"
	DomainStatusAuthFailed    DomainStatus = "auth_failed"
	DomainStatusUnreachable   DomainStatus = "unreachable"
	DomainStatusFetchFailed   DomainStatus = "fetch_failed"
	DomainStatusNotConfigured DomainStatus = "not_configured"
)

type DomainItem struct {
	Provider      Provider     `json:"provider"`
	Name          string       `json:"name"`
	ProviderID    string       `json:"provider_id"`
	Status        DomainStatus `json:"status"`
	RecordsCount  *uint32      `json:"records_count"`
	LastChangedAt *string      `json:"last_changed_at"`
}

// IsPlaceholder reports whether the item stands in for a provider rather
// than a real zone.
func (d DomainItem) IsPlaceholder() bool {
	return d.Status != DomainStatusOK
}

func NotConfiguredItem(p Provider) DomainItem {
	return DomainItem{
		Provider: p,
		Name:     p.DisplayName(),
		Status:   DomainStatusNotConfigured,
	}
}

func FailedItem(p Provider, err error) DomainItem {
	return DomainItem{
		Provider: p,
		Name:     fmt.Sprintf("%s (error: %s)", p.DisplayName(), domain.MessageOf(err)),
		Status:   StatusFromError(err),
	}
}

func StatusFromError(err error) DomainStatus {
	switch domain.CodeOf(err) {
	case domain.CodeAuthFailed:
		return DomainStatusAuthFailed
	case domain.CodeUnreachable, domain.CodeTimeout:
		return DomainStatusUnreachable
	case domain.CodeNotConfigured:
		return DomainStatusNotConfigured
	default:
		return DomainStatusFetchFailed
	}
}
