package usecase

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/contract"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/logger"
)

// DomainService aggregates zones across providers. A failing provider
// turns into a placeholder item and never hides the others. A failing
// credential source fails the whole listing.
type DomainService struct {
	creds   contract.CredentialSource
	factory contract.ProviderFactory
}

func NewDomainService(creds contract.CredentialSource, factory contract.ProviderFactory) *DomainService {
	return &DomainService{creds: creds, factory: factory}
}

// List queries every wanted provider concurrently. An empty filter means
// all providers. Results keep provider display order.
func (s *DomainService) List(ctx context.Context, filter []entity.Provider, search string) ([]entity.DomainItem, error) {
	wanted, err := wantedProviders(filter)
	if err != nil {
		return nil, err
	}

	creds := make([]*entity.Credential, len(wanted))
	for i, p := range wanted {
		cred, err := s.creds.Credential(ctx, p)
		if domain.CodeOf(err) == domain.CodeNotConfigured {
			continue
		}
		if err != nil {
			return nil, domain.WrapOp("list domains", err)
		}
		creds[i] = cred
	}

	slots := make([][]entity.DomainItem, len(wanted))
	var g errgroup.Group
	for i, p := range wanted {
		if creds[i] == nil {
			slots[i] = []entity.DomainItem{entity.NotConfiguredItem(p)}
			continue
		}
		g.Go(func() error {
			slots[i] = s.listProvider(ctx, creds[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, domain.WrapOp("list domains", err)
	}

	var items []entity.DomainItem
	for _, slot := range slots {
		items = append(items, slot...)
	}
	return filterByName(items, search), nil
}

func (s *DomainService) listProvider(ctx context.Context, cred *entity.Credential) []entity.DomainItem {
	p := cred.Provider
	log := logger.FromContext(ctx).ForProvider(string(p))

	client, err := s.factory.Create(cred)
	if err != nil {
		log.Warn("create client failed", "error", err)
		return []entity.DomainItem{entity.FailedItem(p, err)}
	}

	items, err := client.ListDomains(ctx)
	if err != nil {
		log.Warn("list domains failed", "code", domain.CodeOf(err), "error", domain.MessageOf(err))
		return []entity.DomainItem{entity.FailedItem(p, err)}
	}
	log.Debug("listed domains", "count", len(items))
	return items
}

func wantedProviders(filter []entity.Provider) ([]entity.Provider, error) {
	if len(filter) == 0 {
		return entity.AllProviders(), nil
	}
	want := make(map[entity.Provider]bool, len(filter))
	for _, p := range filter {
		if !p.Valid() {
			return nil, domain.Newf(domain.CodeInvalidInput, "unsupported provider: %s", p)
		}
		want[p] = true
	}
	var out []entity.Provider
	for _, p := range entity.AllProviders() {
		if want[p] {
			out = append(out, p)
		}
	}
	return out, nil
}

// filterByName keeps items whose name contains search, compared with
// Unicode case folding.
func filterByName(items []entity.DomainItem, search string) []entity.DomainItem {
	search = strings.TrimSpace(search)
	if search == "" {
		return items
	}
	fold := cases.Fold()
	needle := fold.String(search)

	out := items[:0]
	for _, it := range items {
		if strings.Contains(fold.String(it.Name), needle) {
			out = append(out, it)
		}
	}
	return out
}
