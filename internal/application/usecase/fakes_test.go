package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/contract"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

type memStore struct {
	mu       sync.Mutex
	creds    map[entity.Provider]*entity.Credential
	loadErr  error
	loads    int
	verified map[entity.Provider]time.Time
}

func newMemStore(providers ...entity.Provider) *memStore {
	s := &memStore{creds: map[entity.Provider]*entity.Credential{}, verified: map[entity.Provider]time.Time{}}
	for _, p := range providers {
		s.creds[p] = &entity.Credential{Provider: p, Fields: map[string]string{}}
	}
	return s
}

func (s *memStore) Credential(_ context.Context, p entity.Provider) (*entity.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	c, ok := s.creds[p]
	if !ok {
		return nil, domain.Newf(domain.CodeNotConfigured, "%s is not configured", p)
	}
	return c, nil
}

func (s *memStore) MarkVerified(_ context.Context, p entity.Provider, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verified[p] = at
	return nil
}

func (s *memStore) Statuses(context.Context) ([]entity.IntegrationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.IntegrationStatus
	for _, p := range entity.AllProviders() {
		c, ok := s.creds[p]
		st := entity.IntegrationStatus{Provider: p, Configured: ok}
		if ok {
			st.LastVerifiedAt = c.LastVerifiedAt
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *memStore) Save(_ context.Context, cred *entity.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[cred.Provider] = cred
	return nil
}

func (s *memStore) Clear(_ context.Context, p entity.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, p)
	return nil
}

var _ contract.CredentialStore = (*memStore)(nil)

// fakeClient serves canned domains or fails with err.
type fakeClient struct {
	p       entity.Provider
	domains []entity.DomainItem
	records []entity.DNSRecord
	err     error

	mu    sync.Mutex
	calls []string
}

func (c *fakeClient) record(call string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

func (c *fakeClient) Provider() entity.Provider { return c.p }

func (c *fakeClient) Test(context.Context) error {
	c.record("test")
	return c.err
}

func (c *fakeClient) ListDomains(context.Context) ([]entity.DomainItem, error) {
	c.record("list_domains")
	return c.domains, c.err
}

func (c *fakeClient) ListRecords(context.Context, string, string) ([]entity.DNSRecord, error) {
	c.record("list_records")
	return c.records, c.err
}

func (c *fakeClient) CreateRecord(_ context.Context, _, zone string, req *entity.RecordCreateRequest) (*entity.DNSRecord, error) {
	c.record("create")
	if c.err != nil {
		return nil, c.err
	}
	return req.ToRecord(c.p, zone, "new"), nil
}

func (c *fakeClient) UpdateRecord(_ context.Context, _, zone string, req *entity.RecordUpdateRequest) (*entity.DNSRecord, error) {
	c.record("update:" + req.ID)
	if c.err != nil {
		return nil, c.err
	}
	return req.ToRecord(c.p, zone, req.ID), nil
}

func (c *fakeClient) DeleteRecord(_ context.Context, _, _, id string) error {
	c.record("delete:" + id)
	return c.err
}

type fakeFactory struct {
	mu      sync.Mutex
	clients map[entity.Provider]*fakeClient
}

func (f *fakeFactory) Create(cred *entity.Credential) (contract.DNSProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[cred.Provider]
	if !ok {
		c = &fakeClient{p: cred.Provider}
		f.clients[cred.Provider] = c
	}
	return c, nil
}

func zone(p entity.Provider, name string) entity.DomainItem {
	return entity.DomainItem{Provider: p, Name: name, ProviderID: name, Status: entity.DomainStatusOK}
}
