package usecase

import (
	"context"
	"time"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/contract"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/logger"
)

// IntegrationService manages stored provider credentials. Credentials are
// only saved after a successful live test.
type IntegrationService struct {
	store   contract.CredentialStore
	factory contract.ProviderFactory
	now     func() time.Time
}

func NewIntegrationService(store contract.CredentialStore, factory contract.ProviderFactory) *IntegrationService {
	return &IntegrationService{store: store, factory: factory, now: time.Now}
}

func (s *IntegrationService) Statuses(ctx context.Context) ([]entity.IntegrationStatus, error) {
	return s.store.Statuses(ctx)
}

// Test checks unsaved credentials. Provider failures are reported in the
// result; only malformed input is returned as an error.
func (s *IntegrationService) Test(ctx context.Context, p entity.Provider, fields map[string]string) (*entity.IntegrationTestResult, error) {
	cred, err := entity.NewCredential(p, fields)
	if err != nil {
		return nil, err
	}
	return s.test(ctx, cred)
}

// Verify re-tests the stored credential and stamps it on success.
func (s *IntegrationService) Verify(ctx context.Context, p entity.Provider) (*entity.IntegrationTestResult, error) {
	cred, err := s.store.Credential(ctx, p)
	if err != nil {
		return nil, err
	}
	res, err := s.test(ctx, cred)
	if err != nil || !res.OK {
		return res, err
	}
	if err := s.store.MarkVerified(ctx, p, s.now().UTC()); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *IntegrationService) Save(ctx context.Context, p entity.Provider, fields map[string]string) error {
	cred, err := entity.NewCredential(p, fields)
	if err != nil {
		return err
	}
	client, err := s.factory.Create(cred)
	if err != nil {
		return err
	}
	if err := client.Test(ctx); err != nil {
		return err
	}

	at := s.now().UTC()
	cred.LastVerifiedAt = &at
	if err := s.store.Save(ctx, cred); err != nil {
		return err
	}
	logger.FromContext(ctx).ForProvider(string(p)).Info("credential saved")
	return nil
}

func (s *IntegrationService) Clear(ctx context.Context, p entity.Provider) error {
	if !p.Valid() {
		return domain.Newf(domain.CodeInvalidInput, "unsupported provider: %s", p)
	}
	return s.store.Clear(ctx, p)
}

func (s *IntegrationService) test(ctx context.Context, cred *entity.Credential) (*entity.IntegrationTestResult, error) {
	client, err := s.factory.Create(cred)
	if err != nil {
		return nil, err
	}
	res := &entity.IntegrationTestResult{Provider: cred.Provider}
	if err := client.Test(ctx); err != nil {
		res.Message = domain.MessageOf(err)
		return res, nil
	}
	res.OK = true
	res.Message = cred.Provider.DisplayName() + " authentication succeeded"
	return res, nil
}
