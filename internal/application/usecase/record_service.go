package usecase

import (
	"context"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/contract"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/service"
)

// RecordService resolves a client for the provider and runs one record
// operation through the write protocol.
type RecordService struct {
	creds   contract.CredentialSource
	factory contract.ProviderFactory
	writer  *service.RecordWriter
}

func NewRecordService(creds contract.CredentialSource, factory contract.ProviderFactory) *RecordService {
	return &RecordService{creds: creds, factory: factory, writer: service.NewRecordWriter()}
}

func (s *RecordService) client(ctx context.Context, p entity.Provider) (contract.DNSProvider, error) {
	cred, err := s.creds.Credential(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.factory.Create(cred)
}

func (s *RecordService) List(ctx context.Context, p entity.Provider, zoneID, zoneName string) ([]entity.DNSRecord, error) {
	c, err := s.client(ctx, p)
	if err != nil {
		return nil, err
	}
	return c.ListRecords(ctx, zoneID, zoneName)
}

// Create validates before loading credentials.
func (s *RecordService) Create(ctx context.Context, p entity.Provider, zoneID, zoneName string, req *entity.RecordCreateRequest) (*entity.DNSRecord, error) {
	if req == nil {
		return nil, domain.RequiredField("record")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c, err := s.client(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.writer.Create(ctx, c, zoneID, zoneName, req)
}

func (s *RecordService) Update(ctx context.Context, p entity.Provider, zoneID, zoneName string, req *entity.RecordUpdateRequest) (*entity.DNSRecord, error) {
	if req == nil {
		return nil, domain.RequiredField("record")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c, err := s.client(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.writer.Update(ctx, c, zoneID, zoneName, req)
}

func (s *RecordService) Delete(ctx context.Context, p entity.Provider, zoneID, zoneName, recordID string) error {
	c, err := s.client(ctx, p)
	if err != nil {
		return err
	}
	return s.writer.Delete(ctx, c, zoneID, zoneName, recordID)
}
