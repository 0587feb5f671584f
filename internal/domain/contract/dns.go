package contract

import (
	"context"
	"time"

	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

// DNSProvider is the uniform zone and record contract every provider client
// implements. IDs passed to update and delete are provider-native.
type DNSProvider interface {
	Provider() entity.Provider
	Test(ctx context.Context) error
	ListDomains(ctx context.Context) ([]entity.DomainItem, error)
	ListRecords(ctx context.Context, zoneID, zoneName string) ([]entity.DNSRecord, error)
	CreateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordCreateRequest) (*entity.DNSRecord, error)
	UpdateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordUpdateRequest) (*entity.DNSRecord, error)
	DeleteRecord(ctx context.Context, zoneID, zoneName, recordID string) error
}

// ConflictFinder is implemented by providers that can filter records by
// type and name on the server.
type ConflictFinder interface {
	FindConflictIDs(ctx context.Context, zoneID, zoneName string, recordType entity.RecordType, host string) ([]string, error)
}

// CredentialSource hands out decrypted credentials. It returns a
// not_configured error when a provider has none.
type CredentialSource interface {
	Credential(ctx context.Context, p entity.Provider) (*entity.Credential, error)
	MarkVerified(ctx context.Context, p entity.Provider, at time.Time) error
}

// CredentialStore is a writable CredentialSource, such as the vault.
type CredentialStore interface {
	CredentialSource
	Statuses(ctx context.Context) ([]entity.IntegrationStatus, error)
	Save(ctx context.Context, cred *entity.Credential) error
	Clear(ctx context.Context, p entity.Provider) error
}

// ProviderFactory builds a fresh client per logical operation.
type ProviderFactory interface {
	Create(cred *entity.Credential) (DNSProvider, error)
}
