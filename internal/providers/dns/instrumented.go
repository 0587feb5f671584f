package dns

import (
	"context"

	"github.com/lite-lake/infra-dnsdesk/internal/domain/contract"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/logger"
)

// instrumented records latency and failures for every call under the
// "provider.op" metric key.
type instrumented struct {
	inner contract.DNSProvider
	name  string
}

// instrumentedFinder also forwards server-side conflict lookups.
type instrumentedFinder struct {
	instrumented
	finder contract.ConflictFinder
}

// Instrument wraps p. The result implements contract.ConflictFinder only
// when p does.
func Instrument(p contract.DNSProvider) contract.DNSProvider {
	base := instrumented{inner: p, name: string(p.Provider())}
	if f, ok := p.(contract.ConflictFinder); ok {
		return &instrumentedFinder{instrumented: base, finder: f}
	}
	return &base
}

func (i *instrumented) Provider() entity.Provider {
	return i.inner.Provider()
}

func (i *instrumented) Test(ctx context.Context) error {
	return logger.TimedOperation(ctx, i.name, "test", func() error {
		return i.inner.Test(ctx)
	})
}

func (i *instrumented) ListDomains(ctx context.Context) (out []entity.DomainItem, err error) {
	err = logger.TimedOperation(ctx, i.name, "list_domains", func() error {
		out, err = i.inner.ListDomains(ctx)
		return err
	})
	return out, err
}

func (i *instrumented) ListRecords(ctx context.Context, zoneID, zoneName string) (out []entity.DNSRecord, err error) {
	err = logger.TimedOperation(ctx, i.name, "list_records", func() error {
		out, err = i.inner.ListRecords(ctx, zoneID, zoneName)
		return err
	})
	return out, err
}

func (i *instrumented) CreateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordCreateRequest) (out *entity.DNSRecord, err error) {
	err = logger.TimedOperation(ctx, i.name, "create_record", func() error {
		out, err = i.inner.CreateRecord(ctx, zoneID, zoneName, req)
		return err
	})
	return out, err
}

func (i *instrumented) UpdateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordUpdateRequest) (out *entity.DNSRecord, err error) {
	err = logger.TimedOperation(ctx, i.name, "update_record", func() error {
		out, err = i.inner.UpdateRecord(ctx, zoneID, zoneName, req)
		return err
	})
	return out, err
}

func (i *instrumented) DeleteRecord(ctx context.Context, zoneID, zoneName, recordID string) error {
	return logger.TimedOperation(ctx, i.name, "delete_record", func() error {
		return i.inner.DeleteRecord(ctx, zoneID, zoneName, recordID)
	})
}

func (i *instrumentedFinder) FindConflictIDs(ctx context.Context, zoneID, zoneName string, recordType entity.RecordType, host string) (out []string, err error) {
	err = logger.TimedOperation(ctx, i.name, "find_conflicts", func() error {
		out, err = i.finder.FindConflictIDs(ctx, zoneID, zoneName, recordType, host)
		return err
	})
	return out, err
}
