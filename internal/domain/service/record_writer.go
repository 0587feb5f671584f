package service

import (
	"context"
	"strings"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/contract"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

// RecordWriter applies the create/update/delete protocol on top of a
// provider client. Only Create looks for conflicts.
type RecordWriter struct{}

func NewRecordWriter() *RecordWriter {
	return &RecordWriter{}
}

func (w *RecordWriter) Create(ctx context.Context, p contract.DNSProvider, zoneID, zoneName string, req *entity.RecordCreateRequest) (*entity.DNSRecord, error) {
	if req == nil {
		return nil, domain.RequiredField("record")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	clean := *req
	clean.Prune()

	matches, err := w.findConflicts(ctx, p, zoneID, zoneName, clean.RecordType, clean.Name)
	if err != nil {
		return nil, err
	}

	switch {
	case len(matches) == 0:
		return p.CreateRecord(ctx, zoneID, zoneName, &clean)
	case clean.ConflictStrategy != entity.ConflictOverwrite:
		return nil, domain.New(domain.CodeConflict, "Record already exists")
	case len(matches) > 1:
		return nil, domain.New(domain.CodeConflict, "Multiple conflicting records found")
	default:
		return p.UpdateRecord(ctx, zoneID, zoneName, clean.AsUpdate(matches[0]))
	}
}

func (w *RecordWriter) Update(ctx context.Context, p contract.DNSProvider, zoneID, zoneName string, req *entity.RecordUpdateRequest) (*entity.DNSRecord, error) {
	if req == nil {
		return nil, domain.RequiredField("record")
	}
	if strings.TrimSpace(req.ID) == "" {
		return nil, domain.RequiredField("record id")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	clean := *req
	clean.Prune()
	return p.UpdateRecord(ctx, zoneID, zoneName, &clean)
}

func (w *RecordWriter) Delete(ctx context.Context, p contract.DNSProvider, zoneID, zoneName, recordID string) error {
	if strings.TrimSpace(recordID) == "" {
		return domain.RequiredField("record id")
	}
	return p.DeleteRecord(ctx, zoneID, zoneName, recordID)
}

func (w *RecordWriter) findConflicts(ctx context.Context, p contract.DNSProvider, zoneID, zoneName string, rt entity.RecordType, host string) ([]string, error) {
	if f, ok := p.(contract.ConflictFinder); ok {
		return f.FindConflictIDs(ctx, zoneID, zoneName, rt, host)
	}

	records, err := p.ListRecords(ctx, zoneID, zoneName)
	if err != nil {
		return nil, err
	}
	var ids []string
	for i := range records {
		if records[i].RecordType == rt && sameHost(records[i].Name, host, zoneName) {
			ids = append(ids, records[i].ID)
		}
	}
	return ids, nil
}

// sameHost compares two hosts after reducing both to labels relative to
// zone, so "www", "www.example.com" and "www.example.com." are equal.
func sameHost(a, b, zone string) bool {
	return strings.EqualFold(entity.RelativeHost(a, zone), entity.RelativeHost(b, zone))
}
