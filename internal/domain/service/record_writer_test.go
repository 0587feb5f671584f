package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

type fakeProvider struct {
	records []entity.DNSRecord
	listErr error

	calls   []string
	updated *entity.RecordUpdateRequest
	created *entity.RecordCreateRequest
}

func (f *fakeProvider) Provider() entity.Provider { return entity.ProviderAliyun }

func (f *fakeProvider) Test(context.Context) error { return nil }

func (f *fakeProvider) ListDomains(context.Context) ([]entity.DomainItem, error) {
	return nil, nil
}

func (f *fakeProvider) ListRecords(context.Context, string, string) ([]entity.DNSRecord, error) {
	f.calls = append(f.calls, "list")
	return f.records, f.listErr
}

func (f *fakeProvider) CreateRecord(_ context.Context, _, zone string, req *entity.RecordCreateRequest) (*entity.DNSRecord, error) {
	f.calls = append(f.calls, "create")
	f.created = req
	return req.ToRecord(entity.ProviderAliyun, zone, "new"), nil
}

func (f *fakeProvider) UpdateRecord(_ context.Context, _, zone string, req *entity.RecordUpdateRequest) (*entity.DNSRecord, error) {
	f.calls = append(f.calls, "update:"+req.ID)
	f.updated = req
	return req.ToRecord(entity.ProviderAliyun, zone, req.ID), nil
}

func (f *fakeProvider) DeleteRecord(_ context.Context, _, _, id string) error {
	f.calls = append(f.calls, "delete:"+id)
	return nil
}

// finderProvider answers conflict lookups on the server side.
type finderProvider struct {
	fakeProvider
	ids []string
}

func (f *finderProvider) FindConflictIDs(context.Context, string, string, entity.RecordType, string) ([]string, error) {
	f.calls = append(f.calls, "find")
	return f.ids, nil
}

func aRecord(id, name string) entity.DNSRecord {
	return entity.DNSRecord{ID: id, RecordType: entity.RecordTypeA, Name: name, Content: "10.0.0.1", TTL: 600}
}

func createReq(strategy entity.ConflictStrategy) *entity.RecordCreateRequest {
	return &entity.RecordCreateRequest{
		RecordFields: entity.RecordFields{
			RecordType: entity.RecordTypeA, Name: "www", Content: "10.0.0.2", TTL: 600,
			MXPriority: entity.Ptr[uint16](5),
		},
		ConflictStrategy: strategy,
	}
}

func equalCalls(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRecordWriter_Create(t *testing.T) {
	tests := []struct {
		name      string
		host      string
		records   []entity.DNSRecord
		strategy  entity.ConflictStrategy
		wantCalls []string
		wantErr   error
		wantMsg   string
	}{
		{
			name:      "no match creates",
			records:   []entity.DNSRecord{aRecord("1", "api"), {ID: "2", RecordType: entity.RecordTypeTXT, Name: "www"}},
			strategy:  entity.ConflictDoNotCreate,
			wantCalls: []string{"list", "create"},
		},
		{
			name:      "match with do_not_create is a conflict",
			records:   []entity.DNSRecord{aRecord("1", "www")},
			strategy:  entity.ConflictDoNotCreate,
			wantCalls: []string{"list"},
			wantErr:   domain.ErrConflict,
			wantMsg:   "Record already exists",
		},
		{
			name:      "single match with overwrite updates",
			records:   []entity.DNSRecord{aRecord("1", "WWW")},
			strategy:  entity.ConflictOverwrite,
			wantCalls: []string{"list", "update:1"},
		},
		{
			name:      "multiple matches with overwrite is a conflict",
			records:   []entity.DNSRecord{aRecord("1", "www"), aRecord("2", "www")},
			strategy:  entity.ConflictOverwrite,
			wantCalls: []string{"list"},
			wantErr:   domain.ErrConflict,
			wantMsg:   "Multiple conflicting records found",
		},
		{
			name:      "absolute host matches relative record",
			host:      "www.example.com",
			records:   []entity.DNSRecord{aRecord("1", "www")},
			strategy:  entity.ConflictDoNotCreate,
			wantCalls: []string{"list"},
			wantErr:   domain.ErrConflict,
			wantMsg:   "Record already exists",
		},
		{
			name:      "fqdn host with overwrite updates",
			host:      "WWW.Example.com.",
			records:   []entity.DNSRecord{aRecord("1", "www")},
			strategy:  entity.ConflictOverwrite,
			wantCalls: []string{"list", "update:1"},
		},
		{
			name:      "zone name matches apex record",
			host:      "example.com",
			records:   []entity.DNSRecord{aRecord("1", "@")},
			strategy:  entity.ConflictDoNotCreate,
			wantCalls: []string{"list"},
			wantErr:   domain.ErrConflict,
			wantMsg:   "Record already exists",
		},
		{
			name:      "sibling zone suffix is not stripped",
			host:      "www.notexample.com",
			records:   []entity.DNSRecord{aRecord("1", "www")},
			strategy:  entity.ConflictDoNotCreate,
			wantCalls: []string{"list", "create"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{records: tt.records}
			req := createReq(tt.strategy)
			if tt.host != "" {
				req.Name = tt.host
			}
			rec, err := NewRecordWriter().Create(context.Background(), p, "z", "example.com", req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if domain.MessageOf(err) != tt.wantMsg {
					t.Errorf("message = %q, want %q", domain.MessageOf(err), tt.wantMsg)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			} else if rec == nil {
				t.Fatal("expected a record")
			}
			if !equalCalls(p.calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", p.calls, tt.wantCalls)
			}
		})
	}
}

func TestRecordWriter_CreatePrunesFields(t *testing.T) {
	p := &fakeProvider{}
	req := createReq(entity.ConflictDoNotCreate)
	if _, err := NewRecordWriter().Create(context.Background(), p, "z", "example.com", req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.created.MXPriority != nil {
		t.Error("MX priority should be pruned from an A record")
	}
	if req.MXPriority == nil {
		t.Error("caller's request should not be mutated")
	}
}

func TestRecordWriter_CreateUsesConflictFinder(t *testing.T) {
	p := &finderProvider{ids: []string{"cf-1"}}
	if _, err := NewRecordWriter().Create(context.Background(), p, "z", "example.com", createReq(entity.ConflictOverwrite)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"find", "update:cf-1"}; !equalCalls(p.calls, want) {
		t.Errorf("calls = %v, want %v", p.calls, want)
	}
	if p.updated.Content != "10.0.0.2" {
		t.Errorf("updated content = %q", p.updated.Content)
	}
}

func TestRecordWriter_CreateValidatesFirst(t *testing.T) {
	p := &fakeProvider{}
	req := createReq(entity.ConflictDoNotCreate)
	req.TTL = 30

	_, err := NewRecordWriter().Create(context.Background(), p, "z", "example.com", req)
	if !errors.Is(err, domain.ErrInvalidTTL) {
		t.Fatalf("expected ErrInvalidTTL, got %v", err)
	}
	if len(p.calls) != 0 {
		t.Errorf("no provider calls expected, got %v", p.calls)
	}
}

func TestRecordWriter_CreateListError(t *testing.T) {
	p := &fakeProvider{listErr: domain.New(domain.CodeFetchFailed, "boom")}
	_, err := NewRecordWriter().Create(context.Background(), p, "z", "example.com", createReq(entity.ConflictDoNotCreate))
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestRecordWriter_Update(t *testing.T) {
	w := NewRecordWriter()
	p := &fakeProvider{}

	bad := &entity.RecordUpdateRequest{ID: "1", RecordFields: entity.RecordFields{
		RecordType: entity.RecordTypeAAAA, Name: "www", Content: "bad", TTL: 600,
	}}
	if _, err := w.Update(context.Background(), p, "z", "example.com", bad); !errors.Is(err, domain.ErrInvalidContent) {
		t.Fatalf("expected ErrInvalidContent, got %v", err)
	}

	noID := &entity.RecordUpdateRequest{RecordFields: createReq("").RecordFields}
	if _, err := w.Update(context.Background(), p, "z", "example.com", noID); !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}

	ok := &entity.RecordUpdateRequest{ID: "7", RecordFields: createReq("").RecordFields}
	rec, err := w.Update(context.Background(), p, "z", "example.com", ok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "7" || !equalCalls(p.calls, []string{"update:7"}) {
		t.Errorf("rec.ID = %q, calls = %v", rec.ID, p.calls)
	}
}

func TestRecordWriter_Delete(t *testing.T) {
	w := NewRecordWriter()
	p := &fakeProvider{}

	if err := w.Delete(context.Background(), p, "z", "example.com", " "); !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if err := w.Delete(context.Background(), p, "z", "example.com", "9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalCalls(p.calls, []string{"delete:9"}) {
		t.Errorf("calls = %v", p.calls)
	}
}
