package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

func TestRecordService_CreateOverwrite(t *testing.T) {
	client := &fakeClient{p: entity.ProviderDNSCom, records: []entity.DNSRecord{
		{ID: "r1", RecordType: entity.RecordTypeTXT, Name: "@", Content: "old"},
	}}
	factory := &fakeFactory{clients: map[entity.Provider]*fakeClient{entity.ProviderDNSCom: client}}
	svc := NewRecordService(newMemStore(entity.ProviderDNSCom), factory)

	req := &entity.RecordCreateRequest{
		RecordFields:     entity.RecordFields{RecordType: entity.RecordTypeTXT, Name: "@", Content: "new", TTL: 600},
		ConflictStrategy: entity.ConflictOverwrite,
	}
	rec, err := svc.Create(context.Background(), entity.ProviderDNSCom, "1", "example.com", req)
	require.NoError(t, err)
	assert.Equal(t, "r1", rec.ID)
	assert.Equal(t, []string{"list_records", "update:r1"}, client.calls)
}

func TestRecordService_ValidatesBeforeCredentials(t *testing.T) {
	store := newMemStore()
	store.loadErr = domain.New(domain.CodeInvalidMasterPassword, "should not be reached")
	svc := NewRecordService(store, &fakeFactory{clients: map[entity.Provider]*fakeClient{}})

	req := &entity.RecordCreateRequest{RecordFields: entity.RecordFields{
		RecordType: entity.RecordTypeA, Name: "www", Content: "10.0.0.1", TTL: 30,
	}}
	_, err := svc.Create(context.Background(), entity.ProviderAliyun, "z", "example.com", req)
	assert.ErrorIs(t, err, domain.ErrInvalidTTL)

	upd := &entity.RecordUpdateRequest{ID: "1", RecordFields: entity.RecordFields{
		RecordType: entity.RecordTypeSRV, Name: "sip.example", Content: "sip.example.com", TTL: 600,
		SRVPriority: entity.Ptr[uint16](1), SRVWeight: entity.Ptr[uint16](1), SRVPort: entity.Ptr[uint16](5060),
	}}
	_, err = svc.Update(context.Background(), entity.ProviderAliyun, "z", "example.com", upd)
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestRecordService_NotConfigured(t *testing.T) {
	svc := NewRecordService(newMemStore(), &fakeFactory{clients: map[entity.Provider]*fakeClient{}})

	_, err := svc.List(context.Background(), entity.ProviderHuawei, "z", "example.com")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestRecordService_ListAndDelete(t *testing.T) {
	client := &fakeClient{p: entity.ProviderBaidu, records: []entity.DNSRecord{{ID: "a"}, {ID: "b"}}}
	factory := &fakeFactory{clients: map[entity.Provider]*fakeClient{entity.ProviderBaidu: client}}
	svc := NewRecordService(newMemStore(entity.ProviderBaidu), factory)

	records, err := svc.List(context.Background(), entity.ProviderBaidu, "z", "example.com")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.NoError(t, svc.Delete(context.Background(), entity.ProviderBaidu, "z", "example.com", "a"))
	assert.Equal(t, []string{"list_records", "delete:a"}, client.calls)
}
