package dns

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

func TestHuaweiClient_ListDomainsAndRecords(t *testing.T) {
	opts := testOptions(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("X-Auth-Token"))
		switch r.URL.Path {
		case "/v2/zones":
			assert.Equal(t, "public", r.URL.Query().Get("type"))
			_, _ = w.Write([]byte(`{"zones":[{"id":"zid","name":"example.com.","record_num":3,
			  "updated_at":"2024-01-02T03:04:05.000+08:00"}],"metadata":{"total_count":1}}`))
		case "/v2/zones/zid/recordsets":
			_, _ = w.Write([]byte(`{"recordsets":[
			  {"id":"rs1","name":"example.com.","type":"MX","ttl":300,"records":["10 mail.example.com."]},
			  {"id":"rs2","name":"www.example.com.","type":"A","ttl":300,"records":["1.2.3.4"]}
			],"metadata":{"total_count":2}}`))
		}
	})
	c := NewHuaweiClient("tok", opts)

	items, err := c.ListDomains(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "example.com", items[0].Name)
	assert.Equal(t, "2024-01-01T19:04:05Z", *items[0].LastChangedAt)

	records, err := c.ListRecords(context.Background(), "zid", "example.com")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "@", records[0].Name)
	assert.Equal(t, "mail.example.com.", records[0].Content)
	assert.EqualValues(t, 10, *records[0].MXPriority)
	assert.Equal(t, "www", records[1].Name)
}

func TestHuaweiClient_CreateMX(t *testing.T) {
	opts := testOptions(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body := gjson.ParseBytes(mustRead(t, r))
		assert.Equal(t, "example.com.", body.Get("name").String())
		assert.Equal(t, "10 mail.example.com", body.Get("records.0").String())
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"id":"rs9","status":"PENDING_CREATE"}`))
	})

	req := &entity.RecordCreateRequest{RecordFields: entity.RecordFields{
		RecordType: entity.RecordTypeMX, Name: "@", Content: "mail.example.com", TTL: 300, MXPriority: u16(10),
	}}
	rec, err := NewHuaweiClient("tok", opts).CreateRecord(context.Background(), "zid", "example.com", req)
	require.NoError(t, err)
	assert.Equal(t, "rs9", rec.ID)
}

func TestHuaweiClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode domain.Code
	}{
		{"iam token rejected", http.StatusUnauthorized, `{"code":"APIGW.0301","message":"Incorrect IAM authentication information"}`, domain.CodeAuthFailed},
		{"conflict", http.StatusBadRequest, `{"error_code":"DNS.0312","error_msg":"Record set exists"}`, domain.CodeDeleteFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			err := NewHuaweiClient("tok", opts).DeleteRecord(context.Background(), "zid", "example.com", "rs1")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.CodeOf(err))
		})
	}
}
