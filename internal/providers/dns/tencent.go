package dns

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	dnspod "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/dnspod/v20210323"
	"github.com/tidwall/gjson"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/providers/dns/signer"
)

const (
	TencentBaseURL = "https://dnspod.tencentcloudapi.com"

	tencentService      = "dnspod"
	tencentAPIVersion   = "2021-03-23"
	tencentDomainPage   = 200
	tencentRecordPage   = 500
	tencentDefaultLine  = "默认"
	tencentNoDataPrefix = "ResourceNotFound.NoData"
)

// TencentClient calls the DNSPod API 3.0 with TC3 signatures. Write
// requests are built from the SDK request models.
type TencentClient struct {
	tr     *transport
	signer signer.TC3
}

func NewTencentClient(secretID, secretKey string, opts Options) *TencentClient {
	tr := newTransport(entity.ProviderTencentCloud, TencentBaseURL, nil, opts)
	return &TencentClient{
		tr: tr,
		signer: signer.TC3{
			SecretID:  secretID,
			SecretKey: secretKey,
			Host:      hostOf(tr.baseURL),
			Service:   tencentService,
			Version:   tencentAPIVersion,
		},
	}
}

func (c *TencentClient) Provider() entity.Provider {
	return entity.ProviderTencentCloud
}

func (c *TencentClient) Test(ctx context.Context) error {
	_, err := c.ListDomains(ctx)
	return err
}

// call returns the parsed body and, when the API reported an error, its
// code alongside the mapped error.
func (c *TencentClient) call(ctx context.Context, failCode domain.Code, action string, payload []byte) (gjson.Result, string, error) {
	r := signer.NewRequest(http.MethodPost, "/")
	r.Body = payload
	body, err := c.tr.doWith(ctx, failCode, r, nil, c.signer.WithAction(action))
	if err != nil {
		return gjson.Result{}, "", err
	}
	doc, err := parseJSON(body)
	if err != nil {
		return gjson.Result{}, "", err
	}
	apiErr := doc.Get("Response.Error")
	if !apiErr.Exists() {
		return doc, "", nil
	}
	code := apiErr.Get("Code").String()
	if code == "" {
		code = "FailedOperation"
	}
	msg := apiErr.Get("Message").String()
	if msg == "" {
		msg = "TencentCloud request failed"
	}
	if strings.Contains(code, "AuthFailure") || strings.Contains(code, "UnauthorizedOperation") {
		return doc, code, domain.New(domain.CodeAuthFailed, msg)
	}
	return doc, code, domain.New(failCode, msg)
}

// tencentSelector resolves the Domain/DomainId pair. Domain is mandatory;
// the zone ID stands in for it only when it looks like a domain name.
func tencentSelector(zoneID, zoneName string) (string, *uint64, error) {
	name := strings.TrimSpace(zoneName)
	if name == "" {
		if fallback := strings.TrimSpace(zoneID); strings.Contains(fallback, ".") {
			name = fallback
		}
	}
	if name == "" {
		return "", nil, domain.New(domain.CodeInvalidInput, "domain is required")
	}
	if id, err := strconv.ParseUint(strings.TrimSpace(zoneID), 10, 64); err == nil && id > 0 {
		return name, &id, nil
	}
	return name, nil, nil
}

// tencentRecordID parses a RecordId, which the API types as a uint64.
func tencentRecordID(id string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil || v == 0 {
		return 0, domain.Newf(domain.CodeInvalidInput, "invalid record id: %s", id)
	}
	return v, nil
}

func (c *TencentClient) ListDomains(ctx context.Context) ([]entity.DomainItem, error) {
	var items []entity.DomainItem
	for offset := 0; ; offset += tencentDomainPage {
		payload, err := marshalBody(map[string]any{"Offset": offset, "Limit": tencentDomainPage})
		if err != nil {
			return nil, err
		}
		doc, code, err := c.call(ctx, domain.CodeFetchFailed, "DescribeDomainList", payload)
		if strings.HasPrefix(code, tencentNoDataPrefix) {
			break
		}
		if err != nil {
			return nil, err
		}
		list := doc.Get("Response.DomainList").Array()
		for _, d := range list {
			id, _ := looseString(d.Get("DomainId"))
			items = append(items, entity.DomainItem{
				Provider:      entity.ProviderTencentCloud,
				Name:          d.Get("Name").String(),
				ProviderID:    id,
				Status:        entity.DomainStatusOK,
				RecordsCount:  looseUint32(d.Get("RecordCount")),
				LastChangedAt: normalizeTime(d.Get("UpdatedOn").String(), time.DateTime),
			})
		}
		total := doc.Get("Response.DomainCountInfo.AllTotal").Int()
		if len(list) < tencentDomainPage || int64(len(items)) >= total {
			break
		}
	}
	return items, nil
}

func (c *TencentClient) ListRecords(ctx context.Context, zoneID, zoneName string) ([]entity.DNSRecord, error) {
	name, id, err := tencentSelector(zoneID, zoneName)
	if err != nil {
		return nil, err
	}
	var out []entity.DNSRecord
	for offset := 0; ; offset += tencentRecordPage {
		req := map[string]any{"Domain": name, "Offset": offset, "Limit": tencentRecordPage}
		if id != nil {
			req["DomainId"] = *id
		}
		payload, err := marshalBody(req)
		if err != nil {
			return nil, err
		}
		doc, code, err := c.call(ctx, domain.CodeFetchFailed, "DescribeRecordList", payload)
		if strings.HasPrefix(code, tencentNoDataPrefix) {
			break
		}
		if err != nil {
			return nil, err
		}
		list := doc.Get("Response.RecordList").Array()
		for _, v := range list {
			if rec, ok := tencentRecord(v, zoneName); ok {
				out = append(out, rec)
			}
		}
		total := doc.Get("Response.RecordCountInfo.TotalCount").Int()
		if len(list) < tencentRecordPage || int64(len(out)) >= total {
			break
		}
	}
	return out, nil
}

func tencentRecord(v gjson.Result, zoneName string) (entity.DNSRecord, bool) {
	id, ok := looseString(v.Get("RecordId"))
	if !ok {
		return entity.DNSRecord{}, false
	}
	rec := entity.DNSRecord{
		ID:         id,
		Provider:   entity.ProviderTencentCloud,
		Domain:     zoneName,
		RecordType: entity.RecordTypeA,
		Name:       "@",
		TTL:        600,
	}
	if t, ok := looseString(v.Get("Type")); ok {
		rec.RecordType = entity.RecordType(t)
	}
	if n, ok := looseString(v.Get("Name")); ok {
		rec.Name = n
	}
	if ttl := looseUint32(v.Get("TTL")); ttl != nil {
		rec.TTL = *ttl
	}
	if rec.RecordType == entity.RecordTypeMX {
		rec.MXPriority = looseUint16(v.Get("MX"))
	}
	value, _ := looseString(v.Get("Value"))
	DecodeContent(&rec, value)
	return rec, true
}

func tencentSubDomain(name string) string {
	if strings.TrimSpace(name) == "" {
		return "@"
	}
	return name
}

func tencentMX(f *entity.RecordFields) (*uint64, error) {
	if f.RecordType != entity.RecordTypeMX {
		return nil, nil
	}
	if f.MXPriority == nil {
		return nil, domain.New(domain.CodeInvalidInput, "MX record requires mx priority")
	}
	return common.Uint64Ptr(uint64(*f.MXPriority)), nil
}

func (c *TencentClient) CreateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordCreateRequest) (*entity.DNSRecord, error) {
	name, domainID, err := tencentSelector(zoneID, zoneName)
	if err != nil {
		return nil, err
	}
	mx, err := tencentMX(&req.RecordFields)
	if err != nil {
		return nil, err
	}

	r := dnspod.NewCreateRecordRequest()
	r.Domain = common.StringPtr(name)
	r.DomainId = domainID
	r.SubDomain = common.StringPtr(tencentSubDomain(req.Name))
	r.RecordType = common.StringPtr(string(req.RecordType))
	r.RecordLine = common.StringPtr(tencentDefaultLine)
	r.Value = common.StringPtr(EncodeContent(&req.RecordFields))
	r.TTL = common.Uint64Ptr(uint64(req.TTL))
	r.MX = mx

	doc, _, err := c.call(ctx, domain.CodeCreateFailed, "CreateRecord", []byte(r.ToJsonString()))
	if err != nil {
		return nil, err
	}
	resp := dnspod.NewCreateRecordResponse()
	if err := resp.FromJsonString(doc.Raw); err != nil {
		return nil, domain.Newf(domain.CodeJSONDecodeFailed, "Failed to decode response: %v (response text: %s)", err, doc.Raw)
	}
	id := "0"
	if resp.Response != nil && resp.Response.RecordId != nil {
		id = strconv.FormatUint(*resp.Response.RecordId, 10)
	}
	return req.ToRecord(entity.ProviderTencentCloud, zoneName, id), nil
}

func (c *TencentClient) UpdateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordUpdateRequest) (*entity.DNSRecord, error) {
	name, domainID, err := tencentSelector(zoneID, zoneName)
	if err != nil {
		return nil, err
	}
	mx, err := tencentMX(&req.RecordFields)
	if err != nil {
		return nil, err
	}
	recordID, err := tencentRecordID(req.ID)
	if err != nil {
		return nil, err
	}

	r := dnspod.NewModifyRecordRequest()
	r.Domain = common.StringPtr(name)
	r.DomainId = domainID
	r.RecordId = common.Uint64Ptr(recordID)
	r.SubDomain = common.StringPtr(tencentSubDomain(req.Name))
	r.RecordType = common.StringPtr(string(req.RecordType))
	r.RecordLine = common.StringPtr(tencentDefaultLine)
	r.Value = common.StringPtr(EncodeContent(&req.RecordFields))
	r.TTL = common.Uint64Ptr(uint64(req.TTL))
	r.MX = mx

	doc, _, err := c.call(ctx, domain.CodeUpdateFailed, "ModifyRecord", []byte(r.ToJsonString()))
	if err != nil {
		return nil, err
	}
	id := strconv.FormatUint(recordID, 10)
	if s, ok := looseString(doc.Get("Response.RecordId")); ok {
		id = s
	}
	return req.ToRecord(entity.ProviderTencentCloud, zoneName, id), nil
}

func (c *TencentClient) DeleteRecord(ctx context.Context, zoneID, zoneName, recordID string) error {
	name, domainID, err := tencentSelector(zoneID, zoneName)
	if err != nil {
		return err
	}
	id, err := tencentRecordID(recordID)
	if err != nil {
		return err
	}

	r := dnspod.NewDeleteRecordRequest()
	r.Domain = common.StringPtr(name)
	r.DomainId = domainID
	r.RecordId = common.Uint64Ptr(id)

	_, _, err = c.call(ctx, domain.CodeDeleteFailed, "DeleteRecord", []byte(r.ToJsonString()))
	return err
}
