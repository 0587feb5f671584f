package dns

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/providers/dns/signer"
)

const (
	HuaweiBaseURL = "https://dns.cn-north-4.myhuaweicloud.com"

	huaweiPageSize = 500
)

// HuaweiClient manages public zones through the recordset API. Names on the
// wire are absolute with a trailing dot.
type HuaweiClient struct {
	tr *transport
}

func NewHuaweiClient(token string, opts Options) *HuaweiClient {
	return &HuaweiClient{tr: newTransport(entity.ProviderHuawei, HuaweiBaseURL, signer.HuaweiAuth(token), opts)}
}

func (c *HuaweiClient) Provider() entity.Provider {
	return entity.ProviderHuawei
}

func (c *HuaweiClient) Test(ctx context.Context) error {
	_, err := c.ListDomains(ctx)
	return err
}

func (c *HuaweiClient) get(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	r := signer.NewRequest(http.MethodGet, path)
	r.Query = query
	body, err := c.tr.do(ctx, domain.CodeFetchFailed, r, huaweiEnvelope)
	if err != nil {
		return gjson.Result{}, err
	}
	return parseJSON(body)
}

func (c *HuaweiClient) ListDomains(ctx context.Context) ([]entity.DomainItem, error) {
	var items []entity.DomainItem
	for offset := 0; ; offset += huaweiPageSize {
		doc, err := c.get(ctx, "/v2/zones", url.Values{
			"type":   {"public"},
			"limit":  {strconv.Itoa(huaweiPageSize)},
			"offset": {strconv.Itoa(offset)},
		})
		if err != nil {
			return nil, err
		}
		zones := doc.Get("zones").Array()
		for _, z := range zones {
			updated, _ := firstString(z, "updated_at", "update_at")
			items = append(items, entity.DomainItem{
				Provider:      entity.ProviderHuawei,
				Name:          strings.TrimSuffix(z.Get("name").String(), "."),
				ProviderID:    z.Get("id").String(),
				Status:        entity.DomainStatusOK,
				RecordsCount:  looseUint32(z.Get("record_num")),
				LastChangedAt: normalizeTime(updated),
			})
		}
		if len(zones) < huaweiPageSize || int64(len(items)) >= doc.Get("metadata.total_count").Int() {
			break
		}
	}
	return items, nil
}

func (c *HuaweiClient) ListRecords(ctx context.Context, zoneID, zoneName string) ([]entity.DNSRecord, error) {
	var out []entity.DNSRecord
	for offset := 0; ; offset += huaweiPageSize {
		doc, err := c.get(ctx, "/v2/zones/"+url.PathEscape(zoneID)+"/recordsets", url.Values{
			"limit":  {strconv.Itoa(huaweiPageSize)},
			"offset": {strconv.Itoa(offset)},
		})
		if err != nil {
			return nil, err
		}
		sets := doc.Get("recordsets").Array()
		for _, rs := range sets {
			out = append(out, huaweiRecord(rs, zoneName))
		}
		if len(sets) < huaweiPageSize || int64(len(out)) >= doc.Get("metadata.total_count").Int() {
			break
		}
	}
	return out, nil
}

func huaweiRecord(v gjson.Result, zoneName string) entity.DNSRecord {
	rec := entity.DNSRecord{
		ID:         v.Get("id").String(),
		Provider:   entity.ProviderHuawei,
		Domain:     zoneName,
		RecordType: entity.RecordType(v.Get("type").String()),
		Name:       RelativeName(v.Get("name").String(), zoneName),
		TTL:        uint32(v.Get("ttl").Uint()),
	}
	value := v.Get("records.0").String()
	if rec.RecordType == entity.RecordTypeMX {
		rec.MXPriority, value = splitMXValue(value)
		if p := looseUint16(v.Get("priority")); p != nil {
			rec.MXPriority = p
		}
	}
	DecodeContent(&rec, value)
	return rec
}

// splitMXValue splits "10 mail.example.com" into priority and host.
func splitMXValue(value string) (*uint16, string) {
	parts := strings.Fields(value)
	if len(parts) < 2 {
		return nil, value
	}
	p := parseUint16(parts[0])
	if p == nil {
		return nil, value
	}
	return p, strings.Join(parts[1:], " ")
}

func huaweiValue(f *entity.RecordFields) string {
	if f.RecordType == entity.RecordTypeMX {
		return strconv.Itoa(int(deref(f.MXPriority))) + " " + f.Content
	}
	return EncodeContent(f)
}

func huaweiBody(zoneName string, f *entity.RecordFields) ([]byte, error) {
	body := []byte(`{}`)
	var err error
	set := func(path string, v any) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, v)
		}
	}
	set("name", FQDN(f.Name, zoneName))
	set("type", string(f.RecordType))
	set("ttl", f.TTL)
	set("records.0", huaweiValue(f))
	if err != nil {
		return nil, domain.Newf(domain.CodeSerializeError, "%v", err)
	}
	return body, nil
}

func (c *HuaweiClient) write(ctx context.Context, failCode domain.Code, method, path, zoneName, fallbackID string, f *entity.RecordFields) (*entity.DNSRecord, error) {
	payload, err := huaweiBody(zoneName, f)
	if err != nil {
		return nil, err
	}
	r := signer.NewRequest(method, path)
	r.Body = payload
	body, err := c.tr.do(ctx, failCode, r, huaweiEnvelope)
	if err != nil {
		return nil, err
	}
	id := gjson.GetBytes(body, "id").String()
	if id == "" {
		id = fallbackID
	}
	return f.ToRecord(entity.ProviderHuawei, zoneName, id), nil
}

func (c *HuaweiClient) CreateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordCreateRequest) (*entity.DNSRecord, error) {
	return c.write(ctx, domain.CodeCreateFailed, http.MethodPost,
		"/v2/zones/"+url.PathEscape(zoneID)+"/recordsets", zoneName, "", &req.RecordFields)
}

func (c *HuaweiClient) UpdateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordUpdateRequest) (*entity.DNSRecord, error) {
	return c.write(ctx, domain.CodeUpdateFailed, http.MethodPut,
		"/v2/zones/"+url.PathEscape(zoneID)+"/recordsets/"+url.PathEscape(req.ID), zoneName, req.ID, &req.RecordFields)
}

func (c *HuaweiClient) DeleteRecord(ctx context.Context, zoneID, _ string, recordID string) error {
	r := signer.NewRequest(http.MethodDelete, "/v2/zones/"+url.PathEscape(zoneID)+"/recordsets/"+url.PathEscape(recordID))
	_, err := c.tr.do(ctx, domain.CodeDeleteFailed, r, huaweiEnvelope)
	return err
}

// huaweiEnvelope recognises both error shapes the API uses:
// {code, message} and {error_code, error_msg}.
func huaweiEnvelope(body []byte, failCode domain.Code) error {
	doc := gjson.ParseBytes(body)
	if msg := doc.Get("error_msg"); msg.Exists() {
		return domain.Newf(failCode, "%s: %s", doc.Get("error_code").String(), msg.String())
	}
	code, msg := doc.Get("code"), doc.Get("message")
	if code.Type == gjson.String && msg.Exists() {
		return domain.Newf(failCode, "%s: %s", code.Str, msg.String())
	}
	return nil
}
