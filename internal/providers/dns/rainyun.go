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
	RainyunBaseURL = "https://api.v2.rainyun.com"

	rainyunPageSize    = 500
	rainyunLine        = "DEFAULT"
	rainyunProductType = "rcs"
)

// Rainyun responses are loosely typed: the same list can sit at the root or
// under one of several wrapper keys, and field names vary between
// endpoints. Lookups therefore try candidates in order.
var (
	rainyunArrayPaths = []string{"data", "data.data", "data.list", "list", "records", "items"}

	rainyunDomainName    = []string{"domain", "name", "domain_name"}
	rainyunDomainID      = []string{"id", "domain_id", "domainId"}
	rainyunDomainCount   = []string{"record_count", "records_count", "recordCount"}
	rainyunDomainUpdated = []string{"updated_at", "update_time", "updatedAt"}

	rainyunRecordID       = []string{"record_id", "id"}
	rainyunRecordType     = []string{"type", "record_type", "recordType"}
	rainyunRecordHost     = []string{"host", "name", "rr"}
	rainyunRecordValue    = []string{"value", "content"}
	rainyunRecordMX       = []string{"mx", "priority", "mx_priority"}
	rainyunRecordPriority = []string{"srv_priority", "priority"}
	rainyunRecordWeight   = []string{"srv_weight", "weight"}
	rainyunRecordPort     = []string{"srv_port", "port"}
	rainyunRecordTag      = []string{"caa_tag", "tag"}
)

type RainyunClient struct {
	tr *transport
}

func NewRainyunClient(apiKey string, opts Options) *RainyunClient {
	return &RainyunClient{tr: newTransport(entity.ProviderRainyun, RainyunBaseURL, signer.RainyunAuth(apiKey), opts)}
}

func (c *RainyunClient) Provider() entity.Provider {
	return entity.ProviderRainyun
}

func (c *RainyunClient) Test(ctx context.Context) error {
	_, err := c.ListDomains(ctx)
	return err
}

func rainyunArray(doc gjson.Result) []gjson.Result {
	if doc.IsArray() {
		return doc.Array()
	}
	for _, p := range rainyunArrayPaths {
		if r := doc.Get(p); r.IsArray() {
			return r.Array()
		}
	}
	return nil
}

func (c *RainyunClient) ListDomains(ctx context.Context) ([]entity.DomainItem, error) {
	r := signer.NewRequest(http.MethodGet, "/product/domain/")
	r.Query.Set("options", "{}")
	body, err := c.tr.do(ctx, domain.CodeFetchFailed, r, nil)
	if err != nil {
		return nil, err
	}
	doc, err := parseJSON(body)
	if err != nil {
		return nil, err
	}
	var items []entity.DomainItem
	for _, v := range rainyunArray(doc) {
		name, ok := firstString(v, rainyunDomainName...)
		if !ok {
			continue
		}
		id, ok := firstString(v, rainyunDomainID...)
		if !ok {
			continue
		}
		var updated *string
		if s, ok := firstString(v, rainyunDomainUpdated...); ok {
			updated = &s
		}
		items = append(items, entity.DomainItem{
			Provider:      entity.ProviderRainyun,
			Name:          name,
			ProviderID:    id,
			Status:        entity.DomainStatusOK,
			RecordsCount:  looseUint32(firstOf(v, rainyunDomainCount...)),
			LastChangedAt: updated,
		})
	}
	return items, nil
}

func (c *RainyunClient) ListRecords(ctx context.Context, zoneID, zoneName string) ([]entity.DNSRecord, error) {
	r := signer.NewRequest(http.MethodGet, "/product/domain/"+url.PathEscape(zoneID)+"/dns/")
	r.Query.Set("limit", strconv.Itoa(rainyunPageSize))
	r.Query.Set("page_no", "1")
	body, err := c.tr.do(ctx, domain.CodeFetchFailed, r, nil)
	if err != nil {
		return nil, err
	}
	doc, err := parseJSON(body)
	if err != nil {
		return nil, err
	}
	var out []entity.DNSRecord
	for _, v := range rainyunArray(doc) {
		if rec, ok := rainyunRecord(v, zoneName); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func rainyunRecord(v gjson.Result, zoneName string) (entity.DNSRecord, bool) {
	id, ok := firstString(v, rainyunRecordID...)
	if !ok {
		return entity.DNSRecord{}, false
	}
	rt, ok := firstString(v, rainyunRecordType...)
	if !ok {
		return entity.DNSRecord{}, false
	}
	host, ok := firstString(v, rainyunRecordHost...)
	if !ok {
		return entity.DNSRecord{}, false
	}
	value, ok := firstString(v, rainyunRecordValue...)
	if !ok {
		return entity.DNSRecord{}, false
	}

	rec := entity.DNSRecord{
		ID:         id,
		Provider:   entity.ProviderRainyun,
		Domain:     zoneName,
		RecordType: entity.RecordType(strings.ToUpper(rt)),
		Name:       host,
		Content:    value,
		TTL:        600,
	}
	if ttl := looseUint32(v.Get("ttl")); ttl != nil {
		rec.TTL = *ttl
	}

	switch rec.RecordType {
	case entity.RecordTypeMX:
		rec.MXPriority = looseUint16(firstOf(v, rainyunRecordMX...))
	case entity.RecordTypeSRV:
		rec.SRVPriority = looseUint16(firstOf(v, rainyunRecordPriority...))
		rec.SRVWeight = looseUint16(firstOf(v, rainyunRecordWeight...))
		rec.SRVPort = looseUint16(firstOf(v, rainyunRecordPort...))
		if rec.SRVPriority == nil && rec.SRVWeight == nil && rec.SRVPort == nil {
			DecodeContent(&rec, value)
		}
	case entity.RecordTypeCAA:
		if tag, ok := firstString(v, rainyunRecordTag...); ok {
			rec.CAATag = &tag
		} else {
			DecodeContent(&rec, value)
		}
	}
	return rec, true
}

func rainyunBody(zoneID string, recordID uint64, f *entity.RecordFields) ([]byte, error) {
	productID, _ := strconv.ParseUint(strings.TrimSpace(zoneID), 10, 64)
	body := []byte(`{}`)
	var err error
	set := func(path string, v any) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, v)
		}
	}
	set("host", f.Name)
	set("level", 0)
	set("line", rainyunLine)
	set("rain_product_id", productID)
	set("rain_product_type", rainyunProductType)
	set("record_id", recordID)
	set("ttl", f.TTL)
	set("type", string(f.RecordType))
	set("value", EncodeContent(f))
	if err != nil {
		return nil, domain.Newf(domain.CodeSerializeError, "%v", err)
	}
	return body, nil
}

func parseRainyunRecordID(id string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, domain.Newf(domain.CodeInvalidInput, "invalid record ID: %q", id)
	}
	return n, nil
}

func (c *RainyunClient) write(ctx context.Context, failCode domain.Code, method, zoneID, zoneName string, recordID uint64, f *entity.RecordFields) (*entity.DNSRecord, error) {
	payload, err := rainyunBody(zoneID, recordID, f)
	if err != nil {
		return nil, err
	}
	r := signer.NewRequest(method, "/product/domain/"+url.PathEscape(zoneID)+"/dns")
	r.Body = payload
	body, err := c.tr.do(ctx, failCode, r, nil)
	if err != nil {
		return nil, err
	}

	id := strconv.FormatUint(recordID, 10)
	if doc := gjson.ParseBytes(body); doc.IsObject() {
		candidate := doc
		if rec := doc.Get("data.record"); rec.IsObject() {
			candidate = rec
		} else if data := doc.Get("data"); data.IsObject() {
			candidate = data
		}
		if rec, ok := rainyunRecord(candidate, zoneName); ok {
			return &rec, nil
		}
		if s, ok := firstString(candidate, rainyunRecordID...); ok {
			id = s
		}
	}
	return f.ToRecord(entity.ProviderRainyun, zoneName, id), nil
}

func (c *RainyunClient) CreateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordCreateRequest) (*entity.DNSRecord, error) {
	return c.write(ctx, domain.CodeCreateFailed, http.MethodPost, zoneID, zoneName, 0, &req.RecordFields)
}

func (c *RainyunClient) UpdateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordUpdateRequest) (*entity.DNSRecord, error) {
	id, err := parseRainyunRecordID(req.ID)
	if err != nil {
		return nil, err
	}
	return c.write(ctx, domain.CodeUpdateFailed, http.MethodPatch, zoneID, zoneName, id, &req.RecordFields)
}

func (c *RainyunClient) DeleteRecord(ctx context.Context, zoneID, _ string, recordID string) error {
	id, err := parseRainyunRecordID(recordID)
	if err != nil {
		return err
	}
	body, err := sjson.SetBytes([]byte(`{}`), "record_id", id)
	if err != nil {
		return domain.Newf(domain.CodeSerializeError, "%v", err)
	}
	r := signer.NewRequest(http.MethodDelete, "/product/domain/"+url.PathEscape(zoneID)+"/dns/")
	r.Body = body
	_, err = c.tr.do(ctx, domain.CodeDeleteFailed, r, nil)
	return err
}
