package dns

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/providers/dns/signer"
)

const (
	DNSComBaseURL = "https://openapi.dns.com/api"

	dnscomPageSize    = 500
	dnscomDefaultView = "1"
)

// DNSComClient addresses records by domain name; zone IDs are only used
// for display.
type DNSComClient struct {
	tr *transport
}

func NewDNSComClient(apiKey, apiSecret string, opts Options) *DNSComClient {
	s := &signer.DNSCom{APIKey: apiKey, APISecret: apiSecret}
	return &DNSComClient{tr: newTransport(entity.ProviderDNSCom, DNSComBaseURL, s, opts)}
}

func (c *DNSComClient) Provider() entity.Provider {
	return entity.ProviderDNSCom
}

func (c *DNSComClient) Test(ctx context.Context) error {
	_, err := c.ListDomains(ctx)
	return err
}

func (c *DNSComClient) call(ctx context.Context, failCode domain.Code, method, path string, params url.Values) (gjson.Result, error) {
	r := signer.NewRequest(method, path)
	if method == http.MethodGet {
		r.Query = params
	} else {
		r.Form = params
	}
	body, err := c.tr.do(ctx, failCode, r, dnscomEnvelope)
	if err != nil {
		return gjson.Result{}, err
	}
	return parseJSON(body)
}

func (c *DNSComClient) ListDomains(ctx context.Context) ([]entity.DomainItem, error) {
	var items []entity.DomainItem
	for page := 1; ; page++ {
		doc, err := c.call(ctx, domain.CodeFetchFailed, http.MethodGet, "/domain/lists/", url.Values{
			"page":     {strconv.Itoa(page)},
			"paginate": {strconv.Itoa(dnscomPageSize)},
		})
		if err != nil {
			return nil, err
		}
		domains := doc.Get("data.data").Array()
		for _, d := range domains {
			id, _ := looseString(d.Get("id"))
			items = append(items, entity.DomainItem{
				Provider:      entity.ProviderDNSCom,
				Name:          d.Get("domain").String(),
				ProviderID:    id,
				Status:        entity.DomainStatusOK,
				RecordsCount:  looseUint32(d.Get("record_count")),
				LastChangedAt: normalizeTime(d.Get("updated_at").String(), time.DateTime),
			})
		}
		if len(domains) < dnscomPageSize {
			break
		}
	}
	return items, nil
}

func (c *DNSComClient) ListRecords(ctx context.Context, _ string, zoneName string) ([]entity.DNSRecord, error) {
	var out []entity.DNSRecord
	for page := 1; ; page++ {
		doc, err := c.call(ctx, domain.CodeFetchFailed, http.MethodGet, "/record/lists/", url.Values{
			"domain":   {zoneName},
			"page":     {strconv.Itoa(page)},
			"paginate": {strconv.Itoa(dnscomPageSize)},
		})
		if err != nil {
			return nil, err
		}
		records := doc.Get("data.data").Array()
		for _, r := range records {
			out = append(out, dnscomRecord(r, zoneName))
		}
		if len(records) < dnscomPageSize {
			break
		}
	}
	return out, nil
}

func dnscomRecord(v gjson.Result, zoneName string) entity.DNSRecord {
	id, _ := looseString(v.Get("id"))
	rec := entity.DNSRecord{
		ID:         id,
		Provider:   entity.ProviderDNSCom,
		Domain:     zoneName,
		RecordType: entity.RecordType(v.Get("type").String()),
		Name:       v.Get("record").String(),
		TTL:        uint32(v.Get("ttl").Uint()),
	}
	DecodeContent(&rec, v.Get("value").String())
	if rec.RecordType == entity.RecordTypeMX {
		rec.MXPriority = looseUint16(v.Get("mx"))
	}
	return rec
}

func dnscomWriteParams(zoneName string, f *entity.RecordFields) url.Values {
	params := url.Values{
		"domain":  {zoneName},
		"record":  {f.Name},
		"type":    {string(f.RecordType)},
		"value":   {EncodeContent(f)},
		"ttl":     {strconv.FormatUint(uint64(f.TTL), 10)},
		"view_id": {dnscomDefaultView},
	}
	if f.RecordType == entity.RecordTypeMX && f.MXPriority != nil {
		params.Set("mx", strconv.Itoa(int(*f.MXPriority)))
	}
	return params
}

func (c *DNSComClient) writeResult(doc gjson.Result, zoneName, fallbackID string, f *entity.RecordFields) *entity.DNSRecord {
	data := doc.Get("data")
	if data.IsObject() && data.Get("type").Exists() {
		rec := dnscomRecord(data, zoneName)
		if rec.ID == "" {
			rec.ID = fallbackID
		}
		return &rec
	}
	return f.ToRecord(entity.ProviderDNSCom, zoneName, fallbackID)
}

func (c *DNSComClient) CreateRecord(ctx context.Context, _ string, zoneName string, req *entity.RecordCreateRequest) (*entity.DNSRecord, error) {
	doc, err := c.call(ctx, domain.CodeCreateFailed, http.MethodPost, "/record/create/", dnscomWriteParams(zoneName, &req.RecordFields))
	if err != nil {
		return nil, err
	}
	id, _ := looseString(doc.Get("data.id"))
	return c.writeResult(doc, zoneName, id, &req.RecordFields), nil
}

func (c *DNSComClient) UpdateRecord(ctx context.Context, _ string, zoneName string, req *entity.RecordUpdateRequest) (*entity.DNSRecord, error) {
	params := dnscomWriteParams(zoneName, &req.RecordFields)
	params.Set("record_id", req.ID)
	doc, err := c.call(ctx, domain.CodeUpdateFailed, http.MethodPost, "/record/update/", params)
	if err != nil {
		return nil, err
	}
	return c.writeResult(doc, zoneName, req.ID, &req.RecordFields), nil
}

func (c *DNSComClient) DeleteRecord(ctx context.Context, _, zoneName, recordID string) error {
	_, err := c.call(ctx, domain.CodeDeleteFailed, http.MethodPost, "/record/delete/", url.Values{
		"domain":    {zoneName},
		"record_id": {recordID},
	})
	return err
}

// dnscomEnvelope rejects any {code != 0} response. The API reports bad keys
// and signatures this way, so the failure is classed as auth.
func dnscomEnvelope(body []byte, _ domain.Code) error {
	doc := gjson.ParseBytes(body)
	code := doc.Get("code")
	if !code.Exists() || code.Int() == 0 {
		return nil
	}
	msg := doc.Get("message").String()
	if msg == "" {
		msg = "DNS.COM API failed"
	}
	return domain.New(domain.CodeAuthFailed, msg)
}
