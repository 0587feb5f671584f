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
	DNSPodBaseURL = "https://dnsapi.cn"

	dnspodPageSize    = 500
	dnspodDefaultLine = "默认"

	// Legacy status codes meaning "nothing to list" rather than failure.
	dnspodNoDomains = "9"
	dnspodNoRecords = "10"
)

// DNSPodClient targets the legacy dnsapi.cn form API.
type DNSPodClient struct {
	tr *transport
}

func NewDNSPodClient(tokenID, token string, opts Options) *DNSPodClient {
	s := &signer.LoginToken{TokenID: tokenID, Token: token}
	return &DNSPodClient{tr: newTransport(entity.ProviderDNSPod, DNSPodBaseURL, s, opts)}
}

func (c *DNSPodClient) Provider() entity.Provider {
	return entity.ProviderDNSPod
}

func (c *DNSPodClient) Test(ctx context.Context) error {
	_, err := c.ListDomains(ctx)
	return err
}

// call posts a form and returns the parsed body together with the status
// code, leaving the "no data" codes to the caller.
func (c *DNSPodClient) call(ctx context.Context, failCode domain.Code, action string, form url.Values) (gjson.Result, string, error) {
	r := signer.NewRequest(http.MethodPost, "/"+action)
	r.Form = form
	body, err := c.tr.do(ctx, failCode, r, nil)
	if err != nil {
		return gjson.Result{}, "", err
	}
	doc, err := parseJSON(body)
	if err != nil {
		return gjson.Result{}, "", err
	}
	code, _ := looseString(doc.Get("status.code"))
	return doc, code, nil
}

func dnspodStatusError(doc gjson.Result) error {
	return domain.New(domain.CodeAuthFailed, doc.Get("status.message").String())
}

func (c *DNSPodClient) ListDomains(ctx context.Context) ([]entity.DomainItem, error) {
	var items []entity.DomainItem
	for offset := 0; ; offset += dnspodPageSize {
		doc, code, err := c.call(ctx, domain.CodeFetchFailed, "Domain.List", url.Values{
			"offset": {strconv.Itoa(offset)},
			"length": {strconv.Itoa(dnspodPageSize)},
		})
		if err != nil {
			return nil, err
		}
		if code == dnspodNoDomains {
			break
		}
		if code != "1" {
			return nil, dnspodStatusError(doc)
		}
		domains := doc.Get("domains").Array()
		for _, d := range domains {
			id, _ := looseString(d.Get("id"))
			items = append(items, entity.DomainItem{
				Provider:      entity.ProviderDNSPod,
				Name:          d.Get("name").String(),
				ProviderID:    id,
				Status:        entity.DomainStatusOK,
				RecordsCount:  looseUint32(d.Get("records")),
				LastChangedAt: normalizeTime(d.Get("updated_on").String(), time.DateTime),
			})
		}
		if len(domains) < dnspodPageSize || int64(len(items)) >= doc.Get("info.domain_total").Int() {
			break
		}
	}
	return items, nil
}

func (c *DNSPodClient) ListRecords(ctx context.Context, zoneID, zoneName string) ([]entity.DNSRecord, error) {
	var out []entity.DNSRecord
	for offset := 0; ; offset += dnspodPageSize {
		doc, code, err := c.call(ctx, domain.CodeFetchFailed, "Record.List", url.Values{
			"domain_id": {zoneID},
			"offset":    {strconv.Itoa(offset)},
			"length":    {strconv.Itoa(dnspodPageSize)},
		})
		if err != nil {
			return nil, err
		}
		if code == dnspodNoRecords {
			break
		}
		if code != "1" {
			return nil, dnspodStatusError(doc)
		}
		records := doc.Get("records").Array()
		for _, r := range records {
			out = append(out, dnspodRecord(r, zoneName, nil))
		}
		if len(records) < dnspodPageSize || int64(len(out)) >= doc.Get("info.records_num").Int() {
			break
		}
	}
	return out, nil
}

func dnspodWriteForm(zoneID string, f *entity.RecordFields) url.Values {
	form := url.Values{
		"domain_id":   {zoneID},
		"sub_domain":  {f.Name},
		"record_type": {string(f.RecordType)},
		"record_line": {dnspodDefaultLine},
		"value":       {EncodeContent(f)},
		"ttl":         {strconv.FormatUint(uint64(f.TTL), 10)},
	}
	if f.RecordType == entity.RecordTypeMX && f.MXPriority != nil {
		form.Set("mx", strconv.Itoa(int(*f.MXPriority)))
	}
	return form
}

func (c *DNSPodClient) CreateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordCreateRequest) (*entity.DNSRecord, error) {
	doc, code, err := c.call(ctx, domain.CodeCreateFailed, "Record.Create", dnspodWriteForm(zoneID, &req.RecordFields))
	if err != nil {
		return nil, err
	}
	if code != "1" {
		return nil, dnspodStatusError(doc)
	}
	rec := dnspodRecord(doc.Get("record"), zoneName, &req.RecordFields)
	return &rec, nil
}

func (c *DNSPodClient) UpdateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordUpdateRequest) (*entity.DNSRecord, error) {
	form := dnspodWriteForm(zoneID, &req.RecordFields)
	form.Set("record_id", req.ID)
	doc, code, err := c.call(ctx, domain.CodeUpdateFailed, "Record.Modify", form)
	if err != nil {
		return nil, err
	}
	if code != "1" {
		return nil, dnspodStatusError(doc)
	}
	rec := dnspodRecord(doc.Get("record"), zoneName, &req.RecordFields)
	if rec.ID == "" {
		rec.ID = req.ID
	}
	return &rec, nil
}

func (c *DNSPodClient) DeleteRecord(ctx context.Context, zoneID, _ string, recordID string) error {
	doc, code, err := c.call(ctx, domain.CodeDeleteFailed, "Record.Remove", url.Values{
		"domain_id": {zoneID},
		"record_id": {recordID},
	})
	if err != nil {
		return err
	}
	if code != "1" {
		return dnspodStatusError(doc)
	}
	return nil
}

// dnspodRecord converts a record object. Write responses echo only some
// fields, so the submitted fields fill the gaps.
func dnspodRecord(v gjson.Result, zoneName string, sent *entity.RecordFields) entity.DNSRecord {
	id, _ := looseString(v.Get("id"))
	rec := entity.DNSRecord{
		ID:       id,
		Provider: entity.ProviderDNSPod,
		Domain:   zoneName,
		Name:     v.Get("name").String(),
		TTL:      600,
	}

	value, hasValue := looseString(v.Get("value"))
	rec.RecordType = entity.RecordType(v.Get("type").String())
	if sent != nil {
		if rec.RecordType == "" {
			rec.RecordType = sent.RecordType
		}
		if !hasValue {
			value = EncodeContent(sent)
		}
		if rec.Name == "" {
			rec.Name = sent.Name
		}
		rec.TTL = sent.TTL
		rec.MXPriority = sent.MXPriority
	}
	if rec.RecordType == "" {
		rec.RecordType = entity.RecordTypeA
	}
	if ttl := looseUint32(v.Get("ttl")); ttl != nil {
		rec.TTL = *ttl
	}
	if mx := looseUint16(v.Get("mx")); mx != nil {
		rec.MXPriority = mx
	}
	if rec.RecordType != entity.RecordTypeMX {
		rec.MXPriority = nil
	}
	DecodeContent(&rec, value)
	return rec
}
