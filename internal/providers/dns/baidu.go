package dns

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/providers/dns/signer"
)

const BaiduBaseURL = "https://dns.baidubce.com"

// BaiduClient talks to Baidu Cloud DNS with bce-auth-v1 signatures. Lists
// follow the marker/nextMarker convention.
type BaiduClient struct {
	tr *transport
}

func NewBaiduClient(accessKeyID, secretAccessKey string, opts Options) *BaiduClient {
	tr := newTransport(entity.ProviderBaidu, BaiduBaseURL, nil, opts)
	tr.signer = &signer.BCEAuth{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		Host:            hostOf(tr.baseURL),
	}
	return &BaiduClient{tr: tr}
}

func (c *BaiduClient) Provider() entity.Provider {
	return entity.ProviderBaidu
}

func (c *BaiduClient) Test(ctx context.Context) error {
	_, err := c.ListDomains(ctx)
	return err
}

// list walks every page of path and hands each element of arrayKey to fn.
func (c *BaiduClient) list(ctx context.Context, path, arrayKey string, fn func(gjson.Result)) error {
	marker := ""
	for {
		r := signer.NewRequest(http.MethodGet, path)
		if marker != "" {
			r.Query.Set("marker", marker)
		}
		body, err := c.tr.do(ctx, domain.CodeFetchFailed, r, baiduEnvelope)
		if err != nil {
			return err
		}
		doc, err := parseJSON(body)
		if err != nil {
			return err
		}
		doc.Get(arrayKey).ForEach(func(_, v gjson.Result) bool {
			fn(v)
			return true
		})
		next := doc.Get("nextMarker").String()
		if !doc.Get("isTruncated").Bool() || next == "" || next == marker {
			return nil
		}
		marker = next
	}
}

func (c *BaiduClient) ListDomains(ctx context.Context) ([]entity.DomainItem, error) {
	var items []entity.DomainItem
	err := c.list(ctx, "/v1/zone", "zones", func(z gjson.Result) {
		id, _ := looseString(z.Get("id"))
		updated, _ := firstString(z, "update_time", "updateTime")
		items = append(items, entity.DomainItem{
			Provider:      entity.ProviderBaidu,
			Name:          z.Get("name").String(),
			ProviderID:    id,
			Status:        entity.DomainStatusOK,
			RecordsCount:  looseUint32(firstOf(z, "record_count", "recordCount")),
			LastChangedAt: normalizeTime(updated),
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *BaiduClient) ListRecords(ctx context.Context, zoneID, zoneName string) ([]entity.DNSRecord, error) {
	var out []entity.DNSRecord
	err := c.list(ctx, "/v1/zone/"+url.PathEscape(zoneID)+"/record", "records", func(v gjson.Result) {
		id, _ := looseString(v.Get("id"))
		rec := entity.DNSRecord{
			ID:         id,
			Provider:   entity.ProviderBaidu,
			Domain:     zoneName,
			RecordType: entity.RecordType(v.Get("type").String()),
			Name:       v.Get("rr").String(),
			TTL:        uint32(v.Get("ttl").Uint()),
		}
		DecodeContent(&rec, v.Get("value").String())
		if rec.RecordType == entity.RecordTypeMX {
			rec.MXPriority = looseUint16(v.Get("priority"))
		}
		out = append(out, rec)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func baiduPayload(f *entity.RecordFields) map[string]any {
	payload := map[string]any{
		"rr":    f.Name,
		"type":  string(f.RecordType),
		"value": EncodeContent(f),
		"ttl":   f.TTL,
	}
	if f.RecordType == entity.RecordTypeMX && f.MXPriority != nil {
		payload["priority"] = *f.MXPriority
	}
	return payload
}

func (c *BaiduClient) write(ctx context.Context, failCode domain.Code, method, path, zoneName, fallbackID string, f *entity.RecordFields) (*entity.DNSRecord, error) {
	payload, err := marshalBody(baiduPayload(f))
	if err != nil {
		return nil, err
	}
	r := signer.NewRequest(method, path)
	r.Body = payload
	body, err := c.tr.do(ctx, failCode, r, baiduEnvelope)
	if err != nil {
		return nil, err
	}
	id := fallbackID
	if s, ok := looseString(gjson.GetBytes(body, "id")); ok {
		id = s
	}
	return f.ToRecord(entity.ProviderBaidu, zoneName, id), nil
}

func (c *BaiduClient) CreateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordCreateRequest) (*entity.DNSRecord, error) {
	return c.write(ctx, domain.CodeCreateFailed, http.MethodPost,
		"/v1/zone/"+url.PathEscape(zoneID)+"/record", zoneName, "", &req.RecordFields)
}

func (c *BaiduClient) UpdateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordUpdateRequest) (*entity.DNSRecord, error) {
	return c.write(ctx, domain.CodeUpdateFailed, http.MethodPut,
		"/v1/zone/"+url.PathEscape(zoneID)+"/record/"+url.PathEscape(req.ID), zoneName, req.ID, &req.RecordFields)
}

func (c *BaiduClient) DeleteRecord(ctx context.Context, zoneID, _ string, recordID string) error {
	r := signer.NewRequest(http.MethodDelete, "/v1/zone/"+url.PathEscape(zoneID)+"/record/"+url.PathEscape(recordID))
	_, err := c.tr.do(ctx, domain.CodeDeleteFailed, r, baiduEnvelope)
	return err
}

// baiduEnvelope maps the BCE error body {code, message, requestId}.
func baiduEnvelope(body []byte, failCode domain.Code) error {
	doc := gjson.ParseBytes(body)
	code, msg := doc.Get("code"), doc.Get("message")
	if code.Type != gjson.String || !msg.Exists() {
		return nil
	}
	return domain.Newf(failCode, "%s: %s", code.Str, msg.String())
}
