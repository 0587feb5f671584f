package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cloudflare/cloudflare-go/v2"
	cfdns "github.com/cloudflare/cloudflare-go/v2/dns"
	"github.com/cloudflare/cloudflare-go/v2/option"
	"github.com/cloudflare/cloudflare-go/v2/zones"
	"github.com/tidwall/gjson"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/providers/dns/signer"
)

const (
	CloudflareBaseURL = "https://api.cloudflare.com/client/v4"

	cloudflareZonePageSize     = 50
	cloudflareRecordPageSize   = 500
	cloudflareConflictPageSize = 100
)

// CloudflareClient enumerates zones and deletes records through the SDK and
// talks to the v4 record endpoints directly, since structured SRV and CAA
// data round-trips more predictably as raw JSON.
type CloudflareClient struct {
	tr  *transport
	sdk *cloudflare.Client
}

func NewCloudflareClient(email, apiKey string, opts Options) *CloudflareClient {
	tr := newTransport(entity.ProviderCloudflare, CloudflareBaseURL, signer.CloudflareAuth(email, apiKey), opts)
	sdk := cloudflare.NewClient(
		option.WithAPIEmail(email),
		option.WithAPIKey(apiKey),
		option.WithBaseURL(tr.baseURL+"/"),
		option.WithHTTPClient(tr.client),
		option.WithMaxRetries(0),
		option.WithHeader("User-Agent", UserAgent),
	)
	return &CloudflareClient{tr: tr, sdk: sdk}
}

func (c *CloudflareClient) Provider() entity.Provider {
	return entity.ProviderCloudflare
}

func (c *CloudflareClient) Test(ctx context.Context) error {
	_, err := c.ListDomains(ctx)
	return err
}

func (c *CloudflareClient) ListDomains(ctx context.Context) ([]entity.DomainItem, error) {
	var items []entity.DomainItem
	pager := c.sdk.Zones.ListAutoPaging(ctx, zones.ZoneListParams{
		PerPage: cloudflare.F(float64(cloudflareZonePageSize)),
	})
	for pager.Next() {
		zone := pager.Current()
		items = append(items, entity.DomainItem{
			Provider:      entity.ProviderCloudflare,
			Name:          zone.Name,
			ProviderID:    zone.ID,
			Status:        entity.DomainStatusOK,
			RecordsCount:  c.recordsCount(ctx, zone.ID),
			LastChangedAt: formatTime(zone.ModifiedOn),
		})
	}
	if err := pager.Err(); err != nil {
		return nil, c.sdkError(domain.CodeFetchFailed, err)
	}
	return items, nil
}

// recordsCount is best-effort: any failure leaves the count unknown.
func (c *CloudflareClient) recordsCount(ctx context.Context, zoneID string) *uint32 {
	r := signer.NewRequest(http.MethodGet, "/zones/"+url.PathEscape(zoneID)+"/dns_records")
	r.Query.Set("per_page", "1")
	body, err := c.tr.do(ctx, domain.CodeFetchFailed, r, cloudflareEnvelope)
	if err != nil {
		return nil
	}
	return looseUint32(gjson.GetBytes(body, "result_info.total_count"))
}

func (c *CloudflareClient) ListRecords(ctx context.Context, zoneID, zoneName string) ([]entity.DNSRecord, error) {
	var out []entity.DNSRecord
	for page := 1; ; page++ {
		r := signer.NewRequest(http.MethodGet, "/zones/"+url.PathEscape(zoneID)+"/dns_records")
		r.Query.Set("per_page", strconv.Itoa(cloudflareRecordPageSize))
		r.Query.Set("page", strconv.Itoa(page))
		body, err := c.tr.do(ctx, domain.CodeFetchFailed, r, cloudflareEnvelope)
		if err != nil {
			return nil, err
		}
		doc, err := parseJSON(body)
		if err != nil {
			return nil, err
		}
		results := doc.Get("result").Array()
		for _, item := range results {
			out = append(out, cloudflareRecord(item, zoneName))
		}
		totalPages := doc.Get("result_info.total_pages").Int()
		if len(results) == 0 || int64(page) >= totalPages {
			break
		}
	}
	return out, nil
}

func (c *CloudflareClient) FindConflictIDs(ctx context.Context, zoneID, zoneName string, recordType entity.RecordType, host string) ([]string, error) {
	r := signer.NewRequest(http.MethodGet, "/zones/"+url.PathEscape(zoneID)+"/dns_records")
	r.Query.Set("per_page", strconv.Itoa(cloudflareConflictPageSize))
	r.Query.Set("type", string(recordType))
	r.Query.Set("name", FullName(host, zoneName))
	body, err := c.tr.do(ctx, domain.CodeFetchFailed, r, cloudflareEnvelope)
	if err != nil {
		return nil, err
	}
	var ids []string
	gjson.GetBytes(body, "result").ForEach(func(_, v gjson.Result) bool {
		ids = append(ids, v.Get("id").String())
		return true
	})
	return ids, nil
}

func (c *CloudflareClient) CreateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordCreateRequest) (*entity.DNSRecord, error) {
	return c.write(ctx, domain.CodeCreateFailed, http.MethodPost,
		"/zones/"+url.PathEscape(zoneID)+"/dns_records", zoneName, &req.RecordFields)
}

func (c *CloudflareClient) UpdateRecord(ctx context.Context, zoneID, zoneName string, req *entity.RecordUpdateRequest) (*entity.DNSRecord, error) {
	return c.write(ctx, domain.CodeUpdateFailed, http.MethodPut,
		"/zones/"+url.PathEscape(zoneID)+"/dns_records/"+url.PathEscape(req.ID), zoneName, &req.RecordFields)
}

func (c *CloudflareClient) write(ctx context.Context, failCode domain.Code, method, path, zoneName string, f *entity.RecordFields) (*entity.DNSRecord, error) {
	payload, err := marshalBody(cloudflarePayload(zoneName, f))
	if err != nil {
		return nil, err
	}
	r := signer.NewRequest(method, path)
	r.Body = payload
	body, err := c.tr.do(ctx, failCode, r, cloudflareEnvelope)
	if err != nil {
		return nil, err
	}
	doc, err := parseJSON(body)
	if err != nil {
		return nil, err
	}
	rec := cloudflareRecord(doc.Get("result"), zoneName)
	return &rec, nil
}

func (c *CloudflareClient) DeleteRecord(ctx context.Context, zoneID, _ string, recordID string) error {
	_, err := c.sdk.DNS.Records.Delete(ctx, recordID, cfdns.RecordDeleteParams{
		ZoneID: cloudflare.F(zoneID),
	})
	if err != nil {
		return c.sdkError(domain.CodeDeleteFailed, err)
	}
	return nil
}

func (c *CloudflareClient) sdkError(failCode domain.Code, err error) error {
	var apiErr *cloudflare.Error
	if !errors.As(err, &apiErr) {
		if isTransportError(err) {
			return mapTransportError(err)
		}
		return domain.Newf(domain.CodeJSONDecodeFailed, "Failed to decode response: %v", err)
	}
	msg := fmt.Sprintf("HTTP %d: %s", apiErr.StatusCode, apiErr.Error())
	if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
		return domain.New(domain.CodeAuthFailed, msg)
	}
	return domain.New(failCode, msg)
}

// isTransportError reports whether err came from the round trip itself
// rather than from reading the SDK's response.
func isTransportError(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func cloudflareEnvelope(body []byte, failCode domain.Code) error {
	doc := gjson.ParseBytes(body)
	if doc.Get("success").Bool() {
		return nil
	}
	msg := doc.Get("errors.0.message").String()
	if msg == "" {
		msg = "Unknown error"
	}
	return domain.New(failCode, msg)
}

func cloudflarePayload(zoneName string, f *entity.RecordFields) map[string]any {
	payload := map[string]any{
		"type": string(f.RecordType),
		"name": FullName(f.Name, zoneName),
		"ttl":  f.TTL,
	}
	switch f.RecordType {
	case entity.RecordTypeSRV:
		service, proto := SRVHostParts(f.Name)
		payload["data"] = map[string]any{
			"service":  service,
			"proto":    proto,
			"name":     zoneName,
			"priority": deref(f.SRVPriority),
			"weight":   deref(f.SRVWeight),
			"port":     deref(f.SRVPort),
			"target":   f.Content,
		}
	case entity.RecordTypeCAA:
		tag := defaultCAATag
		if f.CAATag != nil && *f.CAATag != "" {
			tag = *f.CAATag
		}
		payload["data"] = map[string]any{
			"flags": deref(f.CAAFlags),
			"tag":   tag,
			"value": f.Content,
		}
	case entity.RecordTypeMX:
		payload["content"] = f.Content
		if f.MXPriority != nil {
			payload["priority"] = *f.MXPriority
		}
	default:
		payload["content"] = f.Content
	}
	return payload
}

func cloudflareRecord(v gjson.Result, zoneName string) entity.DNSRecord {
	rec := entity.DNSRecord{
		ID:         v.Get("id").String(),
		Provider:   entity.ProviderCloudflare,
		Domain:     zoneName,
		RecordType: entity.RecordType(v.Get("type").String()),
		Name:       RelativeName(v.Get("name").String(), zoneName),
		Content:    v.Get("content").String(),
		TTL:        uint32(v.Get("ttl").Uint()),
	}
	data := v.Get("data")
	switch rec.RecordType {
	case entity.RecordTypeMX:
		rec.MXPriority = looseUint16(v.Get("priority"))
	case entity.RecordTypeSRV:
		if data.Exists() {
			rec.SRVPriority = looseUint16(data.Get("priority"))
			rec.SRVWeight = looseUint16(data.Get("weight"))
			rec.SRVPort = looseUint16(data.Get("port"))
			if t := data.Get("target"); t.Type == gjson.String {
				rec.Content = t.Str
			}
		}
	case entity.RecordTypeCAA:
		if data.Exists() {
			rec.CAAFlags = looseUint8(data.Get("flags"))
			if t := data.Get("tag"); t.Type == gjson.String {
				tag := t.Str
				rec.CAATag = &tag
			}
			if val := data.Get("value"); val.Type == gjson.String {
				rec.Content = val.Str
			}
		}
	}
	return rec
}
