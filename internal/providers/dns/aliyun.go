package dns

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	alidns "github.com/alibabacloud-go/alidns-20150109/v4/client"
	"github.com/alibabacloud-go/tea/tea"
	"github.com/tidwall/gjson"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/providers/dns/signer"
)

const (
	AliyunBaseURL = "https://alidns.aliyuncs.com"

	aliyunPageSize = 500
)

// AliyunClient speaks the RPC-style Alidns API. Requests are signed in
// house; response bodies are decoded into the SDK models.
type AliyunClient struct {
	tr *transport
}

func NewAliyunClient(accessKeyID, accessKeySecret string, opts Options) *AliyunClient {
	s := &signer.AliyunRPC{AccessKeyID: accessKeyID, AccessKeySecret: accessKeySecret}
	return &AliyunClient{tr: newTransport(entity.ProviderAliyun, AliyunBaseURL, s, opts)}
}

func (c *AliyunClient) Provider() entity.Provider {
	return entity.ProviderAliyun
}

func (c *AliyunClient) Test(ctx context.Context) error {
	_, err := c.ListDomains(ctx)
	return err
}

func (c *AliyunClient) call(ctx context.Context, failCode domain.Code, action string, params map[string]string) ([]byte, error) {
	r := signer.NewRequest(http.MethodGet, "/")
	r.Query.Set("Action", action)
	for k, v := range params {
		r.Query.Set(k, v)
	}
	return c.tr.do(ctx, failCode, r, aliyunEnvelope)
}

func (c *AliyunClient) ListDomains(ctx context.Context) ([]entity.DomainItem, error) {
	var items []entity.DomainItem
	for page := 1; ; page++ {
		body, err := c.call(ctx, domain.CodeFetchFailed, "DescribeDomains", map[string]string{
			"PageNumber": strconv.Itoa(page),
			"PageSize":   strconv.Itoa(aliyunPageSize),
		})
		if err != nil {
			return nil, err
		}
		doc, err := parseJSON(body)
		if err != nil {
			return nil, err
		}
		domains := doc.Get("Domains.Domain").Array()
		for _, d := range domains {
			id, _ := looseString(d.Get("DomainId"))
			items = append(items, entity.DomainItem{
				Provider:      entity.ProviderAliyun,
				Name:          d.Get("DomainName").String(),
				ProviderID:    id,
				Status:        entity.DomainStatusOK,
				RecordsCount:  looseUint32(d.Get("RecordCount")),
				LastChangedAt: normalizeTime(d.Get("UpdateTime").String(), "2006-01-02T15:04Z"),
			})
		}
		if len(domains) < aliyunPageSize || int64(len(items)) >= doc.Get("TotalCount").Int() {
			break
		}
	}
	return items, nil
}

func (c *AliyunClient) ListRecords(ctx context.Context, _ string, zoneName string) ([]entity.DNSRecord, error) {
	var out []entity.DNSRecord
	for page := 1; ; page++ {
		body, err := c.call(ctx, domain.CodeFetchFailed, "DescribeDomainRecords", map[string]string{
			"DomainName": zoneName,
			"PageNumber": strconv.Itoa(page),
			"PageSize":   strconv.Itoa(aliyunPageSize),
		})
		if err != nil {
			return nil, err
		}
		var resp alidns.DescribeDomainRecordsResponseBody
		if err := decodeJSON(body, &resp); err != nil {
			return nil, err
		}
		if resp.DomainRecords == nil {
			break
		}
		for _, r := range resp.DomainRecords.Record {
			if r == nil {
				continue
			}
			out = append(out, aliyunRecord(r, zoneName))
		}
		if len(resp.DomainRecords.Record) < aliyunPageSize || int64(len(out)) >= tea.Int64Value(resp.TotalCount) {
			break
		}
	}
	return out, nil
}

func aliyunRecord(r *alidns.DescribeDomainRecordsResponseBodyDomainRecordsRecord, zoneName string) entity.DNSRecord {
	rec := entity.DNSRecord{
		ID:         tea.StringValue(r.RecordId),
		Provider:   entity.ProviderAliyun,
		Domain:     zoneName,
		RecordType: entity.RecordType(strings.ToUpper(tea.StringValue(r.Type))),
		Name:       tea.StringValue(r.RR),
		TTL:        uint32(tea.Int64Value(r.TTL)),
	}
	DecodeContent(&rec, tea.StringValue(r.Value))
	if rec.RecordType == entity.RecordTypeMX && r.Priority != nil {
		p := uint16(tea.Int64Value(r.Priority))
		rec.MXPriority = &p
	}
	return rec
}

func aliyunWriteParams(f *entity.RecordFields) map[string]string {
	params := map[string]string{
		"RR":    f.Name,
		"Type":  string(f.RecordType),
		"Value": EncodeContent(f),
		"TTL":   strconv.FormatUint(uint64(f.TTL), 10),
	}
	switch f.RecordType {
	case entity.RecordTypeMX:
		if f.MXPriority != nil {
			params["Priority"] = strconv.Itoa(int(*f.MXPriority))
		}
	case entity.RecordTypeSRV:
		if f.SRVPriority != nil {
			params["Priority"] = strconv.Itoa(int(*f.SRVPriority))
		}
		if f.SRVWeight != nil {
			params["Weight"] = strconv.Itoa(int(*f.SRVWeight))
		}
		if f.SRVPort != nil {
			params["Port"] = strconv.Itoa(int(*f.SRVPort))
		}
	}
	return params
}

func (c *AliyunClient) CreateRecord(ctx context.Context, _ string, zoneName string, req *entity.RecordCreateRequest) (*entity.DNSRecord, error) {
	params := aliyunWriteParams(&req.RecordFields)
	params["DomainName"] = zoneName
	body, err := c.call(ctx, domain.CodeCreateFailed, "AddDomainRecord", params)
	if err != nil {
		return nil, err
	}
	var resp alidns.AddDomainRecordResponseBody
	if err := decodeJSON(body, &resp); err != nil {
		return nil, err
	}
	return req.ToRecord(entity.ProviderAliyun, zoneName, tea.StringValue(resp.RecordId)), nil
}

func (c *AliyunClient) UpdateRecord(ctx context.Context, _ string, zoneName string, req *entity.RecordUpdateRequest) (*entity.DNSRecord, error) {
	params := aliyunWriteParams(&req.RecordFields)
	params["RecordId"] = req.ID
	if _, err := c.call(ctx, domain.CodeUpdateFailed, "UpdateDomainRecord", params); err != nil {
		return nil, err
	}
	return req.ToRecord(entity.ProviderAliyun, zoneName, req.ID), nil
}

func (c *AliyunClient) DeleteRecord(ctx context.Context, _, _ string, recordID string) error {
	_, err := c.call(ctx, domain.CodeDeleteFailed, "DeleteDomainRecord", map[string]string{"RecordId": recordID})
	return err
}

// aliyunEnvelope maps an error body {Code, Message}. AccessKey and
// Signature codes are credential problems.
func aliyunEnvelope(body []byte, failCode domain.Code) error {
	code := gjson.GetBytes(body, "Code").String()
	if code == "" {
		return nil
	}
	msg := gjson.GetBytes(body, "Message").String()
	if msg == "" {
		msg = code
	}
	if strings.Contains(code, "AccessKey") || strings.Contains(code, "Signature") {
		return domain.New(domain.CodeAuthFailed, msg)
	}
	return domain.New(failCode, msg)
}
