package entity

import (
	"strings"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
)

type Provider string

const (
	ProviderCloudflare   Provider = "cloudflare"
	ProviderDNSPod       Provider = "dnspod"
	ProviderAliyun       Provider = "aliyun"
	ProviderHuawei       Provider = "huawei"
	ProviderBaidu        Provider = "baidu"
	ProviderDNSCom       Provider = "dnscom"
	ProviderRainyun      Provider = "rainyun"
	ProviderTencentCloud Provider = "tencentcloud"
)

var allProviders = []Provider{
	ProviderCloudflare,
	ProviderDNSPod,
	ProviderAliyun,
	ProviderHuawei,
	ProviderBaidu,
	ProviderDNSCom,
	ProviderRainyun,
	ProviderTencentCloud,
}

var displayNames = map[Provider]string{
	ProviderCloudflare:   "Cloudflare",
	ProviderDNSPod:       "DNSPod",
	ProviderAliyun:       "Aliyun DNS",
	ProviderHuawei:       "Huawei Cloud DNS",
	ProviderBaidu:        "Baidu Cloud DNS",
	ProviderDNSCom:       "DNS.COM",
	ProviderRainyun:      "Rainyun DNS",
	ProviderTencentCloud: "Tencent Cloud DNS",
}

var credentialKeys = map[Provider][]string{
	ProviderCloudflare:   {"email", "api_key"},
	ProviderDNSPod:       {"token_id", "token"},
	ProviderAliyun:       {"access_key_id", "access_key_secret"},
	ProviderHuawei:       {"token"},
	ProviderBaidu:        {"access_key_id", "secret_access_key"},
	ProviderDNSCom:       {"api_key", "api_secret"},
	ProviderRainyun:      {"api_key"},
	ProviderTencentCloud: {"secret_id", "secret_key"},
}

// AllProviders returns every supported provider in display order.
func AllProviders() []Provider {
	out := make([]Provider, len(allProviders))
	copy(out, allProviders)
	return out
}

func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", domain.Newf(domain.CodeInvalidInput, "unsupported provider: %s", s)
	}
	return p, nil
}

func (p Provider) Valid() bool {
	_, ok := displayNames[p]
	return ok
}

func (p Provider) DisplayName() string {
	if name, ok := displayNames[p]; ok {
		return name
	}
	return string(p)
}

// CredentialKeys lists the fields a credential bundle for p must carry.
func (p Provider) CredentialKeys() []string {
	return credentialKeys[p]
}
