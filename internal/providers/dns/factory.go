package dns

import (
	"sync"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/contract"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

type CreatorFunc func(cred *entity.Credential, opts Options) (contract.DNSProvider, error)

// Factory builds a fresh, instrumented client per credential.
type Factory struct {
	mu       sync.RWMutex
	creators map[entity.Provider]CreatorFunc
	defaults Options
	options  map[entity.Provider]Options
}

func NewFactory() *Factory {
	return &Factory{
		creators: map[entity.Provider]CreatorFunc{
			entity.ProviderCloudflare:   createCloudflare,
			entity.ProviderDNSPod:       createDNSPod,
			entity.ProviderAliyun:       createAliyun,
			entity.ProviderHuawei:       createHuawei,
			entity.ProviderBaidu:        createBaidu,
			entity.ProviderDNSCom:       createDNSCom,
			entity.ProviderRainyun:      createRainyun,
			entity.ProviderTencentCloud: createTencent,
		},
		options: make(map[entity.Provider]Options),
	}
}

var _ contract.ProviderFactory = (*Factory)(nil)

func (f *Factory) Register(p entity.Provider, creator CreatorFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creators[p] = creator
}

// SetDefaults applies opts to every provider without its own options.
func (f *Factory) SetDefaults(opts Options) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defaults = opts
}

// SetOptions overrides client options for one provider, typically to point
// it at a test server.
func (f *Factory) SetOptions(p entity.Provider, opts Options) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.options[p] = opts
}

func (f *Factory) Create(cred *entity.Credential) (contract.DNSProvider, error) {
	if cred == nil {
		return nil, domain.New(domain.CodeNotConfigured, "credential is missing")
	}
	if err := cred.Validate(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	creator, ok := f.creators[cred.Provider]
	opts, custom := f.options[cred.Provider]
	if !custom {
		opts = f.defaults
	} else if opts.HTTPClient == nil {
		opts.HTTPClient = f.defaults.HTTPClient
	}
	f.mu.RUnlock()

	if !ok {
		return nil, domain.Newf(domain.CodeInvalidInput, "unsupported provider type: %s", cred.Provider)
	}
	p, err := creator(cred, opts)
	if err != nil {
		return nil, err
	}
	return Instrument(p), nil
}

func createCloudflare(cred *entity.Credential, opts Options) (contract.DNSProvider, error) {
	return NewCloudflareClient(cred.Get("email"), cred.Get("api_key"), opts), nil
}

func createDNSPod(cred *entity.Credential, opts Options) (contract.DNSProvider, error) {
	return NewDNSPodClient(cred.Get("token_id"), cred.Get("token"), opts), nil
}

func createAliyun(cred *entity.Credential, opts Options) (contract.DNSProvider, error) {
	return NewAliyunClient(cred.Get("access_key_id"), cred.Get("access_key_secret"), opts), nil
}

func createHuawei(cred *entity.Credential, opts Options) (contract.DNSProvider, error) {
	return NewHuaweiClient(cred.Get("token"), opts), nil
}

func createBaidu(cred *entity.Credential, opts Options) (contract.DNSProvider, error) {
	return NewBaiduClient(cred.Get("access_key_id"), cred.Get("secret_access_key"), opts), nil
}

func createDNSCom(cred *entity.Credential, opts Options) (contract.DNSProvider, error) {
	return NewDNSComClient(cred.Get("api_key"), cred.Get("api_secret"), opts), nil
}

func createRainyun(cred *entity.Credential, opts Options) (contract.DNSProvider, error) {
	return NewRainyunClient(cred.Get("api_key"), opts), nil
}

func createTencent(cred *entity.Credential, opts Options) (contract.DNSProvider, error) {
	return NewTencentClient(cred.Get("secret_id"), cred.Get("secret_key"), opts), nil
}
