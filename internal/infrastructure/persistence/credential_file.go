package persistence

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/contract"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

// CredentialFile is the plain YAML alternative to the vault:
//
//	secrets:
//	  cf: ${CF_API_KEY}
//	providers:
//	  cloudflare:
//	    email: ops@example.com
//	    api_key: {secret: cf}
type CredentialFile struct {
	Secrets   map[string]string               `yaml:"secrets,omitempty"`
	Providers map[string]map[string]SecretRef `yaml:"providers"`
}

// FileSource serves credentials loaded once from a CredentialFile. It is
// read-only: Save and Clear fail and MarkVerified is a no-op.
type FileSource struct {
	path  string
	creds map[entity.Provider]*entity.Credential
}

var _ contract.CredentialStore = (*FileSource)(nil)

func LoadCredentialFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.Newf(domain.CodeIOError, "credential file does not exist: %s", path)
	}
	if err != nil {
		return nil, domain.Newf(domain.CodeIOError, "reading %s: %v", path, err)
	}

	var f CredentialFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, domain.Newf(domain.CodeParseError, "parsing %s: %v", path, err)
	}

	src := &FileSource{path: path, creds: make(map[entity.Provider]*entity.Credential, len(f.Providers))}
	names := make([]string, 0, len(f.Providers))
	for name := range f.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p, err := entity.ParseProvider(name)
		if err != nil {
			return nil, domain.WrapOp("providers."+name, err)
		}
		fields := make(map[string]string, len(f.Providers[name]))
		for key, ref := range f.Providers[name] {
			val, err := ref.Resolve(f.Secrets)
			if err != nil {
				return nil, domain.WrapOp("providers."+name+"."+key, err)
			}
			fields[key] = val
		}
		cred, err := entity.NewCredential(p, fields)
		if err != nil {
			return nil, err
		}
		src.creds[p] = cred
	}
	return src, nil
}

func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) Credential(_ context.Context, p entity.Provider) (*entity.Credential, error) {
	cred, ok := s.creds[p]
	if !ok {
		return nil, domain.Newf(domain.CodeNotConfigured, "%s is not configured", p.DisplayName())
	}
	c := *cred
	return &c, nil
}

func (s *FileSource) MarkVerified(context.Context, entity.Provider, time.Time) error {
	return nil
}

func (s *FileSource) Statuses(context.Context) ([]entity.IntegrationStatus, error) {
	out := make([]entity.IntegrationStatus, 0, len(entity.AllProviders()))
	for _, p := range entity.AllProviders() {
		_, ok := s.creds[p]
		out = append(out, entity.IntegrationStatus{Provider: p, Configured: ok})
	}
	return out, nil
}

func (s *FileSource) Save(context.Context, *entity.Credential) error {
	return domain.Newf(domain.CodeInvalidInput, "credential file %s is read-only", s.path)
}

func (s *FileSource) Clear(context.Context, entity.Provider) error {
	return domain.Newf(domain.CodeInvalidInput, "credential file %s is read-only", s.path)
}
