package entity

import (
	"strings"
	"time"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
)

// Credential is a decrypted secret bundle for one provider. It lives for a
// single logical operation.
type Credential struct {
	Provider       Provider          `json:"-" yaml:"-"`
	Fields         map[string]string `json:"fields" yaml:"fields"`
	LastVerifiedAt *time.Time        `json:"last_verified_at,omitempty" yaml:"last_verified_at,omitempty"`
}

func NewCredential(p Provider, fields map[string]string) (*Credential, error) {
	c := &Credential{Provider: p, Fields: make(map[string]string, len(fields))}
	for k, v := range fields {
		c.Fields[k] = strings.TrimSpace(v)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Credential) Validate() error {
	if !c.Provider.Valid() {
		return domain.Newf(domain.CodeInvalidInput, "unsupported provider: %s", c.Provider)
	}
	for _, key := range c.Provider.CredentialKeys() {
		if c.Fields[key] == "" {
			return domain.RequiredField(string(c.Provider) + "." + key)
		}
	}
	return nil
}

func (c *Credential) Get(key string) string {
	if c == nil {
		return ""
	}
	return c.Fields[key]
}

// IntegrationStatus summarises one provider's stored credential without
// exposing it.
type IntegrationStatus struct {
	Provider       Provider   `json:"provider"`
	Configured     bool       `json:"configured"`
	LastVerifiedAt *time.Time `json:"last_verified_at,omitempty"`
}

type IntegrationTestResult struct {
	Provider Provider `json:"provider"`
	OK       bool     `json:"ok"`
	Message  string   `json:"message"`
}
