package persistence

import (
	"os"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
)

// SecretRef is a credential value given either inline or as a reference
// into the file's secrets table:
//
//	api_key: ${CF_API_KEY}
//	api_key: {secret: cloudflare_key}
type SecretRef struct {
	Plain  string `yaml:"plain,omitempty"`
	Secret string `yaml:"secret,omitempty"`
}

func (s *SecretRef) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var plain string
	if err := unmarshal(&plain); err == nil {
		s.Plain = plain
		return nil
	}

	type alias SecretRef
	var ref alias
	if err := unmarshal(&ref); err != nil {
		return err
	}
	s.Plain = ref.Plain
	s.Secret = ref.Secret
	return nil
}

func (s SecretRef) MarshalYAML() (interface{}, error) {
	if s.Secret != "" {
		return map[string]string{"secret": s.Secret}, nil
	}
	return s.Plain, nil
}

// Resolve expands ${VAR} references from the environment after looking the
// value up.
func (s *SecretRef) Resolve(secrets map[string]string) (string, error) {
	if s.Secret != "" {
		val, ok := secrets[s.Secret]
		if !ok {
			return "", domain.Newf(domain.CodeMissingField, "secret %q is not defined", s.Secret)
		}
		return os.ExpandEnv(val), nil
	}
	return os.ExpandEnv(s.Plain), nil
}
