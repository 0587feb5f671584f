package signer

import "time"

// HeaderAuth sets static credential headers, as Cloudflare, Huawei and
// Rainyun expect.
type HeaderAuth struct {
	pairs [][2]string
}

func NewHeaderAuth(kv ...string) *HeaderAuth {
	h := &HeaderAuth{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.pairs = append(h.pairs, [2]string{kv[i], kv[i+1]})
	}
	return h
}

func CloudflareAuth(email, apiKey string) *HeaderAuth {
	return NewHeaderAuth("X-Auth-Email", email, "X-Auth-Key", apiKey)
}

func HuaweiAuth(token string) *HeaderAuth {
	return NewHeaderAuth("X-Auth-Token", token)
}

func RainyunAuth(apiKey string) *HeaderAuth {
	return NewHeaderAuth("x-api-key", apiKey)
}

func (h *HeaderAuth) Sign(r *Request, _ time.Time) error {
	for _, p := range h.pairs {
		r.Header.Set(p[0], p[1])
	}
	return nil
}

// LoginToken is the legacy DNSPod scheme. The "{id},{token}" pair travels
// as a header and again as a form field.
type LoginToken struct {
	TokenID string
	Token   string
}

func (l *LoginToken) value() string {
	return l.TokenID + "," + l.Token
}

func (l *LoginToken) Sign(r *Request, _ time.Time) error {
	if r.Form == nil {
		r.Form = make(map[string][]string)
	}
	r.Form.Set("login_token", l.value())
	r.Form.Set("format", "json")
	r.Header.Set("login_token", l.value())
	return nil
}
