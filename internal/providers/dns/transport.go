package dns

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/logger"
	"github.com/lite-lake/infra-dnsdesk/internal/providers/dns/signer"
)

const (
	UserAgent      = "LaoChenDNS/0.1.0"
	DefaultTimeout = 30 * time.Second
)

// Options overrides client defaults. Tests point BaseURL at an httptest
// server.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Now        func() time.Time
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// envelopeCheck inspects a decoded body for a provider-level error. It runs
// before the HTTP status check so provider codes win over generic ones.
type envelopeCheck func(body []byte, failCode domain.Code) error

type transport struct {
	provider entity.Provider
	baseURL  string
	client   *http.Client
	signer   signer.Signer
	now      func() time.Time
}

func newTransport(p entity.Provider, defaultBaseURL string, s signer.Signer, opts Options) *transport {
	t := &transport{
		provider: p,
		baseURL:  strings.TrimSuffix(defaultBaseURL, "/"),
		client:   opts.HTTPClient,
		signer:   s,
		now:      opts.Now,
	}
	if opts.BaseURL != "" {
		t.baseURL = strings.TrimSuffix(opts.BaseURL, "/")
	}
	if t.client == nil {
		t.client = NewHTTPClient(DefaultTimeout)
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// host is the authority of the base URL, used by signers that sign it.
func hostOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func (t *transport) do(ctx context.Context, failCode domain.Code, r *signer.Request, check envelopeCheck) ([]byte, error) {
	return t.doWith(ctx, failCode, r, check, t.signer)
}

func (t *transport) doWith(ctx context.Context, failCode domain.Code, r *signer.Request, check envelopeCheck, s signer.Signer) ([]byte, error) {
	if r.Header == nil {
		r.Header = http.Header{}
	}
	if s != nil {
		if err := s.Sign(r, t.now()); err != nil {
			return nil, domain.New(domain.CodeInvalidInput, err.Error())
		}
	}

	target := t.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	switch {
	case r.Form != nil:
		body = strings.NewReader(r.Form.Encode())
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	case r.Body != nil:
		body = bytes.NewReader(r.Body)
		if r.Header.Get("Content-Type") == "" {
			r.Header.Set("Content-Type", "application/json")
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, domain.Newf(domain.CodeInvalidInput, "build request: %v", err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if h := r.Header.Get("Host"); h != "" {
		req.Host = h
	}
	req.Header.Set("User-Agent", UserAgent)

	log := logger.FromContext(ctx).ForProvider(string(t.provider))
	log.Debug("http request", "method", r.Method, "path", r.Path)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, mapTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, mapTransportError(err)
	}
	log.Debug("http response", "method", r.Method, "path", r.Path, "status", resp.StatusCode)

	if check != nil && gjson.ValidBytes(data) {
		if err := check(data, failCode); err != nil {
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return nil, domain.New(domain.CodeAuthFailed, domain.MessageOf(err))
			}
			return nil, err
		}
	}
	if err := statusError(resp, data, failCode); err != nil {
		return nil, err
	}
	return data, nil
}

func statusError(resp *http.Response, body []byte, failCode domain.Code) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg := fmt.Sprintf("HTTP %d: %s (response text: %s)", resp.StatusCode, http.StatusText(resp.StatusCode), string(body))
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return domain.New(domain.CodeAuthFailed, msg)
	}
	return domain.New(failCode, msg)
}

// mapTransportError classifies a failed round trip. The request URL is
// dropped from the message since some schemes sign in the query string.
func mapTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.New(domain.CodeTimeout, "request timed out")
	case errors.As(err, &netErr) && netErr.Timeout():
		return domain.New(domain.CodeTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		return domain.New(domain.CodeNetworkError, "request canceled")
	case errors.Is(err, syscall.ECONNREFUSED):
		return domain.Newf(domain.CodeUnreachable, "connection refused: %v", err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.Newf(domain.CodeUnreachable, "cannot resolve %s", dnsErr.Name)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return domain.Newf(domain.CodeUnreachable, "cannot connect: %v", opErr.Err)
	}
	return domain.Newf(domain.CodeNetworkError, "%v", err)
}

func decodeJSON(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return domain.Newf(domain.CodeJSONDecodeFailed, "Failed to decode response: %v (response text: %s)", err, string(body))
	}
	return nil
}

func parseJSON(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, domain.Newf(domain.CodeJSONDecodeFailed, "Failed to decode response: invalid JSON (response text: %s)", string(body))
	}
	return gjson.ParseBytes(body), nil
}

func marshalBody(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, domain.Newf(domain.CodeSerializeError, "%v", err)
	}
	return b, nil
}
