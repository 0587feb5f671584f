package signer

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	aliyunAPIVersion = "2015-01-09"
	aliyunTimeLayout = "2006-01-02T15:04:05Z"
)

// AliyunRPC signs RPC-style query strings with HMAC-SHA1.
type AliyunRPC struct {
	AccessKeyID     string
	AccessKeySecret string
	// Nonce defaults to a random UUID.
	Nonce func() string
}

func (a *AliyunRPC) Sign(r *Request, now time.Time) error {
	if r.Query == nil {
		r.Query = url.Values{}
	}
	nonce := uuid.NewString
	if a.Nonce != nil {
		nonce = a.Nonce
	}

	r.Query.Set("Format", "JSON")
	r.Query.Set("Version", aliyunAPIVersion)
	r.Query.Set("AccessKeyId", a.AccessKeyID)
	r.Query.Set("SignatureMethod", "HMAC-SHA1")
	r.Query.Set("SignatureVersion", "1.0")
	r.Query.Set("SignatureNonce", nonce())
	r.Query.Set("Timestamp", now.UTC().Format(aliyunTimeLayout))
	r.Query.Del("Signature")

	r.Query.Set("Signature", a.signature(r.Method, r.Query))
	return nil
}

func (a *AliyunRPC) signature(method string, params url.Values) string {
	pairs := make([]string, 0, len(params))
	for _, k := range sortedKeys(params) {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(params.Get(k)))
	}
	stringToSign := strings.ToUpper(method) + "&%2F&" + percentEncode(strings.Join(pairs, "&"))

	mac := hmac.New(sha1.New, []byte(a.AccessKeySecret+"&"))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
