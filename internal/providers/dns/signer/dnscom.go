package signer

import (
	"encoding/hex"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DNSCom signs the parameter set itself: GET parameters live in the query
// and POST parameters in the form body.
type DNSCom struct {
	APIKey    string
	APISecret string
}

func (d *DNSCom) Sign(r *Request, now time.Time) error {
	params := r.Query
	if !strings.EqualFold(r.Method, http.MethodGet) {
		if r.Form == nil {
			r.Form = url.Values{}
		}
		params = r.Form
	} else if params == nil {
		r.Query = url.Values{}
		params = r.Query
	}

	params.Set("api_key", d.APIKey)
	params.Set("timestamp", strconv.FormatInt(now.Unix(), 10))
	params.Del("signature")

	pairs := make([]string, 0, len(params))
	for _, k := range sortedKeys(params) {
		pairs = append(pairs, k+"="+params.Get(k))
	}
	stringToSign := strings.ToUpper(r.Method) + "\n" + r.Path + "\n" + strings.Join(pairs, "&")
	params.Set("signature", hex.EncodeToString(hmacSHA256([]byte(d.APISecret), stringToSign)))
	return nil
}
