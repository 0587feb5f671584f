package signer

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	tc3Algorithm   = "TC3-HMAC-SHA256"
	tc3ContentType = "application/json; charset=utf-8"
	tc3Terminator  = "tc3_request"
)

// TC3 implements TC3-HMAC-SHA256 for Tencent Cloud JSON APIs. Action is
// set per call; WithAction returns a copy.
type TC3 struct {
	SecretID  string
	SecretKey string
	Host      string
	Service   string
	Version   string
	Action    string
}

func (t TC3) WithAction(action string) *TC3 {
	t.Action = action
	return &t
}

func (t *TC3) Sign(r *Request, now time.Time) error {
	if t.Action == "" {
		return fmt.Errorf("tc3 signer: action is required")
	}
	ts := now.Unix()
	date := now.UTC().Format("2006-01-02")

	canonical := strings.Join([]string{
		strings.ToUpper(r.Method),
		"/",
		"",
		"content-type:" + tc3ContentType + "\nhost:" + t.Host + "\n",
		"content-type;host",
		sha256Hex(r.Body),
	}, "\n")
	scope := date + "/" + t.Service + "/" + tc3Terminator
	stringToSign := tc3Algorithm + "\n" + strconv.FormatInt(ts, 10) + "\n" + scope + "\n" + sha256Hex([]byte(canonical))

	secretDate := hmacSHA256([]byte("TC3"+t.SecretKey), date)
	secretService := hmacSHA256(secretDate, t.Service)
	secretSigning := hmacSHA256(secretService, tc3Terminator)
	sig := hex.EncodeToString(hmacSHA256(secretSigning, stringToSign))

	r.Header.Set("Authorization", fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=content-type;host, Signature=%s",
		tc3Algorithm, t.SecretID, scope, sig))
	r.Header.Set("Content-Type", tc3ContentType)
	r.Header.Set("Host", t.Host)
	r.Header.Set("X-TC-Action", t.Action)
	r.Header.Set("X-TC-Version", t.Version)
	r.Header.Set("X-TC-Timestamp", strconv.FormatInt(ts, 10))
	return nil
}
