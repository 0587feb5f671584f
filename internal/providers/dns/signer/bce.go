package signer

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	bceTimeLayout    = "2006-01-02T15:04:05Z"
	bceExpireSeconds = 1800
	bceSignedHeaders = "host;x-bce-date"
)

// BCEAuth implements bce-auth-v1 as used by Baidu Cloud DNS.
type BCEAuth struct {
	AccessKeyID     string
	SecretAccessKey string
	Host            string
}

func (b *BCEAuth) Sign(r *Request, now time.Time) error {
	if b.Host == "" {
		return fmt.Errorf("bce signer: host is required")
	}
	ts := now.UTC().Format(bceTimeLayout)
	r.Header.Set("x-bce-date", ts)

	authString := fmt.Sprintf("bce-auth-v1/%s/%s/%d", b.AccessKeyID, ts, bceExpireSeconds)
	signingKey := hmacSHA256([]byte(b.SecretAccessKey), authString)

	query := make([]string, 0, len(r.Query))
	for _, k := range sortedKeys(r.Query) {
		query = append(query, percentEncode(k)+"="+percentEncode(r.Query.Get(k)))
	}

	headers := []string{
		percentEncode("host") + ":" + percentEncode(strings.TrimSpace(b.Host)),
		percentEncode("x-bce-date") + ":" + percentEncode(ts),
	}
	sort.Strings(headers)

	stringToSign := strings.Join([]string{
		strings.ToUpper(r.Method),
		percentEncode(r.Path),
		strings.Join(query, "&"),
		strings.Join(headers, "\n"),
	}, "\n")
	sig := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	r.Header.Set("Authorization", authString+"//"+bceSignedHeaders+"/"+sig)
	return nil
}
