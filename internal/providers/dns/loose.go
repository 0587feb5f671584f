package dns

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Several provider APIs return the same field as a string in one response
// and as a number in another. These helpers accept either.

func looseString(r gjson.Result) (string, bool) {
	switch r.Type {
	case gjson.String:
		return r.Str, true
	case gjson.Number:
		if _, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			return r.Raw, true
		}
		if _, err := strconv.ParseUint(r.Raw, 10, 64); err == nil {
			return r.Raw, true
		}
	}
	return "", false
}

func looseUint(r gjson.Result, max uint64) (uint64, bool) {
	switch r.Type {
	case gjson.Number:
		if r.Num < 0 || r.Num > float64(max) || r.Num != math.Trunc(r.Num) {
			return 0, false
		}
		return uint64(r.Num), true
	case gjson.String:
		n, err := strconv.ParseUint(strings.TrimSpace(r.Str), 10, 64)
		if err != nil || n > max {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func looseUint32(r gjson.Result) *uint32 {
	n, ok := looseUint(r, math.MaxUint32)
	if !ok {
		return nil
	}
	v := uint32(n)
	return &v
}

func looseUint16(r gjson.Result) *uint16 {
	n, ok := looseUint(r, math.MaxUint16)
	if !ok {
		return nil
	}
	v := uint16(n)
	return &v
}

func looseUint8(r gjson.Result) *uint8 {
	n, ok := looseUint(r, math.MaxUint8)
	if !ok {
		return nil
	}
	v := uint8(n)
	return &v
}

// firstOf returns the first key of v that exists.
func firstOf(v gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if r := v.Get(k); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func firstString(v gjson.Result, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := looseString(v.Get(k)); ok {
			return s, true
		}
	}
	return "", false
}

// normalizeTime reformats a provider timestamp as RFC 3339 in UTC. Values
// matching none of the layouts are dropped.
func normalizeTime(s string, layouts ...string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range append([]string{time.RFC3339}, layouts...) {
		if t, err := time.Parse(layout, s); err == nil {
			out := t.UTC().Format(time.RFC3339)
			return &out
		}
	}
	return nil
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	out := t.UTC().Format(time.RFC3339)
	return &out
}
