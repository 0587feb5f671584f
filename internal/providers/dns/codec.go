package dns

import (
	"strconv"
	"strings"

	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

const defaultCAATag = "issue"

// EncodeSRV renders the flat "priority weight port target" form. Missing
// numbers are written as 0.
func EncodeSRV(priority, weight, port *uint16, target string) string {
	return strings.Join([]string{
		strconv.Itoa(int(deref(priority))),
		strconv.Itoa(int(deref(weight))),
		strconv.Itoa(int(deref(port))),
		target,
	}, " ")
}

// EncodeCAA renders the flat "flags tag value" form.
func EncodeCAA(flags *uint8, tag *string, value string) string {
	t := defaultCAATag
	if tag != nil && strings.TrimSpace(*tag) != "" {
		t = *tag
	}
	return strconv.Itoa(int(deref(flags))) + " " + t + " " + value
}

// DecodeSRV splits a flat SRV value. A value with fewer than four tokens is
// returned unchanged as the target with no structured fields.
func DecodeSRV(value string) (target string, priority, weight, port *uint16) {
	parts := strings.Fields(value)
	if len(parts) < 4 {
		return value, nil, nil, nil
	}
	return strings.Join(parts[3:], " "), parseUint16(parts[0]), parseUint16(parts[1]), parseUint16(parts[2])
}

// DecodeCAA splits a flat CAA value. A value with fewer than three tokens is
// returned unchanged with no structured fields.
func DecodeCAA(value string) (content string, flags *uint8, tag *string) {
	parts := strings.Fields(value)
	if len(parts) < 3 {
		return value, nil, nil
	}
	t := parts[1]
	return strings.Join(parts[2:], " "), parseUint8(parts[0]), &t
}

// EncodeContent produces the provider value string for flat-string APIs.
func EncodeContent(f *entity.RecordFields) string {
	switch f.RecordType {
	case entity.RecordTypeSRV:
		return EncodeSRV(f.SRVPriority, f.SRVWeight, f.SRVPort, f.Content)
	case entity.RecordTypeCAA:
		return EncodeCAA(f.CAAFlags, f.CAATag, f.Content)
	default:
		return f.Content
	}
}

// DecodeContent fills rec.Content and the SRV/CAA fields from a flat
// provider value according to rec.RecordType.
func DecodeContent(rec *entity.DNSRecord, value string) {
	switch rec.RecordType {
	case entity.RecordTypeSRV:
		rec.Content, rec.SRVPriority, rec.SRVWeight, rec.SRVPort = DecodeSRV(value)
	case entity.RecordTypeCAA:
		rec.Content, rec.CAAFlags, rec.CAATag = DecodeCAA(value)
	default:
		rec.Content = value
	}
}

func parseUint16(s string) *uint16 {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return nil
	}
	v := uint16(n)
	return &v
}

func parseUint8(s string) *uint8 {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return nil
	}
	v := uint8(n)
	return &v
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
