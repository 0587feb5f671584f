package entity

import (
	"net/netip"
	"strings"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
)

type RecordType string

const (
	RecordTypeA     RecordType = "A"
	RecordTypeAAAA  RecordType = "AAAA"
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeTXT   RecordType = "TXT"
	RecordTypeMX    RecordType = "MX"
	RecordTypeNS    RecordType = "NS"
	RecordTypeSRV   RecordType = "SRV"
	RecordTypeCAA   RecordType = "CAA"
)

const (
	MinTTL uint32 = 60
	MaxTTL uint32 = 86400
)

var validRecordTypes = map[RecordType]bool{
	RecordTypeA:     true,
	RecordTypeAAAA:  true,
	RecordTypeCNAME: true,
	RecordTypeTXT:   true,
	RecordTypeMX:    true,
	RecordTypeNS:    true,
	RecordTypeSRV:   true,
	RecordTypeCAA:   true,
}

func (t RecordType) Valid() bool {
	return validRecordTypes[t]
}

type ConflictStrategy string

const (
	ConflictDoNotCreate ConflictStrategy = "do_not_create"
	ConflictOverwrite   ConflictStrategy = "overwrite"
)

type DNSRecord struct {
	ID          string     `json:"id"`
	Provider    Provider   `json:"provider"`
	Domain      string     `json:"domain"`
	RecordType  RecordType `json:"record_type"`
	Name        string     `json:"name"`
	Content     string     `json:"content"`
	TTL         uint32     `json:"ttl"`
	MXPriority  *uint16    `json:"mx_priority"`
	SRVPriority *uint16    `json:"srv_priority"`
	SRVWeight   *uint16    `json:"srv_weight"`
	SRVPort     *uint16    `json:"srv_port"`
	CAAFlags    *uint8     `json:"caa_flags"`
	CAATag      *string    `json:"caa_tag"`
}

// RecordFields is the user-supplied part shared by create and update.
type RecordFields struct {
	RecordType  RecordType `json:"record_type"`
	Name        string     `json:"name"`
	Content     string     `json:"content"`
	TTL         uint32     `json:"ttl"`
	MXPriority  *uint16    `json:"mx_priority,omitempty"`
	SRVPriority *uint16    `json:"srv_priority,omitempty"`
	SRVWeight   *uint16    `json:"srv_weight,omitempty"`
	SRVPort     *uint16    `json:"srv_port,omitempty"`
	CAAFlags    *uint8     `json:"caa_flags,omitempty"`
	CAATag      *string    `json:"caa_tag,omitempty"`
}

type RecordCreateRequest struct {
	RecordFields
	ConflictStrategy ConflictStrategy `json:"conflict_strategy"`
}

type RecordUpdateRequest struct {
	ID string `json:"id"`
	RecordFields
}

// AsUpdate carries the create fields over onto an existing record ID.
func (r *RecordCreateRequest) AsUpdate(id string) *RecordUpdateRequest {
	return &RecordUpdateRequest{ID: id, RecordFields: r.RecordFields}
}

func (f *RecordFields) Validate() error {
	if !f.RecordType.Valid() {
		return domain.Newf(domain.CodeInvalidType, "unsupported record type: %s", f.RecordType)
	}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		return domain.New(domain.CodeInvalidName, "host record must not be empty")
	}

	content := strings.TrimSpace(f.Content)
	if content == "" {
		return domain.New(domain.CodeInvalidContent, "record value must not be empty")
	}

	if f.TTL < MinTTL || f.TTL > MaxTTL {
		return domain.Newf(domain.CodeInvalidTTL, "ttl must be between %d and %d seconds", MinTTL, MaxTTL)
	}

	switch f.RecordType {
	case RecordTypeA:
		addr, err := netip.ParseAddr(content)
		if err != nil || !addr.Is4() {
			return domain.New(domain.CodeInvalidContent, "A record must be a valid IPv4 address")
		}
	case RecordTypeAAAA:
		addr, err := netip.ParseAddr(content)
		if err != nil || !addr.Is6() || addr.Zone() != "" {
			return domain.New(domain.CodeInvalidContent, "AAAA record must be a valid IPv6 address")
		}
	case RecordTypeCNAME, RecordTypeNS:
		if !strings.Contains(content, ".") {
			return domain.New(domain.CodeInvalidContent, "record value must be a valid domain name")
		}
	case RecordTypeMX:
		if f.MXPriority == nil {
			return domain.New(domain.CodeMissingField, "MX record requires a priority")
		}
	case RecordTypeSRV:
		if f.SRVPriority == nil || f.SRVWeight == nil || f.SRVPort == nil {
			return domain.New(domain.CodeMissingField, "SRV record requires priority, weight and port")
		}
		if !IsServiceHost(name) {
			return domain.New(domain.CodeInvalidName, "SRV host must have the form _service._proto")
		}
	case RecordTypeCAA:
		if f.CAATag != nil && strings.TrimSpace(*f.CAATag) == "" {
			return domain.New(domain.CodeInvalidCAATag, "CAA tag must not be empty")
		}
	}
	return nil
}

// Prune clears the structured fields that do not apply to the record type.
func (f *RecordFields) Prune() {
	if f.RecordType != RecordTypeMX {
		f.MXPriority = nil
	}
	if f.RecordType != RecordTypeSRV {
		f.SRVPriority, f.SRVWeight, f.SRVPort = nil, nil, nil
	}
	if f.RecordType != RecordTypeCAA {
		f.CAAFlags, f.CAATag = nil, nil
	}
}

// IsServiceHost reports whether the first two labels of host both start
// with an underscore, as in _sip._tcp.
func IsServiceHost(host string) bool {
	parts := strings.Split(host, ".")
	return len(parts) >= 2 && strings.HasPrefix(parts[0], "_") && strings.HasPrefix(parts[1], "_")
}

// RelativeHost reduces host to its label relative to zone. "", "@" and the
// zone itself become "@", and a trailing ".zone" is stripped.
func RelativeHost(host, zone string) string {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	zone = strings.TrimSuffix(strings.TrimSpace(zone), ".")
	suffix := "." + zone
	switch {
	case host == "" || host == "@" || strings.EqualFold(host, zone):
		return "@"
	case zone != "" && len(host) > len(suffix) && strings.EqualFold(host[len(host)-len(suffix):], suffix):
		return host[:len(host)-len(suffix)]
	}
	return host
}

// ToRecord builds the record a provider reports back when its response
// carries no more than the new ID.
func (f *RecordFields) ToRecord(p Provider, zone, id string) *DNSRecord {
	return &DNSRecord{
		ID:          id,
		Provider:    p,
		Domain:      zone,
		RecordType:  f.RecordType,
		Name:        f.Name,
		Content:     f.Content,
		TTL:         f.TTL,
		MXPriority:  f.MXPriority,
		SRVPriority: f.SRVPriority,
		SRVWeight:   f.SRVWeight,
		SRVPort:     f.SRVPort,
		CAAFlags:    f.CAAFlags,
		CAATag:      f.CAATag,
	}
}

func Ptr[T any](v T) *T {
	return &v
}
