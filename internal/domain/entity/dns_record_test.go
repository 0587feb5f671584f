package entity

import (
	"errors"
	"testing"

	"github.com/lite-lake/infra-dnsdesk/internal/domain"
)

func fields(rt RecordType, name, content string, ttl uint32) RecordFields {
	return RecordFields{RecordType: rt, Name: name, Content: content, TTL: ttl}
}

func TestRecordFields_Validate(t *testing.T) {
	srv := fields(RecordTypeSRV, "_sip._tcp", "sip.example.com", 600)
	srv.SRVPriority, srv.SRVWeight, srv.SRVPort = Ptr[uint16](10), Ptr[uint16](60), Ptr[uint16](5060)

	badSRVHost := srv
	badSRVHost.Name = "sip.example"

	srvMissingPort := srv
	srvMissingPort.SRVPort = nil

	mx := fields(RecordTypeMX, "@", "mail.example.com", 600)
	mx.MXPriority = Ptr[uint16](10)

	caaBlankTag := fields(RecordTypeCAA, "@", "letsencrypt.org", 600)
	caaBlankTag.CAATag = Ptr("  ")

	caaNoTag := fields(RecordTypeCAA, "@", "letsencrypt.org", 600)

	tests := []struct {
		name    string
		fields  RecordFields
		wantErr error
	}{
		{name: "unknown type", fields: fields("PTR", "www", "x", 600), wantErr: domain.ErrInvalidType},
		{name: "lower-case type", fields: fields("a", "www", "10.0.0.1", 600), wantErr: domain.ErrInvalidType},
		{name: "blank name", fields: fields(RecordTypeA, "  ", "10.0.0.1", 600), wantErr: domain.ErrInvalidName},
		{name: "blank content", fields: fields(RecordTypeA, "www", " ", 600), wantErr: domain.ErrInvalidContent},
		{name: "ttl too small", fields: fields(RecordTypeA, "www", "10.0.0.1", 30), wantErr: domain.ErrInvalidTTL},
		{name: "ttl too large", fields: fields(RecordTypeA, "www", "10.0.0.1", 86401), wantErr: domain.ErrInvalidTTL},
		{name: "ttl lower bound", fields: fields(RecordTypeA, "www", "10.0.0.1", 60), wantErr: nil},
		{name: "ttl upper bound", fields: fields(RecordTypeA, "www", "10.0.0.1", 86400), wantErr: nil},
		{name: "valid A", fields: fields(RecordTypeA, "www", "10.0.0.1", 600), wantErr: nil},
		{name: "A with IPv6", fields: fields(RecordTypeA, "www", "2001:db8::1", 600), wantErr: domain.ErrInvalidContent},
		{name: "valid AAAA", fields: fields(RecordTypeAAAA, "www", "2001:db8::1", 600), wantErr: nil},
		{name: "bad AAAA", fields: fields(RecordTypeAAAA, "www", "bad", 600), wantErr: domain.ErrInvalidContent},
		{name: "AAAA with IPv4", fields: fields(RecordTypeAAAA, "www", "10.0.0.1", 600), wantErr: domain.ErrInvalidContent},
		{name: "CNAME without dot", fields: fields(RecordTypeCNAME, "www", "localhost", 600), wantErr: domain.ErrInvalidContent},
		{name: "valid CNAME", fields: fields(RecordTypeCNAME, "www", "target.example.com", 600), wantErr: nil},
		{name: "NS without dot", fields: fields(RecordTypeNS, "sub", "ns1", 600), wantErr: domain.ErrInvalidContent},
		{name: "valid TXT", fields: fields(RecordTypeTXT, "@", "v=spf1 -all", 600), wantErr: nil},
		{name: "MX without priority", fields: fields(RecordTypeMX, "@", "mail.example.com", 600), wantErr: domain.ErrMissingField},
		{name: "valid MX", fields: mx, wantErr: nil},
		{name: "valid SRV", fields: srv, wantErr: nil},
		{name: "SRV bad host", fields: badSRVHost, wantErr: domain.ErrInvalidName},
		{name: "SRV missing port", fields: srvMissingPort, wantErr: domain.ErrMissingField},
		{name: "CAA blank tag", fields: caaBlankTag, wantErr: domain.ErrInvalidCAATag},
		{name: "CAA without tag", fields: caaNoTag, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fields.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordFields_Prune(t *testing.T) {
	f := fields(RecordTypeA, "www", "10.0.0.1", 600)
	f.MXPriority = Ptr[uint16](10)
	f.SRVPort = Ptr[uint16](443)
	f.CAAFlags = Ptr[uint8](0)
	f.Prune()
	if f.MXPriority != nil || f.SRVPort != nil || f.CAAFlags != nil {
		t.Errorf("Prune() left structured fields on an A record: %+v", f)
	}

	caa := fields(RecordTypeCAA, "@", "letsencrypt.org", 600)
	caa.CAAFlags = Ptr[uint8](0)
	caa.Prune()
	if caa.CAAFlags == nil || *caa.CAAFlags != 0 {
		t.Error("Prune() must keep a zero CAA flag on a CAA record")
	}
}

func TestRecordCreateRequest_AsUpdate(t *testing.T) {
	req := &RecordCreateRequest{
		RecordFields:     fields(RecordTypeA, "www", "10.0.0.2", 600),
		ConflictStrategy: ConflictOverwrite,
	}
	upd := req.AsUpdate("rec-1")
	if upd.ID != "rec-1" || upd.Content != "10.0.0.2" || upd.RecordType != RecordTypeA {
		t.Errorf("AsUpdate() = %+v", upd)
	}
}

func TestIsServiceHost(t *testing.T) {
	tests := map[string]bool{
		"_sip._tcp":         true,
		"_sip._tcp.voice":   true,
		"sip._tcp":          false,
		"_sip":              false,
		"sip.example":       false,
		"_xmpp-client._tcp": true,
	}
	for host, want := range tests {
		if got := IsServiceHost(host); got != want {
			t.Errorf("IsServiceHost(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestRelativeHost(t *testing.T) {
	tests := []struct {
		host, zone, want string
	}{
		{"www", "example.com", "www"},
		{"www.example.com", "example.com", "www"},
		{"WWW.Example.COM.", "example.com", "WWW"},
		{"a.b.example.com", "example.com.", "a.b"},
		{"example.com", "example.com", "@"},
		{"example.com.", "example.com", "@"},
		{"@", "example.com", "@"},
		{" ", "example.com", "@"},
		{"www.notexample.com", "example.com", "www.notexample.com"},
		{"www", "", "www"},
	}
	for _, tt := range tests {
		if got := RelativeHost(tt.host, tt.zone); got != tt.want {
			t.Errorf("RelativeHost(%q, %q) = %q, want %q", tt.host, tt.zone, got, tt.want)
		}
	}
}
