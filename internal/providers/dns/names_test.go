package dns

import "testing"

func TestFullName(t *testing.T) {
	tests := []struct {
		host, zone, want string
	}{
		{"@", "example.com", "example.com"},
		{"", "example.com", "example.com"},
		{"www", "example.com", "www.example.com"},
		{"www.example.com", "example.com", "www.example.com"},
		{"example.com", "example.com.", "example.com"},
		{"_sip._tcp", "example.com", "_sip._tcp.example.com"},
	}
	for _, tt := range tests {
		if got := FullName(tt.host, tt.zone); got != tt.want {
			t.Errorf("FullName(%q, %q) = %q, want %q", tt.host, tt.zone, got, tt.want)
		}
	}
}

func TestFQDN(t *testing.T) {
	if got := FQDN("www", "example.com"); got != "www.example.com." {
		t.Errorf("FQDN() = %q", got)
	}
	if got := FQDN("@", "example.com"); got != "example.com." {
		t.Errorf("FQDN(@) = %q", got)
	}
}

func TestRelativeName(t *testing.T) {
	tests := []struct {
		name, zone, want string
	}{
		{"example.com.", "example.com", "@"},
		{"www.example.com.", "example.com", "www"},
		{"a.b.example.com", "example.com.", "a.b"},
		{"other.org", "example.com", "other.org"},
	}
	for _, tt := range tests {
		if got := RelativeName(tt.name, tt.zone); got != tt.want {
			t.Errorf("RelativeName(%q, %q) = %q, want %q", tt.name, tt.zone, got, tt.want)
		}
	}
}

func TestSplitSRVHost(t *testing.T) {
	service, proto, rest, ok := SplitSRVHost("_sip._tcp.office")
	if !ok || service != "_sip" || proto != "_tcp" || rest != "office" {
		t.Errorf("SplitSRVHost() = %q %q %q %v", service, proto, rest, ok)
	}
	if _, _, _, ok := SplitSRVHost("www"); ok {
		t.Error("SplitSRVHost(www) should fail")
	}

	service, proto = SRVHostParts("www")
	if service != "_service" || proto != "_tcp" {
		t.Errorf("SRVHostParts() = %q %q", service, proto)
	}
}
