package dns

import "strings"

// FullName turns a host label into the absolute name without a trailing
// dot. "@", "" and the zone itself map to the zone.
func FullName(host, zone string) string {
	zone = strings.TrimSuffix(zone, ".")
	host = strings.TrimSpace(host)
	switch {
	case host == "" || host == "@" || host == zone:
		return zone
	case strings.HasSuffix(host, "."+zone):
		return host
	default:
		return host + "." + zone
	}
}

// FQDN is FullName with the trailing dot some APIs require.
func FQDN(host, zone string) string {
	return FullName(strings.TrimSuffix(host, "."), zone) + "."
}

// RelativeName is the inverse of FullName.
func RelativeName(name, zone string) string {
	name = strings.TrimSuffix(name, ".")
	zone = strings.TrimSuffix(zone, ".")
	switch {
	case name == zone:
		return "@"
	case strings.HasSuffix(name, "."+zone):
		return strings.TrimSuffix(name, "."+zone)
	default:
		return name
	}
}

// SplitSRVHost splits "_service._proto[.rest]".
func SplitSRVHost(host string) (service, proto, rest string, ok bool) {
	parts := strings.SplitN(host, ".", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "_") || !strings.HasPrefix(parts[1], "_") {
		return "", "", "", false
	}
	if len(parts) == 3 {
		rest = parts[2]
	}
	return parts[0], parts[1], rest, true
}

// SRVHostParts returns service and proto, defaulting to _service/_tcp.
func SRVHostParts(host string) (service, proto string) {
	if s, p, _, ok := SplitSRVHost(host); ok {
		return s, p
	}
	return "_service", "_tcp"
}
