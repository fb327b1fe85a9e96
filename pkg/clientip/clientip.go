// Package clientip resolves the address a request came from.
package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// RealClientIP returns the peer address of r in canonical form, so that the
// same client always maps to the same limiter key. IPv4-mapped IPv6 addresses
// are reduced to IPv4 and zones are dropped. Proxy headers such as
// X-Forwarded-For are ignored.
func RealClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return addr
	}
	return ip.Unmap().WithZone("").String()
}
