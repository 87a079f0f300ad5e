package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
)

// ErrUnsafeURL marks a webhook target the gateway refuses to call.
var ErrUnsafeURL = errors.New("unsafe webhook url")

var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"), // CGNAT
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("64:ff9b::/96"), // NAT64
	netip.MustParsePrefix("2001:db8::/32"),
}

var blockedHosts = map[string]bool{
	"localhost":                true,
	"metadata.google.internal": true,
	"metadata":                 true,
}

// IPResolver is the subset of *net.Resolver the guard needs.
type IPResolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// URLGuard rejects webhook targets that point at internal infrastructure.
type URLGuard struct {
	resolver     IPResolver
	allowPrivate bool
}

// NewURLGuard creates a guard. allowPrivate disables the address checks and
// is meant for local development against receivers on loopback.
func NewURLGuard(resolver IPResolver, allowPrivate bool) *URLGuard {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &URLGuard{resolver: resolver, allowPrivate: allowPrivate}
}

// CheckSyntax validates scheme and host without any network access.
func (g *URLGuard) CheckSyntax(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsafeURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("%w: scheme %q not allowed", ErrUnsafeURL, u.Scheme)
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrUnsafeURL)
	}
	if g.allowPrivate {
		return u, nil
	}
	if blockedHosts[host] || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".internal") {
		return nil, fmt.Errorf("%w: host %q not allowed", ErrUnsafeURL, host)
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		if reason := blockedReason(addr); reason != "" {
			return nil, fmt.Errorf("%w: %s address %s", ErrUnsafeURL, reason, addr)
		}
	}
	return u, nil
}

// Validate checks the URL and every address its host resolves to. Policy
// violations wrap ErrUnsafeURL; resolution failures do not.
func (g *URLGuard) Validate(ctx context.Context, raw string) error {
	u, err := g.CheckSyntax(raw)
	if err != nil || g.allowPrivate {
		return err
	}

	host := u.Hostname()
	if _, err := netip.ParseAddr(host); err == nil {
		return nil
	}

	addrs, err := g.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("resolving %s: no addresses", host)
	}
	for _, a := range addrs {
		addr, ok := netip.AddrFromSlice(a.IP)
		if !ok {
			continue
		}
		if reason := blockedReason(addr); reason != "" {
			return fmt.Errorf("%w: %s resolves to %s address %s", ErrUnsafeURL, host, reason, addr.Unmap())
		}
	}
	return nil
}

// DialControl re-checks the address actually dialled, closing the window
// between Validate's lookup and the connection (DNS rebinding).
func (g *URLGuard) DialControl(network, address string, _ syscall.RawConn) error {
	if g.allowPrivate {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeURL, err)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeURL, err)
	}
	if reason := blockedReason(addr); reason != "" {
		return fmt.Errorf("%w: dial to %s address %s", ErrUnsafeURL, reason, addr.Unmap())
	}
	return nil
}

func blockedReason(addr netip.Addr) string {
	addr = addr.Unmap()
	switch {
	case addr.IsLoopback():
		return "loopback"
	case addr.IsPrivate():
		return "private"
	case addr.IsLinkLocalUnicast(), addr.IsLinkLocalMulticast():
		return "link-local"
	case addr.IsUnspecified():
		return "unspecified"
	case addr.IsMulticast(), addr.IsInterfaceLocalMulticast():
		return "multicast"
	}
	if addr == netip.AddrFrom4([4]byte{255, 255, 255, 255}) {
		return "broadcast"
	}
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return "reserved"
		}
	}
	return ""
}
