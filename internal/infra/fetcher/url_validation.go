// Package fetcher downloads article pages over plain HTTP for the static extraction tier.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"news-digest/internal/usecase/extract"
)

// validateURL validates a URL before making an HTTP request.
//   - Only http and https schemes are allowed
//   - The hostname must be non-empty
//   - With denyPrivateIPs, every resolved address must be public
//
// Blocked IP ranges (when denyPrivateIPs is true):
//   - 127.0.0.0/8, ::1 (loopback)
//   - 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16, fc00::/7 (private)
//   - 169.254.0.0/16, fe80::/10 (link-local)
func validateURL(ctx context.Context, urlStr string, denyPrivateIPs bool) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", extract.ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme '%s' not allowed (only http/https)", extract.ErrInvalidURL, u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", extract.ErrInvalidURL)
	}

	if !denyPrivateIPs {
		return nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, hostname)
	if err != nil {
		return fmt.Errorf("%w: DNS lookup failed for %s: %v", extract.ErrInvalidURL, hostname, err)
	}

	for _, addr := range addrs {
		if isPrivateIP(addr.IP) {
			return fmt.Errorf("%w: hostname '%s' resolves to private IP %s", extract.ErrPrivateIP, hostname, addr.IP.String())
		}
	}

	return nil
}

// isPrivateIP reports whether ip is loopback, private or link-local (IPv4 or IPv6).
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}
