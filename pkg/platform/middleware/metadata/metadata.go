package metadata

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"screening/pkg/requestcontext"
)

// Resolver derives the client IP. Proxy headers are honoured only when the
// direct peer is one of the trusted proxies; otherwise any caller could pick
// its own address.
type Resolver struct {
	trusted []netip.Prefix
}

// NewResolver parses trusted proxy CIDRs or bare addresses. No entries means
// only RemoteAddr is used.
func NewResolver(trustedProxies []string) (*Resolver, error) {
	r := &Resolver{}
	for _, raw := range trustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				return nil, fmt.Errorf("parse trusted proxy %q: %w", raw, err)
			}
			r.trusted = append(r.trusted, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("parse trusted proxy %q: %w", raw, err)
		}
		r.trusted = append(r.trusted, prefix.Masked())
	}
	return r, nil
}

// Middleware extracts client IP address and User-Agent from the request and
// adds them to the context. Apply it early in the chain.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), res.ClientIP(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP returns the peer address, or the nearest untrusted hop from
// X-Forwarded-For (then X-Real-IP) when the peer is a trusted proxy.
func (res *Resolver) ClientIP(r *http.Request) string {
	peer := remoteIP(r.RemoteAddr)
	if !res.isTrusted(peer) {
		return peer
	}

	// X-Forwarded-For is "client, proxy1, proxy2"; walk from the right so
	// entries appended by untrusted hops cannot be skipped.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !res.isTrusted(hop) {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func (res *Resolver) isTrusted(ip string) bool {
	if res == nil || len(res.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range res.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientMetadata is the middleware for deployments without a proxy: headers
// are ignored and RemoteAddr is the client.
func ClientMetadata(next http.Handler) http.Handler {
	return (&Resolver{}).Middleware(next)
}

// RemoteAddr is "ip:port" or "[::1]:port".
func remoteIP(addr string) string {
	if addr == "" {
		return "unknown"
	}
	if ap, err := netip.ParseAddrPort(addr); err == nil {
		return ap.Addr().Unmap().String()
	}
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return strings.Trim(addr[:idx], "[]")
	}
	return addr
}
