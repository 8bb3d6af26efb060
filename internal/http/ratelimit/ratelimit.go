// Package ratelimit throttles requests per client address.
package ratelimit

import (
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"gitea.jw6.us/james/campusdesk/internal/workspace"
)

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	limiters       *workspace.Registry[*rate.Limiter]
	limit          rate.Limit
	trustedProxies []netip.Prefix
}

// NewIPRateLimiter creates a limiter allowing r requests per second with
// bursts of b. Buckets idle for longer than idle are forgotten.
// trustedProxies lists CIDRs or single IPs whose forwarding headers are
// believed; when empty, every peer is trusted.
func NewIPRateLimiter(r rate.Limit, b int, idle time.Duration, trustedProxies []string) *IPRateLimiter {
	l := &IPRateLimiter{
		limiters: workspace.NewRegistry(idle, func(string, string) *rate.Limiter {
			return rate.NewLimiter(r, b)
		}),
		limit: r,
	}
	for _, p := range trustedProxies {
		if prefix, ok := parsePrefix(p); ok {
			l.trustedProxies = append(l.trustedProxies, prefix)
		}
	}
	return l
}

func parsePrefix(s string) (netip.Prefix, bool) {
	s = strings.TrimSpace(s)
	if prefix, err := netip.ParsePrefix(s); err == nil {
		return prefix.Masked(), true
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return netip.PrefixFrom(addr, addr.BitLen()), true
	}
	return netip.Prefix{}, false
}

// Allow reports whether the client may make another request now.
func (l *IPRateLimiter) Allow(ip string) bool {
	return l.limiters.Get(ip, "").Allow()
}

// Middleware rejects clients over their budget with 429.
func (l *IPRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(l.clientIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(l.retryAfter()))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// retryAfter is the whole number of seconds until one token refills.
func (l *IPRateLimiter) retryAfter() int {
	if l.limit <= 0 || l.limit == rate.Inf {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(l.limit))))
}

func (l *IPRateLimiter) clientIP(r *http.Request) string {
	remote := parseAddr(r.RemoteAddr)

	if len(l.trustedProxies) > 0 && !l.trusted(remote) {
		return addrString(remote, r.RemoteAddr)
	}

	// X-Forwarded-For is "client, proxy1, proxy2"; the leftmost is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.Unmap().String()
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if addr, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return addr.Unmap().String()
		}
	}
	return addrString(remote, r.RemoteAddr)
}

func (l *IPRateLimiter) trusted(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	for _, p := range l.trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func parseAddr(remote string) netip.Addr {
	host := remote
	if h, _, err := net.SplitHostPort(remote); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}

func addrString(addr netip.Addr, fallback string) string {
	if addr.IsValid() {
		return addr.String()
	}
	return fallback
}
