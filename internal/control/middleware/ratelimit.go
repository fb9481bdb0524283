// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"github.com/ManuGH/vidserve/internal/control/http/problem"
	"github.com/ManuGH/vidserve/internal/log"
)

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	Enabled bool
	// RPS is the sustained request rate per client IP.
	RPS int
	// Burst is how many requests a client may issue at once; the sliding
	// window is sized so that Burst requests drain at RPS.
	Burst int
	// Whitelist holds IPs or CIDRs that bypass the limiter.
	Whitelist []string
}

// APIRateLimit returns a per-IP sliding window limiter using httprate.
func APIRateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst < rps {
		burst = rps
	}
	window := time.Duration(float64(burst) / float64(rps) * float64(time.Second))
	retryAfter := strconv.Itoa(int(math.Ceil(window.Seconds())))

	limiter := httprate.Limit(
		burst,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			log.FromContext(r.Context()).Debug().
				Str(log.FieldEvent, "ratelimit.rejected").
				Str("remote_addr", r.RemoteAddr).
				Msg("rate limit exceeded")
			w.Header().Set("Retry-After", retryAfter)
			problem.WriteFailure(w, r, http.StatusTooManyRequests, "Too many requests")
		}),
	)

	allow := parseWhitelist(cfg.Whitelist)
	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := remoteIP(r); ip != nil && IsIPAllowed(ip, allow) {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

// IsIPAllowed reports whether ip falls in any of nets.
func IsIPAllowed(ip net.IP, nets []*net.IPNet) bool {
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func parseWhitelist(entries []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.Contains(e, "/") {
			if ip := net.ParseIP(e); ip != nil {
				bits := 32
				if ip.To4() == nil {
					bits = 128
				}
				nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			} else {
				log.L().Warn().Str("entry", e).Msg("ignoring invalid rate limit whitelist entry")
			}
			continue
		}
		if _, n, err := net.ParseCIDR(e); err == nil {
			nets = append(nets, n)
		} else {
			log.L().Warn().Err(err).Str("entry", e).Msg("ignoring invalid rate limit whitelist entry")
		}
	}
	return nets
}

func remoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
