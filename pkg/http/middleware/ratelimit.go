package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ClientLimiter admits or rejects a request for one caller identity.
type ClientLimiter interface {
	Check(identity string) bool
}

// RateLimitConfig configures the inbound admission middleware.
type RateLimitConfig struct {
	// TrustProxy gates forwarding headers. When false, spoofable
	// X-Forwarded-For / X-Real-IP values are ignored and only the
	// transport-level peer address is used.
	TrustProxy bool
}

// RateLimit bounds request rate per caller identity.
func RateLimit(limiter ClientLimiter, cfg RateLimitConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := ClientIdentity(c.Request(), cfg.TrustProxy)
			if !limiter.Check(identity) {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": "Too Many Requests",
				})
			}
			return next(c)
		}
	}
}

// ClientIdentity derives a rate-limiting identity for a request.
// Preference order: transport peer address; forwarding headers only
// when trustProxy is set; otherwise the "unknown" sentinel.
func ClientIdentity(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// first hop is the original client
			if i := strings.IndexByte(xff, ','); i >= 0 {
				xff = xff[:i]
			}
			if ip := strings.TrimSpace(xff); ip != "" {
				return ip
			}
		}
		if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
			return rip
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
