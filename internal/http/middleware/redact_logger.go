package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures extra scrub behavior for RedactingLogger.
//
// MaskHeaders lists additional header names whose values are replaced with
// "[REDACTED]" wholesale. Matching is case-insensitive and merged with the
// built-in set (Authorization, Cookie, Set-Cookie).
type RedactOptions struct {
	MaskHeaders []string
}

// Path segments that name a resource keyed by a caller-supplied token. The
// segment after any of these is masked when we have to log a raw URL path.
var tokenSegments = map[string]struct{}{
	"sessions": {},
	"profiles": {},
}

// RedactingLogger logs one structured line per request with obvious PII
// scrubbed first. Bodies are never logged. Query strings and header values
// go through regex substitution for emails, phone numbers and UUID-like ids;
// sensitive headers are masked entirely.
//
// The logged path is the route template (c.FullPath), which carries
// placeholders instead of values. Requests that match no route fall back to
// the raw URL path, so that path gets session tokens masked before logging.
//
// UUIDs are redacted before phone numbers so the looser phone pattern cannot
// latch onto the digit runs inside a UUID.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	uuidRE := regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE := regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits-only phone pattern, so hex runs inside ids stay untouched.
	// Matches "+1 212-555-1212", "212 555 1212", "(212) 555-1212".
	phoneRE := regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)

	redact := func(s string) string {
		if s == "" {
			return s
		}
		out := s
		// Order matters: ids first, phone last (phone is the loosest).
		out = uuidRE.ReplaceAllString(out, "[REDACTED:id]")
		out = emailRE.ReplaceAllString(out, "[REDACTED:email]")
		out = phoneRE.ReplaceAllString(out, "[REDACTED:phone]")
		return out
	}

	// Build the header mask set (case-insensitive).
	maskHeaders := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			// No route matched; the raw path may embed a session token.
			path = redact(maskTokenPath(c.Request.URL.Path))
		}
		rawQuery := c.Request.URL.RawQuery
		safeQuery := redact(rawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			keyLower := strings.ToLower(k)
			val := strings.Join(vv, ", ")
			if _, ok := maskHeaders[keyLower]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(val)
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		size := c.Writer.Size()

		reqID := c.Writer.Header().Get("X-Request-ID")
		if reqID == "" {
			reqID = c.GetHeader("X-Request-ID")
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", size).
			Dur("latency", latency).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}

// maskTokenPath replaces the segment following a token-bearing resource name
// with "[REDACTED:token]". "/api/v1/sessions/abc123/state" logs as
// "/api/v1/sessions/[REDACTED:token]/state".
func maskTokenPath(p string) string {
	segs := strings.Split(p, "/")
	for i := 0; i < len(segs)-1; i++ {
		if _, ok := tokenSegments[segs[i]]; ok && segs[i+1] != "" {
			segs[i+1] = "[REDACTED:token]"
		}
	}
	return strings.Join(segs, "/")
}
