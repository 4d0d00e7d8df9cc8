package http

import (
	"net/http"
	"strings"
)

// UnknownClient is the identifier used when no usable client IP header is
// present. All such requests share one rate-limit bucket.
const UnknownClient = "unknown"

// ClientIP extracts the client identifier from proxy headers. X-Real-IP is
// set by the fronting proxy and preferred; X-Forwarded-For is consulted next,
// taking the first (client-most) entry. Values carrying control characters
// are discarded so a header-injection payload cannot become a rate-limit key.
func ClientIP(r *http.Request) string {
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" && !hasControlChars(realIP) {
		return strings.TrimSpace(realIP)
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" && !hasControlChars(first) {
			return first
		}
	}

	return UnknownClient
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}
