package middleware

import (
	"net"
	"net/http"
	"strings"
)

// HSTS sets Strict-Transport-Security so browsers pin HTTPS for a year,
// subdomains included. Only wired when the server terminates TLS itself.
func HSTS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// IsHostAllowed reports whether host matches the allow list. It is used by
// the HTTP to HTTPS redirect server to keep attacker-controlled Host
// headers out of redirect targets. An empty list allows everything.
//
// Comparison ignores case, surrounding whitespace, ports and IPv6
// brackets, so "[::1]:8080" matches an allow entry of "::1".
func IsHostAllowed(host string, allowedHosts []string) bool {
	if len(allowedHosts) == 0 {
		return true
	}

	host = strings.ToLower(strings.TrimSpace(host))
	bare := stripPort(host)

	for _, allowed := range allowedHosts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if host == allowed || bare == stripPort(allowed) {
			return true
		}
	}

	return false
}

// stripPort removes a trailing :port and any IPv6 brackets. Inputs without
// a port pass through unchanged apart from bracket removal.
func stripPort(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return strings.Trim(hostport, "[]")
}
