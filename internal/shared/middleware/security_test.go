package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHSTS(t *testing.T) {
	handler := HSTS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	got := rr.Header().Get("Strict-Transport-Security")
	if got != "max-age=31536000; includeSubDomains" {
		t.Errorf("Strict-Transport-Security = %q", got)
	}
}

func TestIsHostAllowed(t *testing.T) {
	tests := []struct {
		name         string
		host         string
		allowedHosts []string
		want         bool
	}{
		{"empty allow list permits everything", "example.com", nil, true},
		{"exact match with port", "example.com:8080", []string{"example.com:8080"}, true},
		{"host without port matches entry with port", "example.com", []string{"example.com:8080"}, true},
		{"host with port matches entry without port", "example.com:8080", []string{"example.com"}, true},
		{"localhost with port", "localhost:3000", []string{"localhost"}, true},
		{"ipv6 loopback exact", "[::1]:8080", []string{"[::1]:8080"}, true},
		{"ipv6 without brackets matches entry with port", "::1", []string{"[::1]:8080"}, true},
		{"ipv6 with port matches bare entry", "[::1]:8080", []string{"::1"}, true},
		{"ipv6 full address", "[2001:0db8:85a3::8a2e:0370:7334]:443", []string{"2001:0db8:85a3::8a2e:0370:7334"}, true},
		{"ipv6 link-local with zone", "[fe80::1%lo0]:8080", []string{"fe80::1%lo0"}, true},
		{"case insensitive", "Example.COM:8080", []string{"example.com"}, true},
		{"surrounding whitespace trimmed", "  example.com:8080  ", []string{"  example.com  "}, true},
		{"second entry matches", "app.example.com", []string{"example.com", "app.example.com"}, true},
		{"unknown host rejected", "evil.com", []string{"example.com", "app.example.com"}, false},
		{"subdomain is not its parent", "sub.example.com", []string{"example.com"}, false},
		{"different ipv6 address rejected", "[::2]:8080", []string{"[::1]:8080"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHostAllowed(tt.host, tt.allowedHosts); got != tt.want {
				t.Errorf("IsHostAllowed(%q, %v) = %v, want %v", tt.host, tt.allowedHosts, got, tt.want)
			}
		})
	}
}
