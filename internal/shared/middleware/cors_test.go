package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsOriginAllowed(t *testing.T) {
	tests := []struct {
		name         string
		origin       string
		allowedHosts []string
		want         bool
	}{
		{"exact match with port", "http://example.com:8080", []string{"example.com:8080"}, true},
		{"hostname match ignores origin port", "http://example.com:3000", []string{"example.com"}, true},
		{"unknown origin rejected", "http://evil.com", []string{"example.com"}, false},
		{"case insensitive", "http://Example.COM", []string{"example.com"}, true},
		{"unparseable origin rejected", "://invalid", []string{"example.com"}, false},
		{"subdomain is not its parent", "http://sub.example.com", []string{"example.com"}, false},
		{"localhost dev origin", "http://localhost:3000", []string{"localhost"}, true},
		{"allow entry with whitespace", "http://example.com", []string{"  example.com  "}, true},
		{"https origin matches plain host entry", "https://app.example.com", []string{"app.example.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isOriginAllowed(tt.origin, tt.allowedHosts); got != tt.want {
				t.Errorf("isOriginAllowed(%q, %v) = %v, want %v", tt.origin, tt.allowedHosts, got, tt.want)
			}
		})
	}
}

func corsRequest(allowedHosts []string, method, path, origin string) (*httptest.ResponseRecorder, bool) {
	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(method, path, nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	CORS(allowedHosts)(next).ServeHTTP(rr, req)

	return rr, nextCalled
}

func TestCORSHandler(t *testing.T) {
	tests := []struct {
		name            string
		allowedHosts    []string
		method          string
		path            string
		origin          string
		wantStatus      int
		wantAllowOrigin string
		wantNextCalled  bool
	}{
		{
			name:            "empty allow list permits any origin",
			method:          http.MethodGet, path: "/api/accounts",
			origin:          "http://any-origin.com",
			wantStatus:      http.StatusOK,
			wantAllowOrigin: "*",
			wantNextCalled:  true,
		},
		{
			name:            "allowed origin echoed with credentials",
			allowedHosts:    []string{"example.com"},
			method:          http.MethodGet, path: "/api/accounts",
			origin:          "http://example.com",
			wantStatus:      http.StatusOK,
			wantAllowOrigin: "http://example.com",
			wantNextCalled:  true,
		},
		{
			name:         "disallowed origin blocked",
			allowedHosts: []string{"example.com"},
			method:       http.MethodGet, path: "/api/accounts",
			origin:       "http://evil.com",
			wantStatus:   http.StatusForbidden,
		},
		{
			name:       "preflight short-circuits",
			method:     http.MethodOptions, path: "/api/accounts",
			wantStatus: http.StatusNoContent,
		},
		{
			name:            "webhook path exempt from origin checks",
			allowedHosts:    []string{"example.com"},
			method:          http.MethodPost, path: "/webhooks/provider",
			origin:          "http://evil.com",
			wantStatus:      http.StatusOK,
			wantAllowOrigin: "*",
			wantNextCalled:  true,
		},
		{
			name:           "no origin header passes through",
			allowedHosts:   []string{"example.com"},
			method:         http.MethodGet, path: "/api/accounts",
			wantStatus:     http.StatusOK,
			wantNextCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, nextCalled := corsRequest(tt.allowedHosts, tt.method, tt.path, tt.origin)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllowOrigin)
			}
			if nextCalled != tt.wantNextCalled {
				t.Errorf("next called = %v, want %v", nextCalled, tt.wantNextCalled)
			}
		})
	}
}

func TestCORSCredentialsHeader(t *testing.T) {
	rr, _ := corsRequest([]string{"example.com"}, http.MethodGet, "/api/accounts", "http://example.com")

	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
	}
	if got := rr.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q, want Origin", got)
	}
}
