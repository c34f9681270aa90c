package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveSecure(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	handler := SecureHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestSecureHeaders(t *testing.T) {
	rr := serveSecure(t, "/api/posts")

	tests := []struct {
		header string
		want   string
	}{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"Permissions-Policy", "interest-cohort=()"},
		{"Cache-Control", "no-store"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := rr.Header().Get(tt.header); got != tt.want {
				t.Errorf("%s: got %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestSecureHeadersCacheableOutsideAPI(t *testing.T) {
	for _, path := range []string{"/feed/rss", "/sitemap.xml", "/robots.txt", "/apiary"} {
		t.Run(path, func(t *testing.T) {
			rr := serveSecure(t, path)
			if got := rr.Header().Get("Cache-Control"); got != "" {
				t.Errorf("Cache-Control: got %q, want unset", got)
			}
			if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options: got %q, want nosniff", got)
			}
		})
	}
}
