package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveWithHeaders(env string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	handler := SecurityHeaders(SecurityHeadersConfig{Env: env})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest("GET", "/api/blog", nil)
	if mutate != nil {
		mutate(req)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestSecurityHeadersBaseline(t *testing.T) {
	recorder := serveWithHeaders("development", nil)

	checks := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, want := range checks {
		if got := recorder.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}

	csp := recorder.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "frame-ancestors 'none'") {
		t.Errorf("CSP missing frame-ancestors: %q", csp)
	}
	if strings.Contains(csp, "upgrade-insecure-requests") {
		t.Errorf("development CSP should not upgrade requests: %q", csp)
	}
}

func TestSecurityHeadersProduction(t *testing.T) {
	recorder := serveWithHeaders("production", func(r *http.Request) {
		r.Header.Set("X-Forwarded-Proto", "https")
	})

	csp := recorder.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "upgrade-insecure-requests") {
		t.Errorf("production CSP should upgrade requests: %q", csp)
	}

	hsts := recorder.Header().Get("Strict-Transport-Security")
	if !strings.Contains(hsts, "max-age=31536000") {
		t.Errorf("expected HSTS header, got %q", hsts)
	}
}

func TestSecurityHeadersNoHSTSOverHTTP(t *testing.T) {
	recorder := serveWithHeaders("production", nil)

	if hsts := recorder.Header().Get("Strict-Transport-Security"); hsts != "" {
		t.Errorf("HSTS should not be set without HTTPS, got %q", hsts)
	}
}
