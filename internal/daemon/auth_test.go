package daemon

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"karaparty/internal/api"
	"karaparty/internal/services"
)

func TestAuthMiddleware(t *testing.T) {
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }
	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"no token configured", "", "", http.StatusNoContent},
		{"missing header", "t", "", http.StatusUnauthorized},
		{"wrong scheme", "t", "Basic t", http.StatusUnauthorized},
		{"wrong token", "t", "Bearer x", http.StatusUnauthorized},
		{"valid", "t", "Bearer t", http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			authMiddleware(tc.token, ok)(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = services.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(api.RequestIDHeader, "abc")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if seen != "abc" || w.Header().Get(api.RequestIDHeader) != "abc" {
		t.Fatalf("expected propagated id, got ctx=%q header=%q", seen, w.Header().Get(api.RequestIDHeader))
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || seen == "abc" {
		t.Fatalf("expected generated id, got %q", seen)
	}
}
