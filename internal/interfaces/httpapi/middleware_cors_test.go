package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"configured origin", []string{"https://scores.example.org"}, http.MethodGet, "https://scores.example.org", http.StatusOK, "https://scores.example.org"},
		{"wildcard preflight", []string{"*"}, http.MethodOptions, "https://scores.example.org", http.StatusNoContent, "*"},
		{"unknown origin", []string{"https://scores.example.org"}, http.MethodGet, "https://elsewhere.example.com", http.StatusOK, ""},
		{"blank entries ignored", []string{" ", ""}, http.MethodGet, "https://scores.example.org", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/tournaments", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			CORS(tt.allowed, okHandler).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Fatalf("Access-Control-Allow-Origin=%q want=%q", got, tt.wantOrigin)
			}
		})
	}
}
