package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireAdmin(t *testing.T) {
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
		wantPass   bool
	}{
		{"exact match", "s3cret", "s3cret", http.StatusOK, true},
		{"wrong secret", "s3cret", "guess", http.StatusUnauthorized, false},
		{"missing header", "s3cret", "", http.StatusUnauthorized, false},
		{"prefix is not a match", "s3cret", "s3cret-extra", http.StatusUnauthorized, false},
		{"unconfigured secret locks out", "", "", http.StatusUnauthorized, false},
		{"unconfigured secret rejects empty match", "", "anything", http.StatusUnauthorized, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(http.MethodGet, "/api/admin/markets/status", nil)
			if tc.header != "" {
				req.Header.Set(adminSecretHeader, tc.header)
			}
			rec := httptest.NewRecorder()

			RequireAdmin(tc.secret)(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if reached != tc.wantPass {
				t.Errorf("handler reached = %v, want %v", reached, tc.wantPass)
			}
		})
	}
}
