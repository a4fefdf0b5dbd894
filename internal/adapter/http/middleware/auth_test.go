package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cardledger/internal/infrastructure/auth"
	"github.com/iho/cardledger/internal/infrastructure/metrics"
)

func TestAuthenticator(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour)
	token, _, err := manager.Generate("admin")
	require.NoError(t, err)

	otherToken, _, err := auth.NewJWTManager("other-secret", time.Hour).Generate("admin")
	require.NoError(t, err)

	tests := []struct {
		name        string
		setup       func(*http.Request)
		wantStatus  int
		wantSubject string
		wantReason  string
	}{
		{
			name:        "basic credentials",
			setup:       func(r *http.Request) { r.SetBasicAuth("admin", "password") },
			wantStatus:  http.StatusOK,
			wantSubject: "admin",
		},
		{
			name:        "bearer token",
			setup:       func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantStatus:  http.StatusOK,
			wantSubject: "admin",
		},
		{
			name:       "missing header",
			setup:      func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantReason: "missing",
		},
		{
			name:       "wrong password",
			setup:      func(r *http.Request) { r.SetBasicAuth("admin", "nope") },
			wantStatus: http.StatusUnauthorized,
			wantReason: "bad_credentials",
		},
		{
			name:       "token signed elsewhere",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+otherToken) },
			wantStatus: http.StatusUnauthorized,
			wantReason: "invalid_token",
		},
		{
			name:       "unknown scheme",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Digest abc") },
			wantStatus: http.StatusUnauthorized,
			wantReason: "malformed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())
			authn := NewAuthenticator(manager, auth.BasicCredentials{Username: "admin", Password: "password"}, m)

			var subject string
			handler := authn.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				subject, _ = SubjectFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantSubject, subject)
			if tt.wantReason != "" {
				assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthFailures.WithLabelValues(tt.wantReason)))
			}
		})
	}
}
