package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/cardledger/internal/infrastructure/auth"
	"github.com/iho/cardledger/internal/infrastructure/metrics"
)

type contextKey string

const subjectContextKey contextKey = "auth_subject"

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// CredentialChecker validates basic auth credentials.
type CredentialChecker interface {
	Check(username, password string) error
}

// Authenticator accepts either basic credentials or a bearer token issued by
// the token endpoint.
type Authenticator struct {
	tokens      TokenVerifier
	credentials CredentialChecker
	metrics     *metrics.Metrics
}

// NewAuthenticator creates an Authenticator. m may be nil.
func NewAuthenticator(tokens TokenVerifier, credentials CredentialChecker, m *metrics.Metrics) *Authenticator {
	return &Authenticator{tokens: tokens, credentials: credentials, metrics: m}
}

// Wrap rejects requests without valid credentials and stores the caller in
// the request context.
func (a *Authenticator) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, reason := a.authenticate(r)
		if reason != "" {
			a.metrics.IncAuthFailure(reason)
			zerolog.Ctx(r.Context()).Debug().Str("reason", reason).Msg("authentication failed")

			w.Header().Set("WWW-Authenticate", `Basic realm="cardledger"`)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), subjectContextKey, subject)
		logger := zerolog.Ctx(ctx).With().Str("subject", subject).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
	})
}

// authenticate returns the caller, or a failure reason for metrics.
func (a *Authenticator) authenticate(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing"
	}

	if username, password, ok := r.BasicAuth(); ok {
		if err := a.credentials.Check(username, password); err != nil {
			return "", "bad_credentials"
		}
		return username, ""
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", "malformed"
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		return "", "invalid_token"
	}

	return claims.Subject, ""
}

// SubjectFromContext returns the authenticated caller.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectContextKey).(string)
	return subject, ok
}
