package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cardledger/internal/adapter/http/dto"
)

// TokenIssuer issues bearer tokens for an operator.
type TokenIssuer interface {
	Generate(subject string) (string, time.Time, error)
}

// CredentialChecker validates basic auth credentials.
type CredentialChecker interface {
	Check(username, password string) error
}

// AuthHandler exchanges basic credentials for a bearer token.
type AuthHandler struct {
	issuer      TokenIssuer
	credentials CredentialChecker
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(issuer TokenIssuer, credentials CredentialChecker) *AuthHandler {
	return &AuthHandler{
		issuer:      issuer,
		credentials: credentials,
	}
}

// Token issues a JWT for the operator named in the Authorization header.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="cardledger"`)
		writeError(w, http.StatusUnauthorized, "missing credentials", "")
		return
	}

	if err := h.credentials.Check(username, password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	token, expiresAt, err := h.issuer.Generate(username)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to generate token")
		writeError(w, http.StatusInternalServerError, "failed to generate token", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}
