// Package auth verifies bearer tokens at the HTTP boundary and injects the
// authenticated identity into the request. Identity provisioning lives in an
// external provider; this package only validates what it issued.
package auth

import (
	"time"

	"github.com/Abraxas-365/trainforge/pkg/errx"
	"github.com/Abraxas-365/trainforge/pkg/kernel"
)

// TokenClaims is the decoded identity carried by a verified access token.
type TokenClaims struct {
	UserID    kernel.UserID
	Email     string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService validates access tokens. GenerateAccessToken exists for local
// development and tests; production tokens come from the identity provider.
type TokenService interface {
	GenerateAccessToken(userID kernel.UserID, claims map[string]any) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

var authErrors = errx.NewRegistry("AUTH")

var (
	CodeUnauthorized    = authErrors.Register("UNAUTHORIZED", errx.TypeAuthorization, 401, "Authentication required")
	CodeInvalidToken    = authErrors.Register("INVALID_TOKEN", errx.TypeAuthorization, 401, "Invalid or expired token")
	CodeTokenGeneration = authErrors.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, 500, "Failed to generate token")
)

func ErrUnauthorized() *errx.Error {
	return authErrors.New(CodeUnauthorized)
}

func ErrInvalidToken() *errx.Error {
	return authErrors.New(CodeInvalidToken)
}

func ErrTokenGenerationFailed() *errx.Error {
	return authErrors.New(CodeTokenGeneration)
}
