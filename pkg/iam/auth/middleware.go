package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/trainforge/pkg/kernel"
)

// TokenMiddleware authenticates requests with bearer JWTs.
type TokenMiddleware struct {
	tokenService TokenService
}

// NewAuthMiddleware creates the middleware.
func NewAuthMiddleware(tokenService TokenService) *TokenMiddleware {
	return &TokenMiddleware{tokenService: tokenService}
}

// Authenticate validates the Authorization header and stores the resulting
// AuthContext in fiber locals under kernel.AuthContextKey.
func (am *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return ErrUnauthorized()
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return ErrInvalidToken().WithDetail("error", "expected Bearer token")
		}

		claims, err := am.tokenService.ValidateAccessToken(parts[1])
		if err != nil {
			return err
		}

		c.Locals(string(kernel.AuthContextKey), &kernel.AuthContext{
			UserID: claims.UserID,
			Email:  claims.Email,
			Name:   claims.Name,
		})
		return c.Next()
	}
}

// FromFiber extracts the AuthContext stored by Authenticate. Handlers behind
// the middleware can rely on a valid result.
func FromFiber(c *fiber.Ctx) (*kernel.AuthContext, error) {
	ac, ok := c.Locals(string(kernel.AuthContextKey)).(*kernel.AuthContext)
	if !ok || !ac.IsValid() {
		return nil, ErrUnauthorized()
	}
	return ac, nil
}
