package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Abraxas-365/trainforge/pkg/kernel"
)

// JWTService implements TokenService with HMAC-signed JWTs.
type JWTService struct {
	secretKey      []byte
	accessTokenTTL time.Duration
	issuer         string
}

// NewJWTService creates the service. A zero TTL defaults to one hour.
func NewJWTService(secretKey string, accessTokenTTL time.Duration, issuer string) *JWTService {
	if accessTokenTTL == 0 {
		accessTokenTTL = time.Hour
	}
	if issuer == "" {
		issuer = "trainforge"
	}
	return &JWTService{
		secretKey:      []byte(secretKey),
		accessTokenTTL: accessTokenTTL,
		issuer:         issuer,
	}
}

type jwtClaims struct {
	UserID kernel.UserID `json:"user_id"`
	Email  string        `json:"email"`
	Name   string        `json:"name"`
	jwt.RegisteredClaims
}

// GenerateAccessToken issues a signed access token for the given identity.
func (j *JWTService) GenerateAccessToken(userID kernel.UserID, claims map[string]any) (string, error) {
	now := time.Now()

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		UserID: userID,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", ErrTokenGenerationFailed().WithDetail("error", err.Error())
	}
	return signed, nil
}

// ValidateAccessToken verifies the signature and standard claims and returns
// the decoded identity.
func (j *JWTService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithIssuer(j.issuer))
	if err != nil {
		return nil, ErrInvalidToken().WithDetail("error", err.Error())
	}
	if !token.Valid {
		return nil, ErrInvalidToken()
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok {
		return nil, ErrInvalidToken().WithDetail("error", "invalid claims type")
	}
	if claims.UserID.IsEmpty() {
		return nil, ErrInvalidToken().WithDetail("error", "token carries no user id")
	}

	out := &TokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
