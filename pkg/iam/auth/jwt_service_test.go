package auth_test

import (
	"testing"
	"time"

	"github.com/Abraxas-365/trainforge/pkg/iam/auth"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := auth.NewJWTService("test-secret", time.Hour, "trainforge")

	token, err := svc.GenerateAccessToken("user-1", map[string]any{
		"email": "alice@example.com",
		"name":  "Alice",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "alice@example.com" || claims.Name != "Alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Fatal("token should not be expired")
	}
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	issuer := auth.NewJWTService("secret-a", time.Hour, "trainforge")
	verifier := auth.NewJWTService("secret-b", time.Hour, "trainforge")

	token, err := issuer.GenerateAccessToken("user-1", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ValidateAccessToken(token); err == nil {
		t.Fatal("expected rejection for wrong secret")
	}
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	issuer := auth.NewJWTService("secret", time.Hour, "someone-else")
	verifier := auth.NewJWTService("secret", time.Hour, "trainforge")

	token, err := issuer.GenerateAccessToken("user-1", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ValidateAccessToken(token); err == nil {
		t.Fatal("expected rejection for wrong issuer")
	}
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := auth.NewJWTService("secret", -time.Minute, "trainforge")

	token, err := svc.GenerateAccessToken("user-1", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ValidateAccessToken(token); err == nil {
		t.Fatal("expected rejection for expired token")
	}
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := auth.NewJWTService("secret", time.Hour, "trainforge")
	if _, err := svc.ValidateAccessToken("not.a.jwt"); err == nil {
		t.Fatal("expected rejection for malformed token")
	}
}
