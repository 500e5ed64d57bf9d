package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/reclaim/internal/model"
)

var ana = &model.User{ID: 1, Name: "Ana", Email: "ana@cit.edu.in"}

func TestGenerateAndValidateToken(t *testing.T) {
	tokens := NewTokens("test-secret-key", time.Hour)

	token, issued, err := tokens.Generate(ana)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := tokens.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("expected user_id 1, got %d", claims.UserID)
	}
	if claims.Name != "Ana" {
		t.Errorf("expected name 'Ana', got %q", claims.Name)
	}
	if claims.Email != "ana@cit.edu.in" {
		t.Errorf("expected email 'ana@cit.edu.in', got %q", claims.Email)
	}
	if claims.ID != issued.ID {
		t.Errorf("expected JTI %q, got %q", issued.ID, claims.ID)
	}
	if claims.Subject != "1" {
		t.Errorf("expected subject '1', got %q", claims.Subject)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, _ := NewTokens("secret1", time.Hour).Generate(ana)

	_, err := NewTokens("secret2", time.Hour).Validate(token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := NewTokens("secret", time.Hour).Validate("not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	token, _, _ := tokens.Generate(ana)

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := tokens.Validate(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	claims := Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewTokens("secret", time.Hour).Validate(token); err == nil {
		t.Error("expected error for foreign issuer")
	}
}

func TestUniqueJTI(t *testing.T) {
	tokens := NewTokens("secret", 0)
	_, a, _ := tokens.Generate(ana)
	_, b, _ := tokens.Generate(ana)
	if a.ID == b.ID {
		t.Error("expected distinct JTIs")
	}
	if got := a.ExpiresAt.Sub(a.IssuedAt.Time); got != DefaultTTL {
		t.Errorf("expected default TTL %v, got %v", DefaultTTL, got)
	}
}
