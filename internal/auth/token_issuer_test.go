package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/Prabisha01/de/internal/apperrors"
	"github.com/golang-jwt/jwt/v5"
)

func newTestIssuer(t *testing.T, clock func() time.Time) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("super-secret"),
		Issuer:        "boards-auth",
		Audience:      "boards-api",
		TokenTTL:      30 * time.Minute,
		Clock:         clock,
	})
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	return issuer
}

func TestTokenIssuerIssuesSubjectTokens(t *testing.T) {
	issuer := newTestIssuer(t, nil)

	issued, err := issuer.IssueToken("user-123")
	if err != nil {
		t.Fatalf("expected successful issuance: %v", err)
	}
	if !issued.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", issued.ExpiresAt)
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.NewParser().ParseWithClaims(issued.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("super-secret"), nil
	})
	if err != nil {
		t.Fatalf("failed to parse generated token: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("unexpected subject %s", claims.Subject)
	}
	if claims.Issuer != "boards-auth" {
		t.Fatalf("unexpected issuer %s", claims.Issuer)
	}
	if len(claims.Audience) == 0 || claims.Audience[0] != "boards-api" {
		t.Fatalf("unexpected audience %#v", claims.Audience)
	}
}

func TestTokenIssuerRejectsEmptySubject(t *testing.T) {
	issuer := newTestIssuer(t, nil)
	if _, err := issuer.IssueToken("  "); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}

func TestTokenIssuerValidatesIssuedTokens(t *testing.T) {
	issuer := newTestIssuer(t, nil)

	issued, err := issuer.IssueToken("user-321")
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}

	subject, err := issuer.ValidateToken(issued.Value)
	if err != nil {
		t.Fatalf("expected validation success: %v", err)
	}
	if subject != "user-321" {
		t.Fatalf("unexpected subject %s", subject)
	}

	_, err = issuer.ValidateToken("invalid.token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
	if !errors.Is(err, apperrors.ErrInvalidCredential) {
		t.Fatalf("expected invalid credential classification, got %v", err)
	}
}

func TestTokenIssuerRejectsExpiredTokens(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	current := issuedAt
	issuer := newTestIssuer(t, func() time.Time { return current })

	issued, err := issuer.IssueToken("user-1")
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}

	current = issuedAt.Add(31 * time.Minute)
	_, err = issuer.ValidateToken(issued.Value)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected expired token error, got %v", err)
	}
	if errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token must not be classified as invalid")
	}
}

func TestTokenIssuerRejectsForeignSignatures(t *testing.T) {
	issuer := newTestIssuer(t, nil)
	other, err := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("different-secret"),
		Issuer:        "boards-auth",
		Audience:      "boards-api",
	})
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	foreign, err := other.IssueToken("user-1")
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}
	if _, err := issuer.ValidateToken(foreign.Value); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestNewTokenIssuerValidation(t *testing.T) {
	testCases := []struct {
		name   string
		config TokenIssuerConfig
	}{
		{name: "missing secret", config: TokenIssuerConfig{Issuer: "boards-auth", Audience: "boards-api"}},
		{name: "missing issuer", config: TokenIssuerConfig{SigningSecret: []byte("s"), Audience: "boards-api"}},
		{name: "blank audience", config: TokenIssuerConfig{SigningSecret: []byte("s"), Issuer: "boards-auth", Audience: " "}},
		{name: "negative ttl", config: TokenIssuerConfig{SigningSecret: []byte("s"), Issuer: "boards-auth", Audience: "boards-api", TokenTTL: -time.Minute}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if _, err := NewTokenIssuer(testCase.config); err == nil {
				t.Fatalf("expected constructor error")
			}
		})
	}
}

func TestNewTokenIssuerDefaultsTTL(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("secret"),
		Issuer:        "boards-auth",
		Audience:      "boards-api",
	})
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	if issuer.TTL() != 30*24*time.Hour {
		t.Fatalf("expected 30 day default ttl, got %v", issuer.TTL())
	}
}
