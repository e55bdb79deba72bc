package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/Prabisha01/de/internal/apperrors"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hashed, err := hasher.Hash("pw1")
	if err != nil {
		t.Fatalf("unexpected hash error: %v", err)
	}
	if hashed == "pw1" {
		t.Fatalf("expected hashed password to differ from plaintext")
	}
	if err := hasher.Compare(hashed, "pw1"); err != nil {
		t.Fatalf("expected matching password, got %v", err)
	}
	if err := hasher.Compare(hashed, "wrong"); !errors.Is(err, apperrors.ErrInvalidCredential) {
		t.Fatalf("expected invalid credential, got %v", err)
	}
}

func TestPasswordHasherRejectsEmptyPassword(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	if _, err := hasher.Hash(""); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPasswordHasherRejectsOverlongPassword(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	if _, err := hasher.Hash(strings.Repeat("p", maxPasswordBytes+1)); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := hasher.Hash(strings.Repeat("p", maxPasswordBytes)); err != nil {
		t.Fatalf("expected a %d byte password to hash, got %v", maxPasswordBytes, err)
	}
}

func TestPasswordHasherCompareMalformedHash(t *testing.T) {
	hasher := NewPasswordHasher(0)
	if err := hasher.Compare("short", "pw"); !errors.Is(err, apperrors.ErrInvalidCredential) {
		t.Fatalf("expected invalid credential for malformed hash, got %v", err)
	}
}
