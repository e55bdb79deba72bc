// Package ids issues and validates the UUIDv7 identifiers used for users, boards, notes and elements.
package ids

import (
	"fmt"
	"strings"

	"github.com/Prabisha01/de/internal/apperrors"
	"github.com/google/uuid"
)

// Provider issues new identifiers.
type Provider interface {
	NewID() (string, error)
}

type uuidProvider struct{}

// NewUUIDProvider constructs a Provider that issues UUIDv7 identifiers.
func NewUUIDProvider() Provider {
	return &uuidProvider{}
}

func (p *uuidProvider) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return value.String(), nil
}

// Validate returns the canonical form of value or a validation error naming field.
func Validate(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s is required", apperrors.ErrValidation, field)
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: malformed %s", apperrors.ErrValidation, field)
	}
	return parsed.String(), nil
}
