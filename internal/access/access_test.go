package access

import (
	"errors"
	"testing"

	"github.com/Prabisha01/de/internal/apperrors"
)

func TestAuthorizeMutation(t *testing.T) {
	testCases := []struct {
		name    string
		actor   Actor
		ownerID string
		wantErr error
	}{
		{name: "owner", actor: Actor{UserID: "u-1", Role: RoleUser}, ownerID: "u-1"},
		{name: "admin", actor: Actor{UserID: "u-2", Role: RoleAdmin}, ownerID: "u-1"},
		{name: "stranger", actor: Actor{UserID: "u-3", Role: RoleUser}, ownerID: "u-1", wantErr: apperrors.ErrForbidden},
		{name: "anonymous", actor: Actor{}, ownerID: "u-1", wantErr: apperrors.ErrUnauthenticated},
		{name: "orphan", actor: Actor{UserID: "u-1", Role: RoleUser}, ownerID: "", wantErr: apperrors.ErrForbidden},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := AuthorizeMutation(testCase.actor, testCase.ownerID)
			if testCase.wantErr == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, testCase.wantErr) {
				t.Fatalf("expected %v, got %v", testCase.wantErr, err)
			}
		})
	}
}

func TestAuthorizeRoles(t *testing.T) {
	if err := AuthorizeRoles(Actor{UserID: "u-1", Role: RoleAdmin}, RoleAdmin); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}
	err := AuthorizeRoles(Actor{UserID: "u-1", Role: RoleUser}, RoleAdmin)
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("")
	if err != nil || role != RoleUser {
		t.Fatalf("expected default user role, got %q %v", role, err)
	}
	role, err = ParseRole(" Admin ")
	if err != nil || role != RoleAdmin {
		t.Fatalf("expected admin role, got %q %v", role, err)
	}
	if _, err := ParseRole("publisher"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
