package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Prabisha01/de/internal/apperrors"
)

func TestExtractTokenPrecedence(t *testing.T) {
	testCases := []struct {
		name           string
		header         string
		cookie         string
		expectedToken  string
		expectedSource CredentialSource
		expectError    bool
	}{
		{name: "header only", header: "Bearer header-token", expectedToken: "header-token", expectedSource: CredentialSourceHeader},
		{name: "cookie only", cookie: "cookie-token", expectedToken: "cookie-token", expectedSource: CredentialSourceCookie},
		{name: "header wins over cookie", header: "Bearer header-token", cookie: "cookie-token", expectedToken: "header-token", expectedSource: CredentialSourceHeader},
		{name: "lowercase scheme", header: "bearer abc", expectedToken: "abc", expectedSource: CredentialSourceHeader},
		{name: "non bearer header falls back to cookie", header: "Basic Zm9v", cookie: "cookie-token", expectedToken: "cookie-token", expectedSource: CredentialSourceCookie},
		{name: "empty bearer falls back to cookie", header: "Bearer   ", cookie: "cookie-token", expectedToken: "cookie-token", expectedSource: CredentialSourceCookie},
		{name: "nothing present", expectError: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			if testCase.header != "" {
				request.Header.Set("Authorization", testCase.header)
			}
			if testCase.cookie != "" {
				request.AddCookie(&http.Cookie{Name: "token", Value: testCase.cookie})
			}

			token, source, err := ExtractToken(request, "token")
			if testCase.expectError {
				if !errors.Is(err, apperrors.ErrUnauthenticated) {
					t.Fatalf("expected unauthenticated error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if token != testCase.expectedToken {
				t.Fatalf("expected token %q, got %q", testCase.expectedToken, token)
			}
			if source != testCase.expectedSource {
				t.Fatalf("expected source %q, got %q", testCase.expectedSource, source)
			}
		})
	}
}
