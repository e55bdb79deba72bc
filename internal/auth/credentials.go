package auth

import (
	"net/http"
	"strings"

	"github.com/Prabisha01/de/internal/apperrors"
)

const bearerPrefix = "bearer "

// CredentialSource names where a request credential was found.
type CredentialSource string

const (
	// CredentialSourceHeader is the Authorization: Bearer header.
	CredentialSourceHeader CredentialSource = "header"
	// CredentialSourceCookie is the http-only session cookie.
	CredentialSourceCookie CredentialSource = "cookie"
)

// ExtractToken resolves the bearer credential of a request. Sources are consulted in
// order: the Authorization header, then the named cookie. The first non-empty value wins.
func ExtractToken(r *http.Request, cookieName string) (string, CredentialSource, error) {
	if r == nil {
		return "", "", apperrors.ErrUnauthenticated
	}
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		return token, CredentialSourceHeader, nil
	}
	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
			return strings.TrimSpace(cookie.Value), CredentialSourceCookie, nil
		}
	}
	return "", "", apperrors.ErrUnauthenticated
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
