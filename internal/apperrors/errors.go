// Package apperrors holds the error kinds shared by the services and the HTTP layer.
// Services wrap a kind with detail via fmt.Errorf("%w: ...", kind); the transport
// maps kinds to status codes with errors.Is.
package apperrors

import "errors"

var (
	// ErrValidation marks a missing or malformed required field.
	ErrValidation = errors.New("validation failed")
	// ErrBadRequest marks a request that is structurally unusable (e.g. no file attached).
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthenticated marks a request without any bearer credential.
	ErrUnauthenticated = errors.New("not authorized, no token")
	// ErrInvalidCredential marks a credential that failed verification or a failed login.
	ErrInvalidCredential = errors.New("invalid credentials")
	// ErrUnknownSubject marks a valid credential whose subject no longer resolves.
	ErrUnknownSubject = errors.New("user not found")
	// ErrForbidden marks an authenticated caller acting outside its rights.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks an identifier that does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a uniqueness violation such as duplicate registration.
	ErrConflict = errors.New("conflict")
)
