package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Prabisha01/de/internal/apperrors"
	"github.com/go-resty/resty/v2"
)

// ErrServer marks a 5xx response or any status the API does not document.
var ErrServer = errors.New("server error")

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// mapHTTPError converts a non-2xx response into the matching error kind, carrying the
// server message as detail.
func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	message := strings.TrimSpace(string(resp.Body()))
	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		message = body.Message
		if body.Code != "" {
			message += " (" + body.Code + ")"
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode())
	}

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", apperrors.ErrBadRequest, message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", apperrors.ErrUnauthenticated, message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, message)
	default:
		return fmt.Errorf("%w: http %d: %s", ErrServer, resp.StatusCode(), message)
	}
}
