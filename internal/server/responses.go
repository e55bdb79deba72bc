package server

import (
	"errors"
	"net/http"

	"github.com/Prabisha01/de/internal/apperrors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serverErrorMessage = "Server error"

var errorStatusMap = map[error]int{
	apperrors.ErrValidation:        http.StatusBadRequest,
	apperrors.ErrBadRequest:        http.StatusBadRequest,
	apperrors.ErrConflict:          http.StatusBadRequest,
	apperrors.ErrUnauthenticated:   http.StatusUnauthorized,
	apperrors.ErrInvalidCredential: http.StatusUnauthorized,
	apperrors.ErrUnknownSubject:    http.StatusUnauthorized,
	apperrors.ErrForbidden:         http.StatusForbidden,
	apperrors.ErrNotFound:          http.StatusNotFound,
}

type codedError interface {
	Code() string
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// respondError aborts with the status mapped from err. Server failures hide their
// detail behind a generic message and the service error code, when one exists.
func (h *httpHandler) respondError(c *gin.Context, operation string, err error) {
	status := statusFromError(err)
	if status < http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, gin.H{"success": false, "message": err.Error()})
		return
	}
	h.logger.Error("request failed",
		zap.String("operation", operation),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	body := gin.H{"success": false, "message": serverErrorMessage}
	var coded codedError
	if errors.As(err, &coded) {
		body["code"] = coded.Code()
	}
	c.AbortWithStatusJSON(status, body)
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}
