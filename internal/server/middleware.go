package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/Prabisha01/de/internal/access"
	"github.com/Prabisha01/de/internal/apperrors"
	"github.com/Prabisha01/de/internal/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const actorContextKey = "boards_actor"

// authorizeRequest is the authorization gate: it resolves the request credential to a
// user and stores the actor on the context. Failures never reach the handlers.
func (h *httpHandler) authorizeRequest(c *gin.Context) {
	token, source, err := auth.ExtractToken(c.Request, h.settings.CookieName)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": apperrors.ErrUnauthenticated.Error()})
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		level := zap.WarnLevel
		if errors.Is(err, auth.ErrExpiredToken) {
			level = zap.InfoLevel
		}
		h.logger.Log(level, "token validation failed", zap.String("source", string(source)), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token is invalid"})
		return
	}
	user, err := h.subjects.Resolve(c.Request.Context(), subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownSubject) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": apperrors.ErrUnknownSubject.Error()})
			return
		}
		h.respondError(c, "server.authorize", err)
		return
	}
	if user.IsBanned {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "account is banned"})
		return
	}
	c.Set(actorContextKey, user.Actor())
	c.Next()
}

// requireRoles rejects callers whose role is not among allowed. It must run after authorizeRequest.
func (h *httpHandler) requireRoles(allowed ...access.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.AuthorizeRoles(actorFromContext(c), allowed...); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.Next()
	}
}

func (h *httpHandler) logRequests(c *gin.Context) {
	started := time.Now()
	c.Next()
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(started)),
	}
	if actor := actorFromContext(c); actor.UserID != "" {
		fields = append(fields, zap.String("user_id", actor.UserID))
	}
	if c.Writer.Status() >= http.StatusInternalServerError {
		h.logger.Warn("http request", fields...)
		return
	}
	h.logger.Debug("http request", fields...)
}

func actorFromContext(c *gin.Context) access.Actor {
	value, ok := c.Get(actorContextKey)
	if !ok {
		return access.Actor{}
	}
	actor, _ := value.(access.Actor)
	return actor
}
