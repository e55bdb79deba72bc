package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Prabisha01/de/internal/media"
	"github.com/Prabisha01/de/internal/users"
	"github.com/gin-gonic/gin"
)

type loginRequestPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *httpHandler) handleRegister(c *gin.Context) {
	var request users.RegisterInput
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	user, err := h.users.Register(c.Request.Context(), request)
	if err != nil {
		h.respondError(c, "users.register", err)
		return
	}
	respondMessage(c, http.StatusCreated, "User created successfully", user)
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	result, err := h.users.Login(c.Request.Context(), request.Username, request.Password)
	if err != nil {
		h.respondError(c, "users.login", err)
		return
	}
	maxAge := int(time.Until(result.Token.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.settings.CookieName, result.Token.Value, maxAge, "/", "", h.settings.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     result.Token.Value,
		"expiresAt": result.Token.ExpiresAt.UTC(),
		"data":      result.User,
	})
}

func (h *httpHandler) handleLogout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.settings.CookieName, "", -1, "/", "", h.settings.CookieSecure, true)
	respondMessage(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *httpHandler) handleGetMe(c *gin.Context) {
	profile, err := h.users.Profile(c.Request.Context(), actorFromContext(c))
	if err != nil {
		h.respondError(c, "users.get_me", err)
		return
	}
	respondData(c, http.StatusOK, profile)
}

func (h *httpHandler) handleSubscription(c *gin.Context) {
	subscription, err := h.users.Subscription(c.Request.Context(), actorFromContext(c))
	if err != nil {
		h.respondError(c, "users.subscription", err)
		return
	}
	respondData(c, http.StatusOK, subscription)
}

func (h *httpHandler) handleUpdateProfilePicture(c *gin.Context) {
	upload, closeUpload, err := formUpload(c, "profilePicture")
	if err != nil {
		h.respondError(c, "users.profile_picture", err)
		return
	}
	defer closeUpload()
	user, err := h.users.UpdateProfilePicture(c.Request.Context(), actorFromContext(c), upload)
	if err != nil {
		h.respondError(c, "users.profile_picture", err)
		return
	}
	respondMessage(c, http.StatusOK, "Profile picture updated", user)
}

func (h *httpHandler) handleListUsers(c *gin.Context) {
	filter := users.ListFilter{
		Role: c.Query("role"),
		Plan: c.Query("plan"),
	}
	if raw := c.Query("isBanned"); raw != "" {
		banned, err := strconv.ParseBool(raw)
		if err != nil {
			respondBadRequest(c, "isBanned must be true or false")
			return
		}
		filter.IsBanned = &banned
	}
	list, err := h.users.List(c.Request.Context(), actorFromContext(c), filter)
	if err != nil {
		h.respondError(c, "users.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

func (h *httpHandler) handleUpdateUser(c *gin.Context) {
	var request users.UpdateInput
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	user, err := h.users.Update(c.Request.Context(), actorFromContext(c), c.Param("id"), request)
	if err != nil {
		h.respondError(c, "users.update", err)
		return
	}
	respondMessage(c, http.StatusOK, "User updated successfully", user)
}

func (h *httpHandler) handleDeleteUser(c *gin.Context) {
	user, err := h.users.Delete(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		h.respondError(c, "users.delete", err)
		return
	}
	respondMessage(c, http.StatusOK, "User deleted successfully", gin.H{"id": user.ID})
}

// formUpload opens the first multipart file found under fields. The returned
// closer must be called once the upload has been consumed.
func formUpload(c *gin.Context, fields ...string) (media.Upload, func(), error) {
	for _, field := range fields {
		header, err := c.FormFile(field)
		if err != nil {
			continue
		}
		file, err := header.Open()
		if err != nil {
			return media.Upload{}, func() {}, media.ErrNoFile
		}
		upload := media.Upload{Filename: header.Filename, Size: header.Size, Body: file}
		return upload, func() { _ = file.Close() }, nil
	}
	return media.Upload{}, func() {}, media.ErrNoFile
}
