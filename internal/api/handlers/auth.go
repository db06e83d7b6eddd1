package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colefleming/mtg-binder/internal/auth"
	"github.com/colefleming/mtg-binder/internal/models"
)

type AuthHandler struct {
	env *Env
}

func NewAuthHandler(env *Env) *AuthHandler {
	return &AuthHandler{env: env}
}

func (h *AuthHandler) respond(c *gin.Context, status int, user models.PublicUser, guest bool) {
	token, expires, err := h.env.Sessions.Issue(user.ID, user.Username, guest)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session"})
		return
	}
	c.JSON(status, models.AuthResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      user,
		Guest:     guest,
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.env.mu.Lock()
	user, err := h.env.Users.Register(req)
	h.env.mu.Unlock()
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrInvalidUsername),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	h.respond(c, http.StatusCreated, user.Public(), false)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.env.Users.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.respond(c, http.StatusOK, user.Public(), false)
}

// Guest starts an unregistered session. All guest data is shared under one
// namespace and wiped on logout.
func (h *AuthHandler) Guest(c *gin.Context) {
	guest := models.PublicUser{ID: models.GuestUserID, Username: "Guest"}
	h.respond(c, http.StatusOK, guest, true)
}

// Logout ends the session. Tokens are stateless so for registered users this
// is a no-op; for guests the whole guest namespace is wiped.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := CurrentUser(c)
	if claims.Guest {
		h.env.mu.Lock()
		err := h.env.Store.DeleteAll(models.GuestUserID)
		h.env.mu.Unlock()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear guest data"})
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims := CurrentUser(c)
	if claims.Guest {
		c.JSON(http.StatusOK, gin.H{
			"user":  models.PublicUser{ID: models.GuestUserID, Username: "Guest"},
			"guest": true,
		})
		return
	}

	user, err := h.env.Users.GetUser(claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Public(), "guest": false})
}
