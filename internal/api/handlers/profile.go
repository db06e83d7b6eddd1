package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colefleming/mtg-binder/internal/models"
	"github.com/colefleming/mtg-binder/internal/trade"
)

type ProfileHandler struct {
	env *Env
}

func NewProfileHandler(env *Env) *ProfileHandler {
	return &ProfileHandler{env: env}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	claims := CurrentUser(c)
	profile, err := h.env.Users.LoadProfile(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile merges the supplied fields into the stored profile. Absent
// fields are left untouched.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := CurrentUser(c)
	h.env.mu.Lock()
	defer h.env.mu.Unlock()

	profile, err := h.env.Users.LoadProfile(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.StatusMessage != nil {
		profile.StatusMessage = *req.StatusMessage
	}
	if req.Visibility != nil {
		profile.Visibility = *req.Visibility
	}
	if req.ProfilePicture != nil {
		profile.ProfilePicture = req.ProfilePicture
	}

	if err := h.env.Users.SaveProfile(claims.UserID, profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetUserProfile returns another user's profile, honoring their visibility
// setting: private profiles are only visible to their owner, friends-only
// profiles require the viewer to be on the owner's friend list.
func (h *ProfileHandler) GetUserProfile(c *gin.Context) {
	targetID := c.Param("id")
	claims := CurrentUser(c)

	user, err := h.env.Users.GetUser(targetID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	profile, err := h.env.Users.LoadProfile(targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if targetID != claims.UserID {
		switch profile.Visibility {
		case "private":
			c.JSON(http.StatusForbidden, gin.H{"error": "this profile is private"})
			return
		case "friends":
			friends, err := trade.NewFriends(h.env.Store, targetID).List()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			allowed := false
			for _, f := range friends {
				if f.UserID == claims.UserID {
					allowed = true
					break
				}
			}
			if !allowed {
				c.JSON(http.StatusForbidden, gin.H{"error": "this profile is visible to friends only"})
				return
			}
		}
	}

	var stats models.CollectionStats
	if ledger, err := h.env.ledger(targetID); err == nil {
		stats = ledger.Stats()
	}
	c.JSON(http.StatusOK, gin.H{
		"user":    user.Public(),
		"profile": profile,
		"stats":   stats,
	})
}
