package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colefleming/mtg-binder/internal/locations"
	"github.com/colefleming/mtg-binder/internal/models"
)

type LocationHandler struct {
	env *Env
}

func NewLocationHandler(env *Env) *LocationHandler {
	return &LocationHandler{env: env}
}

func (h *LocationHandler) ListLocations(c *gin.Context) {
	claims := CurrentUser(c)
	registry, err := h.env.locations(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": registry.List()})
}

func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req models.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := CurrentUser(c)
	h.env.mu.Lock()
	defer h.env.mu.Unlock()

	registry, err := h.env.locations(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	loc, err := registry.Create(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, locations.ErrDuplicateSlug):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, locations.ErrInvalidName):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, loc)
}

func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	claims := CurrentUser(c)
	h.env.mu.Lock()
	defer h.env.mu.Unlock()

	registry, err := h.env.locations(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := registry.Delete(c.Param("id")); err != nil {
		switch {
		case errors.Is(err, locations.ErrCannotDeleteDefault):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, locations.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
