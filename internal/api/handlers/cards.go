package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colefleming/mtg-binder/internal/collection"
	"github.com/colefleming/mtg-binder/internal/models"
)

type CardHandler struct {
	env *Env
}

func NewCardHandler(env *Env) *CardHandler {
	return &CardHandler{env: env}
}

// SearchCards runs a card search and annotates every candidate with the
// caller's ownership data. The foil query flag flips the candidates to their
// foil printing identity before reconciliation.
func (h *CardHandler) SearchCards(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	result, err := h.env.Scryfall.SearchCards(query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	candidates := result.Cards
	if c.Query("foil") == "true" {
		candidates = append([]models.Card(nil), result.Cards...)
		for i := range candidates {
			candidates[i].Foil = true
		}
	}

	claims := CurrentUser(c)
	ledger, err := h.env.ledger(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.AnnotatedSearchResult{
		Cards:      collection.Reconcile(candidates, ledger),
		TotalCount: result.TotalCount,
		HasMore:    result.HasMore,
	})
}

// ResolveCard looks a card up by name, exact match first and fuzzy as a
// fallback.
func (h *CardHandler) ResolveCard(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter name is required"})
		return
	}

	card, err := h.env.Scryfall.ResolveByName(name)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

// GetCardBySetAndNumber fetches one specific printing.
func (h *CardHandler) GetCardBySetAndNumber(c *gin.Context) {
	card, err := h.env.Scryfall.GetCardBySetAndNumber(c.Param("set"), c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

// ListSets returns all known sets, newest first.
func (h *CardHandler) ListSets(c *gin.Context) {
	sets, err := h.env.Scryfall.ListSets()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sets": sets})
}
