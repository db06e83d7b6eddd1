package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/colefleming/mtg-binder/internal/deck"
	"github.com/colefleming/mtg-binder/internal/models"
)

type DeckHandler struct {
	env *Env
}

func NewDeckHandler(env *Env) *DeckHandler {
	return &DeckHandler{env: env}
}

func deckError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, deck.ErrIndexOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, deck.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, deck.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func deckIndex(c *gin.Context, param string) (int, bool) {
	idx, err := strconv.Atoi(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return 0, false
	}
	return idx, true
}

func (h *DeckHandler) ListDecks(c *gin.Context) {
	claims := CurrentUser(c)
	store, err := h.env.decks(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"decks": store.List()})
}

func (h *DeckHandler) GetDeck(c *gin.Context) {
	idx, ok := deckIndex(c, "index")
	if !ok {
		return
	}
	claims := CurrentUser(c)
	store, err := h.env.decks(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	view, err := store.Get(idx)
	if err != nil {
		deckError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DeckHandler) CreateDeck(c *gin.Context) {
	var req models.CreateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := CurrentUser(c)
	h.env.mu.Lock()
	defer h.env.mu.Unlock()

	store, err := h.env.decks(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	view, err := store.Create(req.Name, req.Format)
	if err != nil {
		deckError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *DeckHandler) DeleteDeck(c *gin.Context) {
	idx, ok := deckIndex(c, "index")
	if !ok {
		return
	}

	claims := CurrentUser(c)
	h.env.mu.Lock()
	defer h.env.mu.Unlock()

	store, err := h.env.decks(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := store.Delete(idx); err != nil {
		deckError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddLine adds copies of a printing to a deck. The owned flag and, when the
// request carries no price, the unit price are snapshotted from the caller's
// collection at add time.
func (h *DeckHandler) AddLine(c *gin.Context) {
	idx, ok := deckIndex(c, "index")
	if !ok {
		return
	}
	var req models.AddDeckLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	claims := CurrentUser(c)
	h.env.mu.Lock()
	defer h.env.mu.Unlock()

	ledger, err := h.env.ledger(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	line := models.DeckLine{
		Identity:  identityFrom(req.Name, req.SetCode, req.CollectorNumber, req.Foil),
		Quantity:  quantity,
		UnitPrice: req.UnitPrice,
		ImageURL:  req.ImageURL,
	}
	if rec, owned := ledger.Get(line.Identity); owned && rec.Owned {
		line.Owned = true
		if req.UnitPrice == 0 && rec.PriceKnown {
			line.UnitPrice = rec.UnitPrice
		}
		if line.ImageURL == "" {
			line.ImageURL = rec.ImageURL
		}
	}

	store, err := h.env.decks(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	view, err := store.AddLine(idx, line)
	if err != nil {
		deckError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DeckHandler) RemoveLine(c *gin.Context) {
	idx, ok := deckIndex(c, "index")
	if !ok {
		return
	}
	lineIdx, ok := deckIndex(c, "line")
	if !ok {
		return
	}

	claims := CurrentUser(c)
	h.env.mu.Lock()
	defer h.env.mu.Unlock()

	store, err := h.env.decks(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	view, err := store.RemoveLine(idx, lineIdx)
	if err != nil {
		deckError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

var deckLineRe = regexp.MustCompile(`^(\d+)\s+(.+)$`)

// ImportDeck builds a deck from a plain text list of "<count> <card name>"
// lines. Each name is resolved against the card database; lines that do not
// resolve are reported back rather than failing the whole import.
func (h *DeckHandler) ImportDeck(c *gin.Context) {
	var req models.ImportDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := CurrentUser(c)

	var lines []models.DeckLine
	var unresolved []string
	ledger, err := h.env.ledger(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for _, raw := range strings.Split(req.List, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		m := deckLineRe.FindStringSubmatch(raw)
		if m == nil {
			unresolved = append(unresolved, raw)
			continue
		}
		quantity, err := strconv.Atoi(m[1])
		if err != nil || quantity <= 0 {
			unresolved = append(unresolved, raw)
			continue
		}
		name := strings.TrimSpace(m[2])

		card, err := h.env.Scryfall.ResolveByName(name)
		if err != nil || card == nil {
			unresolved = append(unresolved, raw)
			continue
		}

		line := models.DeckLine{
			Identity: card.Identity(),
			Quantity: quantity,
			ImageURL: card.ImageURL,
		}
		if price, known := card.EffectivePrice(); known {
			line.UnitPrice = price
		}
		if rec, ok := ledger.Get(line.Identity); ok && rec.Owned {
			line.Owned = true
		}
		lines = append(lines, line)
	}

	h.env.mu.Lock()
	defer h.env.mu.Unlock()

	store, err := h.env.decks(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	view, err := store.Import(models.Deck{Name: req.Name, Format: req.Format, Lines: lines})
	if err != nil {
		deckError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"deck": view, "unresolved": unresolved})
}
