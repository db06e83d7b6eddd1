package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colefleming/mtg-binder/internal/collection"
	"github.com/colefleming/mtg-binder/internal/deck"
	"github.com/colefleming/mtg-binder/internal/metrics"
	"github.com/colefleming/mtg-binder/internal/models"
)

type CollectionHandler struct {
	env *Env
}

func NewCollectionHandler(env *Env) *CollectionHandler {
	return &CollectionHandler{env: env}
}

func (h *CollectionHandler) GetCollection(c *gin.Context) {
	claims := CurrentUser(c)
	ledger, err := h.env.ledger(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sortOpt := models.SortOption(c.Query("sort"))
	c.JSON(http.StatusOK, gin.H{
		"cards": ledger.ListOwned(sortOpt),
		"stats": ledger.Stats(),
	})
}

// AddCard adds one copy of a printing. When the request carries no price, the
// printing is looked up to fill in price, image, and set metadata; a failed
// lookup still adds the copy, just with no price signal.
func (h *CollectionHandler) AddCard(c *gin.Context) {
	var req models.AddToCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := identityFrom(req.Name, req.SetCode, req.CollectorNumber, req.Foil)
	opts := collection.AddOptions{
		StorageLocationID: req.StorageLocationID,
		ImageURL:          req.ImageURL,
		SetName:           req.SetName,
		Rarity:            req.Rarity,
	}

	if req.UnitPrice != nil {
		opts.UnitPrice = *req.UnitPrice
		opts.PriceKnown = true
	} else if card := h.lookup(req); card != nil {
		card.Foil = req.Foil
		if price, known := card.EffectivePrice(); known {
			opts.UnitPrice = price
			opts.PriceKnown = true
		}
		if opts.ImageURL == "" {
			opts.ImageURL = card.ImageURL
		}
		if opts.SetName == "" {
			opts.SetName = card.SetName
		}
		if opts.Rarity == "" {
			opts.Rarity = card.Rarity
		}
	}

	claims := CurrentUser(c)
	h.env.mu.Lock()
	defer h.env.mu.Unlock()

	ledger, err := h.env.ledger(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	rec, err := ledger.AddCopy(id, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.CollectionMutationsTotal.WithLabelValues("add").Inc()
	c.JSON(http.StatusOK, gin.H{"record": rec, "stats": ledger.Stats()})
}

// lookup resolves the request's printing for price and metadata enrichment.
// Errors are swallowed; enrichment is best effort.
func (h *CollectionHandler) lookup(req models.AddToCollectionRequest) *models.Card {
	if req.SetCode != "" && req.CollectorNumber != "" {
		card, err := h.env.Scryfall.GetCardBySetAndNumber(req.SetCode, req.CollectorNumber)
		if err == nil && card != nil {
			return card
		}
	}
	card, err := h.env.Scryfall.ResolveByName(req.Name)
	if err != nil {
		return nil
	}
	return card
}

func (h *CollectionHandler) RemoveCard(c *gin.Context) {
	var req models.RemoveFromCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := CurrentUser(c)
	h.env.mu.Lock()
	defer h.env.mu.Unlock()

	ledger, err := h.env.ledger(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	id := identityFrom(req.Name, req.SetCode, req.CollectorNumber, req.Foil)
	rec, err := ledger.RemoveCopy(id)
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.CollectionMutationsTotal.WithLabelValues("remove").Inc()
	c.JSON(http.StatusOK, gin.H{"record": rec, "stats": ledger.Stats()})
}

func (h *CollectionHandler) GetStats(c *gin.Context) {
	claims := CurrentUser(c)
	ledger, err := h.env.ledger(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ledger.Stats())
}

// RefreshPrices re-fetches current prices for every owned printing. This can
// take a while for large collections because lookups are rate paced.
func (h *CollectionHandler) RefreshPrices(c *gin.Context) {
	claims := CurrentUser(c)
	h.env.mu.Lock()
	defer h.env.mu.Unlock()

	ledger, err := h.env.ledger(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.env.Prices.RefreshCollection(ledger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated, "stats": ledger.Stats()})
}

type exportPayload struct {
	Collection []models.CollectionRecord `json:"collection"`
	Decks      []models.Deck             `json:"decks"`
	Locations  []models.StorageLocation  `json:"storage_locations"`
}

// Export dumps the user's full binder state, including zero-quantity history
// records, for backup.
func (h *CollectionHandler) Export(c *gin.Context) {
	claims := CurrentUser(c)

	ledger, err := h.env.ledger(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	decks, err := h.env.decks(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	registry, err := h.env.locations(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	payload := exportPayload{
		Collection: ledger.All(),
		Locations:  registry.List(),
	}
	for _, v := range decks.List() {
		payload.Decks = append(payload.Decks, v.Deck)
	}
	c.JSON(http.StatusOK, payload)
}

// Import restores a backup. The collection is replaced wholesale; decks and
// custom locations are merged, skipping names that already exist.
func (h *CollectionHandler) Import(c *gin.Context) {
	var payload exportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := CurrentUser(c)
	h.env.mu.Lock()
	defer h.env.mu.Unlock()

	ledger, err := h.env.ledger(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := ledger.Replace(payload.Collection); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	decksImported := 0
	if len(payload.Decks) > 0 {
		store, err := h.env.decks(claims.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		for _, d := range payload.Decks {
			if _, err := store.Import(d); err == nil {
				decksImported++
			} else if errors.Is(err, deck.ErrInvalidQuantity) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			} else if !errors.Is(err, deck.ErrDuplicateName) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}
	}

	locationsImported := 0
	if len(payload.Locations) > 0 {
		registry, err := h.env.locations(claims.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		for _, loc := range payload.Locations {
			if !loc.IsCustom {
				continue
			}
			if _, err := registry.Create(loc.Name); err == nil {
				locationsImported++
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"collection_records": len(ledger.All()),
		"decks_imported":     decksImported,
		"locations_imported": locationsImported,
		"stats":              ledger.Stats(),
	})
}
