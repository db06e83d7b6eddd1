// Package handlers contains the gin HTTP handlers for the binder API.
package handlers

import (
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/colefleming/mtg-binder/internal/auth"
	"github.com/colefleming/mtg-binder/internal/collection"
	"github.com/colefleming/mtg-binder/internal/database"
	"github.com/colefleming/mtg-binder/internal/deck"
	"github.com/colefleming/mtg-binder/internal/locations"
	"github.com/colefleming/mtg-binder/internal/models"
	"github.com/colefleming/mtg-binder/internal/services"
	"github.com/colefleming/mtg-binder/internal/trade"
)

// Env bundles the shared services handlers need. The mutex serializes
// blob read-modify-write cycles; every handler that loads user state and
// persists a mutation holds it for the whole cycle.
type Env struct {
	Store    *database.Store
	Users    *auth.Service
	Sessions *auth.Sessions
	Scryfall *services.ScryfallService
	Prices   *services.PriceService
	Trades   *trade.Store

	mu sync.Mutex
}

func NewEnv(store *database.Store, users *auth.Service, sessions *auth.Sessions, scryfall *services.ScryfallService, prices *services.PriceService, trades *trade.Store) *Env {
	return &Env{
		Store:    store,
		Users:    users,
		Sessions: sessions,
		Scryfall: scryfall,
		Prices:   prices,
		Trades:   trades,
	}
}

const claimsKey = "claims"

// SetClaims stashes verified session claims on the request context.
func SetClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(claimsKey, claims)
}

// CurrentUser returns the session claims set by the auth middleware.
func CurrentUser(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	return v.(*auth.Claims)
}

func (e *Env) ledger(userID string) (*collection.Ledger, error) {
	return collection.Load(e.Store, userID)
}

func (e *Env) decks(userID string) (*deck.Store, error) {
	return deck.Load(e.Store, userID)
}

func (e *Env) locations(userID string) (*locations.Registry, error) {
	return locations.Load(e.Store, userID)
}

func identityFrom(name, setCode, collectorNumber string, foil bool) models.PrintingIdentity {
	return models.NewPrintingIdentity(name, setCode, collectorNumber, foil)
}
