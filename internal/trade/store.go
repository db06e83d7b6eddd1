// Package trade implements friend lists and trade offers between users.
// Offers live in a single shared blob so both participants see the same
// record.
package trade

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/colefleming/mtg-binder/internal/database"
	"github.com/colefleming/mtg-binder/internal/models"
)

const tradesKey = "trade_offers"

var (
	ErrNotFound        = errors.New("trade offer not found")
	ErrAlreadyResolved = errors.New("trade offer already resolved")
	ErrNotRecipient    = errors.New("only the recipient can accept or decline")
	ErrNotSender       = errors.New("only the sender can cancel")
	ErrEmptyList       = errors.New("offer and want lists must both be non-empty")
	ErrDuplicateLine   = errors.New("the same printing appears twice in a trade list")
	ErrSelfTrade       = errors.New("cannot send a trade offer to yourself")
)

// Store reads and writes the shared trade-offer blob. Offers are global, not
// namespaced per user; filtering happens at query time.
type Store struct {
	store *database.Store
}

func NewStore(store *database.Store) *Store {
	return &Store{store: store}
}

func (s *Store) load() ([]*models.TradeOffer, error) {
	var offers []*models.TradeOffer
	if err := s.store.Get("", tradesKey, &offers); err != nil {
		if !errors.Is(err, database.ErrNoEntry) {
			return nil, fmt.Errorf("load trade offers: %w", err)
		}
		return nil, nil
	}
	return offers, nil
}

func (s *Store) persist(offers []*models.TradeOffer) error {
	if err := s.store.Put("", tradesKey, offers); err != nil {
		return fmt.Errorf("persist trade offers: %w", err)
	}
	return nil
}

func validateLines(lines []models.TradeLine) error {
	if len(lines) == 0 {
		return ErrEmptyList
	}
	seen := make(map[models.PrintingIdentity]bool, len(lines))
	for _, line := range lines {
		if seen[line.Identity] {
			return ErrDuplicateLine
		}
		seen[line.Identity] = true
	}
	return nil
}

// Send creates a pending offer. Both lists must be non-empty and free of
// duplicate printings.
func (s *Store) Send(offer models.TradeOffer) (models.TradeOffer, error) {
	if offer.FromUserID == offer.ToUserID {
		return models.TradeOffer{}, ErrSelfTrade
	}
	if err := validateLines(offer.OfferLines); err != nil {
		return models.TradeOffer{}, err
	}
	if err := validateLines(offer.WantLines); err != nil {
		return models.TradeOffer{}, err
	}

	offer.ID = uuid.New().String()
	offer.Status = models.TradeStatusPending
	offer.CreatedAt = time.Now()
	offer.ResolvedAt = nil

	offers, err := s.load()
	if err != nil {
		return models.TradeOffer{}, err
	}
	offers = append(offers, &offer)
	if err := s.persist(offers); err != nil {
		return models.TradeOffer{}, err
	}
	return offer, nil
}

// Get returns the offer with the given id.
func (s *Store) Get(id string) (models.TradeOffer, error) {
	offers, err := s.load()
	if err != nil {
		return models.TradeOffer{}, err
	}
	for _, o := range offers {
		if o.ID == id {
			return *o, nil
		}
	}
	return models.TradeOffer{}, ErrNotFound
}

// Incoming returns pending offers addressed to the user, newest first.
func (s *Store) Incoming(userID string) ([]models.TradeOffer, error) {
	return s.filter(func(o *models.TradeOffer) bool {
		return o.ToUserID == userID && o.Status == models.TradeStatusPending
	})
}

// Outgoing returns pending offers sent by the user, newest first.
func (s *Store) Outgoing(userID string) ([]models.TradeOffer, error) {
	return s.filter(func(o *models.TradeOffer) bool {
		return o.FromUserID == userID && o.Status == models.TradeStatusPending
	})
}

// History returns the user's resolved offers in either direction.
func (s *Store) History(userID string) ([]models.TradeOffer, error) {
	return s.filter(func(o *models.TradeOffer) bool {
		return o.Status.Terminal() && (o.FromUserID == userID || o.ToUserID == userID)
	})
}

func (s *Store) filter(keep func(*models.TradeOffer) bool) ([]models.TradeOffer, error) {
	offers, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []models.TradeOffer
	for i := len(offers) - 1; i >= 0; i-- {
		if keep(offers[i]) {
			out = append(out, *offers[i])
		}
	}
	return out, nil
}

// Resolve moves a pending offer to a terminal status. Accept and decline are
// the recipient's moves; cancel is the sender's. Resolved offers are final.
func (s *Store) Resolve(id, userID string, status models.TradeStatus) (models.TradeOffer, error) {
	if !status.Terminal() {
		return models.TradeOffer{}, fmt.Errorf("cannot resolve to status %q", status)
	}

	offers, err := s.load()
	if err != nil {
		return models.TradeOffer{}, err
	}
	for _, o := range offers {
		if o.ID != id {
			continue
		}
		if o.Status.Terminal() {
			return models.TradeOffer{}, ErrAlreadyResolved
		}
		switch status {
		case models.TradeStatusCancelled:
			if o.FromUserID != userID {
				return models.TradeOffer{}, ErrNotSender
			}
		default:
			if o.ToUserID != userID {
				return models.TradeOffer{}, ErrNotRecipient
			}
		}
		now := time.Now()
		o.Status = status
		o.ResolvedAt = &now
		if err := s.persist(offers); err != nil {
			return models.TradeOffer{}, err
		}
		return *o, nil
	}
	return models.TradeOffer{}, ErrNotFound
}
