// Package deck implements per-user deck lists built from printing identities
// with price/owned snapshots.
package deck

import (
	"errors"
	"fmt"
	"time"

	"github.com/colefleming/mtg-binder/internal/database"
	"github.com/colefleming/mtg-binder/internal/models"
)

const storageKey = "decks"

var (
	ErrDuplicateName   = errors.New("a deck with this name already exists")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Store holds one user's decks in creation order. Decks are addressed by
// index, matching the way the deck list is displayed.
type Store struct {
	store  *database.Store
	userID string
	decks  []*models.Deck
}

func Load(store *database.Store, userID string) (*Store, error) {
	s := &Store{store: store, userID: userID}

	var decks []*models.Deck
	if err := store.Get(userID, storageKey, &decks); err != nil {
		if !errors.Is(err, database.ErrNoEntry) {
			return nil, fmt.Errorf("load decks: %w", err)
		}
		return s, nil
	}
	for _, d := range decks {
		if d != nil {
			s.decks = append(s.decks, d)
		}
	}
	return s, nil
}

func (s *Store) persist() error {
	if err := s.store.Put(s.userID, storageKey, s.decks); err != nil {
		return fmt.Errorf("persist decks: %w", err)
	}
	return nil
}

func view(d *models.Deck) models.DeckView {
	return models.DeckView{Deck: *d, Stats: d.Stats()}
}

// List returns all decks with derived stats.
func (s *Store) List() []models.DeckView {
	out := make([]models.DeckView, len(s.decks))
	for i, d := range s.decks {
		out[i] = view(d)
	}
	return out
}

// Get returns the deck at index.
func (s *Store) Get(index int) (models.DeckView, error) {
	if index < 0 || index >= len(s.decks) {
		return models.DeckView{}, ErrIndexOutOfRange
	}
	return view(s.decks[index]), nil
}

// Create adds an empty deck. Names are unique per user, case-sensitive.
func (s *Store) Create(name, format string) (models.DeckView, error) {
	for _, d := range s.decks {
		if d.Name == name {
			return models.DeckView{}, ErrDuplicateName
		}
	}

	deck := &models.Deck{Name: name, Format: format, DateCreated: time.Now()}
	s.decks = append(s.decks, deck)
	if err := s.persist(); err != nil {
		return models.DeckView{}, err
	}
	return view(deck), nil
}

// Import appends a pre-built deck, subject to the same unique-name rule.
// Lines are normalized first: duplicate identities are merged the way AddLine
// merges them, and a non-positive quantity rejects the deck.
func (s *Store) Import(deck models.Deck) (models.DeckView, error) {
	for _, d := range s.decks {
		if d.Name == deck.Name {
			return models.DeckView{}, ErrDuplicateName
		}
	}
	lines, err := normalizeLines(deck.Lines)
	if err != nil {
		return models.DeckView{}, err
	}
	deck.Lines = lines
	if deck.DateCreated.IsZero() {
		deck.DateCreated = time.Now()
	}
	d := deck
	s.decks = append(s.decks, &d)
	if err := s.persist(); err != nil {
		return models.DeckView{}, err
	}
	return view(&d), nil
}

func normalizeLines(lines []models.DeckLine) ([]models.DeckLine, error) {
	var out []models.DeckLine
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		merged := false
		for i := range out {
			if out[i].Identity == line.Identity {
				out[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, line)
		}
	}
	return out, nil
}

// Delete removes the deck at index.
func (s *Store) Delete(index int) error {
	if index < 0 || index >= len(s.decks) {
		return ErrIndexOutOfRange
	}
	s.decks = append(s.decks[:index], s.decks[index+1:]...)
	return s.persist()
}

// AddLine adds copies of a printing to the deck at index. Lines are matched
// on the full printing identity, the same rule the collection ledger uses.
// A matching line has its quantity incremented; otherwise the line is
// appended. The line's price and owned flag are snapshots supplied by the
// caller and are not revisited later.
func (s *Store) AddLine(index int, line models.DeckLine) (models.DeckView, error) {
	if index < 0 || index >= len(s.decks) {
		return models.DeckView{}, ErrIndexOutOfRange
	}
	if line.Quantity <= 0 {
		return models.DeckView{}, ErrInvalidQuantity
	}

	deck := s.decks[index]
	merged := false
	for i := range deck.Lines {
		if deck.Lines[i].Identity == line.Identity {
			deck.Lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		deck.Lines = append(deck.Lines, line)
	}

	if err := s.persist(); err != nil {
		return models.DeckView{}, err
	}
	return view(deck), nil
}

// RemoveLine deletes the line at lineIndex from the deck at deckIndex.
func (s *Store) RemoveLine(deckIndex, lineIndex int) (models.DeckView, error) {
	if deckIndex < 0 || deckIndex >= len(s.decks) {
		return models.DeckView{}, ErrIndexOutOfRange
	}
	deck := s.decks[deckIndex]
	if lineIndex < 0 || lineIndex >= len(deck.Lines) {
		return models.DeckView{}, ErrIndexOutOfRange
	}

	deck.Lines = append(deck.Lines[:lineIndex], deck.Lines[lineIndex+1:]...)
	if err := s.persist(); err != nil {
		return models.DeckView{}, err
	}
	return view(deck), nil
}
