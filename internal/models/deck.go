package models

import (
	"time"
)

// DeckLine is one entry in a deck list. UnitPrice and Owned are snapshots
// taken when the line was added; they are deliberately not kept in sync with
// the live collection.
type DeckLine struct {
	Identity  PrintingIdentity `json:"identity"`
	Quantity  int              `json:"quantity"`
	UnitPrice float64          `json:"unit_price"`
	Owned     bool             `json:"owned"`
	ImageURL  string           `json:"image_url,omitempty"`
}

type Deck struct {
	Name        string     `json:"name"`
	Format      string     `json:"format"`
	Lines       []DeckLine `json:"lines"`
	DateCreated time.Time  `json:"date_created"`
}

// TotalValue is always recomputed from the lines. Earlier revisions maintained
// a running total that could drift when a mutation path forgot to update it.
func (d *Deck) TotalValue() float64 {
	var total float64
	for _, line := range d.Lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return total
}

type DeckStats struct {
	TotalCards  int     `json:"total_cards"`
	UniqueCards int     `json:"unique_cards"`
	OwnedCards  int     `json:"owned_cards"`
	TotalValue  float64 `json:"total_value"`
}

// Stats derives the display aggregates for a deck.
func (d *Deck) Stats() DeckStats {
	stats := DeckStats{UniqueCards: len(d.Lines), TotalValue: d.TotalValue()}
	for _, line := range d.Lines {
		stats.TotalCards += line.Quantity
		if line.Owned {
			stats.OwnedCards++
		}
	}
	return stats
}

// DeckView is the API shape for a deck, with derived stats attached.
type DeckView struct {
	Deck
	Stats DeckStats `json:"stats"`
}

type CreateDeckRequest struct {
	Name   string `json:"name" binding:"required"`
	Format string `json:"format" binding:"required"`
}

type AddDeckLineRequest struct {
	Name            string  `json:"name" binding:"required"`
	SetCode         string  `json:"set_code"`
	CollectorNumber string  `json:"collector_number"`
	Foil            bool    `json:"foil"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	ImageURL        string  `json:"image_url"`
}

type ImportDeckRequest struct {
	Name   string `json:"name" binding:"required"`
	Format string `json:"format" binding:"required"`
	List   string `json:"list" binding:"required"`
}
