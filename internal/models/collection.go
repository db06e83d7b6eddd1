package models

import (
	"time"
)

// SortOption selects the ordering of ListOwned results.
type SortOption string

const (
	SortName      SortOption = "name"
	SortNameDesc  SortOption = "name-desc"
	SortPrice     SortOption = "price"
	SortPriceDesc SortOption = "price-desc"
	SortSet       SortOption = "set"
	SortRarity    SortOption = "rarity"
	SortDateAdded SortOption = "date-added"
)

// RarityRank orders rarities for sorting: common < uncommon < rare < mythic.
// Unknown rarities sort as common.
func RarityRank(rarity string) int {
	switch rarity {
	case "uncommon":
		return 1
	case "rare":
		return 2
	case "mythic":
		return 3
	default:
		return 0
	}
}

// CollectionRecord is the ledger's owned-quantity entry for one printing.
// Records are never physically deleted: when the last copy is removed the
// quantity drops to zero and the storage location is cleared, but the price
// and image are retained as history.
//
// Invariants: Owned == (Quantity > 0); Quantity == 0 implies an empty
// StorageLocationID.
type CollectionRecord struct {
	Identity          PrintingIdentity `json:"identity"`
	Quantity          int              `json:"quantity"`
	Owned             bool             `json:"owned"`
	StorageLocationID string           `json:"storage_location_id,omitempty"`
	UnitPrice         float64          `json:"unit_price"`
	PriceKnown        bool             `json:"price_known"`
	ImageURL          string           `json:"image_url,omitempty"`
	SetName           string           `json:"set_name,omitempty"`
	Rarity            string           `json:"rarity,omitempty"`
	DateAdded         time.Time        `json:"date_added"`
}

// Value is the record's contribution to the collection total.
func (r CollectionRecord) Value() float64 {
	return r.UnitPrice * float64(r.Quantity)
}

type CollectionStats struct {
	TotalCards  int     `json:"total_cards"`
	UniqueCards int     `json:"unique_cards"`
	TotalValue  float64 `json:"total_value"`
}

type AddToCollectionRequest struct {
	Name              string   `json:"name" binding:"required"`
	SetCode           string   `json:"set_code"`
	CollectorNumber   string   `json:"collector_number"`
	Foil              bool     `json:"foil"`
	UnitPrice         *float64 `json:"unit_price"`
	StorageLocationID string   `json:"storage_location_id"`
	ImageURL          string   `json:"image_url"`
	SetName           string   `json:"set_name"`
	Rarity            string   `json:"rarity"`
}

type RemoveFromCollectionRequest struct {
	Name            string `json:"name" binding:"required"`
	SetCode         string `json:"set_code"`
	CollectorNumber string `json:"collector_number"`
	Foil            bool   `json:"foil"`
}
