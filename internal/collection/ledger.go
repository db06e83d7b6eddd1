// Package collection implements the owned-quantity ledger for card printings
// and the reconciler that annotates search results against it.
package collection

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/colefleming/mtg-binder/internal/database"
	"github.com/colefleming/mtg-binder/internal/models"
)

const storageKey = "collection"

// ErrNotFound is reported when a remove targets a printing that is unknown or
// already at quantity zero.
var ErrNotFound = errors.New("printing not in collection")

// Ledger is the single source of truth for which printings a user owns and in
// what quantity. At most one record exists per printing identity. Every
// mutation persists the full snapshot before returning, so callers can treat
// mutations as synchronously durable.
type Ledger struct {
	store   *database.Store
	userID  string
	records []*models.CollectionRecord
	index   map[models.PrintingIdentity]*models.CollectionRecord
}

// Load reads the user's collection snapshot. A missing blob yields an empty
// ledger. The owned flag is re-derived from quantity on load so a corrupted
// snapshot cannot violate the owned == (quantity > 0) invariant.
func Load(store *database.Store, userID string) (*Ledger, error) {
	l := &Ledger{
		store:  store,
		userID: userID,
		index:  make(map[models.PrintingIdentity]*models.CollectionRecord),
	}

	var records []*models.CollectionRecord
	if err := store.Get(userID, storageKey, &records); err != nil {
		if !errors.Is(err, database.ErrNoEntry) {
			return nil, fmt.Errorf("load collection: %w", err)
		}
		return l, nil
	}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		rec.Owned = rec.Quantity > 0
		if rec.Quantity == 0 {
			rec.StorageLocationID = ""
		}
		if _, dup := l.index[rec.Identity]; dup {
			// One record per identity; keep the first occurrence.
			continue
		}
		l.records = append(l.records, rec)
		l.index[rec.Identity] = rec
	}
	return l, nil
}

func (l *Ledger) persist() error {
	if err := l.store.Put(l.userID, storageKey, l.records); err != nil {
		return fmt.Errorf("persist collection: %w", err)
	}
	return nil
}

// AddOptions carries the creation-time fields for a first copy. UnitPrice is
// only honored when PriceKnown is true; otherwise the record is created with
// the documented fallback of price zero and an explicit price_known=false
// marker, never a fabricated value.
type AddOptions struct {
	UnitPrice         float64
	PriceKnown        bool
	StorageLocationID string
	ImageURL          string
	SetName           string
	Rarity            string
}

// AddCopy adds one copy of a printing. For a known identity the quantity is
// incremented and the storage location overwritten only when a non-empty one
// is supplied; the stored unit price is not changed (price updates go through
// SetUnitPrice). For a new identity a record is created with quantity 1.
// AddCopy never fails for domain reasons; the only errors are persistence
// errors.
func (l *Ledger) AddCopy(id models.PrintingIdentity, opts AddOptions) (models.CollectionRecord, error) {
	rec, ok := l.index[id]
	if ok {
		rec.Quantity++
		rec.Owned = true
		if opts.StorageLocationID != "" {
			rec.StorageLocationID = opts.StorageLocationID
		}
		if rec.ImageURL == "" {
			rec.ImageURL = opts.ImageURL
		}
	} else {
		price := opts.UnitPrice
		if !opts.PriceKnown {
			price = 0
		}
		rec = &models.CollectionRecord{
			Identity:          id,
			Quantity:          1,
			Owned:             true,
			StorageLocationID: opts.StorageLocationID,
			UnitPrice:         price,
			PriceKnown:        opts.PriceKnown,
			ImageURL:          opts.ImageURL,
			SetName:           opts.SetName,
			Rarity:            opts.Rarity,
			DateAdded:         time.Now(),
		}
		l.records = append(l.records, rec)
		l.index[id] = rec
	}

	if err := l.persist(); err != nil {
		return models.CollectionRecord{}, err
	}
	return *rec, nil
}

// RemoveCopy removes one copy. When the quantity reaches zero the record
// stays in the ledger with its price and image retained as history, but is no
// longer owned and its storage location is cleared. Removing an unknown or
// already-empty printing reports ErrNotFound and changes nothing.
func (l *Ledger) RemoveCopy(id models.PrintingIdentity) (models.CollectionRecord, error) {
	rec, ok := l.index[id]
	if !ok || rec.Quantity == 0 {
		return models.CollectionRecord{}, ErrNotFound
	}

	rec.Quantity--
	if rec.Quantity == 0 {
		rec.Owned = false
		rec.StorageLocationID = ""
	}

	if err := l.persist(); err != nil {
		return models.CollectionRecord{}, err
	}
	return *rec, nil
}

// SetUnitPrice updates the stored price for a printing, e.g. after a price
// refresh. Marks the price as known.
func (l *Ledger) SetUnitPrice(id models.PrintingIdentity, price float64) error {
	rec, ok := l.index[id]
	if !ok {
		return ErrNotFound
	}
	rec.UnitPrice = price
	rec.PriceKnown = true
	return l.persist()
}

// Get returns a copy of the record for the identity, including retained
// zero-quantity history records.
func (l *Ledger) Get(id models.PrintingIdentity) (models.CollectionRecord, bool) {
	rec, ok := l.index[id]
	if !ok {
		return models.CollectionRecord{}, false
	}
	return *rec, true
}

// ListOwned returns copies of the owned records in insertion order, or sorted
// by the given option.
func (l *Ledger) ListOwned(opt models.SortOption) []models.CollectionRecord {
	owned := make([]models.CollectionRecord, 0, len(l.records))
	for _, rec := range l.records {
		if rec.Owned {
			owned = append(owned, *rec)
		}
	}
	sortRecords(owned, opt)
	return owned
}

// All returns every record including zero-quantity history, for export.
func (l *Ledger) All() []models.CollectionRecord {
	out := make([]models.CollectionRecord, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, *rec)
	}
	return out
}

// Replace swaps the entire ledger contents, for import. The same invariant
// repairs as Load apply.
func (l *Ledger) Replace(records []models.CollectionRecord) error {
	l.records = l.records[:0]
	l.index = make(map[models.PrintingIdentity]*models.CollectionRecord)
	for i := range records {
		rec := records[i]
		rec.Owned = rec.Quantity > 0
		if rec.Quantity == 0 {
			rec.StorageLocationID = ""
		}
		if _, dup := l.index[rec.Identity]; dup {
			continue
		}
		r := rec
		l.records = append(l.records, &r)
		l.index[r.Identity] = &r
	}
	return l.persist()
}

// TotalOwnedQuantity sums quantities over owned records.
func (l *Ledger) TotalOwnedQuantity() int {
	var total int
	for _, rec := range l.records {
		if rec.Owned {
			total += rec.Quantity
		}
	}
	return total
}

// TotalOwnedValue sums unit price times quantity over owned records. Always
// recomputed from the records, never cached.
func (l *Ledger) TotalOwnedValue() float64 {
	var total float64
	for _, rec := range l.records {
		if rec.Owned {
			total += rec.Value()
		}
	}
	return total
}

// Stats derives the collection headline numbers.
func (l *Ledger) Stats() models.CollectionStats {
	stats := models.CollectionStats{}
	for _, rec := range l.records {
		if !rec.Owned {
			continue
		}
		stats.UniqueCards++
		stats.TotalCards += rec.Quantity
		stats.TotalValue += rec.Value()
	}
	return stats
}

func sortRecords(records []models.CollectionRecord, opt models.SortOption) {
	switch opt {
	case models.SortName:
		sort.SliceStable(records, func(i, j int) bool {
			return strings.Compare(records[i].Identity.Name, records[j].Identity.Name) < 0
		})
	case models.SortNameDesc:
		sort.SliceStable(records, func(i, j int) bool {
			return strings.Compare(records[i].Identity.Name, records[j].Identity.Name) > 0
		})
	case models.SortPrice:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].UnitPrice < records[j].UnitPrice
		})
	case models.SortPriceDesc:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].UnitPrice > records[j].UnitPrice
		})
	case models.SortSet:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Identity.SetCode < records[j].Identity.SetCode
		})
	case models.SortRarity:
		sort.SliceStable(records, func(i, j int) bool {
			return models.RarityRank(records[i].Rarity) < models.RarityRank(records[j].Rarity)
		})
	case models.SortDateAdded:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].DateAdded.After(records[j].DateAdded)
		})
	}
}
