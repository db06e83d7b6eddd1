package services

import (
	"context"
	"log"

	"github.com/colefleming/mtg-binder/internal/collection"
	"github.com/colefleming/mtg-binder/internal/metrics"
)

// PriceService refreshes stored collection prices from Scryfall.
type PriceService struct {
	scryfall *ScryfallService
}

func NewPriceService(scryfall *ScryfallService) *PriceService {
	return &PriceService{scryfall: scryfall}
}

// RefreshCollection re-fetches each owned printing by set and collector
// number and writes the fresh price back to the ledger. A failed or
// priceless lookup leaves the stored price untouched. Returns how many
// records were updated.
func (p *PriceService) RefreshCollection(ledger *collection.Ledger) (int, error) {
	updated := 0
	for _, rec := range ledger.ListOwned("") {
		if rec.Identity.SetCode == "" || rec.Identity.CollectorNumber == "" {
			continue
		}
		if err := p.scryfall.limiter.Wait(context.Background()); err != nil {
			return updated, err
		}

		card, err := p.scryfall.GetCardBySetAndNumber(rec.Identity.SetCode, rec.Identity.CollectorNumber)
		if err != nil {
			log.Printf("Price refresh failed for %s: %v", rec.Identity.String(), err)
			continue
		}
		if card == nil {
			continue
		}

		card.Foil = rec.Identity.Foil
		price, known := card.EffectivePrice()
		if !known {
			continue
		}
		if err := ledger.SetUnitPrice(rec.Identity, price); err != nil {
			continue
		}
		updated++
		metrics.PriceRefreshUpdatesTotal.Inc()
	}
	return updated, nil
}
