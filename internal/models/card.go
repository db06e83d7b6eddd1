package models

// Card is a printing as returned by the external card database. Price and
// image may be missing; PriceKnown distinguishes a genuine $0 price from no
// price signal at all.
type Card struct {
	Name            string  `json:"name"`
	SetCode         string  `json:"set_code"`
	SetName         string  `json:"set_name,omitempty"`
	CollectorNumber string  `json:"collector_number"`
	Rarity          string  `json:"rarity,omitempty"`
	Artist          string  `json:"artist,omitempty"`
	ReleasedAt      string  `json:"released_at,omitempty"`
	Foil            bool    `json:"foil"`
	PriceUSD        float64 `json:"price_usd"`
	PriceFoilUSD    float64 `json:"price_foil_usd,omitempty"`
	PriceKnown      bool    `json:"price_known"`
	FoilPriceKnown  bool    `json:"foil_price_known,omitempty"`
	ImageURL        string  `json:"image_url,omitempty"`
	ScryfallID      string  `json:"scryfall_id,omitempty"`
}

// FoilPriceMultiplier estimates a foil price when the market only quotes the
// nonfoil finish.
const FoilPriceMultiplier = 2.5

// Identity derives the printing identity for this card.
func (c Card) Identity() PrintingIdentity {
	return NewPrintingIdentity(c.Name, c.SetCode, c.CollectorNumber, c.Foil)
}

// EffectivePrice returns the price for the card's finish and whether that
// price is backed by a real market signal. Foil cards use the quoted foil
// price when present, otherwise the multiplier applied to the nonfoil quote.
func (c Card) EffectivePrice() (float64, bool) {
	if !c.Foil {
		return c.PriceUSD, c.PriceKnown
	}
	if c.FoilPriceKnown {
		return c.PriceFoilUSD, true
	}
	if c.PriceKnown {
		return c.PriceUSD * FoilPriceMultiplier, true
	}
	return 0, false
}

// AnnotatedCard is a search candidate decorated with ownership data from the
// collection ledger. The annotation is read-only; the candidate's own price is
// never touched.
type AnnotatedCard struct {
	Card
	Owned             bool   `json:"owned"`
	Quantity          int    `json:"quantity"`
	StorageLocationID string `json:"storage_location_id,omitempty"`
}

type CardSearchResult struct {
	Cards      []Card `json:"cards"`
	TotalCount int    `json:"total_count"`
	HasMore    bool   `json:"has_more"`
}

type AnnotatedSearchResult struct {
	Cards      []AnnotatedCard `json:"cards"`
	TotalCount int             `json:"total_count"`
	HasMore    bool            `json:"has_more"`
}

// Set is bulk set metadata from the card database.
type Set struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ReleasedAt string `json:"released_at"`
	CardCount  int    `json:"card_count"`
}
