package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/colefleming/mtg-binder/internal/metrics"
	"github.com/colefleming/mtg-binder/internal/models"
)

// DefaultScryfallBaseURL is the public Scryfall API root.
const DefaultScryfallBaseURL = "https://api.scryfall.com"

const (
	// searchResultCap bounds how many cards a paginated search accumulates.
	searchResultCap = 300
	// searchPageDelay paces page fetches per Scryfall's rate guidance.
	searchPageDelay = 150 * time.Millisecond

	namedCacheSize = 256
	setsCacheTTL   = 24 * time.Hour
)

type ScryfallService struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	named   *lru.Cache[string, models.Card]

	setsMu   sync.Mutex
	sets     []models.Set
	setsTime time.Time
}

func NewScryfallService(baseURL string) *ScryfallService {
	if baseURL == "" {
		baseURL = DefaultScryfallBaseURL
	}
	named, _ := lru.New[string, models.Card](namedCacheSize)
	return &ScryfallService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(searchPageDelay), 1),
		named:   named,
	}
}

type scryfallSearchResponse struct {
	Data       []scryfallCard `json:"data"`
	Object     string         `json:"object"`
	TotalCards int            `json:"total_cards"`
	HasMore    bool           `json:"has_more"`
	NextPage   string         `json:"next_page"`
}

type scryfallCard struct {
	ImageURIs    *scryfallImages `json:"image_uris"`
	CardFaces    []scryfallFace  `json:"card_faces"`
	Prices       scryfallPrices  `json:"prices"`
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SetName      string          `json:"set_name"`
	Set          string          `json:"set"`
	CollectorNum string          `json:"collector_number"`
	Rarity       string          `json:"rarity"`
	Artist       string          `json:"artist"`
	ReleasedAt   string          `json:"released_at"`
}

type scryfallImages struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
	Large  string `json:"large"`
}

type scryfallFace struct {
	ImageURIs *scryfallImages `json:"image_uris"`
}

type scryfallPrices struct {
	USD     string `json:"usd"`
	USDFoil string `json:"usd_foil"`
}

type scryfallSetsResponse struct {
	Data []struct {
		Code       string `json:"code"`
		Name       string `json:"name"`
		ReleasedAt string `json:"released_at"`
		CardCount  int    `json:"card_count"`
	} `json:"data"`
}

// getCard fetches a single-card endpoint. Returns nil, nil on 404.
func (s *ScryfallService) getCard(endpoint, reqURL string) (*models.Card, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ScryfallRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("failed to get card from scryfall: %w", err)
	}
	defer resp.Body.Close()
	metrics.ScryfallRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scryfall API returned status %d", resp.StatusCode)
	}

	var sc scryfallCard
	if err := json.NewDecoder(resp.Body).Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to decode scryfall response: %w", err)
	}

	card := convertToCard(sc)
	return &card, nil
}

func (s *ScryfallService) namedLookup(mode, name string) (*models.Card, error) {
	cacheKey := mode + ":" + strings.ToLower(name)
	if card, ok := s.named.Get(cacheKey); ok {
		metrics.ScryfallCacheHits.Inc()
		c := card
		return &c, nil
	}

	reqURL := fmt.Sprintf("%s/cards/named?%s=%s", s.baseURL, mode, url.QueryEscape(name))
	card, err := s.getCard("named", reqURL)
	if err != nil || card == nil {
		return card, err
	}
	s.named.Add(cacheKey, *card)
	return card, nil
}

// NamedExact resolves a card by its exact name. Returns nil, nil when no
// card matches.
func (s *ScryfallService) NamedExact(name string) (*models.Card, error) {
	return s.namedLookup("exact", name)
}

// NamedFuzzy resolves a card by approximate name, tolerating typos.
func (s *ScryfallService) NamedFuzzy(name string) (*models.Card, error) {
	return s.namedLookup("fuzzy", name)
}

// ResolveByName tries an exact name match first, then falls back to fuzzy.
// Returns nil, nil when neither matches; callers decide how to degrade.
func (s *ScryfallService) ResolveByName(name string) (*models.Card, error) {
	card, err := s.NamedExact(name)
	if err != nil {
		return nil, err
	}
	if card != nil {
		return card, nil
	}
	return s.NamedFuzzy(name)
}

// GetCardBySetAndNumber retrieves a specific printing by set code and
// collector number. Returns nil, nil if the card is not found (404).
func (s *ScryfallService) GetCardBySetAndNumber(setCode, number string) (*models.Card, error) {
	// Scryfall expects path params, so we must PathEscape.
	setEscaped := url.PathEscape(strings.ToLower(setCode))
	numberEscaped := url.PathEscape(number)
	reqURL := fmt.Sprintf("%s/cards/%s/%s", s.baseURL, setEscaped, numberEscaped)
	return s.getCard("card_by_number", reqURL)
}

// SearchCards runs a full-text search, following pagination until the result
// cap is reached. Page fetches are paced by the rate limiter so a broad query
// does not hammer the API.
func (s *ScryfallService) SearchCards(query string) (*models.CardSearchResult, error) {
	reqURL := fmt.Sprintf("%s/cards/search?q=%s", s.baseURL, url.QueryEscape(query))

	result := &models.CardSearchResult{Cards: []models.Card{}}
	for reqURL != "" && len(result.Cards) < searchResultCap {
		if err := s.limiter.Wait(context.Background()); err != nil {
			return nil, err
		}

		page, err := s.fetchSearchPage(reqURL)
		if err != nil {
			return nil, err
		}
		if page == nil {
			// 404 means zero matches, not an error.
			break
		}

		for _, sc := range page.Data {
			if len(result.Cards) >= searchResultCap {
				break
			}
			result.Cards = append(result.Cards, convertToCard(sc))
		}
		result.TotalCount = page.TotalCards

		if !page.HasMore {
			reqURL = ""
		} else {
			reqURL = page.NextPage
		}
	}
	result.HasMore = result.TotalCount > len(result.Cards)
	return result, nil
}

func (s *ScryfallService) fetchSearchPage(reqURL string) (*scryfallSearchResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ScryfallRequestsTotal.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("failed to search scryfall: %w", err)
	}
	defer resp.Body.Close()
	metrics.ScryfallRequestsTotal.WithLabelValues("search", strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scryfall API returned status %d", resp.StatusCode)
	}

	var page scryfallSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode scryfall response: %w", err)
	}
	return &page, nil
}

// ListSets returns all sets, newest first. The list changes rarely so it is
// cached for a day.
func (s *ScryfallService) ListSets() ([]models.Set, error) {
	s.setsMu.Lock()
	defer s.setsMu.Unlock()
	if s.sets != nil && time.Since(s.setsTime) < setsCacheTTL {
		return s.sets, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/sets", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ScryfallRequestsTotal.WithLabelValues("sets", "error").Inc()
		return nil, fmt.Errorf("failed to list scryfall sets: %w", err)
	}
	defer resp.Body.Close()
	metrics.ScryfallRequestsTotal.WithLabelValues("sets", strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scryfall API returned status %d", resp.StatusCode)
	}

	var setsResp scryfallSetsResponse
	if err := json.NewDecoder(resp.Body).Decode(&setsResp); err != nil {
		return nil, fmt.Errorf("failed to decode scryfall response: %w", err)
	}

	sets := make([]models.Set, 0, len(setsResp.Data))
	for _, d := range setsResp.Data {
		sets = append(sets, models.Set{
			Code:       strings.ToUpper(d.Code),
			Name:       d.Name,
			ReleasedAt: d.ReleasedAt,
			CardCount:  d.CardCount,
		})
	}
	sort.SliceStable(sets, func(i, j int) bool {
		return sets[i].ReleasedAt > sets[j].ReleasedAt
	})

	s.sets = sets
	s.setsTime = time.Now()
	return sets, nil
}

func convertToCard(sc scryfallCard) models.Card {
	var imageURL string
	if sc.ImageURIs != nil {
		imageURL = sc.ImageURIs.Normal
	} else if len(sc.CardFaces) > 0 && sc.CardFaces[0].ImageURIs != nil {
		imageURL = sc.CardFaces[0].ImageURIs.Normal
	}

	card := models.Card{
		Name:            sc.Name,
		SetCode:         strings.ToUpper(sc.Set),
		SetName:         sc.SetName,
		CollectorNumber: sc.CollectorNum,
		Rarity:          sc.Rarity,
		Artist:          sc.Artist,
		ReleasedAt:      sc.ReleasedAt,
		ImageURL:        imageURL,
		ScryfallID:      sc.ID,
	}
	if sc.Prices.USD != "" {
		if v, err := strconv.ParseFloat(sc.Prices.USD, 64); err == nil {
			card.PriceUSD = v
			card.PriceKnown = true
		}
	}
	if sc.Prices.USDFoil != "" {
		if v, err := strconv.ParseFloat(sc.Prices.USDFoil, 64); err == nil {
			card.PriceFoilUSD = v
			card.FoilPriceKnown = true
		}
	}
	return card
}
