package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/colefleming/mtg-binder/internal/api"
	"github.com/colefleming/mtg-binder/internal/api/handlers"
	"github.com/colefleming/mtg-binder/internal/auth"
	"github.com/colefleming/mtg-binder/internal/config"
	"github.com/colefleming/mtg-binder/internal/database"
	"github.com/colefleming/mtg-binder/internal/models"
	"github.com/colefleming/mtg-binder/internal/services"
	"github.com/colefleming/mtg-binder/internal/trade"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&database.Entry{}))
	store := database.NewStore(db)

	// Card database stub: every lookup misses, so tests supply prices inline.
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(stub.Close)

	scryfall := services.NewScryfallService(stub.URL)
	env := handlers.NewEnv(
		store,
		auth.NewService(store),
		auth.NewSessions([]byte("test-secret")),
		scryfall,
		services.NewPriceService(scryfall),
		trade.NewStore(store),
	)

	cfg := &config.Config{}
	cfg.Server.CORSOrigins = []string{"http://localhost:5173"}
	return api.SetupRouter(cfg, env)
}

func performRequest(router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, username string) models.AuthResponse {
	t.Helper()
	w := performRequest(router, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Username:        username,
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp
}

func price(v float64) *float64 { return &v }

func TestAuthFlow(t *testing.T) {
	router := setupRouter(t)

	resp := registerUser(t, router, "alice")
	assert.False(t, resp.Guest)
	assert.Equal(t, "alice", resp.User.Username)

	// Duplicate username.
	w := performRequest(router, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Username: "alice", Password: "secret1", ConfirmPassword: "secret1",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Login.
	w = performRequest(router, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Username: "alice", Password: "secret1",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Username: "alice", Password: "wrong12",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Authenticated whoami.
	w = performRequest(router, http.MethodGet, "/api/auth/me", nil, resp.Token)
	assert.Equal(t, http.StatusOK, w.Code)

	// No token.
	w = performRequest(router, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCollectionFlow(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "alice").Token

	add := models.AddToCollectionRequest{
		Name:              "Lightning Bolt",
		SetCode:           "M21",
		CollectorNumber:   "162",
		UnitPrice:         price(0.50),
		StorageLocationID: "box_1",
	}
	w := performRequest(router, http.MethodPost, "/api/collection", add, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = performRequest(router, http.MethodPost, "/api/collection", add, token)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Record models.CollectionRecord `json:"record"`
		Stats  models.CollectionStats  `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Record.Quantity)
	assert.Equal(t, 2, result.Stats.TotalCards)
	assert.Equal(t, 1, result.Stats.UniqueCards)
	assert.InDelta(t, 1.00, result.Stats.TotalValue, 1e-9)

	// Remove down to zero, then once more.
	remove := models.RemoveFromCollectionRequest{Name: "Lightning Bolt", SetCode: "M21", CollectorNumber: "162"}
	performRequest(router, http.MethodPost, "/api/collection/remove", remove, token)
	w = performRequest(router, http.MethodPost, "/api/collection/remove", remove, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = performRequest(router, http.MethodPost, "/api/collection/remove", remove, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodGet, "/api/collection/stats", nil, token)
	var stats models.CollectionStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.TotalCards)
}

func TestCollectionIsPerUser(t *testing.T) {
	router := setupRouter(t)
	alice := registerUser(t, router, "alice").Token
	bob := registerUser(t, router, "bob").Token

	performRequest(router, http.MethodPost, "/api/collection", models.AddToCollectionRequest{
		Name: "Sol Ring", SetCode: "C21", CollectorNumber: "263", UnitPrice: price(2),
	}, alice)

	w := performRequest(router, http.MethodGet, "/api/collection/stats", nil, bob)
	var stats models.CollectionStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.TotalCards)
}

func TestLocationEndpoints(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "alice").Token

	w := performRequest(router, http.MethodPost, "/api/locations", models.CreateLocationRequest{Name: "My Binder"}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, http.MethodPost, "/api/locations", models.CreateLocationRequest{Name: "my binder"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performRequest(router, http.MethodDelete, "/api/locations/box_1", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(router, http.MethodDelete, "/api/locations/my_binder", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDeckEndpoints(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "alice").Token

	w := performRequest(router, http.MethodPost, "/api/decks", models.CreateDeckRequest{Name: "Burn", Format: "modern"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	w = performRequest(router, http.MethodPost, "/api/decks", models.CreateDeckRequest{Name: "Burn", Format: "modern"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	line := models.AddDeckLineRequest{
		Name: "Lightning Bolt", SetCode: "M21", CollectorNumber: "162",
		Quantity: 3, UnitPrice: 0.50,
	}
	performRequest(router, http.MethodPost, "/api/decks/0/lines", line, token)
	w = performRequest(router, http.MethodPost, "/api/decks/0/lines", line, token)
	require.Equal(t, http.StatusOK, w.Code)

	var view models.DeckView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 6, view.Lines[0].Quantity)
	assert.InDelta(t, 3.00, view.Stats.TotalValue, 1e-9)

	w = performRequest(router, http.MethodGet, "/api/decks/5", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodDelete, "/api/decks/0/lines/0", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	w = performRequest(router, http.MethodDelete, "/api/decks/0", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBackupImportRejectsZeroQuantityDeckLine(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "alice").Token

	payload := map[string]any{
		"collection": []any{},
		"decks": []models.Deck{{
			Name: "Burn",
			Lines: []models.DeckLine{{
				Identity: models.NewPrintingIdentity("Lightning Bolt", "M21", "162", false),
				Quantity: 0,
			}},
		}},
	}
	w := performRequest(router, http.MethodPost, "/api/collection/import", payload, token)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = performRequest(router, http.MethodGet, "/api/decks", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Burn")
}

func TestGuestLogoutWipesData(t *testing.T) {
	router := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/auth/guest", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var guest models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &guest))
	require.True(t, guest.Guest)

	performRequest(router, http.MethodPost, "/api/collection", models.AddToCollectionRequest{
		Name: "Sol Ring", SetCode: "C21", CollectorNumber: "263", UnitPrice: price(2),
	}, guest.Token)

	w = performRequest(router, http.MethodPost, "/api/auth/logout", nil, guest.Token)
	require.Equal(t, http.StatusNoContent, w.Code)

	// A fresh guest session starts empty.
	w = performRequest(router, http.MethodPost, "/api/auth/guest", nil, "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &guest))
	w = performRequest(router, http.MethodGet, "/api/collection/stats", nil, guest.Token)
	var stats models.CollectionStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.TotalCards)
}

func TestTradeEndpoints(t *testing.T) {
	router := setupRouter(t)
	alice := registerUser(t, router, "alice")
	bob := registerUser(t, router, "bob")

	// Friends.
	w := performRequest(router, http.MethodPost, "/api/friends", models.AddFriendRequest{UserID: bob.User.ID}, alice.Token)
	require.Equal(t, http.StatusCreated, w.Code)
	w = performRequest(router, http.MethodPost, "/api/friends", models.AddFriendRequest{UserID: bob.User.ID}, alice.Token)
	assert.Equal(t, http.StatusConflict, w.Code)

	send := models.SendTradeRequest{
		ToUserID:   bob.User.ID,
		OfferLines: []models.TradeLineRequest{{Name: "Lightning Bolt", SetCode: "M21", CollectorNumber: "162", UnitPrice: 0.50}},
		WantLines:  []models.TradeLineRequest{{Name: "Sol Ring", SetCode: "C21", CollectorNumber: "263", UnitPrice: 2.00}},
	}
	w = performRequest(router, http.MethodPost, "/api/trades", send, alice.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var offer models.TradeOffer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &offer))
	require.Equal(t, models.TradeStatusPending, offer.Status)

	// Bob sees it incoming; alice cannot accept her own offer.
	w = performRequest(router, http.MethodGet, "/api/trades/incoming", nil, bob.Token)
	assert.Contains(t, w.Body.String(), offer.ID)
	w = performRequest(router, http.MethodPost, "/api/trades/"+offer.ID+"/accept", nil, alice.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(router, http.MethodPost, "/api/trades/"+offer.ID+"/accept", nil, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)

	// Terminal offers cannot be resolved again.
	w = performRequest(router, http.MethodPost, "/api/trades/"+offer.ID+"/decline", nil, bob.Token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performRequest(router, http.MethodGet, "/api/trades/history", nil, alice.Token)
	assert.Contains(t, w.Body.String(), string(models.TradeStatusAccepted))
}

func TestFriendCollection(t *testing.T) {
	router := setupRouter(t)
	alice := registerUser(t, router, "alice")
	bob := registerUser(t, router, "bob")

	performRequest(router, http.MethodPost, "/api/collection", models.AddToCollectionRequest{
		Name: "Sol Ring", SetCode: "C21", CollectorNumber: "263", UnitPrice: price(2),
	}, bob.Token)

	// Not friends yet.
	w := performRequest(router, http.MethodGet, "/api/friends/"+bob.User.ID+"/collection", nil, alice.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	performRequest(router, http.MethodPost, "/api/friends", models.AddFriendRequest{UserID: bob.User.ID}, alice.Token)
	w = performRequest(router, http.MethodGet, "/api/friends/"+bob.User.ID+"/collection", nil, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sol Ring")
}

func TestUserSearch(t *testing.T) {
	router := setupRouter(t)
	alice := registerUser(t, router, "alice")
	registerUser(t, router, "bobcat")

	w := performRequest(router, http.MethodGet, "/api/users?q=bob", nil, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bobcat")

	// The caller never appears in their own search results.
	w = performRequest(router, http.MethodGet, "/api/users", nil, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "alice")
}

func TestProfileVisibility(t *testing.T) {
	router := setupRouter(t)
	alice := registerUser(t, router, "alice")
	bob := registerUser(t, router, "bob")

	visibility := "private"
	w := performRequest(router, http.MethodPut, "/api/profile", models.UpdateProfileRequest{Visibility: &visibility}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, "/api/users/"+alice.User.ID+"/profile", nil, bob.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The owner can always see their own profile.
	w = performRequest(router, http.MethodGet, "/api/users/"+alice.User.ID+"/profile", nil, alice.Token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := setupRouter(t)
	w := performRequest(router, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
