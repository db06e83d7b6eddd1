package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/colefleming/mtg-binder/internal/metrics"
	"github.com/colefleming/mtg-binder/internal/models"
	"github.com/colefleming/mtg-binder/internal/trade"
)

type SocialHandler struct {
	env *Env
}

func NewSocialHandler(env *Env) *SocialHandler {
	return &SocialHandler{env: env}
}

// ListUsers returns registered accounts with collection headline numbers,
// for friend search. The caller is excluded; an optional q parameter filters
// by username or display name substring, case-insensitive.
func (h *SocialHandler) ListUsers(c *gin.Context) {
	users, err := h.env.Users.Users()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	claims := CurrentUser(c)
	query := strings.ToLower(c.Query("q"))

	summaries := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		if u.ID == claims.UserID {
			continue
		}
		summary := models.UserSummary{ID: u.ID, Username: u.Username}
		if profile, err := h.env.Users.LoadProfile(u.ID); err == nil {
			summary.DisplayName = profile.DisplayName
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(summary.Username), query) &&
			!strings.Contains(strings.ToLower(summary.DisplayName), query) {
			continue
		}
		if ledger, err := h.env.ledger(u.ID); err == nil {
			stats := ledger.Stats()
			summary.CardCount = stats.TotalCards
			summary.CollectionValue = stats.TotalValue
		}
		summaries = append(summaries, summary)
	}
	c.JSON(http.StatusOK, gin.H{"users": summaries})
}

func (h *SocialHandler) ListFriends(c *gin.Context) {
	claims := CurrentUser(c)
	list, err := trade.NewFriends(h.env.Store, claims.UserID).List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []models.Friend{}
	}
	c.JSON(http.StatusOK, gin.H{"friends": list})
}

func (h *SocialHandler) AddFriend(c *gin.Context) {
	var req models.AddFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.env.Users.GetUser(req.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	claims := CurrentUser(c)
	h.env.mu.Lock()
	friend, err := trade.NewFriends(h.env.Store, claims.UserID).Add(user.ID, user.Username)
	h.env.mu.Unlock()
	if err != nil {
		switch {
		case errors.Is(err, trade.ErrAlreadyFriends), errors.Is(err, trade.ErrSelfFriend):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, friend)
}

func (h *SocialHandler) RemoveFriend(c *gin.Context) {
	claims := CurrentUser(c)
	h.env.mu.Lock()
	err := trade.NewFriends(h.env.Store, claims.UserID).Remove(c.Param("id"))
	h.env.mu.Unlock()
	if err != nil {
		if errors.Is(err, trade.ErrNotFriend) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// FriendCollection shows a friend's owned cards. The target must be on the
// caller's friend list.
func (h *SocialHandler) FriendCollection(c *gin.Context) {
	claims := CurrentUser(c)
	targetID := c.Param("id")

	friends, err := trade.NewFriends(h.env.Store, claims.UserID).List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	isFriend := false
	for _, f := range friends {
		if f.UserID == targetID {
			isFriend = true
			break
		}
	}
	if !isFriend {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not in friend list"})
		return
	}

	ledger, err := h.env.ledger(targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cards": ledger.ListOwned(models.SortOption(c.Query("sort"))),
		"stats": ledger.Stats(),
	})
}

func tradeLines(reqs []models.TradeLineRequest) []models.TradeLine {
	lines := make([]models.TradeLine, len(reqs))
	for i, r := range reqs {
		lines[i] = models.TradeLine{
			Identity:  identityFrom(r.Name, r.SetCode, r.CollectorNumber, r.Foil),
			UnitPrice: r.UnitPrice,
			ImageURL:  r.ImageURL,
		}
	}
	return lines
}

func (h *SocialHandler) SendTrade(c *gin.Context) {
	var req models.SendTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := CurrentUser(c)
	if claims.Guest {
		c.JSON(http.StatusForbidden, gin.H{"error": "guests cannot trade"})
		return
	}
	recipient, err := h.env.Users.GetUser(req.ToUserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipient not found"})
		return
	}

	h.env.mu.Lock()
	offer, err := h.env.Trades.Send(models.TradeOffer{
		FromUserID:   claims.UserID,
		FromUsername: claims.Username,
		ToUserID:     recipient.ID,
		ToUsername:   recipient.Username,
		OfferLines:   tradeLines(req.OfferLines),
		WantLines:    tradeLines(req.WantLines),
	})
	h.env.mu.Unlock()
	if err != nil {
		switch {
		case errors.Is(err, trade.ErrEmptyList),
			errors.Is(err, trade.ErrDuplicateLine),
			errors.Is(err, trade.ErrSelfTrade):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	metrics.TradeOffersTotal.WithLabelValues(string(models.TradeStatusPending)).Inc()
	c.JSON(http.StatusCreated, offer)
}

func (h *SocialHandler) listTrades(c *gin.Context, fetch func(string) ([]models.TradeOffer, error)) {
	claims := CurrentUser(c)
	offers, err := fetch(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if offers == nil {
		offers = []models.TradeOffer{}
	}
	c.JSON(http.StatusOK, gin.H{"trades": offers})
}

// ListTrades returns all of the caller's trade activity in one shot.
func (h *SocialHandler) ListTrades(c *gin.Context) {
	claims := CurrentUser(c)

	incoming, err := h.env.Trades.Incoming(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	outgoing, err := h.env.Trades.Outgoing(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	history, err := h.env.Trades.History(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"incoming": incoming,
		"outgoing": outgoing,
		"history":  history,
	})
}

func (h *SocialHandler) IncomingTrades(c *gin.Context) {
	h.listTrades(c, h.env.Trades.Incoming)
}

func (h *SocialHandler) OutgoingTrades(c *gin.Context) {
	h.listTrades(c, h.env.Trades.Outgoing)
}

func (h *SocialHandler) TradeHistory(c *gin.Context) {
	h.listTrades(c, h.env.Trades.History)
}

func (h *SocialHandler) resolveTrade(c *gin.Context, status models.TradeStatus) {
	claims := CurrentUser(c)
	h.env.mu.Lock()
	offer, err := h.env.Trades.Resolve(c.Param("id"), claims.UserID, status)
	h.env.mu.Unlock()
	if err != nil {
		switch {
		case errors.Is(err, trade.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, trade.ErrAlreadyResolved):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, trade.ErrNotRecipient), errors.Is(err, trade.ErrNotSender):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	metrics.TradeOffersTotal.WithLabelValues(string(status)).Inc()
	c.JSON(http.StatusOK, offer)
}

func (h *SocialHandler) AcceptTrade(c *gin.Context) {
	h.resolveTrade(c, models.TradeStatusAccepted)
}

func (h *SocialHandler) DeclineTrade(c *gin.Context) {
	h.resolveTrade(c, models.TradeStatusDeclined)
}

func (h *SocialHandler) CancelTrade(c *gin.Context) {
	h.resolveTrade(c, models.TradeStatusCancelled)
}
