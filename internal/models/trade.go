package models

import (
	"time"
)

type TradeStatus string

const (
	TradeStatusPending   TradeStatus = "pending"
	TradeStatusAccepted  TradeStatus = "accepted"
	TradeStatusDeclined  TradeStatus = "declined"
	TradeStatusCancelled TradeStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s TradeStatus) Terminal() bool {
	return s == TradeStatusAccepted || s == TradeStatusDeclined || s == TradeStatusCancelled
}

// TradeLine is a printing plus a price snapshot taken when the offer was
// assembled.
type TradeLine struct {
	Identity  PrintingIdentity `json:"identity"`
	UnitPrice float64          `json:"unit_price"`
	ImageURL  string           `json:"image_url,omitempty"`
}

// TradeOffer moves from pending to exactly one terminal status and is never
// reopened. Trades are a local simulation: resolving one changes status only,
// it does not move cards between collections.
type TradeOffer struct {
	ID           string      `json:"id"`
	FromUserID   string      `json:"from_user_id"`
	FromUsername string      `json:"from_username"`
	ToUserID     string      `json:"to_user_id"`
	ToUsername   string      `json:"to_username"`
	OfferLines   []TradeLine `json:"offer_lines"`
	WantLines    []TradeLine `json:"want_lines"`
	Status       TradeStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	ResolvedAt   *time.Time  `json:"resolved_at,omitempty"`
}

type Friend struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	AddedAt  time.Time `json:"added_at"`
}

type TradeLineRequest struct {
	Name            string  `json:"name" binding:"required"`
	SetCode         string  `json:"set_code"`
	CollectorNumber string  `json:"collector_number"`
	Foil            bool    `json:"foil"`
	UnitPrice       float64 `json:"unit_price"`
	ImageURL        string  `json:"image_url"`
}

type SendTradeRequest struct {
	ToUserID   string             `json:"to_user_id" binding:"required"`
	OfferLines []TradeLineRequest `json:"offer_lines" binding:"required"`
	WantLines  []TradeLineRequest `json:"want_lines" binding:"required"`
}

type AddFriendRequest struct {
	UserID string `json:"user_id" binding:"required"`
}
