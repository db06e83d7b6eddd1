package models

import (
	"time"
)

// GuestUserID is the namespace used when no account is registered. Guest data
// is wiped on logout.
const GuestUserID = "guest"

// User is a registry entry. PasswordHash is a bcrypt hash; it is stored in the
// persisted registry blob but never serialized into API responses.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public strips credentials for API responses.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile holds per-user display settings.
type Profile struct {
	DisplayName    string          `json:"display_name"`
	StatusMessage  string          `json:"status_message"`
	Visibility     string          `json:"visibility"`
	ProfilePicture *ProfilePicture `json:"profile_picture,omitempty"`
}

// ProfilePicture is card artwork used as an avatar, with the user's crop
// adjustments.
type ProfilePicture struct {
	CardName string `json:"card_name"`
	ImageURL string `json:"image_url"`
	Scale    int    `json:"scale"`
	Rotation int    `json:"rotation"`
	OffsetX  int    `json:"offset_x"`
	OffsetY  int    `json:"offset_y"`
}

// UserSummary is a friend-search result with collection headline numbers.
type UserSummary struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	DisplayName     string  `json:"display_name"`
	CardCount       int     `json:"card_count"`
	CollectionValue float64 `json:"collection_value"`
}

type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      PublicUser `json:"user"`
	Guest     bool       `json:"guest"`
}

type UpdateProfileRequest struct {
	DisplayName    *string         `json:"display_name"`
	StatusMessage  *string         `json:"status_message"`
	Visibility     *string         `json:"visibility"`
	ProfilePicture *ProfilePicture `json:"profile_picture"`
}
