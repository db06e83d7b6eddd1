package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long an issued token stays valid.
const SessionTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload for a session. Guest sessions carry the fixed
// guest user id and are flagged so handlers can wipe guest data on logout.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Guest    bool   `json:"guest,omitempty"`
	jwt.RegisteredClaims
}

// Sessions signs and verifies bearer tokens with an HMAC secret.
type Sessions struct {
	secret []byte
}

func NewSessions(secret []byte) *Sessions {
	return &Sessions{secret: secret}
}

// Issue signs a token for the user, expiring after SessionTTL.
func (s *Sessions) Issue(userID, username string, guest bool) (string, time.Time, error) {
	expires := time.Now().Add(SessionTTL)
	claims := Claims{
		UserID:   userID,
		Username: username,
		Guest:    guest,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// Verify parses and validates a token, returning its claims.
func (s *Sessions) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
