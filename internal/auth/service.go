// Package auth implements account registration, password login, guest
// sessions, and per-user profile settings.
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/colefleming/mtg-binder/internal/database"
	"github.com/colefleming/mtg-binder/internal/models"
)

const (
	usersKey   = "users"
	profileKey = "profile"
)

var (
	ErrInvalidUsername    = errors.New("username must be 3-20 characters of letters, numbers, or underscores")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// Service manages the shared user registry. Usernames are unique
// case-sensitively; passwords are stored as bcrypt hashes.
type Service struct {
	store *database.Store
}

func NewService(store *database.Store) *Service {
	return &Service{store: store}
}

func (s *Service) loadUsers() ([]models.User, error) {
	var users []models.User
	if err := s.store.Get("", usersKey, &users); err != nil {
		if !errors.Is(err, database.ErrNoEntry) {
			return nil, fmt.Errorf("load users: %w", err)
		}
		return nil, nil
	}
	return users, nil
}

// Register creates an account after validating the username shape, password
// length, and confirmation.
func (s *Service) Register(req models.RegisterRequest) (models.User, error) {
	if !usernameRe.MatchString(req.Username) {
		return models.User{}, ErrInvalidUsername
	}
	if len(req.Password) < 6 {
		return models.User{}, ErrPasswordTooShort
	}
	if req.Password != req.ConfirmPassword {
		return models.User{}, ErrPasswordMismatch
	}

	users, err := s.loadUsers()
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.Username == req.Username {
			return models.User{}, ErrUsernameTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	users = append(users, user)
	if err := s.store.Put("", usersKey, users); err != nil {
		return models.User{}, fmt.Errorf("persist users: %w", err)
	}
	return user, nil
}

// Login verifies credentials. The error is the same whether the username is
// unknown or the password wrong.
func (s *Service) Login(username, password string) (models.User, error) {
	users, err := s.loadUsers()
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return models.User{}, ErrInvalidCredentials
		}
		return u, nil
	}
	return models.User{}, ErrInvalidCredentials
}

// GetUser looks an account up by id.
func (s *Service) GetUser(id string) (models.User, error) {
	users, err := s.loadUsers()
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

// Users returns the public view of every registered account.
func (s *Service) Users() ([]models.PublicUser, error) {
	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out, nil
}

// LoadProfile returns the user's profile settings, or a zero profile when
// none has been saved yet.
func (s *Service) LoadProfile(userID string) (models.Profile, error) {
	var p models.Profile
	if err := s.store.Get(userID, profileKey, &p); err != nil {
		if !errors.Is(err, database.ErrNoEntry) {
			return models.Profile{}, fmt.Errorf("load profile: %w", err)
		}
		return models.Profile{}, nil
	}
	return p, nil
}

// SaveProfile overwrites the user's profile settings.
func (s *Service) SaveProfile(userID string, p models.Profile) error {
	if err := s.store.Put(userID, profileKey, p); err != nil {
		return fmt.Errorf("persist profile: %w", err)
	}
	return nil
}
