package auth

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/colefleming/mtg-binder/internal/database"
	"github.com/colefleming/mtg-binder/internal/models"
)

func testService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&database.Entry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(database.NewStore(db))
}

func register(t *testing.T, s *Service, username, password string) models.User {
	t.Helper()
	user, err := s.Register(models.RegisterRequest{
		Username:        username,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func TestRegisterValidation(t *testing.T) {
	s := testService(t)

	cases := []struct {
		name string
		req  models.RegisterRequest
		want error
	}{
		{"too short", models.RegisterRequest{Username: "ab", Password: "secret1", ConfirmPassword: "secret1"}, ErrInvalidUsername},
		{"bad characters", models.RegisterRequest{Username: "bad name!", Password: "secret1", ConfirmPassword: "secret1"}, ErrInvalidUsername},
		{"too long", models.RegisterRequest{Username: "abcdefghijklmnopqrstu", Password: "secret1", ConfirmPassword: "secret1"}, ErrInvalidUsername},
		{"short password", models.RegisterRequest{Username: "alice", Password: "12345", ConfirmPassword: "12345"}, ErrPasswordTooShort},
		{"mismatch", models.RegisterRequest{Username: "alice", Password: "secret1", ConfirmPassword: "secret2"}, ErrPasswordMismatch},
	}
	for _, tc := range cases {
		if _, err := s.Register(tc.req); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	s := testService(t)
	user := register(t, s, "alice", "secret1")

	if user.ID == "" {
		t.Error("user should get an id")
	}
	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Error("password must be stored as a hash")
	}
	if user.Public().Username != "alice" {
		t.Errorf("unexpected public view: %+v", user.Public())
	}
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	s := testService(t)
	register(t, s, "alice", "secret1")

	_, err := s.Register(models.RegisterRequest{Username: "alice", Password: "other123", ConfirmPassword: "other123"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	s := testService(t)
	register(t, s, "alice", "secret1")

	user, err := s.Login("alice", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("unexpected user: %+v", user)
	}

	// Wrong password and unknown user report the same error.
	if _, err := s.Login("alice", "wrong12"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Login("nobody", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGetUserAndUsers(t *testing.T) {
	s := testService(t)
	alice := register(t, s, "alice", "secret1")
	register(t, s, "bob", "secret1")

	got, err := s.GetUser(alice.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("unexpected user: %+v", got)
	}
	if _, err := s.GetUser("missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	users, err := s.Users()
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := testService(t)

	// Missing profile is a zero value, not an error.
	p, err := s.LoadProfile("alice")
	if err != nil {
		t.Fatalf("load empty profile: %v", err)
	}
	if p.DisplayName != "" {
		t.Errorf("expected zero profile, got %+v", p)
	}

	p.DisplayName = "Alice"
	p.Visibility = "friends"
	if err := s.SaveProfile("alice", p); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	got, err := s.LoadProfile("alice")
	if err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if got.DisplayName != "Alice" || got.Visibility != "friends" {
		t.Errorf("profile not persisted: %+v", got)
	}
}
