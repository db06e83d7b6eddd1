package locations

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/colefleming/mtg-binder/internal/database"
)

func testRegistry(t *testing.T) (*Registry, *database.Store) {
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
	store := database.NewStore(db)
	r, err := Load(store, "alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return r, store
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"My Binder", "my_binder"},
		{"  My   Binder  ", "my_binder"},
		{"Card Box #2!", "card_box_2"},
		{"UPPER", "upper"},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDefaultsAlwaysPresent(t *testing.T) {
	r, _ := testRegistry(t)
	list := r.List()
	if len(list) != 3 {
		t.Fatalf("expected the 3 defaults, got %d", len(list))
	}
	ids := []string{list[0].ID, list[1].ID, list[2].ID}
	want := []string{"box_1", "box_2", "trading_binder"}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("default %d: got %q, want %q", i, ids[i], id)
		}
	}
}

func TestCreateCustomLocation(t *testing.T) {
	r, store := testRegistry(t)

	loc, err := r.Create("My Binder")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if loc.ID != "my_binder" || !loc.IsCustom {
		t.Errorf("unexpected location: %+v", loc)
	}

	// Custom locations come after the defaults.
	list := r.List()
	if list[len(list)-1].ID != "my_binder" {
		t.Errorf("custom location should be listed after defaults: %+v", list)
	}

	// Survives reload.
	reloaded, err := Load(store, "alice")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := reloaded.Get("my_binder"); !ok {
		t.Error("custom location lost on reload")
	}
}

func TestCreateRejectsCollisions(t *testing.T) {
	r, _ := testRegistry(t)

	// Slug collides with a default id.
	if _, err := r.Create("Box 1"); !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("expected ErrDuplicateSlug for default collision, got %v", err)
	}

	r.Create("My Binder")
	// Different display names, same slug.
	if _, err := r.Create("my BINDER!"); !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("expected ErrDuplicateSlug, got %v", err)
	}

	if _, err := r.Create("???"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName for empty slug, got %v", err)
	}
}

func TestDeleteRules(t *testing.T) {
	r, _ := testRegistry(t)
	r.Create("My Binder")

	if err := r.Delete("box_1"); !errors.Is(err, ErrCannotDeleteDefault) {
		t.Errorf("expected ErrCannotDeleteDefault, got %v", err)
	}
	if err := r.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := r.Delete("my_binder"); err != nil {
		t.Errorf("deleting a custom location should work, got %v", err)
	}
	if _, ok := r.Get("my_binder"); ok {
		t.Error("deleted location still present")
	}
}

func TestLoadDiscardsFakeDefaults(t *testing.T) {
	_, store := testRegistry(t)

	// A persisted blob claiming a non-custom entry must not be trusted.
	store.Put("bob", "storage_locations", []map[string]any{
		{"id": "sneaky", "name": "Sneaky", "is_custom": false},
		{"id": "real", "name": "Real", "is_custom": true},
	})

	r, err := Load(store, "bob")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := r.Get("sneaky"); ok {
		t.Error("non-custom persisted entry should be discarded")
	}
	if _, ok := r.Get("real"); !ok {
		t.Error("custom persisted entry should be kept")
	}
}
