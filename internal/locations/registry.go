// Package locations manages the named storage bins collection records refer
// to by id.
package locations

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/colefleming/mtg-binder/internal/database"
	"github.com/colefleming/mtg-binder/internal/models"
)

const storageKey = "storage_locations"

var (
	ErrInvalidName         = errors.New("storage location name must contain letters or numbers")
	ErrDuplicateSlug       = errors.New("storage location with this name already exists")
	ErrCannotDeleteDefault = errors.New("default storage locations cannot be deleted")
	ErrNotFound            = errors.New("storage location not found")
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	invalidRe    = regexp.MustCompile(`[^a-z0-9_]`)
)

// Slugify derives a location id from its display name: lowercase, runs of
// whitespace become underscores, everything else non-alphanumeric is dropped.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = whitespaceRe.ReplaceAllString(slug, "_")
	return invalidRe.ReplaceAllString(slug, "")
}

// Defaults returns the three built-in locations. They are always present and
// never deletable, regardless of what the persisted custom list contains.
func Defaults() []models.StorageLocation {
	return []models.StorageLocation{
		{ID: "box_1", Name: "Box 1"},
		{ID: "box_2", Name: "Box 2"},
		{ID: "trading_binder", Name: "Trading Binder"},
	}
}

// Registry holds a user's storage locations: the fixed defaults plus their
// persisted custom bins. Deleting a custom location never cascades; records
// still pointing at it keep the dangling id and display it raw.
type Registry struct {
	store  *database.Store
	userID string
	custom []models.StorageLocation
}

// Load reads the custom-location list. Entries claiming to be defaults are
// discarded; only the built-in Defaults can be non-custom.
func Load(store *database.Store, userID string) (*Registry, error) {
	r := &Registry{store: store, userID: userID}

	var saved []models.StorageLocation
	if err := store.Get(userID, storageKey, &saved); err != nil {
		if !errors.Is(err, database.ErrNoEntry) {
			return nil, fmt.Errorf("load storage locations: %w", err)
		}
		return r, nil
	}

	for _, loc := range saved {
		if loc.IsCustom && loc.ID != "" {
			r.custom = append(r.custom, loc)
		}
	}
	return r, nil
}

func (r *Registry) persist() error {
	if err := r.store.Put(r.userID, storageKey, r.custom); err != nil {
		return fmt.Errorf("persist storage locations: %w", err)
	}
	return nil
}

// List returns the defaults followed by the custom locations.
func (r *Registry) List() []models.StorageLocation {
	out := Defaults()
	return append(out, r.custom...)
}

// Get looks a location up by id.
func (r *Registry) Get(id string) (models.StorageLocation, bool) {
	for _, loc := range r.List() {
		if loc.ID == id {
			return loc, true
		}
	}
	return models.StorageLocation{}, false
}

// Create slugifies the name and adds a custom location. The slug must not
// collide with any existing id, default or custom.
func (r *Registry) Create(name string) (models.StorageLocation, error) {
	slug := Slugify(name)
	if slug == "" {
		return models.StorageLocation{}, ErrInvalidName
	}
	if _, exists := r.Get(slug); exists {
		return models.StorageLocation{}, ErrDuplicateSlug
	}

	loc := models.StorageLocation{
		ID:          slug,
		Name:        strings.TrimSpace(name),
		IsCustom:    true,
		DateCreated: time.Now(),
	}
	r.custom = append(r.custom, loc)
	if err := r.persist(); err != nil {
		return models.StorageLocation{}, err
	}
	return loc, nil
}

// Delete removes a custom location. Defaults are never deletable.
func (r *Registry) Delete(id string) error {
	for _, def := range Defaults() {
		if def.ID == id {
			return ErrCannotDeleteDefault
		}
	}
	for i, loc := range r.custom {
		if loc.ID == id {
			r.custom = append(r.custom[:i], r.custom[i+1:]...)
			return r.persist()
		}
	}
	return ErrNotFound
}
