package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoEntry is returned by Get when no blob exists for the key.
var ErrNoEntry = errors.New("no entry for key")

// Entry is one persisted whole-structure JSON blob, namespaced by user id.
// Global structures (the user registry, the trade-offer list) use an empty
// user id. There are no partial writes: every mutation rewrites the blob.
type Entry struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"uniqueIndex:idx_user_key;not null;default:''"`
	Key       string `gorm:"uniqueIndex:idx_user_key;not null"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// Store reads and writes JSON snapshots. Every Put is synchronously durable:
// callers may rely on a completed mutation surviving a restart before the
// next read happens.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get unmarshals the blob for (userID, key) into out. Returns ErrNoEntry when
// nothing has been stored yet.
func (s *Store) Get(userID, key string, out any) error {
	var entry Entry
	err := s.db.Where("user_id = ? AND key = ?", userID, key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoEntry
	}
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", userID, key, err)
	}
	if err := json.Unmarshal(entry.Value, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", userID, key, err)
	}
	return nil
}

// Put marshals v and upserts it as the whole blob for (userID, key).
func (s *Store) Put(userID, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", userID, key, err)
	}
	entry := Entry{UserID: userID, Key: key, Value: data, UpdatedAt: time.Now()}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", userID, key, err)
	}
	return nil
}

// Delete removes one blob. Missing keys are not an error.
func (s *Store) Delete(userID, key string) error {
	return s.db.Where("user_id = ? AND key = ?", userID, key).Delete(&Entry{}).Error
}

// DeleteAll wipes a user's entire namespace. Used when a guest session ends.
func (s *Store) DeleteAll(userID string) error {
	return s.db.Where("user_id = ?", userID).Delete(&Entry{}).Error
}
