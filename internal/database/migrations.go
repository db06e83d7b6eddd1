package database

import (
	"log"

	"gorm.io/gorm"
)

// legacyKeys maps blob keys written by the pre-server (browser localStorage)
// era to their current names. Safe to run repeatedly: renames only apply where
// the new key does not already exist.
var legacyKeys = map[string]string{
	"mtgCollection":    "collection",
	"mtgDecks":         "decks",
	"mtg_users":        "users",
	"tradeOffers":      "trade_offers",
	"mtg_user_profile": "profile",
}

// RunMigrations runs custom data migrations after schema changes.
func RunMigrations(db *gorm.DB) error {
	return migrateLegacyKeyNames(db)
}

func migrateLegacyKeyNames(db *gorm.DB) error {
	if !db.Migrator().HasTable("entries") {
		return nil
	}

	for oldKey, newKey := range legacyKeys {
		result := db.Exec(`
			UPDATE entries SET key = ?
			WHERE key = ?
			AND NOT EXISTS (
				SELECT 1 FROM entries e2
				WHERE e2.user_id = entries.user_id AND e2.key = ?
			)
		`, newKey, oldKey, newKey)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			log.Printf("Renamed %d legacy %q blobs to %q", result.RowsAffected, oldKey, newKey)
		}
	}

	// Drop any legacy blobs that still collide with migrated data.
	for oldKey := range legacyKeys {
		db.Exec(`DELETE FROM entries WHERE key = ?`, oldKey)
	}

	return nil
}
