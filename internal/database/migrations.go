package database

import (
	"encoding/json"
	"log"

	"gorm.io/gorm"

	"github.com/BowmanStephen/dadpack-backend/internal/models"
)

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := migrateLegacySaveBlob(db); err != nil {
		return err
	}
	return nil
}

// migrateLegacySaveBlob splits the pre-1.0 combined "save" blob (collection
// and pity in one JSON value) into the separate collection/pity keys.
// Safe to run multiple times: it only fires while the legacy key exists.
func migrateLegacySaveBlob(db *gorm.DB) error {
	var legacy models.KVEntry
	if err := db.First(&legacy, "key = ?", "save").Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	log.Println("Migrating legacy save blob: save -> collection/pity keys")

	var blob struct {
		Collection json.RawMessage `json:"collection"`
		Pity       json.RawMessage `json:"pity"`
	}
	if err := json.Unmarshal(legacy.Value, &blob); err != nil {
		// An unreadable legacy blob is not worth failing startup over; the
		// user still has the in-browser copy to re-import.
		log.Printf("Warning: legacy save blob is unreadable, skipping migration: %v", err)
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if len(blob.Collection) > 0 {
			if err := tx.Save(&models.KVEntry{Key: "collection", Value: blob.Collection}).Error; err != nil {
				return err
			}
		}
		if len(blob.Pity) > 0 {
			if err := tx.Save(&models.KVEntry{Key: "pity", Value: blob.Pity}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.KVEntry{}, "key = ?", "save").Error
	})
}
