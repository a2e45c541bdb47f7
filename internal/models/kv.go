package models

import "time"

// KVEntry is one row of the key-value persistence table backing the SQLite
// storage driver.
type KVEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}
