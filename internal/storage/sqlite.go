package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BowmanStephen/dadpack-backend/internal/models"
)

// SQLiteDriver stores key-value entries in the kv_entries table. Capacity is
// a configured soft limit, mirroring the browser origin quota the frontend
// lives under.
type SQLiteDriver struct {
	db       *gorm.DB
	capacity int64
}

func NewSQLiteDriver(db *gorm.DB, capacityBytes int64) *SQLiteDriver {
	return &SQLiteDriver{db: db, capacity: capacityBytes}
}

func (d *SQLiteDriver) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.KVEntry
	err := d.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry.Value, true, nil
}

func (d *SQLiteDriver) Set(ctx context.Context, key string, value []byte) error {
	entry := models.KVEntry{Key: key, Value: value}
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (d *SQLiteDriver) Remove(ctx context.Context, key string) error {
	return d.db.WithContext(ctx).Delete(&models.KVEntry{}, "key = ?", key).Error
}

func (d *SQLiteDriver) Estimate(ctx context.Context) (Quota, error) {
	var used int64
	err := d.db.WithContext(ctx).
		Model(&models.KVEntry{}).
		Select("COALESCE(SUM(LENGTH(value)), 0)").
		Scan(&used).Error
	if err != nil {
		return Quota{}, err
	}
	return Quota{UsedBytes: used, TotalBytes: d.capacity}, nil
}
