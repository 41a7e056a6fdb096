package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"books-storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocalStorage is the client-local key/value store, the counterpart of a browser's localStorage.
type LocalStorage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type storageRepoImpl struct {
	db *gorm.DB
}

func NewStorageRepository(db *gorm.DB) LocalStorage {
	return &storageRepoImpl{
		db: db,
	}
}

func (r *storageRepoImpl) Get(ctx context.Context, key string) (string, bool, error) {
	var entry model.StorageEntry
	err := r.db.WithContext(ctx).
		Where("storage_key = ?", key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}

	return entry.Value, true, nil
}

// Set overwrites the value wholesale.
func (r *storageRepoImpl) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": time.Now(),
		}),
	}).Create(&model.StorageEntry{Key: key, Value: value}).Error
}

func (r *storageRepoImpl) Remove(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("storage_key = ?", key).
		Delete(&model.StorageEntry{}).Error
}
