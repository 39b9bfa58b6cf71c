package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/toondo/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStorageRepository is a GORM implementation of StorageRepository
type GormStorageRepository struct {
	db *gorm.DB
}

// NewStorageRepository creates a new StorageRepository
func NewStorageRepository(db *gorm.DB) StorageRepository {
	return &GormStorageRepository{db: db}
}

// Get returns the value stored under key
func (r *GormStorageRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.StorageEntry
	err := r.db.WithContext(ctx).Where("storage_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Value), nil
}

// Put creates or replaces the value stored under key
func (r *GormStorageRepository) Put(ctx context.Context, key string, value []byte) error {
	entry := models.StorageEntry{Key: key, Value: string(value)}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "storage_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

// Delete removes the key if present
func (r *GormStorageRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&models.StorageEntry{}).Error
}
