package models

import "time"

// StorageEntry is one key/value blob of the persisted state.
type StorageEntry struct {
	Key       string    `gorm:"column:storage_key;primarykey;type:varchar(191)" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name used by the storage adapter.
func (StorageEntry) TableName() string {
	return "storage_entries"
}
