package repository

import (
	"context"

	"github.com/yukikurage/toondo/internal/models"
)

// StorageRepository defines the interface for the key/value blob store
type StorageRepository interface {
	// Get returns the value stored under key. A missing key yields nil and no error.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put creates or replaces the value stored under key
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the key if present
	Delete(ctx context.Context, key string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create stores a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByUsername finds a user by username, ignoring case
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// List returns every registered user
	List(ctx context.Context) ([]models.User, error)
}
