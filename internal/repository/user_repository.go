package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/yukikurage/toondo/internal/constants"
	"github.com/yukikurage/toondo/internal/models"
	"github.com/yukikurage/toondo/internal/store"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user repository: user not found")
	// ErrDuplicateUsername is returned when creating a user whose username is already taken.
	ErrDuplicateUsername = errors.New("user repository: duplicate username")
)

// BlobUserRepository keeps the user collection as a single JSON blob in the storage table
type BlobUserRepository struct {
	storage StorageRepository
	mu      sync.Mutex
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(storage StorageRepository) UserRepository {
	return &BlobUserRepository{storage: storage}
}

// Create stores a new user
func (r *BlobUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, user.Username) {
			return ErrDuplicateUsername
		}
	}

	data, err := store.EncodeUsers(append(users, *user))
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	return r.storage.Put(ctx, constants.StorageKeyUsers, data)
}

// FindByID finds a user by ID
func (r *BlobUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(ctx, func(u models.User) bool { return u.ID == id })
}

// FindByUsername finds a user by username, ignoring case
func (r *BlobUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	return r.find(ctx, func(u models.User) bool { return strings.EqualFold(u.Username, username) })
}

// List returns every registered user
func (r *BlobUserRepository) List(ctx context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *BlobUserRepository) find(ctx context.Context, match func(models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if match(users[i]) {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *BlobUserRepository) load(ctx context.Context) ([]models.User, error) {
	data, err := r.storage.Get(ctx, constants.StorageKeyUsers)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	return store.DecodeUsers(data)
}
