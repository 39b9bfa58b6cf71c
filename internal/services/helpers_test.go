package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/toondo/internal/models"
	"github.com/yukikurage/toondo/internal/repository"
	"github.com/yukikurage/toondo/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStorage(t *testing.T) repository.StorageRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.StorageEntry{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	return repository.NewStorageRepository(db)
}

func testEngine() *store.Engine {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return &store.Engine{
		Now: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

// countingStorage records writes and can be switched to fail them.
type countingStorage struct {
	repository.StorageRepository
	puts     int
	failPuts bool
}

func (c *countingStorage) Put(ctx context.Context, key string, value []byte) error {
	if c.failPuts {
		return errors.New("disk full")
	}
	c.puts++
	return c.StorageRepository.Put(ctx, key, value)
}

type serviceEnv struct {
	storage *countingStorage
	users   repository.UserRepository
	auth    *AuthService
	tasks   *TaskService
	alice   store.Actor
	bob     store.Actor
}

func setupServiceEnv(t *testing.T) serviceEnv {
	t.Helper()

	storage := &countingStorage{StorageRepository: setupStorage(t)}
	users := repository.NewUserRepository(storage)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{ID: "u-alice", Username: "alice", DisplayName: "Alice", AvatarURL: "https://example.com/alice.png"}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "u-bob", Username: "bob", DisplayName: "Bob"}))

	tasks := NewTaskService(storage, users, testEngine())
	require.NoError(t, tasks.Load(ctx))

	alice, err := tasks.ActorFor(ctx, "u-alice")
	require.NoError(t, err)
	bob, err := tasks.ActorFor(ctx, "u-bob")
	require.NoError(t, err)

	storage.puts = 0
	return serviceEnv{
		storage: storage,
		users:   users,
		auth:    NewAuthService(users, storage),
		tasks:   tasks,
		alice:   alice,
		bob:     bob,
	}
}
