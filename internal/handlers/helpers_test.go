package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/toondo/internal/constants"
	"github.com/yukikurage/toondo/internal/models"
	"github.com/yukikurage/toondo/internal/repository"
	"github.com/yukikurage/toondo/internal/services"
	"github.com/yukikurage/toondo/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// handlerEnv is a task store on an in-memory database with two registered
// users.
type handlerEnv struct {
	db      *gorm.DB
	storage repository.StorageRepository
	users   repository.UserRepository
	auth    *services.AuthService
	tasks   *services.TaskService
	alice   store.Actor
	bob     store.Actor
}

func setupHandlerEnv(t *testing.T) handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	ctx := context.Background()
	storage := repository.NewStorageRepository(db)
	users := repository.NewUserRepository(storage)
	require.NoError(t, users.Create(ctx, &models.User{ID: "u-alice", Username: "alice", DisplayName: "Alice"}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "u-bob", Username: "bob", DisplayName: "Bob"}))

	tasks := services.NewTaskService(storage, users, nil)
	require.NoError(t, tasks.Load(ctx))

	alice, err := tasks.ActorFor(ctx, "u-alice")
	require.NoError(t, err)
	bob, err := tasks.ActorFor(ctx, "u-bob")
	require.NoError(t, err)

	return handlerEnv{
		db:      db,
		storage: storage,
		users:   users,
		auth:    services.NewAuthService(users, storage),
		tasks:   tasks,
		alice:   alice,
		bob:     bob,
	}
}

// createAuthContext builds a request context as if RequireAuth and LoadActor
// had already run for actor. A zero actor leaves the context anonymous.
func createAuthContext(method, url string, body any, actor store.Actor, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	if actor.ID != "" {
		c.Set(constants.ContextKeyUserID, actor.ID)
		c.Set(constants.ContextKeyActor, actor)
	}

	return c, w
}

func idParam(id string) gin.Param {
	return gin.Param{Key: "id", Value: id}
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]any](t, w)["code"].(string)
}
