package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/toondo/internal/dto"
	"github.com/yukikurage/toondo/internal/models"
	"github.com/yukikurage/toondo/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.StorageEntry{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	users := repository.NewUserRepository(repository.NewStorageRepository(db))
	require.NoError(t, users.Create(context.Background(), &models.User{ID: "u-alice", Username: "alice", DisplayName: "Alice"}))
	return db
}

func run(t *testing.T, db *gorm.DB, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(&App{db: db})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestUsersList(t *testing.T) {
	db := setupDB(t)

	out, err := run(t, db, "users", "list")
	require.NoError(t, err)

	var users []dto.UserDTO
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestImportThenList(t *testing.T) {
	db := setupDB(t)
	path := writeFile(t, "plan.md", "# Trip\n- [x] Book hotel\n- [ ] Pack\n\n# Groceries\n")

	out, err := run(t, db, "--as", "alice", "import", path)
	require.NoError(t, err)

	var created []dto.TaskDTO
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.Len(t, created, 2)
	assert.Equal(t, "Trip", created[0].Title)
	assert.Len(t, created[0].ChecklistItems, 2)

	out, err = run(t, db, "--as", "alice", "tasks", "list")
	require.NoError(t, err)

	var list dto.TaskListResponse
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, int64(2), list.Pagination.Total)
	assert.Equal(t, "Trip", list.Tasks[0].Title)
	assert.True(t, list.Tasks[0].IsOwner)
}

func TestTasksList_RequiresUser(t *testing.T) {
	db := setupDB(t)

	_, err := run(t, db, "tasks", "list")
	assert.ErrorContains(t, err, "--as")

	_, err = run(t, db, "--as", "nobody", "tasks", "list")
	assert.ErrorContains(t, err, "user not found")
}

func TestPrintAndExport(t *testing.T) {
	db := setupDB(t)
	path := writeFile(t, "plan.md", "# Walk dog\nAround the park\n")

	out, err := run(t, db, "--as", "alice", "import", path)
	require.NoError(t, err)
	var created []dto.TaskDTO
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.Len(t, created, 1)

	card := filepath.Join(t.TempDir(), "card.html")
	_, err = run(t, db, "print", created[0].ID, "-o", card)
	require.NoError(t, err)
	html, err := os.ReadFile(card)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Walk dog")

	out, err = run(t, db, "export")
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Walk dog", raw[0]["title"])
}

func TestExport_EmptyStore(t *testing.T) {
	db := setupDB(t)

	out, err := run(t, db, "export")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}
