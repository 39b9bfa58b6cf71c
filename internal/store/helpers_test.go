package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/toondo/internal/models"
)

var (
	alice = Actor{ID: "u-alice", Name: "Alice", AvatarURL: "https://example.com/alice.png"}
	bob   = Actor{ID: "u-bob", Name: "Bob"}
)

// newTestEngine returns an engine with a ticking clock and sequential IDs.
func newTestEngine() *Engine {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	ticks, ids := 0, 0
	return &Engine{
		Now: func() time.Time {
			ticks++
			return base.Add(time.Duration(ticks) * time.Second)
		},
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
	}
}

func emptySnapshot() Snapshot {
	s, _ := DecodeTasks(nil)
	return s
}

func mustEncode(t *testing.T, s Snapshot) string {
	t.Helper()
	data, err := EncodeTasks(s)
	require.NoError(t, err)
	return string(data)
}

func mustTask(t *testing.T, s Snapshot, id string) taskView {
	t.Helper()
	task, ok := s.Find(id)
	require.True(t, ok, "task %s not found", id)
	return taskView{task}
}

type taskView struct {
	models.Task
}

func (v taskView) item(id string) models.ChecklistItem {
	return v.ChecklistItems[v.ItemIndex(id)]
}
