// Package store holds the task/checklist state transitions.
//
// Every operation takes a Snapshot and returns a new one; the input snapshot is
// never modified. A rejected operation returns the input snapshot unchanged
// together with an error wrapping one of the package sentinels.
package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/toondo/internal/models"
	"github.com/yukikurage/toondo/internal/utils"
)

// TimestampLayout is the ISO-8601 form used for createdAt and log timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID        string
	Name      string
	AvatarURL string
}

// ActorFromUser builds the actor for a registered user.
func ActorFromUser(u models.User) Actor {
	name := u.DisplayName
	if name == "" {
		name = u.Username
	}
	return Actor{ID: u.ID, Name: name, AvatarURL: u.AvatarURL}
}

// Snapshot is the full collection of tasks of all users.
type Snapshot struct {
	Tasks []models.Task
}

// Find returns the task with the given ID.
func (s Snapshot) Find(taskID string) (models.Task, bool) {
	if i := s.index(taskID); i >= 0 {
		return s.Tasks[i], true
	}
	return models.Task{}, false
}

// TasksOf returns the tasks owned by userID in storage order.
func (s Snapshot) TasksOf(userID string) []models.Task {
	out := make([]models.Task, 0)
	for _, t := range s.Tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

// RequireOwner reports whether actor may mutate taskID.
func (s Snapshot) RequireOwner(actor Actor, taskID string) error {
	_, err := s.owned(actor, taskID)
	return err
}

func (s Snapshot) owned(actor Actor, taskID string) (int, error) {
	if err := requireActor(actor); err != nil {
		return -1, err
	}
	i := s.index(taskID)
	if i < 0 {
		return -1, fmt.Errorf("%w: task %s", ErrNotFound, taskID)
	}
	if s.Tasks[i].UserID != actor.ID {
		return -1, fmt.Errorf("%w: task %s belongs to another user", ErrPermissionDenied, taskID)
	}
	return i, nil
}

func (s Snapshot) index(taskID string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

func (s Snapshot) replace(i int, t models.Task) Snapshot {
	tasks := make([]models.Task, len(s.Tasks))
	copy(tasks, s.Tasks)
	tasks[i] = t
	return Snapshot{Tasks: tasks}
}

// Engine applies transitions. It owns the clock and the ID source so tests can
// pin both.
type Engine struct {
	Now   func() time.Time
	NewID func() string
}

// NewEngine returns an engine backed by the wall clock and random IDs.
func NewEngine() *Engine {
	return &Engine{
		Now:   time.Now,
		NewID: utils.NewID,
	}
}

func (e *Engine) timestamp() string {
	return e.Now().UTC().Format(TimestampLayout)
}

func requireActor(actor Actor) error {
	if strings.TrimSpace(actor.ID) == "" {
		return fmt.Errorf("%w: no authenticated user", ErrPermissionDenied)
	}
	return nil
}

// mutateTask runs fn against a private copy of the task and swaps it in only if
// fn succeeds.
func (e *Engine) mutateTask(s Snapshot, actor Actor, taskID string, fn func(t *models.Task) error) (Snapshot, error) {
	i, err := s.owned(actor, taskID)
	if err != nil {
		return s, err
	}

	t := s.Tasks[i].Clone()
	if err := fn(&t); err != nil {
		return s, err
	}
	return s.replace(i, t), nil
}

func (e *Engine) mutateItem(s Snapshot, actor Actor, taskID, itemID string, fn func(t *models.Task, item *models.ChecklistItem) error) (Snapshot, error) {
	return e.mutateTask(s, actor, taskID, func(t *models.Task) error {
		j := t.ItemIndex(itemID)
		if j < 0 {
			return fmt.Errorf("%w: checklist item %s", ErrNotFound, itemID)
		}
		return fn(t, &t.ChecklistItems[j])
	})
}
