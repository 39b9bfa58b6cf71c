package store

import (
	"fmt"
	"strings"

	"github.com/yukikurage/toondo/internal/models"
)

// AddTask appends a new task at the end of the actor's list.
func (e *Engine) AddTask(s Snapshot, actor Actor, title string) (Snapshot, models.Task, error) {
	if err := requireActor(actor); err != nil {
		return s, models.Task{}, err
	}
	title, err := requireTitle(title)
	if err != nil {
		return s, models.Task{}, err
	}

	task := models.Task{
		ID:              e.NewID(),
		Title:           title,
		CreatedAt:       e.timestamp(),
		Order:           nextOrder(s.TasksOf(actor.ID)),
		UserID:          actor.ID,
		UserDisplayName: actor.Name,
		UserAvatarURL:   actor.AvatarURL,
		AssignedRoles:   []string{},
		Applicants:      []models.Applicant{},
		ChecklistItems:  []models.ChecklistItem{},
	}

	tasks := make([]models.Task, len(s.Tasks), len(s.Tasks)+1)
	copy(tasks, s.Tasks)
	tasks = append(tasks, task)
	return Snapshot{Tasks: tasks}, task, nil
}

// nextOrder is one past the highest order held, so gaps left by deletes are
// never reused.
func nextOrder(tasks []models.Task) int {
	next := 0
	for _, t := range tasks {
		if t.Order >= next {
			next = t.Order + 1
		}
	}
	return next
}

// DeleteTask removes a task together with its checklist.
func (e *Engine) DeleteTask(s Snapshot, actor Actor, taskID string) (Snapshot, error) {
	if err := requireActor(actor); err != nil {
		return s, err
	}
	i := s.index(taskID)
	if i < 0 {
		return s, fmt.Errorf("%w: task %s", ErrNotFound, taskID)
	}
	if s.Tasks[i].UserID != actor.ID {
		return s, fmt.Errorf("%w: task %s belongs to another user", ErrPermissionDenied, taskID)
	}

	tasks := make([]models.Task, 0, len(s.Tasks)-1)
	tasks = append(tasks, s.Tasks[:i]...)
	tasks = append(tasks, s.Tasks[i+1:]...)
	return Snapshot{Tasks: tasks}, nil
}

// UpdateTaskTitle replaces the task title.
func (e *Engine) UpdateTaskTitle(s Snapshot, actor Actor, taskID, title string) (Snapshot, error) {
	return e.mutateTask(s, actor, taskID, func(t *models.Task) error {
		v, err := requireTitle(title)
		if err != nil {
			return err
		}
		t.Title = v
		return nil
	})
}

// UpdateTaskDescription replaces the task description.
func (e *Engine) UpdateTaskDescription(s Snapshot, actor Actor, taskID, description string) (Snapshot, error) {
	return e.mutateTask(s, actor, taskID, func(t *models.Task) error {
		t.Description = strings.TrimSpace(description)
		return nil
	})
}

// SetTaskDueDate sets or clears (nil) the task due date.
func (e *Engine) SetTaskDueDate(s Snapshot, actor Actor, taskID string, date *string) (Snapshot, error) {
	return e.mutateTask(s, actor, taskID, func(t *models.Task) error {
		v, err := NormalizeDate(date)
		if err != nil {
			return err
		}
		t.DueDate = v
		return nil
	})
}

// SetTaskBackgroundImage sets or clears (nil) the card background.
func (e *Engine) SetTaskBackgroundImage(s Snapshot, actor Actor, taskID string, url *string) (Snapshot, error) {
	return e.mutateTask(s, actor, taskID, func(t *models.Task) error {
		t.BackgroundImageURL = optional(url)
		return nil
	})
}

// SetAssignedRoles replaces the roles the task is looking for.
func (e *Engine) SetAssignedRoles(s Snapshot, actor Actor, taskID string, roles []string) (Snapshot, error) {
	return e.mutateTask(s, actor, taskID, func(t *models.Task) error {
		out := make([]string, 0, len(roles))
		seen := make(map[string]struct{}, len(roles))
		for _, r := range roles {
			r = strings.TrimSpace(r)
			if r == "" {
				continue
			}
			if _, dup := seen[r]; dup {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
		t.AssignedRoles = out
		return nil
	})
}
