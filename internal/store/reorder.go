package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/yukikurage/toondo/internal/models"
)

// ReorderTask moves draggedID to targetID's position within the actor's list
// and renumbers the actor's tasks 0..n-1. Other users' tasks are untouched.
func (e *Engine) ReorderTask(s Snapshot, actor Actor, draggedID, targetID string) (Snapshot, error) {
	if err := requireActor(actor); err != nil {
		return s, err
	}
	for _, id := range []string{draggedID, targetID} {
		i := s.index(id)
		if i < 0 {
			return s, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		if s.Tasks[i].UserID != actor.ID {
			return s, fmt.Errorf("%w: task %s belongs to another user", ErrPermissionDenied, id)
		}
	}
	if draggedID == targetID {
		return s, nil
	}

	own := ownedPositions(s.Tasks, actor.ID)
	from, to := -1, -1
	for pos, i := range own {
		switch s.Tasks[i].ID {
		case draggedID:
			from = pos
		case targetID:
			to = pos
		}
	}

	moved := own[from]
	rest := make([]int, 0, len(own))
	rest = append(rest, own[:from]...)
	rest = append(rest, own[from+1:]...)
	reordered := make([]int, 0, len(own))
	reordered = append(reordered, rest[:to]...)
	reordered = append(reordered, moved)
	reordered = append(reordered, rest[to:]...)

	tasks := make([]models.Task, len(s.Tasks))
	copy(tasks, s.Tasks)
	for order, i := range reordered {
		tasks[i].Order = order
	}
	return Snapshot{Tasks: tasks}, nil
}

// ownedPositions returns the indexes of userID's tasks sorted by order, then
// createdAt, then storage position.
func ownedPositions(tasks []models.Task, userID string) []int {
	idx := make([]int, 0)
	for i := range tasks {
		if tasks[i].UserID == userID {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return compareTasks(tasks[idx[a]], tasks[idx[b]]) < 0
	})
	return idx
}

// DisplayOrder lists the actor's tasks first, then everyone else's, each group
// sorted by order and creation time.
func DisplayOrder(tasks []models.Task, actorID string) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(a, b int) bool {
		aOwn := out[a].UserID == actorID
		bOwn := out[b].UserID == actorID
		if aOwn != bOwn {
			return aOwn
		}
		return compareTasks(out[a], out[b]) < 0
	})
	return out
}

func compareTasks(a, b models.Task) int {
	if a.Order != b.Order {
		if a.Order < b.Order {
			return -1
		}
		return 1
	}
	return compareTimestamps(a.CreatedAt, b.CreatedAt)
}

func compareTimestamps(a, b string) int {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	if errA == nil && errB == nil {
		switch {
		case ta.Before(tb):
			return -1
		case ta.After(tb):
			return 1
		}
		return 0
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
