package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/yukikurage/toondo/internal/constants"
	"github.com/yukikurage/toondo/internal/logger"
	"github.com/yukikurage/toondo/internal/models"
	"github.com/yukikurage/toondo/internal/repository"
	"github.com/yukikurage/toondo/internal/store"
	"github.com/yukikurage/toondo/internal/utils"
)

var (
	ErrNothingToImport = errors.New("no tasks found in the imported text")
)

// TaskService owns the in-memory task snapshot. Every mutation runs under one
// lock: apply the transition, persist the new snapshot, then swap it in.
type TaskService struct {
	storage  repository.StorageRepository
	userRepo repository.UserRepository
	engine   *store.Engine

	mu          sync.Mutex
	snapshot    store.Snapshot
	lastWritten []byte
	gestures    map[string]*store.Gesture
}

// NewTaskService creates a new TaskService. Call Load before serving requests.
func NewTaskService(storage repository.StorageRepository, userRepo repository.UserRepository, engine *store.Engine) *TaskService {
	if engine == nil {
		engine = store.NewEngine()
	}
	return &TaskService{
		storage:  storage,
		userRepo: userRepo,
		engine:   engine,
		snapshot: store.Snapshot{Tasks: []models.Task{}},
		gestures: make(map[string]*store.Gesture),
	}
}

// Load reads and normalizes the persisted task collection. A corrupt blob is
// logged and replaced by an empty collection on the next write.
func (s *TaskService) Load(ctx context.Context) error {
	data, err := s.storage.Get(ctx, constants.StorageKeyTasks)
	if err != nil {
		return fmt.Errorf("failed to read tasks: %w", err)
	}

	snapshot, err := store.DecodeTasks(data)
	if err != nil {
		if !errors.Is(err, store.ErrPersistenceCorrupt) {
			return err
		}
		logger.L().Warn().Err(err).Int("bytes", len(data)).Msg("stored tasks are unreadable, starting with an empty list")
		data = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	s.lastWritten = data

	logger.L().Info().Int("tasks", len(snapshot.Tasks)).Msg("loaded tasks")
	return nil
}

// ActorFor resolves the acting user.
func (s *TaskService) ActorFor(ctx context.Context, userID string) (store.Actor, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return store.Actor{}, ErrUserNotFound
		}
		return store.Actor{}, fmt.Errorf("failed to find user: %w", err)
	}
	return store.ActorFromUser(*user), nil
}

// ListTasks returns one page of tasks in display order for the actor: their
// own tasks first, then everyone else's.
func (s *TaskService) ListTasks(actor store.Actor, params utils.PaginationParams) ([]models.Task, int64) {
	s.mu.Lock()
	ordered := store.DisplayOrder(s.snapshot.Tasks, actor.ID)
	s.mu.Unlock()

	return utils.Paginate(ordered, params), int64(len(ordered))
}

// GetTask returns the task with the given ID.
func (s *TaskService) GetTask(taskID string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.snapshot.Find(taskID)
	if !ok {
		return models.Task{}, fmt.Errorf("%w: task %s", store.ErrNotFound, taskID)
	}
	return task, nil
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     *string
}

// CreateTask adds a task owned by the actor.
func (s *TaskService) CreateTask(ctx context.Context, actor store.Actor, input CreateTaskInput) (models.Task, error) {
	var created models.Task
	err := s.apply(ctx, func(snap store.Snapshot) (store.Snapshot, error) {
		next, task, err := s.engine.AddTask(snap, actor, input.Title)
		if err != nil {
			return snap, err
		}
		if strings.TrimSpace(input.Description) != "" {
			if next, err = s.engine.UpdateTaskDescription(next, actor, task.ID, input.Description); err != nil {
				return snap, err
			}
		}
		if input.DueDate != nil {
			if next, err = s.engine.SetTaskDueDate(next, actor, task.ID, input.DueDate); err != nil {
				return snap, err
			}
		}
		created, _ = next.Find(task.ID)
		return next, nil
	})
	return created, err
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title                *string
	Description          *string
	DueDate              *string
	ClearDueDate         bool
	BackgroundImageURL   *string
	ClearBackgroundImage bool
}

// UpdateTask applies every provided field in one mutation.
func (s *TaskService) UpdateTask(ctx context.Context, actor store.Actor, taskID string, input UpdateTaskInput) (models.Task, error) {
	return s.applyToTask(ctx, taskID, func(snap store.Snapshot) (store.Snapshot, error) {
		var err error
		next := snap
		if input.Title != nil {
			if next, err = s.engine.UpdateTaskTitle(next, actor, taskID, *input.Title); err != nil {
				return snap, err
			}
		}
		if input.Description != nil {
			if next, err = s.engine.UpdateTaskDescription(next, actor, taskID, *input.Description); err != nil {
				return snap, err
			}
		}
		if input.DueDate != nil || input.ClearDueDate {
			if next, err = s.engine.SetTaskDueDate(next, actor, taskID, input.DueDate); err != nil {
				return snap, err
			}
		}
		if input.BackgroundImageURL != nil || input.ClearBackgroundImage {
			if next, err = s.engine.SetTaskBackgroundImage(next, actor, taskID, input.BackgroundImageURL); err != nil {
				return snap, err
			}
		}
		return next, nil
	})
}

// DeleteTask removes a task and its checklist.
func (s *TaskService) DeleteTask(ctx context.Context, actor store.Actor, taskID string) error {
	return s.apply(ctx, func(snap store.Snapshot) (store.Snapshot, error) {
		return s.engine.DeleteTask(snap, actor, taskID)
	})
}

// ReorderTask moves draggedID to the position of targetID.
func (s *TaskService) ReorderTask(ctx context.Context, actor store.Actor, draggedID, targetID string) error {
	return s.apply(ctx, func(snap store.Snapshot) (store.Snapshot, error) {
		return s.engine.ReorderTask(snap, actor, draggedID, targetID)
	})
}

// SetAssignedRoles replaces the roles the task is looking for.
func (s *TaskService) SetAssignedRoles(ctx context.Context, actor store.Actor, taskID string, roles []string) (models.Task, error) {
	return s.applyToTask(ctx, taskID, func(snap store.Snapshot) (store.Snapshot, error) {
		return s.engine.SetAssignedRoles(snap, actor, taskID, roles)
	})
}

// AddApplicant proposes a candidate for a role.
func (s *TaskService) AddApplicant(ctx context.Context, actor store.Actor, taskID, name, role string) (models.Applicant, error) {
	var created models.Applicant
	err := s.apply(ctx, func(snap store.Snapshot) (store.Snapshot, error) {
		next, applicant, err := s.engine.AddApplicant(snap, actor, taskID, name, role)
		created = applicant
		return next, err
	})
	return created, err
}

// AcceptApplicant accepts an applicant for their role.
func (s *TaskService) AcceptApplicant(ctx context.Context, actor store.Actor, taskID, applicantID string) (models.Task, error) {
	return s.applyToTask(ctx, taskID, func(snap store.Snapshot) (store.Snapshot, error) {
		return s.engine.AcceptApplicant(snap, actor, taskID, applicantID)
	})
}

// RejectApplicant rejects an applicant.
func (s *TaskService) RejectApplicant(ctx context.Context, actor store.Actor, taskID, applicantID string) (models.Task, error) {
	return s.applyToTask(ctx, taskID, func(snap store.Snapshot) (store.Snapshot, error) {
		return s.engine.RejectApplicant(snap, actor, taskID, applicantID)
	})
}

// RemoveApplicant drops an applicant.
func (s *TaskService) RemoveApplicant(ctx context.Context, actor store.Actor, taskID, applicantID string) (models.Task, error) {
	return s.applyToTask(ctx, taskID, func(snap store.Snapshot) (store.Snapshot, error) {
		return s.engine.RemoveApplicant(snap, actor, taskID, applicantID)
	})
}

// AddItem appends a checklist item.
func (s *TaskService) AddItem(ctx context.Context, actor store.Actor, taskID, title string) (models.ChecklistItem, error) {
	var created models.ChecklistItem
	err := s.apply(ctx, func(snap store.Snapshot) (store.Snapshot, error) {
		next, item, err := s.engine.AddItem(snap, actor, taskID, title)
		created = item
		return next, err
	})
	return created, err
}

// UpdateItemInput represents input for updating a checklist item
type UpdateItemInput struct {
	Title          *string
	Description    *string
	DueDate        *string
	ClearDueDate   bool
	AssignedUserID *string
	ClearAssignee  bool
	ImageURL       *string
	ImageAIHint    *string
	ClearImage     bool
}

// UpdateItem applies every provided field in one mutation. Each changed field
// adds its own activity entry.
func (s *TaskService) UpdateItem(ctx context.Context, actor store.Actor, taskID, itemID string, input UpdateItemInput) (models.Task, error) {
	return s.applyToTask(ctx, taskID, func(snap store.Snapshot) (store.Snapshot, error) {
		if err := snap.RequireOwner(actor, taskID); err != nil {
			return snap, err
		}
		var assignee *store.Assignee
		if input.AssignedUserID != nil && !input.ClearAssignee {
			resolved, err := s.resolveAssignee(ctx, *input.AssignedUserID)
			if err != nil {
				return snap, err
			}
			assignee = resolved
		}

		var err error
		next := snap
		if input.Title != nil {
			if next, err = s.engine.UpdateItemTitle(next, actor, taskID, itemID, *input.Title); err != nil {
				return snap, err
			}
		}
		if input.Description != nil {
			if next, err = s.engine.UpdateItemDescription(next, actor, taskID, itemID, *input.Description); err != nil {
				return snap, err
			}
		}
		if input.DueDate != nil || input.ClearDueDate {
			if next, err = s.engine.SetItemDueDate(next, actor, taskID, itemID, input.DueDate); err != nil {
				return snap, err
			}
		}
		if assignee != nil || input.ClearAssignee {
			if next, err = s.engine.AssignItemUser(next, actor, taskID, itemID, assignee); err != nil {
				return snap, err
			}
		}
		if input.ImageURL != nil || input.ClearImage {
			if next, err = s.engine.SetItemImage(next, actor, taskID, itemID, input.ImageURL, input.ImageAIHint); err != nil {
				return snap, err
			}
		}
		return next, nil
	})
}

// ToggleItem flips the completion of a checklist item.
func (s *TaskService) ToggleItem(ctx context.Context, actor store.Actor, taskID, itemID string) (models.Task, error) {
	return s.applyToTask(ctx, taskID, func(snap store.Snapshot) (store.Snapshot, error) {
		return s.engine.ToggleItem(snap, actor, taskID, itemID)
	})
}

// DeleteItem removes a checklist item.
func (s *TaskService) DeleteItem(ctx context.Context, actor store.Actor, taskID, itemID string) (models.Task, error) {
	return s.applyToTask(ctx, taskID, func(snap store.Snapshot) (store.Snapshot, error) {
		return s.engine.DeleteItem(snap, actor, taskID, itemID)
	})
}

// SetItemLabels replaces the labels of a checklist item.
func (s *TaskService) SetItemLabels(ctx context.Context, actor store.Actor, taskID, itemID string, labels []models.Label) (models.Task, error) {
	return s.applyToTask(ctx, taskID, func(snap store.Snapshot) (store.Snapshot, error) {
		return s.engine.SetItemLabels(snap, actor, taskID, itemID, labels)
	})
}

// AddItemComment appends a comment to a checklist item.
func (s *TaskService) AddItemComment(ctx context.Context, actor store.Actor, taskID, itemID, text string) (models.Comment, error) {
	var created models.Comment
	err := s.apply(ctx, func(snap store.Snapshot) (store.Snapshot, error) {
		next, comment, err := s.engine.AddItemComment(snap, actor, taskID, itemID, text)
		created = comment
		return next, err
	})
	return created, err
}

// ImportTasks creates every parsed task with its sub-tasks in one mutation.
func (s *TaskService) ImportTasks(ctx context.Context, actor store.Actor, parsed []ParsedTask) ([]models.Task, error) {
	if len(parsed) == 0 {
		return nil, ErrNothingToImport
	}

	var created []models.Task
	err := s.apply(ctx, func(snap store.Snapshot) (store.Snapshot, error) {
		ids := make([]string, 0, len(parsed))
		next := snap
		for _, p := range parsed {
			var task models.Task
			var err error
			if next, task, err = s.engine.AddTask(next, actor, p.Title); err != nil {
				return snap, err
			}
			if strings.TrimSpace(p.Description) != "" {
				if next, err = s.engine.UpdateTaskDescription(next, actor, task.ID, p.Description); err != nil {
					return snap, err
				}
			}
			for _, sub := range p.SubTasks {
				var item models.ChecklistItem
				if next, item, err = s.engine.AddItem(next, actor, task.ID, sub.Title); err != nil {
					return snap, err
				}
				if sub.Completed {
					if next, err = s.engine.ToggleItem(next, actor, task.ID, item.ID); err != nil {
						return snap, err
					}
				}
			}
			ids = append(ids, task.ID)
		}

		created = make([]models.Task, 0, len(ids))
		for _, id := range ids {
			task, _ := next.Find(id)
			created = append(created, task)
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// PickUp starts a drag gesture for the actor.
func (s *TaskService) PickUp(actor store.Actor, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gesture(actor.ID).PickUp(s.snapshot, actor, taskID)
}

// Hover moves the actor's drag gesture over targetID.
func (s *TaskService) Hover(actor store.Actor, targetID string) (store.GestureState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.gesture(actor.ID)
	err := g.Hover(s.snapshot, actor, targetID)
	return g.State(), err
}

// Drop finishes the actor's drag gesture on targetID. An invalid drop ends the
// gesture without changes.
func (s *TaskService) Drop(ctx context.Context, actor store.Actor, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.gesture(actor.ID).Drop(s.engine, s.snapshot, actor, targetID)
	delete(s.gestures, actor.ID)
	return s.commit(ctx, next)
}

// CancelDrag abandons the actor's drag gesture.
func (s *TaskService) CancelDrag(actor store.Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.gestures, actor.ID)
}

func (s *TaskService) gesture(userID string) *store.Gesture {
	g, ok := s.gestures[userID]
	if !ok {
		g = &store.Gesture{}
		s.gestures[userID] = g
	}
	return g
}

func (s *TaskService) resolveAssignee(ctx context.Context, userID string) (*store.Assignee, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown assignee %s", store.ErrValidationFailed, userID)
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}
	a := store.ActorFromUser(*user)
	return &store.Assignee{ID: a.ID, Name: a.Name, AvatarURL: a.AvatarURL}, nil
}

// applyToTask runs fn and returns the resulting version of taskID.
func (s *TaskService) applyToTask(ctx context.Context, taskID string, fn func(store.Snapshot) (store.Snapshot, error)) (models.Task, error) {
	var updated models.Task
	err := s.apply(ctx, func(snap store.Snapshot) (store.Snapshot, error) {
		next, err := fn(snap)
		if err != nil {
			return snap, err
		}
		updated, _ = next.Find(taskID)
		return next, nil
	})
	return updated, err
}

func (s *TaskService) apply(ctx context.Context, fn func(store.Snapshot) (store.Snapshot, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.snapshot)
	if err != nil {
		return err
	}
	return s.commit(ctx, next)
}

// commit persists next and swaps it in. Must be called with s.mu held.
func (s *TaskService) commit(ctx context.Context, next store.Snapshot) error {
	data, err := store.EncodeTasks(next)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if !bytes.Equal(data, s.lastWritten) {
		if err := s.storage.Put(ctx, constants.StorageKeyTasks, data); err != nil {
			return fmt.Errorf("failed to save tasks: %w", err)
		}
		s.lastWritten = data
	}
	s.snapshot = next
	return nil
}
