package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTask_AppendsToOwnersList(t *testing.T) {
	e := newTestEngine()
	s := emptySnapshot()

	s, milk, err := e.AddTask(s, alice, "  Buy milk  ")
	require.NoError(t, err)
	s, _, err = e.AddTask(s, bob, "Bob's task")
	require.NoError(t, err)
	s, dog, err := e.AddTask(s, alice, "Walk dog")
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", milk.Title)
	assert.Equal(t, 0, milk.Order)
	assert.Equal(t, 1, dog.Order)
	assert.False(t, milk.Completed)
	assert.Empty(t, milk.ChecklistItems)
	assert.Equal(t, alice.ID, milk.UserID)
	assert.Equal(t, alice.Name, milk.UserDisplayName)
	assert.Equal(t, alice.AvatarURL, milk.UserAvatarURL)
	assert.Equal(t, "2024-05-01T09:00:01.000Z", milk.CreatedAt)
	assert.Len(t, s.Tasks, 3)
	assert.Len(t, s.TasksOf(alice.ID), 2)
}

func TestAddTask_Validation(t *testing.T) {
	e := newTestEngine()
	s := emptySnapshot()

	next, _, err := e.AddTask(s, alice, "   ")
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Empty(t, next.Tasks)

	_, _, err = e.AddTask(s, Actor{}, "No owner")
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAddTask_DoesNotMutateInput(t *testing.T) {
	e := newTestEngine()
	s, _, err := e.AddTask(emptySnapshot(), alice, "First")
	require.NoError(t, err)
	before := mustEncode(t, s)

	_, _, err = e.AddTask(s, alice, "Second")
	require.NoError(t, err)
	assert.Equal(t, before, mustEncode(t, s))
}

func TestDeleteTask(t *testing.T) {
	e := newTestEngine()
	s, task, err := e.AddTask(emptySnapshot(), alice, "Doomed")
	require.NoError(t, err)
	s, _, err = e.AddItem(s, alice, task.ID, "Step")
	require.NoError(t, err)

	_, err = e.DeleteTask(s, bob, task.ID)
	require.ErrorIs(t, err, ErrPermissionDenied)

	next, err := e.DeleteTask(s, alice, task.ID)
	require.NoError(t, err)
	assert.Empty(t, next.Tasks)
	assert.Len(t, s.Tasks, 1, "input snapshot must be untouched")

	same, err := e.DeleteTask(next, alice, task.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, mustEncode(t, next), mustEncode(t, same))
}

func TestAddTask_AfterDeleteKeepsOrderUnique(t *testing.T) {
	e := newTestEngine()
	s := emptySnapshot()

	s, a, err := e.AddTask(s, alice, "A")
	require.NoError(t, err)
	s, _, err = e.AddTask(s, alice, "B")
	require.NoError(t, err)
	s, c, err := e.AddTask(s, alice, "C")
	require.NoError(t, err)
	s, err = e.DeleteTask(s, alice, a.ID)
	require.NoError(t, err)
	s, d, err := e.AddTask(s, alice, "D")
	require.NoError(t, err)

	assert.Equal(t, 3, d.Order)
	assert.NotEqual(t, c.Order, d.Order)

	seen := make(map[int]bool)
	for _, task := range s.TasksOf(alice.ID) {
		assert.False(t, seen[task.Order], "duplicate order %d", task.Order)
		seen[task.Order] = true
	}

	_, first, err := e.AddTask(s, bob, "Bob's first")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Order)
}

func TestUpdateTaskFields(t *testing.T) {
	e := newTestEngine()
	s, task, err := e.AddTask(emptySnapshot(), alice, "Card")
	require.NoError(t, err)

	s, err = e.UpdateTaskTitle(s, alice, task.ID, "Renamed")
	require.NoError(t, err)
	_, err = e.UpdateTaskTitle(s, alice, task.ID, " ")
	require.ErrorIs(t, err, ErrValidationFailed)

	s, err = e.UpdateTaskDescription(s, alice, task.ID, "  some notes ")
	require.NoError(t, err)

	due := "2024-06-01"
	s, err = e.SetTaskDueDate(s, alice, task.ID, &due)
	require.NoError(t, err)

	bad := "next tuesday"
	_, err = e.SetTaskDueDate(s, alice, task.ID, &bad)
	require.ErrorIs(t, err, ErrValidationFailed)

	url := "https://images.example.com/bg.jpg"
	s, err = e.SetTaskBackgroundImage(s, alice, task.ID, &url)
	require.NoError(t, err)

	got := mustTask(t, s, task.ID)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "some notes", got.Description)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2024-06-01", *got.DueDate)
	require.NotNil(t, got.BackgroundImageURL)
	assert.Equal(t, url, *got.BackgroundImageURL)

	s, err = e.SetTaskDueDate(s, alice, task.ID, nil)
	require.NoError(t, err)
	s, err = e.SetTaskBackgroundImage(s, alice, task.ID, nil)
	require.NoError(t, err)
	got = mustTask(t, s, task.ID)
	assert.Nil(t, got.DueDate)
	assert.Nil(t, got.BackgroundImageURL)
}

func TestSetAssignedRoles(t *testing.T) {
	e := newTestEngine()
	s, task, err := e.AddTask(emptySnapshot(), alice, "Party")
	require.NoError(t, err)

	s, err = e.SetAssignedRoles(s, alice, task.ID, []string{" DJ ", "Cook", "", "DJ"})
	require.NoError(t, err)
	assert.Equal(t, []string{"DJ", "Cook"}, mustTask(t, s, task.ID).AssignedRoles)
}

func TestNonOwnerMutationsLeaveSnapshotIdentical(t *testing.T) {
	e := newTestEngine()
	s, task, err := e.AddTask(emptySnapshot(), alice, "Mine")
	require.NoError(t, err)
	s, item, err := e.AddItem(s, alice, task.ID, "Step")
	require.NoError(t, err)
	s, applicant, err := e.AddApplicant(s, alice, task.ID, "Carol", "Cook")
	require.NoError(t, err)
	s, other, err := e.AddTask(s, alice, "Other")
	require.NoError(t, err)

	before := mustEncode(t, s)
	due := "2024-07-01"
	url := "https://example.com/x.png"

	attempts := map[string]func() (Snapshot, error){
		"delete":      func() (Snapshot, error) { return e.DeleteTask(s, bob, task.ID) },
		"title":       func() (Snapshot, error) { return e.UpdateTaskTitle(s, bob, task.ID, "Hijacked") },
		"description": func() (Snapshot, error) { return e.UpdateTaskDescription(s, bob, task.ID, "x") },
		"due date":    func() (Snapshot, error) { return e.SetTaskDueDate(s, bob, task.ID, &due) },
		"background":  func() (Snapshot, error) { return e.SetTaskBackgroundImage(s, bob, task.ID, &url) },
		"roles":       func() (Snapshot, error) { return e.SetAssignedRoles(s, bob, task.ID, []string{"x"}) },
		"reorder":     func() (Snapshot, error) { return e.ReorderTask(s, bob, other.ID, task.ID) },
		"add item": func() (Snapshot, error) {
			next, _, err := e.AddItem(s, bob, task.ID, "Sneaky")
			return next, err
		},
		"toggle":      func() (Snapshot, error) { return e.ToggleItem(s, bob, task.ID, item.ID) },
		"delete item": func() (Snapshot, error) { return e.DeleteItem(s, bob, task.ID, item.ID) },
		"item title":  func() (Snapshot, error) { return e.UpdateItemTitle(s, bob, task.ID, item.ID, "x") },
		"item desc":   func() (Snapshot, error) { return e.UpdateItemDescription(s, bob, task.ID, item.ID, "x") },
		"item due":    func() (Snapshot, error) { return e.SetItemDueDate(s, bob, task.ID, item.ID, &due) },
		"assign": func() (Snapshot, error) {
			return e.AssignItemUser(s, bob, task.ID, item.ID, &Assignee{ID: bob.ID, Name: bob.Name})
		},
		"image":  func() (Snapshot, error) { return e.SetItemImage(s, bob, task.ID, item.ID, &url, nil) },
		"labels": func() (Snapshot, error) { return e.SetItemLabels(s, bob, task.ID, item.ID, nil) },
		"comment": func() (Snapshot, error) {
			next, _, err := e.AddItemComment(s, bob, task.ID, item.ID, "hi")
			return next, err
		},
		"accept": func() (Snapshot, error) { return e.AcceptApplicant(s, bob, task.ID, applicant.ID) },
		"reject": func() (Snapshot, error) { return e.RejectApplicant(s, bob, task.ID, applicant.ID) },
		"remove": func() (Snapshot, error) { return e.RemoveApplicant(s, bob, task.ID, applicant.ID) },
	}

	for name, attempt := range attempts {
		t.Run(name, func(t *testing.T) {
			next, err := attempt()
			require.ErrorIs(t, err, ErrPermissionDenied)
			assert.Equal(t, before, mustEncode(t, next))
			assert.Equal(t, before, mustEncode(t, s))
		})
	}
}
