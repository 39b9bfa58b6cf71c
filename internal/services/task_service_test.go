package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/toondo/internal/constants"
	"github.com/yukikurage/toondo/internal/models"
	"github.com/yukikurage/toondo/internal/store"
	"github.com/yukikurage/toondo/internal/utils"
)

func strPtr(s string) *string { return &s }

func TestTaskService_CreatePersistsAcrossReload(t *testing.T) {
	env := setupServiceEnv(t)
	ctx := context.Background()

	task, err := env.tasks.CreateTask(ctx, env.alice, CreateTaskInput{
		Title:       "Buy milk",
		Description: "two liters",
		DueDate:     strPtr("2024-05-20"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", task.UserDisplayName)
	assert.Equal(t, "two liters", task.Description)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, 1, env.storage.puts, "one mutation, one write")

	_, err = env.tasks.AddItem(ctx, env.alice, task.ID, "Go to store")
	require.NoError(t, err)

	reloaded := NewTaskService(env.storage, env.users, testEngine())
	require.NoError(t, reloaded.Load(ctx))

	got, err := reloaded.GetTask(task.ID)
	require.NoError(t, err)
	want, err := env.tasks.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTaskService_CreateValidation(t *testing.T) {
	env := setupServiceEnv(t)

	_, err := env.tasks.CreateTask(context.Background(), env.alice, CreateTaskInput{Title: "   "})
	assert.ErrorIs(t, err, store.ErrValidationFailed)

	_, err = env.tasks.CreateTask(context.Background(), env.alice, CreateTaskInput{Title: "ok", DueDate: strPtr("next week")})
	assert.ErrorIs(t, err, store.ErrValidationFailed)

	tasks, total := env.tasks.ListTasks(env.alice, utils.PaginationParams{Page: 1, Limit: 50})
	assert.Empty(t, tasks, "a failed create leaves nothing behind")
	assert.Zero(t, total)
	assert.Zero(t, env.storage.puts)
}

func TestTaskService_RejectedMutationsDoNotWrite(t *testing.T) {
	env := setupServiceEnv(t)
	ctx := context.Background()

	task, err := env.tasks.CreateTask(ctx, env.alice, CreateTaskInput{Title: "Alice's"})
	require.NoError(t, err)
	before, err := env.storage.Get(ctx, constants.StorageKeyTasks)
	require.NoError(t, err)
	puts := env.storage.puts

	_, err = env.tasks.UpdateTask(ctx, env.bob, task.ID, UpdateTaskInput{Title: strPtr("mine now")})
	assert.ErrorIs(t, err, store.ErrPermissionDenied)

	err = env.tasks.DeleteTask(ctx, env.alice, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = env.tasks.ToggleItem(ctx, env.alice, task.ID, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	after, err := env.storage.Get(ctx, constants.StorageKeyTasks)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Equal(t, puts, env.storage.puts)
}

func TestTaskService_UnchangedSnapshotSkipsWrite(t *testing.T) {
	env := setupServiceEnv(t)
	ctx := context.Background()

	task, err := env.tasks.CreateTask(ctx, env.alice, CreateTaskInput{Title: "Same"})
	require.NoError(t, err)
	puts := env.storage.puts

	_, err = env.tasks.UpdateTask(ctx, env.alice, task.ID, UpdateTaskInput{Title: strPtr("  Same ")})
	require.NoError(t, err)
	assert.Equal(t, puts, env.storage.puts)
}

func TestTaskService_FailedWriteKeepsPreviousSnapshot(t *testing.T) {
	env := setupServiceEnv(t)
	ctx := context.Background()

	task, err := env.tasks.CreateTask(ctx, env.alice, CreateTaskInput{Title: "Keep me"})
	require.NoError(t, err)

	env.storage.failPuts = true
	_, err = env.tasks.UpdateTask(ctx, env.alice, task.ID, UpdateTaskInput{Title: strPtr("Lost")})
	require.Error(t, err)

	got, err := env.tasks.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep me", got.Title)
}

func TestTaskService_CorruptBlobStartsEmpty(t *testing.T) {
	env := setupServiceEnv(t)
	ctx := context.Background()

	require.NoError(t, env.storage.Put(ctx, constants.StorageKeyTasks, []byte(`[{"id": `)))

	svc := NewTaskService(env.storage, env.users, testEngine())
	require.NoError(t, svc.Load(ctx))

	tasks, total := svc.ListTasks(env.alice, utils.PaginationParams{Page: 1, Limit: 50})
	assert.Empty(t, tasks)
	assert.Zero(t, total)

	_, err := svc.CreateTask(ctx, env.alice, CreateTaskInput{Title: "Fresh start"})
	require.NoError(t, err)

	raw, err := env.storage.Get(ctx, constants.StorageKeyTasks)
	require.NoError(t, err)
	decoded, err := store.DecodeTasks(raw)
	require.NoError(t, err)
	require.Len(t, decoded.Tasks, 1)
}

func TestTaskService_ListDisplayOrderAndPagination(t *testing.T) {
	env := setupServiceEnv(t)
	ctx := context.Background()

	for _, title := range []string{"b1", "b2"} {
		_, err := env.tasks.CreateTask(ctx, env.bob, CreateTaskInput{Title: title})
		require.NoError(t, err)
	}
	for _, title := range []string{"a1", "a2", "a3"} {
		_, err := env.tasks.CreateTask(ctx, env.alice, CreateTaskInput{Title: title})
		require.NoError(t, err)
	}

	titles := func(tasks []models.Task) []string {
		out := make([]string, len(tasks))
		for i, task := range tasks {
			out[i] = task.Title
		}
		return out
	}

	page, total := env.tasks.ListTasks(env.alice, utils.PaginationParams{Page: 1, Limit: 4, Offset: 0})
	assert.Equal(t, int64(5), total)
	assert.Equal(t, []string{"a1", "a2", "a3", "b1"}, titles(page))

	page, _ = env.tasks.ListTasks(env.alice, utils.PaginationParams{Page: 2, Limit: 4, Offset: 4})
	assert.Equal(t, []string{"b2"}, titles(page))

	page, _ = env.tasks.ListTasks(env.bob, utils.PaginationParams{Page: 1, Limit: 50})
	assert.Equal(t, []string{"b1", "b2", "a1", "a2", "a3"}, titles(page))
}

func TestTaskService_UpdateItemResolvesAssignee(t *testing.T) {
	env := setupServiceEnv(t)
	ctx := context.Background()

	task, err := env.tasks.CreateTask(ctx, env.alice, CreateTaskInput{Title: "Party"})
	require.NoError(t, err)
	item, err := env.tasks.AddItem(ctx, env.alice, task.ID, "Bring cake")
	require.NoError(t, err)

	updated, err := env.tasks.UpdateItem(ctx, env.alice, task.ID, item.ID, UpdateItemInput{
		Description:    strPtr("chocolate"),
		AssignedUserID: strPtr("u-bob"),
	})
	require.NoError(t, err)
	got := updated.ChecklistItems[0]
	require.NotNil(t, got.AssignedUserName)
	assert.Equal(t, "Bob", *got.AssignedUserName)
	require.Len(t, got.ActivityLog, 3)
	assert.Equal(t, store.ActionUpdatedAssignee, got.ActivityLog[0].Action)
	assert.Equal(t, store.ActionUpdatedDescription, got.ActivityLog[1].Action)

	_, err = env.tasks.UpdateItem(ctx, env.alice, task.ID, item.ID, UpdateItemInput{AssignedUserID: strPtr("u-ghost")})
	assert.ErrorIs(t, err, store.ErrValidationFailed)

	_, err = env.tasks.UpdateItem(ctx, env.bob, task.ID, item.ID, UpdateItemInput{AssignedUserID: strPtr("u-ghost")})
	assert.ErrorIs(t, err, store.ErrPermissionDenied, "ownership is checked before the assignee")

	updated, err = env.tasks.UpdateItem(ctx, env.alice, task.ID, item.ID, UpdateItemInput{ClearAssignee: true})
	require.NoError(t, err)
	assert.Nil(t, updated.ChecklistItems[0].AssignedUserID)
}

func TestTaskService_Applicants(t *testing.T) {
	env := setupServiceEnv(t)
	ctx := context.Background()

	task, err := env.tasks.CreateTask(ctx, env.alice, CreateTaskInput{Title: "Band practice"})
	require.NoError(t, err)
	_, err = env.tasks.SetAssignedRoles(ctx, env.alice, task.ID, []string{"Drums", "Bass", "Drums"})
	require.NoError(t, err)

	first, err := env.tasks.AddApplicant(ctx, env.alice, task.ID, "Ringo", "Drums")
	require.NoError(t, err)
	second, err := env.tasks.AddApplicant(ctx, env.alice, task.ID, "Keith", "Drums")
	require.NoError(t, err)

	_, err = env.tasks.AcceptApplicant(ctx, env.alice, task.ID, first.ID)
	require.NoError(t, err)
	updated, err := env.tasks.AcceptApplicant(ctx, env.alice, task.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Drums", "Bass"}, updated.AssignedRoles)
	assert.Equal(t, models.ApplicantPending, updated.Applicants[0].Status)
	assert.Equal(t, models.ApplicantAccepted, updated.Applicants[1].Status)

	_, err = env.tasks.AddApplicant(ctx, env.bob, task.ID, "Bob", "Bass")
	assert.ErrorIs(t, err, store.ErrPermissionDenied)

	updated, err = env.tasks.RemoveApplicant(ctx, env.alice, task.ID, first.ID)
	require.NoError(t, err)
	assert.Len(t, updated.Applicants, 1)
}

func TestTaskService_ImportTasks(t *testing.T) {
	env := setupServiceEnv(t)
	ctx := context.Background()

	parsed := NewMarkdownImporter().Parse("# Groceries\n\n- [x] Milk\n- [ ] Eggs\n\n# Call mom\n")
	created, err := env.tasks.ImportTasks(ctx, env.alice, parsed)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, 1, env.storage.puts, "import is one atomic mutation")

	groceries := created[0]
	assert.Equal(t, 0, groceries.Order)
	assert.False(t, groceries.Completed)
	require.Len(t, groceries.ChecklistItems, 2)
	assert.True(t, groceries.ChecklistItems[0].Completed)
	assert.Equal(t, 1, created[1].Order)

	_, err = env.tasks.ImportTasks(ctx, env.alice, nil)
	assert.ErrorIs(t, err, ErrNothingToImport)
}

func TestTaskService_DragGesture(t *testing.T) {
	env := setupServiceEnv(t)
	ctx := context.Background()

	milk, err := env.tasks.CreateTask(ctx, env.alice, CreateTaskInput{Title: "Buy milk"})
	require.NoError(t, err)
	dog, err := env.tasks.CreateTask(ctx, env.alice, CreateTaskInput{Title: "Walk dog"})
	require.NoError(t, err)
	theirs, err := env.tasks.CreateTask(ctx, env.bob, CreateTaskInput{Title: "Bob's"})
	require.NoError(t, err)

	assert.ErrorIs(t, env.tasks.PickUp(env.alice, theirs.ID), store.ErrPermissionDenied)

	_, err = env.tasks.Hover(env.alice, milk.ID)
	assert.ErrorIs(t, err, store.ErrNoActiveGesture)

	require.NoError(t, env.tasks.PickUp(env.alice, dog.ID))
	state, err := env.tasks.Hover(env.alice, milk.ID)
	require.NoError(t, err)
	assert.Equal(t, store.GestureHovering, state)

	require.NoError(t, env.tasks.Drop(ctx, env.alice, milk.ID))

	gotMilk, err := env.tasks.GetTask(milk.ID)
	require.NoError(t, err)
	gotDog, err := env.tasks.GetTask(dog.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotDog.Order)
	assert.Equal(t, 1, gotMilk.Order)

	_, err = env.tasks.Hover(env.alice, milk.ID)
	assert.ErrorIs(t, err, store.ErrNoActiveGesture, "drop ends the gesture")

	require.NoError(t, env.tasks.PickUp(env.alice, dog.ID))
	env.tasks.CancelDrag(env.alice)
	puts := env.storage.puts
	require.NoError(t, env.tasks.Drop(ctx, env.alice, milk.ID))
	assert.Equal(t, puts, env.storage.puts, "drop after cancel changes nothing")
}
