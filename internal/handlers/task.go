package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/toondo/internal/dto"
	apierrors "github.com/yukikurage/toondo/internal/errors"
	"github.com/yukikurage/toondo/internal/logger"
	"github.com/yukikurage/toondo/internal/middleware"
	"github.com/yukikurage/toondo/internal/services"
	"github.com/yukikurage/toondo/internal/store"
	"github.com/yukikurage/toondo/internal/utils"
)

type TaskHandler struct {
	tasks   *services.TaskService
	printer *services.CardPrinter
}

func NewTaskHandler(tasks *services.TaskService, printer *services.CardPrinter) *TaskHandler {
	return &TaskHandler{
		tasks:   tasks,
		printer: printer,
	}
}

// ListTasks returns every task, the current user's first
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	writeTaskList(c, h.tasks, actor)
}

func writeTaskList(c *gin.Context, tasks *services.TaskService, actor store.Actor) {
	params := utils.GetPaginationParams(c)
	page, total := tasks.ListTasks(actor, params)

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: dto.ToTaskDTOs(page, actor.ID),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task, userID))
}

// CreateTask creates a task owned by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string  `json:"title" binding:"required"`
		Description string  `json:"description"`
		DueDate     *string `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), actor, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(task, actor.ID))
}

// UpdateTask updates the fields present in the body; null clears a date or image
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput
	var err error
	if input.Title, _, err = optionalString(rawReq, "title"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.Description, _, err = optionalString(rawReq, "description"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	var present bool
	if input.DueDate, present, err = optionalString(rawReq, "due_date"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	input.ClearDueDate = present && input.DueDate == nil
	if input.BackgroundImageURL, present, err = optionalString(rawReq, "background_image_url"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	input.ClearBackgroundImage = present && input.BackgroundImageURL == nil

	task, err := h.tasks.UpdateTask(c.Request.Context(), actor, c.Param("id"), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task, actor.ID))
}

// DeleteTask deletes a task and its checklist
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// ReorderTask moves the task to the position of target_id
func (h *TaskHandler) ReorderTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type ReorderRequest struct {
		TargetID string `json:"target_id" binding:"required"`
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.tasks.ReorderTask(c.Request.Context(), actor, c.Param("id"), req.TargetID); err != nil {
		respondTaskError(c, err)
		return
	}

	writeTaskList(c, h.tasks, actor)
}

// SetRoles replaces the roles the task is recruiting for
func (h *TaskHandler) SetRoles(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type SetRolesRequest struct {
		Roles []string `json:"roles"`
	}

	var req SetRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.tasks.SetAssignedRoles(c.Request.Context(), actor, c.Param("id"), req.Roles)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task, actor.ID))
}

// PrintTask renders the task as a printable HTML card
func (h *TaskHandler) PrintTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	page, err := h.printer.Render(task)
	if err != nil {
		logger.L().Error().Err(err).Str("task_id", task.ID).Msg("failed to render card")
		apierrors.InternalError(c, "Failed to render card")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
