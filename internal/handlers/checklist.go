package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/toondo/internal/dto"
	apierrors "github.com/yukikurage/toondo/internal/errors"
	"github.com/yukikurage/toondo/internal/models"
	"github.com/yukikurage/toondo/internal/services"
)

// ChecklistHandler serves the checklist items of a task.
type ChecklistHandler struct {
	tasks *services.TaskService
}

func NewChecklistHandler(tasks *services.TaskService) *ChecklistHandler {
	return &ChecklistHandler{tasks: tasks}
}

// AddItem appends a checklist item
func (h *ChecklistHandler) AddItem(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type AddItemRequest struct {
		Title string `json:"title" binding:"required"`
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.tasks.AddItem(c.Request.Context(), actor, c.Param("id"), req.Title)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToChecklistItemDTO(item))
}

// UpdateItem updates the fields present in the body. A null due date,
// assignee or image clears it.
func (h *ChecklistHandler) UpdateItem(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateItemInput
	var present bool
	var err error
	if input.Title, _, err = optionalString(rawReq, "title"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.Description, _, err = optionalString(rawReq, "description"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.DueDate, present, err = optionalString(rawReq, "due_date"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	input.ClearDueDate = present && input.DueDate == nil
	if input.AssignedUserID, present, err = optionalString(rawReq, "assigned_user_id"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.AssignedUserID != nil && strings.TrimSpace(*input.AssignedUserID) == "" {
		input.AssignedUserID = nil
	}
	input.ClearAssignee = present && input.AssignedUserID == nil
	if input.ImageURL, present, err = optionalString(rawReq, "image_url"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	input.ClearImage = present && input.ImageURL == nil
	if input.ImageAIHint, _, err = optionalString(rawReq, "image_ai_hint"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.UpdateItem(c.Request.Context(), actor, c.Param("id"), c.Param("item_id"), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task, actor.ID))
}

// DeleteItem removes a checklist item
func (h *ChecklistHandler) DeleteItem(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	task, err := h.tasks.DeleteItem(c.Request.Context(), actor, c.Param("id"), c.Param("item_id"))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task, actor.ID))
}

// ToggleItem flips the completion of a checklist item
func (h *ChecklistHandler) ToggleItem(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	task, err := h.tasks.ToggleItem(c.Request.Context(), actor, c.Param("id"), c.Param("item_id"))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task, actor.ID))
}

// SetLabels replaces the labels of a checklist item
func (h *ChecklistHandler) SetLabels(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type SetLabelsRequest struct {
		Labels []models.Label `json:"labels"`
	}

	var req SetLabelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.tasks.SetItemLabels(c.Request.Context(), actor, c.Param("id"), c.Param("item_id"), req.Labels)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task, actor.ID))
}

// AddComment appends a comment to a checklist item
func (h *ChecklistHandler) AddComment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type AddCommentRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.tasks.AddItemComment(c.Request.Context(), actor, c.Param("id"), c.Param("item_id"), req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCommentDTO(comment))
}
