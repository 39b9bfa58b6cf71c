package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/toondo/internal/errors"
	"github.com/yukikurage/toondo/internal/services"
	"github.com/yukikurage/toondo/internal/store"
)

// DragHandler drives the per-user drag and drop gesture.
type DragHandler struct {
	tasks *services.TaskService
}

func NewDragHandler(tasks *services.TaskService) *DragHandler {
	return &DragHandler{tasks: tasks}
}

type dragRequest struct {
	TaskID string `json:"task_id" binding:"required"`
}

// PickUp starts dragging one of the user's tasks
func (h *DragHandler) PickUp(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.tasks.PickUp(actor, req.TaskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": store.GesturePicked, "dragged_id": req.TaskID})
}

// Hover moves the dragged task over another task
func (h *DragHandler) Hover(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	state, err := h.tasks.Hover(actor, req.TaskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": state})
}

// Drop releases the dragged task on a target and returns the new order
func (h *DragHandler) Drop(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.tasks.Drop(c.Request.Context(), actor, req.TaskID); err != nil {
		respondTaskError(c, err)
		return
	}

	writeTaskList(c, h.tasks, actor)
}

// Cancel abandons the gesture
func (h *DragHandler) Cancel(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	h.tasks.CancelDrag(actor)
	c.JSON(http.StatusOK, gin.H{"state": store.GestureIdle})
}
