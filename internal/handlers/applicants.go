package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/toondo/internal/dto"
	apierrors "github.com/yukikurage/toondo/internal/errors"
	"github.com/yukikurage/toondo/internal/models"
	"github.com/yukikurage/toondo/internal/services"
	"github.com/yukikurage/toondo/internal/store"
)

// ApplicantHandler serves role applications on a task.
type ApplicantHandler struct {
	tasks *services.TaskService
}

func NewApplicantHandler(tasks *services.TaskService) *ApplicantHandler {
	return &ApplicantHandler{tasks: tasks}
}

// AddApplicant proposes a candidate for a role
func (h *ApplicantHandler) AddApplicant(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type AddApplicantRequest struct {
		Name string `json:"name" binding:"required"`
		Role string `json:"role" binding:"required"`
	}

	var req AddApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	applicant, err := h.tasks.AddApplicant(c.Request.Context(), actor, c.Param("id"), req.Name, req.Role)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToApplicantDTO(applicant))
}

// AcceptApplicant accepts an applicant for their role
func (h *ApplicantHandler) AcceptApplicant(c *gin.Context) {
	h.review(c, h.tasks.AcceptApplicant)
}

// RejectApplicant rejects an applicant
func (h *ApplicantHandler) RejectApplicant(c *gin.Context) {
	h.review(c, h.tasks.RejectApplicant)
}

// RemoveApplicant drops an applicant
func (h *ApplicantHandler) RemoveApplicant(c *gin.Context) {
	h.review(c, h.tasks.RemoveApplicant)
}

type applicantOp func(ctx context.Context, actor store.Actor, taskID, applicantID string) (models.Task, error)

func (h *ApplicantHandler) review(c *gin.Context, op applicantOp) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	task, err := op(c.Request.Context(), actor, c.Param("id"), c.Param("applicant_id"))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task, actor.ID))
}
