package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/toondo/internal/dto"
	apierrors "github.com/yukikurage/toondo/internal/errors"
	"github.com/yukikurage/toondo/internal/services"
)

type ImportHandler struct {
	tasks    *services.TaskService
	importer *services.MarkdownImporter
}

func NewImportHandler(tasks *services.TaskService, importer *services.MarkdownImporter) *ImportHandler {
	return &ImportHandler{
		tasks:    tasks,
		importer: importer,
	}
}

// ImportMarkdown creates tasks from a markdown outline
func (h *ImportHandler) ImportMarkdown(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type ImportRequest struct {
		Markdown string `json:"markdown" binding:"required"`
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tasks, err := h.tasks.ImportTasks(c.Request.Context(), actor, h.importer.Parse(req.Markdown))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"tasks": dto.ToTaskDTOs(tasks, actor.ID),
	})
}
