package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/toondo/internal/errors"
	"github.com/yukikurage/toondo/internal/logger"
	"github.com/yukikurage/toondo/internal/services"
)

// AIHandler serves AI suggestions. Nothing here writes to the task store.
type AIHandler struct {
	ai       *services.AIService
	importer *services.MarkdownImporter
}

func NewAIHandler(ai *services.AIService, importer *services.MarkdownImporter) *AIHandler {
	return &AIHandler{
		ai:       ai,
		importer: importer,
	}
}

type taskPromptRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// SuggestDueDate proposes a due date for a task
func (h *AIHandler) SuggestDueDate(c *gin.Context) {
	var req taskPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if !h.ai.Configured() {
		respondAIError(c, services.ErrAIServiceNotConfigured)
		return
	}

	suggestion, err := h.ai.SuggestDueDate(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		respondAIError(c, err)
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

// BreakdownTask proposes checklist steps for a task
func (h *AIHandler) BreakdownTask(c *gin.Context) {
	var req taskPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if !h.ai.Configured() {
		respondAIError(c, services.ErrAIServiceNotConfigured)
		return
	}

	breakdown, err := h.ai.BreakdownTask(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		respondAIError(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// ParseTasks extracts task suggestions from free text. Without an AI backend
// the text is read as a markdown outline.
func (h *AIHandler) ParseTasks(c *gin.Context) {
	type ParseTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req ParseTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if !h.ai.Configured() {
		c.JSON(http.StatusOK, gin.H{
			"source": "markdown",
			"tasks":  h.importer.Parse(req.Text),
		})
		return
	}

	tasks, err := h.ai.ParseTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondAIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"source": "ai",
		"tasks":  tasks,
	})
}

func respondAIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAIInvalidResponse):
		logger.L().Warn().Err(err).Msg("unusable AI response")
		apierrors.UpstreamFailed(c, "AI returned an unusable suggestion")
	default:
		logger.L().Error().Err(err).Msg("AI request failed")
		apierrors.InternalError(c, "Failed to get AI suggestion")
	}
}
