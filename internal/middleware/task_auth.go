package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/toondo/internal/constants"
	apierrors "github.com/yukikurage/toondo/internal/errors"
	"github.com/yukikurage/toondo/internal/models"
	"github.com/yukikurage/toondo/internal/store"
)

// TaskFinder looks up a task by ID.
type TaskFinder interface {
	GetTask(taskID string) (models.Task, error)
}

// RequireTaskAccess loads the task named by the :id parameter. Every
// authenticated user may read any task; ownership is enforced on writes.
func RequireTaskAccess(tasks TaskFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := GetUserID(c); !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := tasks.GetTask(c.Param("id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				apierrors.NotFound(c, "Task not found")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskAccess
func GetTask(c *gin.Context) (models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := v.(models.Task)
	return task, ok
}
