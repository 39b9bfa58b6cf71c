package middleware

import (
	"context"
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/toondo/internal/constants"
	apierrors "github.com/yukikurage/toondo/internal/errors"
	"github.com/yukikurage/toondo/internal/logger"
	"github.com/yukikurage/toondo/internal/services"
	"github.com/yukikurage/toondo/internal/store"
)

// ActorResolver looks up the user behind a session.
type ActorResolver interface {
	ActorFor(ctx context.Context, userID string) (store.Actor, error)
}

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(constants.ContextKeyUserID).(string)

		if !ok || userID == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// LoadActor resolves the authenticated user into the actor used for task
// mutations. A session pointing at an unknown user is treated as logged out.
func LoadActor(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		actor, err := resolver.ActorFor(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				apierrors.Unauthorized(c, "")
			} else {
				logger.L().Error().Err(err).Str("user_id", userID).Msg("failed to resolve user")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, actor)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// GetActor retrieves the resolved actor from context
func GetActor(c *gin.Context) (store.Actor, bool) {
	v, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return store.Actor{}, false
	}
	actor, ok := v.(store.Actor)
	return actor, ok
}
