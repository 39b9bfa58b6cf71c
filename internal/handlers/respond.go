package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/toondo/internal/errors"
	"github.com/yukikurage/toondo/internal/logger"
	"github.com/yukikurage/toondo/internal/middleware"
	"github.com/yukikurage/toondo/internal/services"
	"github.com/yukikurage/toondo/internal/store"
)

// respondTaskError maps store and service errors to API errors.
func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidationFailed):
		apierrors.ValidationFailed(c, detail(err, store.ErrValidationFailed))
	case errors.Is(err, store.ErrPermissionDenied):
		apierrors.PermissionDenied(c, detail(err, store.ErrPermissionDenied))
	case errors.Is(err, store.ErrNotFound):
		apierrors.NotFound(c, detail(err, store.ErrNotFound))
	case errors.Is(err, store.ErrNoActiveGesture):
		apierrors.InvalidOperation(c, err.Error())
	case errors.Is(err, services.ErrNothingToImport):
		apierrors.ValidationFailed(c, err.Error())
	default:
		logger.L().Error().Err(err).Str("path", c.FullPath()).Msg("task operation failed")
		apierrors.InternalError(c, "")
	}
}

// detail strips the sentinel prefix from a wrapped store error.
func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == sentinel.Error() {
		return ""
	}
	return msg
}

// requireActor fetches the actor set by middleware.LoadActor.
func requireActor(c *gin.Context) (store.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return store.Actor{}, false
	}
	return actor, true
}

// optionalString reads a nullable string field from a raw JSON body. present
// reports whether the key was sent at all; a JSON null yields (nil, true).
func optionalString(raw map[string]any, key string) (value *string, present bool, err error) {
	v, ok := raw[key]
	if !ok {
		return nil, false, nil
	}
	if v == nil {
		return nil, true, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, true, fmt.Errorf("%s must be a string or null", key)
	}
	return &s, true, nil
}
