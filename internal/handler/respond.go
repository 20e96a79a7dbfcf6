package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskman/internal/model"
	"taskman/internal/service"
	"taskman/internal/util"
)

// identityContextKey is where the auth middleware stashes the caller.
const identityContextKey = "identity"

// SetIdentity attaches the authenticated caller to the request context.
func SetIdentity(c *gin.Context, id model.Identity) {
	c.Set(identityContextKey, id)
}

// CurrentIdentity returns the caller set by the auth middleware. Routes
// behind the middleware always have one.
func CurrentIdentity(c *gin.Context) model.Identity {
	v, ok := c.Get(identityContextKey)
	if !ok {
		return model.Identity{}
	}
	id, _ := v.(model.Identity)
	return id
}

// idParam parses a numeric path parameter. On failure it writes the 400 and
// returns false.
func idParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// bindingError writes the 400 for a failed request binding.
func bindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "Validation error",
		"errors":  util.ValidationErrors(err),
	})
}

// serviceError maps domain errors onto HTTP responses. Anything unrecognized
// is logged and reported as a generic 500.
func serviceError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid email or password"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
	case errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status value"})
	case errors.Is(err, service.ErrUserReferenced):
		c.JSON(http.StatusBadRequest, gin.H{"message": "User is referenced by existing projects or tasks"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
	case errors.Is(err, service.ErrMilestoneNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Milestone not found"})
	case errors.Is(err, service.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Notification not found"})
	default:
		logger.Error("Unhandled service error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}
