package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"taskman/internal/service"
)

func TestServiceErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err     error
		status  int
		message string
	}{
		{service.ErrInvalidCredentials, http.StatusBadRequest, "Invalid email or password"},
		{service.ErrEmailTaken, http.StatusBadRequest, "User already exists"},
		{service.ErrInvalidStatus, http.StatusBadRequest, "Invalid status value"},
		{service.ErrUserReferenced, http.StatusBadRequest, "User is referenced by existing projects or tasks"},
		{service.ErrForbidden, http.StatusForbidden, "Access denied"},
		{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{service.ErrProjectNotFound, http.StatusNotFound, "Project not found"},
		{service.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
		{service.ErrMilestoneNotFound, http.StatusNotFound, "Milestone not found"},
		{service.ErrNotificationNotFound, http.StatusNotFound, "Notification not found"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			serviceError(c, zap.NewNop(), tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, `{"message": "`+tt.message+`"}`, w.Body.String())
		})
	}
}
