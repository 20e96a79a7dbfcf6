package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskman/internal/service"
)

type UserHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

func NewUserHandler(users *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// List returns every user. Admin-gated at the route.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Create adds a user. Admin-gated at the route.
func (h *UserHandler) Create(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Get returns one user. Self-or-admin.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), CurrentIdentity(c), id)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type updateUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Department *string `json:"department" binding:"omitempty,oneof=Design 'Project Management' Sales Administration Other"`
	Password   *string `json:"password" binding:"omitempty,min=6"`
}

// Update writes profile fields. Self-or-admin; role changes go through
// UpdateRole instead.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), CurrentIdentity(c), id, service.UpdateUserInput{
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		Password:   req.Password,
	})
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin designer project_manager sales_representative employee"`
}

// UpdateRole sets a new role and rederives permissions. Admin-gated at the route.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	user, err := h.users.UpdateRole(c.Request.Context(), id, req.Role)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Delete removes a user. Admin-gated at the route.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// Tasks returns tasks assigned to a user. Self-or-admin.
func (h *UserHandler) Tasks(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.users.TasksFor(c.Request.Context(), CurrentIdentity(c), id)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// Projects returns projects a user belongs to or manages. Self-or-admin.
func (h *UserHandler) Projects(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	projects, err := h.users.ProjectsFor(c.Request.Context(), CurrentIdentity(c), id)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}
