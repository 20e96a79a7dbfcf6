package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskman/internal/service"
)

type TaskHandler struct {
	tasks  *service.TaskService
	logger *zap.Logger
}

func NewTaskHandler(tasks *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// List returns tasks the caller may see: everything with view_all_tasks,
// otherwise only the caller's assignments.
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context(), CurrentIdentity(c))
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// AssignedToMe returns the caller's assigned tasks.
func (h *TaskHandler) AssignedToMe(c *gin.Context) {
	tasks, err := h.tasks.AssignedTo(c.Request.Context(), CurrentIdentity(c).UserID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type createTaskRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	ProjectID   int       `json:"project" binding:"required"`
	AssignedTo  *int      `json:"assigned_to"`
	Priority    string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Status      string    `json:"status" binding:"omitempty,oneof=pending in-progress completed on-hold"`
	DueDate     time.Time `json:"due_date" binding:"required"`
}

// Create adds a task. Admin-gated at the route.
func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), CurrentIdentity(c), service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// Get returns one task with comments and attachments.
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	AssignedTo  *int       `json:"assigned_to"`
	Unassign    bool       `json:"unassign"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending in-progress completed on-hold"`
	DueDate     *time.Time `json:"due_date"`
}

// Update writes task fields. Admin-gated at the route.
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), id, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Unassign:    req.Unassign,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// Delete removes a task. Admin-gated at the route.
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus moves a task to a new status. Assignee or admin.
func (h *TaskHandler) SetStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	task, err := h.tasks.SetStatus(c.Request.Context(), CurrentIdentity(c), id, req.Status)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

type addCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddComment appends a comment to a task.
func (h *TaskHandler) AddComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	task, err := h.tasks.AddComment(c.Request.Context(), CurrentIdentity(c), id, req.Text)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

type addAttachmentRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required,url"`
}

// AddAttachment records attachment metadata on a task.
func (h *TaskHandler) AddAttachment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req addAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	task, err := h.tasks.AddAttachment(c.Request.Context(), CurrentIdentity(c), id, service.AddAttachmentInput{
		Name: req.Name,
		URL:  req.URL,
	})
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}
