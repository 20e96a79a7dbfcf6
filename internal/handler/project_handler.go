package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskman/internal/model"
	"taskman/internal/service"
)

type ProjectHandler struct {
	projects *service.ProjectService
	logger   *zap.Logger
}

func NewProjectHandler(projects *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// List returns the projects the caller may see.
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context(), CurrentIdentity(c))
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

type clientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

type createProjectRequest struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	Client      clientRequest `json:"client"`
	StartDate   time.Time     `json:"start_date" binding:"required"`
	EndDate     time.Time     `json:"end_date" binding:"required"`
	Status      string        `json:"status" binding:"omitempty,oneof=planning in-progress review completed on-hold"`
	Budget      float64       `json:"budget"`
	ManagerID   int           `json:"project_manager" binding:"required"`
}

// Create adds a project. Admin-gated at the route.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	project, err := h.projects.Create(c.Request.Context(), service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Client:      model.Client(req.Client),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      req.Status,
		Budget:      req.Budget,
		ManagerID:   req.ManagerID,
	})
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// Get returns one project with team, milestones, and documents.
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.Get(c.Request.Context(), CurrentIdentity(c), id)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

type updateProjectRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Client      *clientRequest `json:"client"`
	StartDate   *time.Time     `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
	Status      *string        `json:"status" binding:"omitempty,oneof=planning in-progress review completed on-hold"`
	Budget      *float64       `json:"budget"`
	ManagerID   *int           `json:"project_manager"`
}

// Update writes project fields. Admin, team member, or manager.
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	in := service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      req.Status,
		Budget:      req.Budget,
		ManagerID:   req.ManagerID,
	}
	if req.Client != nil {
		client := model.Client(*req.Client)
		in.Client = &client
	}

	project, err := h.projects.Update(c.Request.Context(), CurrentIdentity(c), id, in)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// Delete removes a project and its tasks. Admin-gated at the route.
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), id); err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

type addTeamMemberRequest struct {
	UserID int `json:"user_id" binding:"required"`
}

// AddTeamMember puts a user on the roster. Admin-gated at the route.
func (h *ProjectHandler) AddTeamMember(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req addTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	project, err := h.projects.AddTeamMember(c.Request.Context(), id, req.UserID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// RemoveTeamMember drops a user from the roster. Admin-gated at the route.
func (h *ProjectHandler) RemoveTeamMember(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}

	project, err := h.projects.RemoveTeamMember(c.Request.Context(), id, userID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

type addMilestoneRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date" binding:"required"`
}

// AddMilestone appends a milestone. Admin, team member, or manager.
func (h *ProjectHandler) AddMilestone(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req addMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	project, err := h.projects.AddMilestone(c.Request.Context(), CurrentIdentity(c), id, service.AddMilestoneInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": project})
}

type completeMilestoneRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// CompleteMilestone flips a milestone's completed flag. Admin, team member,
// or manager.
func (h *ProjectHandler) CompleteMilestone(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := idParam(c, "milestoneId")
	if !ok {
		return
	}

	var req completeMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	project, err := h.projects.CompleteMilestone(c.Request.Context(), CurrentIdentity(c), id, milestoneID, *req.Completed)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

type addDocumentRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required,url"`
	Type string `json:"type"`
}

// AddDocument records document metadata. Admin, team member, or manager.
func (h *ProjectHandler) AddDocument(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req addDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	project, err := h.projects.AddDocument(c.Request.Context(), CurrentIdentity(c), id, service.AddDocumentInput{
		Name: req.Name,
		URL:  req.URL,
		Type: req.Type,
	})
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": project})
}
