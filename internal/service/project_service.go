package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskman/internal/model"
	"taskman/pkg/rbac"
)

// ProjectStore is the project persistence surface.
type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) error
	ListAll(ctx context.Context) ([]model.Project, error)
	ListVisibleTo(ctx context.Context, userID int) ([]model.Project, error)
	FindByID(ctx context.Context, id int) (*model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id int) (int64, error)
	AddTeamMember(ctx context.Context, projectID, userID int) error
	RemoveTeamMember(ctx context.Context, projectID, userID int) error
	AddMilestone(ctx context.Context, m *model.Milestone) error
	SetMilestoneCompleted(ctx context.Context, projectID, milestoneID int, completed bool) (int64, error)
	AddDocument(ctx context.Context, d *model.Document) error
}

// ProjectTaskStore is the slice of task persistence the cascade delete needs.
type ProjectTaskStore interface {
	DeleteByProject(ctx context.Context, projectID int) (int64, error)
}

// UserFinder resolves user references.
type UserFinder interface {
	FindByID(ctx context.Context, id int) (*model.User, error)
}

type ProjectService struct {
	projects ProjectStore
	tasks    ProjectTaskStore
	users    UserFinder
	logger   *zap.Logger
}

func NewProjectService(projects ProjectStore, tasks ProjectTaskStore, users UserFinder, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		tasks:    tasks,
		users:    users,
		logger:   logger,
	}
}

// canMutate implements the shared visibility/mutation rule: admin, any team
// member, or the project manager.
func canMutate(actor model.Identity, p *model.Project) bool {
	if actor.Role == rbac.RoleAdmin {
		return true
	}
	return p.HasMember(actor.UserID) || p.ManagerID == actor.UserID
}

// List returns the projects visible to the actor: everything for admins,
// team-or-manager projects for everyone else.
func (s *ProjectService) List(ctx context.Context, actor model.Identity) ([]model.Project, error) {
	if actor.Role == rbac.RoleAdmin {
		return s.projects.ListAll(ctx)
	}
	return s.projects.ListVisibleTo(ctx, actor.UserID)
}

type CreateProjectInput struct {
	Name        string
	Description string
	Client      model.Client
	StartDate   time.Time
	EndDate     time.Time
	Status      string
	Budget      float64
	ManagerID   int
}

// Create adds a project. Admin-gated at the route.
func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	if _, err := s.users.FindByID(ctx, in.ManagerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = model.ProjectStatusPlanning
	}
	if !model.IsValidProjectStatus(status) {
		return nil, ErrInvalidStatus
	}

	p := &model.Project{
		Name:        in.Name,
		Description: in.Description,
		Client:      in.Client,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      status,
		Budget:      in.Budget,
		ManagerID:   in.ManagerID,
	}

	if err := s.projects.Insert(ctx, p); err != nil {
		return nil, err
	}
	return s.projects.FindByID(ctx, p.ID)
}

// Get returns a project if the actor may see it.
func (s *ProjectService) Get(ctx context.Context, actor model.Identity, id int) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if !canMutate(actor, p) {
		return nil, ErrForbidden
	}
	return p, nil
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	Client      *model.Client
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *string
	Budget      *float64
	ManagerID   *int
}

// Update writes project fields for admins, team members, or the manager.
func (s *ProjectService) Update(ctx context.Context, actor model.Identity, id int, in UpdateProjectInput) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if !canMutate(actor, p) {
		return nil, ErrForbidden
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Client != nil {
		p.Client = *in.Client
	}
	if in.StartDate != nil {
		p.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		p.EndDate = *in.EndDate
	}
	if in.Status != nil {
		if !model.IsValidProjectStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		p.Status = *in.Status
	}
	if in.Budget != nil {
		p.Budget = *in.Budget
	}
	if in.ManagerID != nil {
		if _, err := s.users.FindByID(ctx, *in.ManagerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		p.ManagerID = *in.ManagerID
	}

	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.projects.FindByID(ctx, id)
}

// Delete removes a project and every task under it. Admin-gated at the
// route. The two deletes are not transactional; a crash in between leaves
// the project without tasks, which is the safe order.
func (s *ProjectService) Delete(ctx context.Context, id int) error {
	if _, err := s.projects.FindByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProjectNotFound
		}
		return err
	}

	deleted, err := s.tasks.DeleteByProject(ctx, id)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("Cascaded project delete to tasks",
			zap.Int("project_id", id),
			zap.Int64("tasks_deleted", deleted),
		)
	}

	rows, err := s.projects.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// AddTeamMember adds a user to the roster. Admin-gated at the route.
func (s *ProjectService) AddTeamMember(ctx context.Context, projectID, userID int) (*model.Project, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.projects.AddTeamMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.projects.FindByID(ctx, projectID)
}

// RemoveTeamMember drops a user from the roster. Admin-gated at the route.
func (s *ProjectService) RemoveTeamMember(ctx context.Context, projectID, userID int) (*model.Project, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if err := s.projects.RemoveTeamMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.projects.FindByID(ctx, projectID)
}

type AddMilestoneInput struct {
	Title       string
	Description string
	DueDate     time.Time
}

// AddMilestone appends a milestone; same mutation rule as project updates.
func (s *ProjectService) AddMilestone(ctx context.Context, actor model.Identity, projectID int, in AddMilestoneInput) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if !canMutate(actor, p) {
		return nil, ErrForbidden
	}

	m := &model.Milestone{
		ProjectID:   projectID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
	}
	if err := s.projects.AddMilestone(ctx, m); err != nil {
		return nil, err
	}
	return s.projects.FindByID(ctx, projectID)
}

// CompleteMilestone flips a milestone's completed flag; same mutation rule
// as project updates.
func (s *ProjectService) CompleteMilestone(ctx context.Context, actor model.Identity, projectID, milestoneID int, completed bool) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if !canMutate(actor, p) {
		return nil, ErrForbidden
	}

	rows, err := s.projects.SetMilestoneCompleted(ctx, projectID, milestoneID, completed)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrMilestoneNotFound
	}
	return s.projects.FindByID(ctx, projectID)
}

type AddDocumentInput struct {
	Name string
	URL  string
	Type string
}

// AddDocument records document metadata; same mutation rule as project updates.
func (s *ProjectService) AddDocument(ctx context.Context, actor model.Identity, projectID int, in AddDocumentInput) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if !canMutate(actor, p) {
		return nil, ErrForbidden
	}

	d := &model.Document{
		ProjectID:  projectID,
		Name:       in.Name,
		URL:        in.URL,
		Type:       in.Type,
		UploadedBy: actor.UserID,
	}
	if err := s.projects.AddDocument(ctx, d); err != nil {
		return nil, err
	}
	return s.projects.FindByID(ctx, projectID)
}
