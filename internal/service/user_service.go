package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"taskman/internal/model"
	"taskman/internal/util"
	"taskman/pkg/rbac"
)

// UserDirectory is the full user persistence surface for admin management.
type UserDirectory interface {
	UserStore
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	UpdateRole(ctx context.Context, id int, role string, permissions []string) error
	Delete(ctx context.Context, id int) (int64, error)
}

// AssignedTaskLister lists tasks by assignee, for the per-user task view.
type AssignedTaskLister interface {
	ListByAssignee(ctx context.Context, userID int) ([]model.Task, error)
}

// MemberProjectLister lists projects a user belongs to or manages.
type MemberProjectLister interface {
	ListVisibleTo(ctx context.Context, userID int) ([]model.Project, error)
}

type UserService struct {
	users    UserDirectory
	tasks    AssignedTaskLister
	projects MemberProjectLister
	logger   *zap.Logger
}

func NewUserService(users UserDirectory, tasks AssignedTaskLister, projects MemberProjectLister, logger *zap.Logger) *UserService {
	return &UserService{
		users:    users,
		tasks:    tasks,
		projects: projects,
		logger:   logger,
	}
}

// List returns all users. Admin-gated at the route.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// Create adds a user with role-derived permissions. Admin-gated at the route.
func (s *UserService) Create(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		Department:   in.Department,
		Permissions:  rbac.DefaultPermissions(in.Role),
	}

	if err := s.users.Create(ctx, u); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("User created",
		zap.Int("user_id", u.ID),
		zap.String("role", u.Role),
	)
	return u, nil
}

// Get returns a user. Non-admins may only read themselves.
func (s *UserService) Get(ctx context.Context, actor model.Identity, id int) (*model.User, error) {
	if actor.Role != rbac.RoleAdmin && actor.UserID != id {
		return nil, ErrForbidden
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

type UpdateUserInput struct {
	Name       *string
	Email      *string
	Department *string
	Password   *string
}

// Update writes profile fields. Non-admins may only update themselves, and
// role is never touched through this path.
func (s *UserService) Update(ctx context.Context, actor model.Identity, id int, in UpdateUserInput) (*model.User, error) {
	if actor.Role != rbac.RoleAdmin && actor.UserID != id {
		return nil, ErrForbidden
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Department != nil {
		u.Department = *in.Department
	}
	if in.Password != nil {
		hash, err := util.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	if err := s.users.Update(ctx, u); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// UpdateRole sets a new role and rederives the permission set from it.
func (s *UserService) UpdateRole(ctx context.Context, id int, role string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	permissions := rbac.DefaultPermissions(role)
	if err := s.users.UpdateRole(ctx, id, role, permissions); err != nil {
		return nil, err
	}

	u.Role = role
	u.Permissions = permissions
	return u, nil
}

// Delete removes a user. Assigned tasks are released by the schema
// (assigned_to is set null); a user still holding created tasks, comments,
// or managed projects cannot be removed.
func (s *UserService) Delete(ctx context.Context, id int) error {
	rows, err := s.users.Delete(ctx, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrUserReferenced
		}
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// TasksFor returns tasks assigned to a user. Non-admins may only view their own.
func (s *UserService) TasksFor(ctx context.Context, actor model.Identity, id int) ([]model.Task, error) {
	if actor.Role != rbac.RoleAdmin && actor.UserID != id {
		return nil, ErrForbidden
	}
	return s.tasks.ListByAssignee(ctx, id)
}

// ProjectsFor returns projects a user belongs to or manages. Non-admins may
// only view their own.
func (s *UserService) ProjectsFor(ctx context.Context, actor model.Identity, id int) ([]model.Project, error) {
	if actor.Role != rbac.RoleAdmin && actor.UserID != id {
		return nil, ErrForbidden
	}
	return s.projects.ListVisibleTo(ctx, id)
}
