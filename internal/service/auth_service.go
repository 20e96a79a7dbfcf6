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
	"taskman/pkg/metrics"
	"taskman/pkg/rbac"
)

// UserStore is the user persistence surface the auth service needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	UpdatePermissions(ctx context.Context, id int, permissions []string) error
}

type AuthService struct {
	users     UserStore
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(users UserStore, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
}

// Register creates a user with the given role and the permission set the
// role implies, and issues a token for the new account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	u, err := s.createUser(ctx, in)
	if err != nil {
		return nil, "", err
	}

	token, err := util.GenerateJWT(u.ID, u.Role, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// RegisterPublic is self-service signup: the role is always employee.
func (s *AuthService) RegisterPublic(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Role = rbac.RoleEmployee
	return s.createUser(ctx, in)
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput) (*model.User, error) {
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
		// The unique index is the authority on duplicates; the read above
		// only narrows the window.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("User registered",
		zap.Int("user_id", u.ID),
		zap.String("role", u.Role),
	)
	return u, nil
}

// Login checks credentials and returns the user, a signed token, and the
// dashboard route for the user's role. A user carrying an empty permission
// set gets it backfilled from the role and persisted.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, string, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.IncrementLoginAttempt("invalid_credentials")
			return nil, "", "", ErrInvalidCredentials
		}
		metrics.IncrementLoginAttempt("error")
		return nil, "", "", err
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		metrics.IncrementLoginAttempt("invalid_credentials")
		return nil, "", "", ErrInvalidCredentials
	}

	if len(u.Permissions) == 0 {
		u.Permissions = rbac.DefaultPermissions(u.Role)
		if err := s.users.UpdatePermissions(ctx, u.ID, u.Permissions); err != nil {
			s.logger.Error("Failed to backfill permissions",
				zap.Int("user_id", u.ID),
				zap.Error(err),
			)
			return nil, "", "", err
		}
		s.logger.Info("Backfilled permissions from role",
			zap.Int("user_id", u.ID),
			zap.String("role", u.Role),
		)
	}

	token, err := util.GenerateJWT(u.ID, u.Role, s.jwtSecret)
	if err != nil {
		metrics.IncrementLoginAttempt("error")
		return nil, "", "", err
	}

	metrics.IncrementLoginAttempt("success")
	s.logger.Info("Login successful",
		zap.Int("user_id", u.ID),
		zap.String("role", u.Role),
	)
	return u, token, DashboardRoute(u.Role), nil
}

// Me returns the profile for an authenticated user ID.
func (s *AuthService) Me(ctx context.Context, userID int) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// DashboardRoute is where the client lands after login.
func DashboardRoute(role string) string {
	if role == rbac.RoleAdmin {
		return "/admin-dashboard"
	}
	return "/tasks"
}
