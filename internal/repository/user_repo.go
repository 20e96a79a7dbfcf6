package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskman/internal/model"
)

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// Create inserts a new user and fills in the generated ID.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	r.logger.Debug("Inserting user",
		zap.String("email", u.Email),
		zap.String("role", u.Role),
	)
	query := `
        INSERT INTO users (name, email, password_hash, role, department, permissions)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.Department,
		u.Permissions,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert user",
			zap.Error(err),
			zap.String("email", u.Email),
		)
		return err
	}
	r.logger.Info("User inserted successfully",
		zap.Int("user_id", u.ID),
		zap.String("role", u.Role),
	)
	return nil
}

// FindByEmail returns a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, department, permissions, created_at
        FROM users
        WHERE email = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Department, &u.Permissions, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID returns a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, department, permissions, created_at
        FROM users
        WHERE id = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Department, &u.Permissions, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all users, newest first.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, department, permissions, created_at
        FROM users
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Department, &u.Permissions, &u.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan user row", zap.Error(err))
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update writes profile fields. Role changes go through UpdateRole only.
func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	r.logger.Debug("Updating user", zap.Int("user_id", u.ID))
	query := `
        UPDATE users
        SET name = $1, email = $2, password_hash = $3, department = $4
        WHERE id = $5
    `
	_, err := r.db.Exec(ctx, query, u.Name, u.Email, u.PasswordHash, u.Department, u.ID)
	if err != nil {
		r.logger.Error("Failed to update user",
			zap.Error(err),
			zap.Int("user_id", u.ID),
		)
		return err
	}
	return nil
}

// UpdateRole sets a new role and the permission set it implies.
func (r *UserRepository) UpdateRole(ctx context.Context, id int, role string, permissions []string) error {
	r.logger.Debug("Updating user role",
		zap.Int("user_id", id),
		zap.String("role", role),
	)
	query := `
        UPDATE users
        SET role = $1, permissions = $2
        WHERE id = $3
    `
	_, err := r.db.Exec(ctx, query, role, permissions, id)
	if err != nil {
		r.logger.Error("Failed to update user role",
			zap.Error(err),
			zap.Int("user_id", id),
		)
		return err
	}
	r.logger.Info("User role updated",
		zap.Int("user_id", id),
		zap.String("role", role),
	)
	return nil
}

// UpdatePermissions persists a corrected permission set (login backfill).
func (r *UserRepository) UpdatePermissions(ctx context.Context, id int, permissions []string) error {
	query := `
        UPDATE users
        SET permissions = $1
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, permissions, id)
	if err != nil {
		r.logger.Error("Failed to update user permissions",
			zap.Error(err),
			zap.Int("user_id", id),
		)
		return err
	}
	return nil
}

// Delete removes a user. Returns the number of rows deleted.
func (r *UserRepository) Delete(ctx context.Context, id int) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete user",
			zap.Error(err),
			zap.Int("user_id", id),
		)
		return 0, err
	}
	r.logger.Info("User deleted",
		zap.Int("user_id", id),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return result.RowsAffected(), nil
}
