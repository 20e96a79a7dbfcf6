package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskman/internal/model"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

const taskColumns = `
        t.id, t.title, t.description, t.project_id, p.name,
        t.assigned_to, au.name, t.priority, t.status, t.due_date,
        t.created_by, cu.name, t.created_at, t.updated_at
`

const taskJoins = `
        FROM tasks t
        JOIN projects p ON p.id = t.project_id
        LEFT JOIN users au ON au.id = t.assigned_to
        JOIN users cu ON cu.id = t.created_by
`

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	var projectName string
	var assigneeName *string
	var creatorName string
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.ProjectID,
		&projectName,
		&t.AssignedToID,
		&assigneeName,
		&t.Priority,
		&t.Status,
		&t.DueDate,
		&t.CreatedByID,
		&creatorName,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Project = &model.ProjectRef{ID: t.ProjectID, Name: projectName}
	if t.AssignedToID != nil && assigneeName != nil {
		t.AssignedTo = &model.UserRef{ID: *t.AssignedToID, Name: *assigneeName}
	}
	t.CreatedBy = &model.UserRef{ID: t.CreatedByID, Name: creatorName}
	return &t, nil
}

// Insert creates a task and fills in the generated ID.
func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Inserting task",
		zap.String("title", t.Title),
		zap.Int("project_id", t.ProjectID),
		zap.Int("created_by", t.CreatedByID),
	)
	query := `
        INSERT INTO tasks (title, description, project_id, assigned_to, priority, status, due_date, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		t.Title,
		t.Description,
		t.ProjectID,
		t.AssignedToID,
		t.Priority,
		t.Status,
		t.DueDate,
		t.CreatedByID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int("project_id", t.ProjectID),
		)
		return err
	}
	r.logger.Info("Task inserted successfully",
		zap.Int("task_id", t.ID),
		zap.Int("project_id", t.ProjectID),
	)
	return nil
}

// ListAll returns every task with project, assignee, and creator resolved.
func (r *TaskRepository) ListAll(ctx context.Context) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + taskJoins + `ORDER BY t.created_at DESC`
	return r.queryTasks(ctx, query)
}

// ListByAssignee returns tasks assigned to a user, newest first.
func (r *TaskRepository) ListByAssignee(ctx context.Context, userID int) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + taskJoins + `WHERE t.assigned_to = $1 ORDER BY t.created_at DESC`
	return r.queryTasks(ctx, query, userID)
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			r.logger.Error("Failed to scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// FindByID returns the full task aggregate including comments and attachments.
func (r *TaskRepository) FindByID(ctx context.Context, id int) (*model.Task, error) {
	query := `SELECT ` + taskColumns + taskJoins + `WHERE t.id = $1`
	t, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if t.Comments, err = r.loadComments(ctx, id); err != nil {
		return nil, err
	}
	if t.Attachments, err = r.loadAttachments(ctx, id); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) loadComments(ctx context.Context, taskID int) ([]model.Comment, error) {
	query := `
        SELECT c.id, c.task_id, c.text, c.posted_by, u.name, c.created_at
        FROM comments c
        JOIN users u ON u.id = c.posted_by
        WHERE c.task_id = $1
        ORDER BY c.created_at ASC
    `
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		r.logger.Error("Failed to query comments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var posterID int
		var posterName string
		if err := rows.Scan(&c.ID, &c.TaskID, &c.Text, &posterID, &posterName, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.PostedBy = &model.UserRef{ID: posterID, Name: posterName}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *TaskRepository) loadAttachments(ctx context.Context, taskID int) ([]model.Attachment, error) {
	query := `
        SELECT id, task_id, name, url, uploaded_by, uploaded_at
        FROM attachments
        WHERE task_id = $1
        ORDER BY uploaded_at DESC
    `
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		r.logger.Error("Failed to query attachments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	attachments := []model.Attachment{}
	for rows.Next() {
		var a model.Attachment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.Name, &a.URL, &a.UploadedBy, &a.UploadedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// Update writes all mutable task columns.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Updating task", zap.Int("task_id", t.ID))
	query := `
        UPDATE tasks
        SET title = $1, description = $2, project_id = $3, assigned_to = $4,
            priority = $5, status = $6, due_date = $7, updated_at = NOW()
        WHERE id = $8
    `
	_, err := r.db.Exec(ctx, query,
		t.Title,
		t.Description,
		t.ProjectID,
		t.AssignedToID,
		t.Priority,
		t.Status,
		t.DueDate,
		t.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update task",
			zap.Error(err),
			zap.Int("task_id", t.ID),
		)
		return err
	}
	return nil
}

// UpdateStatus writes only the status column.
func (r *TaskRepository) UpdateStatus(ctx context.Context, taskID int, status string) error {
	r.logger.Debug("Updating task status",
		zap.Int("task_id", taskID),
		zap.String("status", status),
	)
	query := `
        UPDATE tasks
        SET status = $1, updated_at = NOW()
        WHERE id = $2
    `
	_, err := r.db.Exec(ctx, query, status, taskID)
	if err != nil {
		r.logger.Error("Failed to update task status",
			zap.Error(err),
			zap.Int("task_id", taskID),
		)
		return err
	}
	r.logger.Info("Task status updated",
		zap.Int("task_id", taskID),
		zap.String("status", status),
	)
	return nil
}

// Delete removes a task. Returns the number of rows deleted.
func (r *TaskRepository) Delete(ctx context.Context, id int) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task",
			zap.Error(err),
			zap.Int("task_id", id),
		)
		return 0, err
	}
	return result.RowsAffected(), nil
}

// DeleteByProject removes every task belonging to a project (cascade on
// project delete). Returns the number of rows deleted.
func (r *TaskRepository) DeleteByProject(ctx context.Context, projectID int) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, projectID)
	if err != nil {
		r.logger.Error("Failed to delete project tasks",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return 0, err
	}
	r.logger.Info("Project tasks deleted",
		zap.Int("project_id", projectID),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return result.RowsAffected(), nil
}

// AddComment appends a comment to a task.
func (r *TaskRepository) AddComment(ctx context.Context, c *model.Comment) error {
	query := `
        INSERT INTO comments (task_id, text, posted_by)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, c.TaskID, c.Text, c.PostedBy.ID).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert comment",
			zap.Error(err),
			zap.Int("task_id", c.TaskID),
		)
		return err
	}
	r.logger.Info("Comment inserted successfully",
		zap.Int("comment_id", c.ID),
		zap.Int("task_id", c.TaskID),
	)
	return nil
}

// AddAttachment records attachment metadata against a task.
func (r *TaskRepository) AddAttachment(ctx context.Context, a *model.Attachment) error {
	query := `
        INSERT INTO attachments (task_id, name, url, uploaded_by)
        VALUES ($1, $2, $3, $4)
        RETURNING id, uploaded_at
    `
	err := r.db.QueryRow(ctx, query, a.TaskID, a.Name, a.URL, a.UploadedBy).Scan(&a.ID, &a.UploadedAt)
	if err != nil {
		r.logger.Error("Failed to insert attachment",
			zap.Error(err),
			zap.Int("task_id", a.TaskID),
		)
		return err
	}
	return nil
}
