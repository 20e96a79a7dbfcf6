package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskman/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

const projectColumns = `
        p.id, p.name, p.description, p.client_name, p.client_email, p.client_phone,
        p.start_date, p.end_date, p.status, p.budget, p.project_manager,
        m.name, m.email, p.created_at, p.updated_at
`

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	var managerName, managerEmail string
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Client.Name,
		&p.Client.Email,
		&p.Client.Phone,
		&p.StartDate,
		&p.EndDate,
		&p.Status,
		&p.Budget,
		&p.ManagerID,
		&managerName,
		&managerEmail,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ProjectManager = &model.UserRef{ID: p.ManagerID, Name: managerName, Email: managerEmail}
	return &p, nil
}

// Insert creates a project and fills in the generated ID.
func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	r.logger.Debug("Inserting project",
		zap.String("name", p.Name),
		zap.Int("project_manager", p.ManagerID),
	)
	query := `
        INSERT INTO projects (name, description, client_name, client_email, client_phone,
                              start_date, end_date, status, budget, project_manager)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		p.Name,
		p.Description,
		p.Client.Name,
		p.Client.Email,
		p.Client.Phone,
		p.StartDate,
		p.EndDate,
		p.Status,
		p.Budget,
		p.ManagerID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return err
	}
	r.logger.Info("Project inserted successfully",
		zap.Int("project_id", p.ID),
		zap.Int("project_manager", p.ManagerID),
	)
	return nil
}

// ListAll returns every project with manager and team populated, newest first.
func (r *ProjectRepository) ListAll(ctx context.Context) ([]model.Project, error) {
	query := `
        SELECT ` + projectColumns + `
        FROM projects p
        JOIN users m ON m.id = p.project_manager
        ORDER BY p.created_at DESC
    `
	return r.queryProjects(ctx, query)
}

// ListVisibleTo returns projects where userID is on the team or is the manager.
func (r *ProjectRepository) ListVisibleTo(ctx context.Context, userID int) ([]model.Project, error) {
	query := `
        SELECT ` + projectColumns + `
        FROM projects p
        JOIN users m ON m.id = p.project_manager
        WHERE p.project_manager = $1
           OR EXISTS (
                SELECT 1 FROM project_members pm
                WHERE pm.project_id = p.id AND pm.user_id = $1
           )
        ORDER BY p.created_at DESC
    `
	return r.queryProjects(ctx, query, userID)
}

func (r *ProjectRepository) queryProjects(ctx context.Context, query string, args ...any) ([]model.Project, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			r.logger.Error("Failed to scan project row", zap.Error(err))
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range projects {
		team, err := r.loadTeam(ctx, projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].Team = team
		projects[i].Milestones = []model.Milestone{}
		projects[i].Documents = []model.Document{}
	}
	return projects, nil
}

// FindByID returns the full project aggregate: manager, team, milestones, documents.
func (r *ProjectRepository) FindByID(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT ` + projectColumns + `
        FROM projects p
        JOIN users m ON m.id = p.project_manager
        WHERE p.id = $1
    `
	p, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if p.Team, err = r.loadTeam(ctx, id); err != nil {
		return nil, err
	}
	if p.Milestones, err = r.loadMilestones(ctx, id); err != nil {
		return nil, err
	}
	if p.Documents, err = r.loadDocuments(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) loadTeam(ctx context.Context, projectID int) ([]model.UserRef, error) {
	query := `
        SELECT u.id, u.name, u.email
        FROM project_members pm
        JOIN users u ON u.id = pm.user_id
        WHERE pm.project_id = $1
        ORDER BY u.name ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query project team", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	team := []model.UserRef{}
	for rows.Next() {
		var u model.UserRef
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		team = append(team, u)
	}
	return team, rows.Err()
}

func (r *ProjectRepository) loadMilestones(ctx context.Context, projectID int) ([]model.Milestone, error) {
	query := `
        SELECT id, project_id, title, description, due_date, completed, completed_at
        FROM milestones
        WHERE project_id = $1
        ORDER BY due_date ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query milestones", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	milestones := []model.Milestone{}
	for rows.Next() {
		var m model.Milestone
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Title, &m.Description, &m.DueDate, &m.Completed, &m.CompletedAt); err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func (r *ProjectRepository) loadDocuments(ctx context.Context, projectID int) ([]model.Document, error) {
	query := `
        SELECT id, project_id, name, url, type, uploaded_by, uploaded_at
        FROM documents
        WHERE project_id = $1
        ORDER BY uploaded_at DESC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query documents", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	documents := []model.Document{}
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Name, &d.URL, &d.Type, &d.UploadedBy, &d.UploadedAt); err != nil {
			return nil, err
		}
		documents = append(documents, d)
	}
	return documents, rows.Err()
}

// Update writes all mutable project columns.
func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	r.logger.Debug("Updating project", zap.Int("project_id", p.ID))
	query := `
        UPDATE projects
        SET name = $1, description = $2, client_name = $3, client_email = $4, client_phone = $5,
            start_date = $6, end_date = $7, status = $8, budget = $9, project_manager = $10,
            updated_at = NOW()
        WHERE id = $11
    `
	_, err := r.db.Exec(ctx, query,
		p.Name,
		p.Description,
		p.Client.Name,
		p.Client.Email,
		p.Client.Phone,
		p.StartDate,
		p.EndDate,
		p.Status,
		p.Budget,
		p.ManagerID,
		p.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update project",
			zap.Error(err),
			zap.Int("project_id", p.ID),
		)
		return err
	}
	return nil
}

// Delete removes a project. Returns the number of rows deleted.
func (r *ProjectRepository) Delete(ctx context.Context, id int) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete project",
			zap.Error(err),
			zap.Int("project_id", id),
		)
		return 0, err
	}
	r.logger.Info("Project deleted",
		zap.Int("project_id", id),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return result.RowsAffected(), nil
}

// AddTeamMember puts a user on the project team. Adding twice is a no-op.
func (r *ProjectRepository) AddTeamMember(ctx context.Context, projectID, userID int) error {
	query := `
        INSERT INTO project_members (project_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, projectID, userID)
	if err != nil {
		r.logger.Error("Failed to add team member",
			zap.Error(err),
			zap.Int("project_id", projectID),
			zap.Int("user_id", userID),
		)
		return err
	}
	r.logger.Info("Team member added",
		zap.Int("project_id", projectID),
		zap.Int("user_id", userID),
	)
	return nil
}

// RemoveTeamMember takes a user off the project team.
func (r *ProjectRepository) RemoveTeamMember(ctx context.Context, projectID, userID int) error {
	query := `
        DELETE FROM project_members
        WHERE project_id = $1 AND user_id = $2
    `
	_, err := r.db.Exec(ctx, query, projectID, userID)
	if err != nil {
		r.logger.Error("Failed to remove team member",
			zap.Error(err),
			zap.Int("project_id", projectID),
			zap.Int("user_id", userID),
		)
		return err
	}
	r.logger.Info("Team member removed",
		zap.Int("project_id", projectID),
		zap.Int("user_id", userID),
	)
	return nil
}

// AddMilestone appends a milestone to a project.
func (r *ProjectRepository) AddMilestone(ctx context.Context, m *model.Milestone) error {
	r.logger.Debug("Inserting milestone",
		zap.Int("project_id", m.ProjectID),
		zap.String("title", m.Title),
	)
	query := `
        INSERT INTO milestones (project_id, title, description, due_date)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query, m.ProjectID, m.Title, m.Description, m.DueDate).Scan(&m.ID)
	if err != nil {
		r.logger.Error("Failed to insert milestone", zap.Error(err))
		return err
	}
	r.logger.Info("Milestone inserted successfully",
		zap.Int("milestone_id", m.ID),
		zap.Int("project_id", m.ProjectID),
	)
	return nil
}

// SetMilestoneCompleted flips the completed flag and stamps completed_at.
// Returns the number of rows updated.
func (r *ProjectRepository) SetMilestoneCompleted(ctx context.Context, projectID, milestoneID int, completed bool) (int64, error) {
	query := `
        UPDATE milestones
        SET completed = $1,
            completed_at = CASE WHEN $1 THEN NOW() ELSE NULL END
        WHERE id = $2 AND project_id = $3
    `
	result, err := r.db.Exec(ctx, query, completed, milestoneID, projectID)
	if err != nil {
		r.logger.Error("Failed to update milestone",
			zap.Error(err),
			zap.Int("milestone_id", milestoneID),
			zap.Int("project_id", projectID),
		)
		return 0, err
	}
	return result.RowsAffected(), nil
}

// AddDocument records document metadata against a project.
func (r *ProjectRepository) AddDocument(ctx context.Context, d *model.Document) error {
	query := `
        INSERT INTO documents (project_id, name, url, type, uploaded_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, uploaded_at
    `
	err := r.db.QueryRow(ctx, query, d.ProjectID, d.Name, d.URL, d.Type, d.UploadedBy).Scan(&d.ID, &d.UploadedAt)
	if err != nil {
		r.logger.Error("Failed to insert document",
			zap.Error(err),
			zap.Int("project_id", d.ProjectID),
		)
		return err
	}
	r.logger.Info("Document inserted successfully",
		zap.Int("document_id", d.ID),
		zap.Int("project_id", d.ProjectID),
	)
	return nil
}
