package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskman/contracts/mq"
	"taskman/internal/model"
	"taskman/pkg/metrics"
	"taskman/pkg/rbac"
)

// TaskStore is the task persistence surface.
type TaskStore interface {
	Insert(ctx context.Context, t *model.Task) error
	ListAll(ctx context.Context) ([]model.Task, error)
	ListByAssignee(ctx context.Context, userID int) ([]model.Task, error)
	FindByID(ctx context.Context, id int) (*model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	UpdateStatus(ctx context.Context, id int, status string) error
	Delete(ctx context.Context, id int) (int64, error)
	AddComment(ctx context.Context, c *model.Comment) error
	AddAttachment(ctx context.Context, a *model.Attachment) error
}

// ProjectFinder resolves project references.
type ProjectFinder interface {
	FindByID(ctx context.Context, id int) (*model.Project, error)
}

// EventPublisher is the message-queue surface the task service emits on.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type TaskService struct {
	tasks     TaskStore
	projects  ProjectFinder
	users     UserFinder
	publisher EventPublisher
	logger    *zap.Logger
}

func NewTaskService(tasks TaskStore, projects ProjectFinder, users UserFinder, publisher EventPublisher, logger *zap.Logger) *TaskService {
	return &TaskService{
		tasks:     tasks,
		projects:  projects,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// publish emits an event without failing the request. Consumers tolerate
// missed events; the write already happened.
func (s *TaskService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}

type CreateTaskInput struct {
	Title       string
	Description string
	ProjectID   int
	AssignedTo  *int
	Priority    string
	Status      string
	DueDate     time.Time
}

// Create adds a task. Admin-gated at the route. The project must exist, and
// the assignee, when given, must too.
func (s *TaskService) Create(ctx context.Context, actor model.Identity, in CreateTaskInput) (*model.Task, error) {
	if _, err := s.projects.FindByID(ctx, in.ProjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if in.AssignedTo != nil {
		if _, err := s.users.FindByID(ctx, *in.AssignedTo); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	status := in.Status
	if status == "" {
		status = model.TaskStatusPending
	}
	if !model.IsValidTaskStatus(status) {
		return nil, ErrInvalidStatus
	}

	priority := in.Priority
	if priority == "" {
		priority = model.TaskPriorityMedium
	}
	if !model.IsValidTaskPriority(priority) {
		return nil, ErrInvalidStatus
	}

	t := &model.Task{
		Title:        in.Title,
		Description:  in.Description,
		ProjectID:    in.ProjectID,
		AssignedToID: in.AssignedTo,
		Priority:     priority,
		Status:       status,
		DueDate:      in.DueDate,
		CreatedByID:  actor.UserID,
	}

	if err := s.tasks.Insert(ctx, t); err != nil {
		return nil, err
	}

	payload := mq.TaskCreatedPayload{
		EventID:   mq.NewEventID(),
		TaskID:    t.ID,
		Title:     t.Title,
		ProjectID: t.ProjectID,
		CreatedBy: actor.UserID,
	}
	if t.AssignedToID != nil {
		payload.AssignedTo = *t.AssignedToID
	}
	s.publish(mq.RoutingKeyTaskCreated, payload)

	return s.tasks.FindByID(ctx, t.ID)
}

// List returns tasks visible to the actor: all of them for anyone holding
// view_all_tasks, otherwise only tasks assigned to the actor.
func (s *TaskService) List(ctx context.Context, actor model.Identity) ([]model.Task, error) {
	if rbac.HasPermission(actor.Role, actor.Permissions, rbac.PermissionViewAllTasks) {
		return s.tasks.ListAll(ctx)
	}
	return s.tasks.ListByAssignee(ctx, actor.UserID)
}

// AssignedTo returns the tasks assigned to the given user.
func (s *TaskService) AssignedTo(ctx context.Context, userID int) ([]model.Task, error) {
	return s.tasks.ListByAssignee(ctx, userID)
}

// Get returns one task with comments and attachments.
func (s *TaskService) Get(ctx context.Context, id int) (*model.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	AssignedTo  *int
	Unassign    bool
	Priority    *string
	Status      *string
	DueDate     *time.Time
}

// Update writes task fields. Admin-gated at the route; status changes by
// assignees go through SetStatus instead.
func (s *TaskService) Update(ctx context.Context, id int, in UpdateTaskInput) (*model.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Unassign {
		t.AssignedToID = nil
	} else if in.AssignedTo != nil {
		if _, err := s.users.FindByID(ctx, *in.AssignedTo); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		t.AssignedToID = in.AssignedTo
	}
	if in.Priority != nil {
		if !model.IsValidTaskPriority(*in.Priority) {
			return nil, ErrInvalidStatus
		}
		t.Priority = *in.Priority
	}
	if in.Status != nil {
		if !model.IsValidTaskStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		t.Status = *in.Status
	}
	if in.DueDate != nil {
		t.DueDate = *in.DueDate
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.tasks.FindByID(ctx, id)
}

// Delete removes a task. Admin-gated at the route.
func (s *TaskService) Delete(ctx context.Context, id int) error {
	rows, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// SetStatus moves a task to a new status. Only the assignee or an admin may
// do it. Setting the status a task already has is a no-op, not an error.
func (s *TaskService) SetStatus(ctx context.Context, actor model.Identity, id int, newStatus string) (*model.Task, error) {
	if !model.IsValidTaskStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if actor.Role != rbac.RoleAdmin && !t.IsAssignedTo(actor.UserID) {
		return nil, ErrForbidden
	}

	if t.Status == newStatus {
		return t, nil
	}

	oldStatus := t.Status
	if err := s.tasks.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}

	metrics.IncrementTaskStatusTransition(oldStatus, newStatus)
	s.logger.Info("Task status changed",
		zap.Int("task_id", id),
		zap.String("old_status", oldStatus),
		zap.String("new_status", newStatus),
		zap.Int("changed_by", actor.UserID),
	)

	payload := mq.TaskStatusChangedPayload{
		EventID:   mq.NewEventID(),
		TaskID:    t.ID,
		Title:     t.Title,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedBy: actor.UserID,
	}
	if t.AssignedToID != nil {
		payload.AssignedTo = *t.AssignedToID
	}
	s.publish(mq.RoutingKeyTaskStatusChanged, payload)

	return s.tasks.FindByID(ctx, id)
}

// AddComment appends a comment. Any authenticated user may comment.
func (s *TaskService) AddComment(ctx context.Context, actor model.Identity, taskID int, text string) (*model.Task, error) {
	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	c := &model.Comment{
		TaskID:   taskID,
		Text:     text,
		PostedBy: &model.UserRef{ID: actor.UserID},
	}
	if err := s.tasks.AddComment(ctx, c); err != nil {
		return nil, err
	}

	payload := mq.TaskCommentAddedPayload{
		EventID:  mq.NewEventID(),
		TaskID:   t.ID,
		Title:    t.Title,
		PostedBy: actor.UserID,
	}
	if t.AssignedToID != nil {
		payload.AssignedTo = *t.AssignedToID
	}
	s.publish(mq.RoutingKeyTaskCommentAdded, payload)

	return s.tasks.FindByID(ctx, taskID)
}

type AddAttachmentInput struct {
	Name string
	URL  string
}

// AddAttachment records attachment metadata on a task.
func (s *TaskService) AddAttachment(ctx context.Context, actor model.Identity, taskID int, in AddAttachmentInput) (*model.Task, error) {
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	a := &model.Attachment{
		TaskID:     taskID,
		Name:       in.Name,
		URL:        in.URL,
		UploadedBy: actor.UserID,
	}
	if err := s.tasks.AddAttachment(ctx, a); err != nil {
		return nil, err
	}
	return s.tasks.FindByID(ctx, taskID)
}
