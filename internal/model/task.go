package model

import "time"

// Task statuses. The transition graph is flat: any status may move to any
// other, gated only by who the actor is.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
	TaskStatusOnHold     = "on-hold"
)

var taskStatuses = []string{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusCompleted,
	TaskStatusOnHold,
}

func IsValidTaskStatus(s string) bool {
	for _, v := range taskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// TaskStatuses returns the accepted status values, for error messages.
func TaskStatuses() []string {
	out := make([]string, len(taskStatuses))
	copy(out, taskStatuses)
	return out
}

// Task priorities.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

func IsValidTaskPriority(p string) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type Comment struct {
	ID        int       `json:"id"`
	TaskID    int       `json:"task_id"`
	Text      string    `json:"text"`
	PostedBy  *UserRef  `json:"posted_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Attachment struct {
	ID         int       `json:"id"`
	TaskID     int       `json:"task_id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedBy int       `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Task struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	ProjectID    int          `json:"-"`
	Project      *ProjectRef  `json:"project,omitempty"`
	AssignedToID *int         `json:"-"`
	AssignedTo   *UserRef     `json:"assigned_to,omitempty"`
	Priority     string       `json:"priority"`
	Status       string       `json:"status"`
	DueDate      time.Time    `json:"due_date"`
	CreatedByID  int          `json:"-"`
	CreatedBy    *UserRef     `json:"created_by,omitempty"`
	Comments     []Comment    `json:"comments,omitempty"`
	Attachments  []Attachment `json:"attachments,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsAssignedTo reports whether the task is assigned to userID.
func (t *Task) IsAssignedTo(userID int) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}
