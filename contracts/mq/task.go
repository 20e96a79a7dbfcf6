package mq

// Routing keys for task events.
const (
	RoutingKeyTaskCreated       = "task.created"
	RoutingKeyTaskStatusChanged = "task.status_changed"
	RoutingKeyTaskCommentAdded  = "task.comment_added"
)

type TaskCreatedPayload struct {
	EventID    string `json:"event_id"`
	TaskID     int    `json:"task_id"`
	Title      string `json:"title"`
	ProjectID  int    `json:"project_id"`
	AssignedTo int    `json:"assigned_to,omitempty"`
	CreatedBy  int    `json:"created_by"`
}

type TaskStatusChangedPayload struct {
	EventID    string `json:"event_id"`
	TaskID     int    `json:"task_id"`
	Title      string `json:"title"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	AssignedTo int    `json:"assigned_to,omitempty"`
	ChangedBy  int    `json:"changed_by"`
}

type TaskCommentAddedPayload struct {
	EventID    string `json:"event_id"`
	TaskID     int    `json:"task_id"`
	Title      string `json:"title"`
	AssignedTo int    `json:"assigned_to,omitempty"`
	PostedBy   int    `json:"posted_by"`
}
