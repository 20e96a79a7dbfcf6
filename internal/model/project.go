package model

import "time"

// Project statuses.
const (
	ProjectStatusPlanning   = "planning"
	ProjectStatusInProgress = "in-progress"
	ProjectStatusReview     = "review"
	ProjectStatusCompleted  = "completed"
	ProjectStatusOnHold     = "on-hold"
)

var projectStatuses = []string{
	ProjectStatusPlanning,
	ProjectStatusInProgress,
	ProjectStatusReview,
	ProjectStatusCompleted,
	ProjectStatusOnHold,
}

func IsValidProjectStatus(s string) bool {
	for _, v := range projectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Client is the embedded client contact on a project.
type Client struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Milestone struct {
	ID          int        `json:"id"`
	ProjectID   int        `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"due_date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type Document struct {
	ID         int       `json:"id"`
	ProjectID  int       `json:"project_id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	UploadedBy int       `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Project struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Client         Client      `json:"client"`
	StartDate      time.Time   `json:"start_date"`
	EndDate        time.Time   `json:"end_date"`
	Status         string      `json:"status"`
	Budget         float64     `json:"budget"`
	ManagerID      int         `json:"-"`
	ProjectManager *UserRef    `json:"project_manager,omitempty"`
	Team           []UserRef   `json:"team"`
	Milestones     []Milestone `json:"milestones"`
	Documents      []Document  `json:"documents"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// HasMember reports whether userID is on the project team.
func (p *Project) HasMember(userID int) bool {
	for _, m := range p.Team {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// ProjectRef is the shape tasks embed when referencing their project.
type ProjectRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
