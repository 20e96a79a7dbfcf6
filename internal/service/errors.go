package service

import "errors"

// Domain errors. Handlers map these onto HTTP statuses; anything else
// becomes a generic 500.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user already exists")
	ErrForbidden          = errors.New("access denied")
	ErrInvalidStatus      = errors.New("invalid status value")
	ErrUserReferenced     = errors.New("user is referenced by existing records")

	ErrUserNotFound         = errors.New("user not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrMilestoneNotFound    = errors.New("milestone not found")
	ErrNotificationNotFound = errors.New("notification not found")
)
