package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Task errors
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskNotOwned      = errors.New("task not owned by user")
	ErrTaskStatusChanged = errors.New("task status changed concurrently")

	// User errors
	ErrUserNotFound     = errors.New("user not found")
	ErrSettingsNotFound = errors.New("ai settings not found")
	ErrNoAdmin          = errors.New("no admin user available")

	// Auth errors
	ErrInvalidToken = errors.New("invalid authentication token")

	// Validation errors
	ErrInvalidStatus      = errors.New("invalid task status")
	ErrInvalidTitle       = errors.New("title is required")
	ErrInvalidDeadline    = errors.New("invalid deadline")
	ErrInvalidAssignee    = errors.New("assignee is required")
	ErrInvalidPeriod      = errors.New("invalid stats period")
	ErrInvalidSort        = errors.New("unsupported sort field")
	ErrInvalidPersonality = errors.New("invalid personality")
	ErrInvalidFrequency   = errors.New("invalid followup frequency")
	ErrInvalidWorkHours   = errors.New("work hours must be HH:MM")
	ErrInvalidTimezone    = errors.New("invalid timezone")
	ErrEmptyMessage       = errors.New("message text is required")
)
