package domain

import "time"

// Role is the organisational role of a user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleLeader Role = "leader"
	RoleStaff  Role = "staff"
)

// User is a person reachable over the messaging channel.
type User struct {
	ID            string
	Name          string
	MessageHandle *string // phone number in international format
	Role          Role
	TeamID        *string
	CreatedAt     time.Time
}

// Handle returns the messaging handle or an empty string when none is set.
func (u *User) Handle() string {
	if u.MessageHandle == nil {
		return ""
	}
	return *u.MessageHandle
}
