package models

import (
	"fmt"
	"strings"
)

// Status is the approval state of a task
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ParseStatus converts a case-insensitive string to a Status
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("unknown status: %q", s)
	}
}

// Valid reports whether s is one of the declared statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// IsDecided reports whether the task already left PENDING
func (s Status) IsDecided() (bool, error) {
	switch s {
	case StatusPending:
		return false, nil
	case StatusApproved, StatusRejected:
		return true, nil
	default:
		return false, fmt.Errorf("unknown status: %q", string(s))
	}
}

// Priority is the urgency of a task
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority converts a case-insensitive string to a Priority
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToUpper(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("unknown priority: %q", s)
	}
}

// Valid reports whether p is one of the declared priorities
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities; higher is more urgent. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

// Role is the authorization level of a user
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// ParseRole converts a case-insensitive string to a Role
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleManager:
		return RoleManager, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Valid reports whether r is one of the declared roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	default:
		return false
	}
}

// CanDecideTasks reports whether the role may approve or reject tasks
func (r Role) CanDecideTasks() (bool, error) {
	switch r {
	case RoleAdmin, RoleManager:
		return true, nil
	case RoleUser:
		return false, nil
	default:
		return false, fmt.Errorf("unknown role: %q", string(r))
	}
}
