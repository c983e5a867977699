// pkg/events/event_types.go
package events

import "time"

// Type identifies what happened
type Type string

const (
	TypeTaskCreated  Type = "task_created"
	TypeTaskApproved Type = "task_approved"
	TypeTaskRejected Type = "task_rejected"
	TypeLoginSuccess Type = "login_success"
	TypeLoginFailed  Type = "login_failed"
	TypeLogout       Type = "logout"
	TypeUserCreated  Type = "user_created"
)

// Severity mirrors log levels so sinks can filter
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Event is a one-way notification emitted by the core
type Event struct {
	Type       Type              `json:"type"`
	Severity   Severity          `json:"severity"`
	OccurredAt time.Time         `json:"occurredAt"`
	TaskID     string            `json:"taskId,omitempty"`
	TaskTitle  string            `json:"taskTitle,omitempty"`
	Status     string            `json:"status,omitempty"`
	ActorID    string            `json:"actorId,omitempty"`
	ActorName  string            `json:"actorName,omitempty"`
	ActorRole  string            `json:"actorRole,omitempty"`
	IPAddress  string            `json:"ipAddress,omitempty"`
	UserAgent  string            `json:"userAgent,omitempty"`
	Message    string            `json:"message"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// DefaultSeverity returns the severity normally attached to an event type
func DefaultSeverity(t Type) Severity {
	switch t {
	case TypeLoginFailed:
		return SeverityMedium
	case TypeTaskCreated, TypeTaskApproved, TypeTaskRejected,
		TypeLoginSuccess, TypeLogout, TypeUserCreated:
		return SeverityLow
	default:
		return SeverityHigh
	}
}
