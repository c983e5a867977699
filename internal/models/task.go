package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is a scheduled unit of work awaiting a decision
type Task struct {
	ID             uuid.UUID
	Title          string
	Description    string
	Status         Status
	Priority       Priority
	AssignedUserID uuid.UUID
	CreatedBy      uuid.UUID
	CreatedDate    time.Time
	ScheduledDate  time.Time
	ApprovedBy     *uuid.UUID
	ApprovalDate   *time.Time

	// Version is bumped by every successful save
	Version int64
}

// Clone returns a deep copy so stores never share mutable records with callers
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.ApprovedBy != nil {
		id := *t.ApprovedBy
		c.ApprovedBy = &id
	}
	if t.ApprovalDate != nil {
		ts := *t.ApprovalDate
		c.ApprovalDate = &ts
	}
	return &c
}

// TaskView is a task enriched with the display names of the users it references
type TaskView struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           Status     `json:"status"`
	Priority         Priority   `json:"priority"`
	AssignedUserID   uuid.UUID  `json:"assignedUserId"`
	AssignedUserName string     `json:"assignedUserName,omitempty"`
	CreatedBy        uuid.UUID  `json:"createdBy"`
	CreatedByName    string     `json:"createdByName,omitempty"`
	CreatedDate      time.Time  `json:"createdDate"`
	ScheduledDate    time.Time  `json:"scheduledDate"`
	ApprovedBy       *uuid.UUID `json:"approvedBy"`
	ApprovedByName   string     `json:"approvedByName,omitempty"`
	ApprovalDate     *time.Time `json:"approvalDate"`
	Version          int64      `json:"version"`
}

// TaskFilter selects a task listing. At most one field is honoured, in
// the order Status, AssignedUserID, CreatedBy.
type TaskFilter struct {
	Status         *Status
	AssignedUserID *uuid.UUID
	CreatedBy      *uuid.UUID
}
