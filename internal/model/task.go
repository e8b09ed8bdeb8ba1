package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus = errors.New("model: invalid task status")
	ErrInvalidDraft  = errors.New("model: invalid task draft")
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// ParseStatus accepts the wire form as well as case-insensitive shorthands
// such as "pending", "in-progress" or "done".
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", " ", "_", " ").Replace(normalized)
	switch normalized {
	case "pending", "todo":
		return StatusPending, nil
	case "in progress", "inprogress", "progress", "doing":
		return StatusInProgress, nil
	case "completed", "complete", "done":
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Subject     string     `json:"subject"`
	DueDate     Date       `json:"dueDate"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Notified    bool       `json:"notified,omitempty"`
}

func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

func (t Task) HasDueDate() bool {
	return !t.DueDate.IsZero()
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	out := t
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		out.CompletedAt = &completed
	}
	return out
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if strings.TrimSpace(t.Subject) == "" {
		return errors.New("model: task subject is required")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	if t.Status == StatusCompleted && t.CompletedAt == nil {
		return errors.New("model: completed_at is required when task status is Completed")
	}
	if t.Status != StatusCompleted && t.CompletedAt != nil {
		return errors.New("model: completed_at must be nil when task status is not Completed")
	}
	return nil
}

// Draft carries the user-editable fields of a task.
type Draft struct {
	Title   string `validate:"required"`
	Subject string `validate:"required"`
	DueDate Date
	Status  Status `validate:"required,task_status"`
}

// Normalized trims surrounding whitespace and defaults an empty status to Pending.
func (d Draft) Normalized() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Subject = strings.TrimSpace(d.Subject)
	if d.Status == "" {
		d.Status = StatusPending
	}
	return d
}
