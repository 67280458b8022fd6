// Package task defines the task data model, its field types and validation.
package task

import (
	"fmt"
	"strings"
	"time"
)

// Priority is a task urgency level. P0 is the most urgent.
type Priority string

const (
	P0 Priority = "P0"
	P1 Priority = "P1"
	P2 Priority = "P2"
	P3 Priority = "P3"
)

// Priorities lists all valid priorities, most urgent first.
var Priorities = []Priority{P0, P1, P2, P3}

// DefaultPriority is used when a task is added without one.
const DefaultPriority = P2

// ParsePriority parses a priority, ignoring case and surrounding whitespace.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("must be one of P0, P1, P2, P3")
	}
	return p, nil
}

// Valid reports whether p is one of the four levels.
func (p Priority) Valid() bool {
	switch p {
	case P0, P1, P2, P3:
		return true
	}
	return false
}

// Rank returns 0 for P0 through 3 for P3, and 4 for an invalid priority.
func (p Priority) Rank() int {
	for i, v := range Priorities {
		if v == p {
			return i
		}
	}
	return len(Priorities)
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusOpen    Status = "open"
	StatusWaiting Status = "waiting"
	StatusDone    Status = "done"
)

// ParseStatus parses a status, ignoring case and surrounding whitespace.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusOpen, StatusWaiting, StatusDone:
		return st, nil
	}
	return "", fmt.Errorf("must be one of open, waiting, done")
}

// Task is one row of the store.
type Task struct {
	ID        int       `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Priority  Priority  `json:"priority" yaml:"priority"`
	Status    Status    `json:"status" yaml:"status"`
	Due       Date      `json:"due,omitzero" yaml:"due,omitempty"`
	Owner     string    `json:"owner,omitempty" yaml:"owner,omitempty"`
	WaitingOn string    `json:"waiting_on,omitempty" yaml:"waiting_on,omitempty"`
	FollowUp  Date      `json:"follow_up_date,omitzero" yaml:"follow_up_date,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Notes     string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Active reports whether the task can appear in any view.
func (t Task) Active() bool {
	return t.Status != StatusDone
}

// Overdue reports whether the task is active and its due date is before today.
func (t Task) Overdue(today Date) bool {
	return t.Active() && !t.Due.IsZero() && t.Due.Before(today)
}

// DueOn reports whether the task is active and due exactly on day.
func (t Task) DueOn(day Date) bool {
	return t.Active() && !t.Due.IsZero() && t.Due == day
}

// FollowUpDue reports whether a follow-up date is set and has been reached.
func (t Task) FollowUpDue(today Date) bool {
	return !t.FollowUp.IsZero() && !t.FollowUp.After(today)
}

// Validate checks the data model invariants that hold for a single task.
// Id uniqueness is the store's concern.
func (t Task) Validate() error {
	if t.ID < 1 {
		return &ValidationError{Field: "id", Value: fmt.Sprint(t.ID), Reason: "must be a positive integer"}
	}
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if !t.Priority.Valid() {
		return &ValidationError{Field: "priority", Value: string(t.Priority), Reason: "must be one of P0, P1, P2, P3"}
	}
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return &ValidationError{Field: "status", Value: string(t.Status), Reason: err.Error()}
	}
	if t.Status == StatusWaiting && strings.TrimSpace(t.WaitingOn) == "" {
		return &ValidationError{Field: "waiting_on", Reason: "required when status is waiting"}
	}
	return nil
}

// CompareIDs orders two tasks by id.
func CompareIDs(a, b Task) int {
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}
