// Package store defines the backend-agnostic interface for task persistence.
package store

import (
	"context"

	"triage/internal/task"
)

// Store owns the persisted task collection.
// Commands and views never touch the file format directly; a backend other
// than the CSV file can be swapped in behind this interface.
type Store interface {
	// Init creates an empty store if none exists.
	// Returns true if it was created, false if it already existed.
	Init(ctx context.Context) (bool, error)

	// Load reads the persisted collection into memory and returns it in
	// insertion order. A corrupt store fails with *task.ParseError.
	Load(ctx context.Context) ([]task.Task, error)

	// Tasks returns a copy of the in-memory collection.
	Tasks() []task.Task

	// Add validates the draft, assigns a fresh id and creation time,
	// appends the task and saves. Fails with *task.ValidationError.
	Add(ctx context.Context, d task.Draft) (task.Task, error)

	// Update applies changes to the task with the given id and saves.
	// Fails with *task.NotFoundError or *task.ValidationError, in which
	// case nothing is written.
	Update(ctx context.Context, id int, c task.Changes) (task.Task, error)

	// Save writes the in-memory collection back atomically.
	Save(ctx context.Context) error
}
