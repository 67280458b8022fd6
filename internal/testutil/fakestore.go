// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"slices"
	"time"

	"triage/internal/store"
	"triage/internal/task"
)

// FixedNow is the default clock of a FakeStore.
var FixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

var _ store.Store = (*FakeStore)(nil)

// FakeStore is an in-memory implementation of store.Store for testing.
type FakeStore struct {
	tasks       []task.Task
	initialized bool

	// Now is the creation time given to added tasks.
	Now time.Time

	// Defaults applies to drafts that leave fields empty.
	Defaults task.Defaults

	// Saves counts successful saves.
	Saves int

	// Error injection for testing
	InitErr error
	LoadErr error
	SaveErr error
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		Now:      FixedNow,
		Defaults: task.Defaults{Priority: task.DefaultPriority},
	}
}

// Seed appends tasks as if they had been loaded from disk.
func (f *FakeStore) Seed(tasks ...task.Task) {
	f.tasks = append(f.tasks, tasks...)
	f.initialized = true
}

// Init implements store.Store.
func (f *FakeStore) Init(ctx context.Context) (bool, error) {
	if f.InitErr != nil {
		return false, f.InitErr
	}
	if f.initialized {
		return false, nil
	}
	f.initialized = true
	return true, nil
}

// Load implements store.Store.
func (f *FakeStore) Load(ctx context.Context) ([]task.Task, error) {
	if f.LoadErr != nil {
		return nil, f.LoadErr
	}
	return f.Tasks(), nil
}

// Tasks implements store.Store.
func (f *FakeStore) Tasks() []task.Task {
	return slices.Clone(f.tasks)
}

// Add implements store.Store.
func (f *FakeStore) Add(ctx context.Context, d task.Draft) (task.Task, error) {
	id := 1
	for _, t := range f.tasks {
		id = max(id, t.ID+1)
	}
	t, err := d.Build(id, f.Now, f.Defaults)
	if err != nil {
		return task.Task{}, err
	}
	if err := f.save(); err != nil {
		return task.Task{}, err
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// Update implements store.Store.
func (f *FakeStore) Update(ctx context.Context, id int, c task.Changes) (task.Task, error) {
	i := slices.IndexFunc(f.tasks, func(t task.Task) bool { return t.ID == id })
	if i < 0 {
		return task.Task{}, &task.NotFoundError{ID: id}
	}
	updated, err := c.Apply(f.tasks[i])
	if err != nil {
		return task.Task{}, err
	}
	if err := f.save(); err != nil {
		return task.Task{}, err
	}
	f.tasks[i] = updated
	return updated, nil
}

// Save implements store.Store.
func (f *FakeStore) Save(ctx context.Context) error {
	return f.save()
}

func (f *FakeStore) save() error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.Saves++
	f.initialized = true
	return nil
}
