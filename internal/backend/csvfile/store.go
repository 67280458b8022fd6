// Package csvfile implements store.Store on a single CSV file.
package csvfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"triage/internal/logging"
	"triage/internal/store"
	"triage/internal/task"
)

const (
	// FileMode is the permission of the store file.
	FileMode = 0644

	// DirMode is the permission of directories created for the store.
	DirMode = 0755
)

var _ store.Store = (*Store)(nil)

// Store keeps the task collection in memory and persists it to a CSV file.
type Store struct {
	path     string
	now      func() time.Time
	defaults task.Defaults
	logger   *log.Logger

	tasks  []task.Task
	loaded bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithDefaults sets the values used for fields a new task leaves empty.
func WithDefaults(d task.Defaults) Option {
	return func(s *Store) { s.defaults = d }
}

// WithLogger sets the logger for load and save diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store for the file at path. No file access happens until
// Init, Load or a mutation is called.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		now:      time.Now,
		defaults: task.Defaults{Priority: task.DefaultPriority},
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Init implements store.Store.
func (s *Store) Init(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat store: %w", err)
	}
	if err := s.writeFile(nil); err != nil {
		return false, err
	}
	s.logger.Debug("created store", "path", s.path)
	return true, nil
}

// Load implements store.Store. A missing file is an empty store.
func (s *Store) Load(ctx context.Context) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.tasks, s.loaded = nil, true
			s.logger.Debug("store file missing, starting empty", "path", s.path)
			return nil, nil
		}
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	tasks, err := decode(f, s.path)
	if err != nil {
		return nil, err
	}
	s.tasks, s.loaded = tasks, true
	s.logger.Debug("loaded store", "path", s.path, "tasks", len(tasks))
	return s.Tasks(), nil
}

// Tasks implements store.Store.
func (s *Store) Tasks() []task.Task {
	return slices.Clone(s.tasks)
}

// Add implements store.Store.
func (s *Store) Add(ctx context.Context, d task.Draft) (task.Task, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return task.Task{}, err
	}

	t, err := d.Build(s.nextID(), s.now().Truncate(time.Second), s.defaults)
	if err != nil {
		return task.Task{}, err
	}

	s.tasks = append(s.tasks, t)
	if err := s.Save(ctx); err != nil {
		s.tasks = s.tasks[:len(s.tasks)-1]
		return task.Task{}, err
	}
	return t, nil
}

// Update implements store.Store.
func (s *Store) Update(ctx context.Context, id int, c task.Changes) (task.Task, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return task.Task{}, err
	}

	i := slices.IndexFunc(s.tasks, func(t task.Task) bool { return t.ID == id })
	if i < 0 {
		return task.Task{}, &task.NotFoundError{ID: id}
	}

	old := s.tasks[i]
	updated, err := c.Apply(old)
	if err != nil {
		return task.Task{}, err
	}

	s.tasks[i] = updated
	if err := s.Save(ctx); err != nil {
		s.tasks[i] = old
		return task.Task{}, err
	}
	return updated, nil
}

// Save implements store.Store. The new content goes to a temporary file in
// the same directory, which then replaces the store in a single rename.
func (s *Store) Save(ctx context.Context) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := s.writeFile(s.tasks); err != nil {
		return err
	}
	s.logger.Debug("saved store", "path", s.path, "tasks", len(s.tasks))
	return nil
}

func (s *Store) ensureLoaded(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.loaded {
		return nil
	}
	_, err := s.Load(ctx)
	return err
}

// nextID returns one past the largest id ever assigned. Done tasks stay in
// the store, so ids are never reused.
func (s *Store) nextID() int {
	maxID := 0
	for _, t := range s.tasks {
		maxID = max(maxID, t.ID)
	}
	return maxID + 1
}

func (s *Store) writeFile(tasks []task.Task) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	closed := false
	defer func() {
		if err != nil {
			if !closed {
				tmp.Close()
			}
			os.Remove(tmpPath)
		}
	}()

	if err = encode(tmp, tasks); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync store: %w", err)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if err = os.Chmod(tmpPath, FileMode); err != nil {
		return fmt.Errorf("chmod store: %w", err)
	}
	if err = os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
