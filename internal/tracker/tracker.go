// Package tracker owns the in-memory task collection and keeps the task
// document in sync with it. Every successful mutation rewrites the document.
package tracker

import (
	"errors"
	"slices"
	"time"

	sterrors "github.com/abatilo/studytrack/internal/errors"
	"github.com/abatilo/studytrack/internal/task"
)

// Store is the durable side of the collection.
type Store interface {
	Load() ([]*task.Task, error)
	Save(tasks []*task.Task) error
}

// Collection is the set of tasks for one run of the program.
// It is not safe for concurrent use.
type Collection struct {
	store  Store
	tasks  []*task.Task
	nextID int
	now    func() time.Time
}

// Option configures a Collection.
type Option func(*Collection)

// WithClock replaces the wall clock used for created_at.
func WithClock(now func() time.Time) Option {
	return func(c *Collection) {
		c.now = now
	}
}

// Open loads the collection from store.
//
// When the document is corrupt, Open returns a usable empty collection
// together with the StorageCorruptError so the caller can warn and carry on.
// Any other load error leaves the collection nil.
func Open(store Store, opts ...Option) (*Collection, error) {
	c := &Collection{
		store:  store,
		nextID: 1,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	tasks, err := store.Load()
	if err != nil {
		var corrupt sterrors.StorageCorruptError
		if errors.As(err, &corrupt) {
			return c, err
		}
		return nil, err
	}

	c.tasks = tasks
	for _, t := range tasks {
		if t.ID >= c.nextID {
			c.nextID = t.ID + 1
		}
	}
	return c, nil
}

// Len returns the number of tasks in the collection.
func (c *Collection) Len() int {
	return len(c.tasks)
}

// Add creates a Pending task with the next free ID and persists the collection.
//
// On a validation error the collection is unchanged. If only the save fails,
// the task stays in memory and is returned along with the StorageWriteError.
func (c *Collection) Add(title, description, dueDate, priority string) (task.Task, error) {
	t, err := task.New(c.nextID, task.Fields{
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Priority:    priority,
		Status:      string(task.StatusPending),
	}, c.now())
	if err != nil {
		return task.Task{}, err
	}

	c.tasks = append(c.tasks, t)
	c.nextID++
	return *t, c.store.Save(c.tasks)
}

// Get returns a copy of the task with the given ID.
func (c *Collection) Get(id int) (task.Task, error) {
	i := c.index(id)
	if i < 0 {
		return task.Task{}, sterrors.NotFoundError{ID: id}
	}
	return *c.tasks[i], nil
}

// UpdateStatus moves a task to status and persists the collection.
//
// The status is validated before the task is looked up. Setting the status a
// task already has returns a StatusUnchangedError and writes nothing.
func (c *Collection) UpdateStatus(id int, status string) (task.Task, error) {
	s, ok := task.ParseStatus(status)
	if !ok {
		return task.Task{}, sterrors.ValidationError{
			Field:  "status",
			Value:  status,
			Reason: "must be one of " + task.StatusChoices(),
		}
	}

	i := c.index(id)
	if i < 0 {
		return task.Task{}, sterrors.NotFoundError{ID: id}
	}

	t := c.tasks[i]
	if t.Status == s {
		return *t, sterrors.StatusUnchangedError{ID: id, Status: string(s)}
	}

	t.Status = s
	return *t, c.store.Save(c.tasks)
}

// Delete removes a task and persists the collection. Freed IDs are not reused.
func (c *Collection) Delete(id int) (task.Task, error) {
	i := c.index(id)
	if i < 0 {
		return task.Task{}, sterrors.NotFoundError{ID: id}
	}

	removed := *c.tasks[i]
	c.tasks = slices.Delete(c.tasks, i, i+1)
	return removed, c.store.Save(c.tasks)
}

func (c *Collection) index(id int) int {
	return slices.IndexFunc(c.tasks, func(t *task.Task) bool {
		return t.ID == id
	})
}
