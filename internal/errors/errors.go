//nolint:revive // Package name intentionally matches stdlib for domain clarity
package errors

import "fmt"

// ValidationError indicates a task field violated one of its invariants.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NotFoundError indicates no task in the collection has the given ID.
type NotFoundError struct {
	ID int
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("task not found: %d", e.ID)
}

// StatusUnchangedError reports an update to the status a task already has.
// Nothing is persisted when it is returned.
type StatusUnchangedError struct {
	ID     int
	Status string
}

func (e StatusUnchangedError) Error() string {
	return fmt.Sprintf("task %d already has status '%s'", e.ID, e.Status)
}

// StorageCorruptError indicates the task document exists but could not be read or decoded.
type StorageCorruptError struct {
	Path string
	Err  error
}

func (e StorageCorruptError) Error() string {
	return fmt.Sprintf("task file %s is unreadable, starting with an empty collection: %v", e.Path, e.Err)
}

func (e StorageCorruptError) Unwrap() error {
	return e.Err
}

// StorageWriteError indicates the task document could not be rewritten.
type StorageWriteError struct {
	Path string
	Err  error
}

func (e StorageWriteError) Error() string {
	return fmt.Sprintf("saving tasks to %s: %v", e.Path, e.Err)
}

func (e StorageWriteError) Unwrap() error {
	return e.Err
}

// InvalidSortError indicates an unknown sort key on the command line.
type InvalidSortError struct {
	Value string
}

func (e InvalidSortError) Error() string {
	return fmt.Sprintf("invalid sort: %s (valid: due_date, priority, title)", e.Value)
}
