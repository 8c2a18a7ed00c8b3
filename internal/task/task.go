package task

import (
	"strconv"
	"strings"
	"time"

	sterrors "github.com/abatilo/studytrack/internal/errors"
)

const (
	// DateLayout is the stored form of a due date.
	DateLayout = "2006-01-02"
	// TimestampLayout is the stored form of created_at.
	TimestampLayout = "2006-01-02 15:04:05"
)

// Status represents the current state of a task.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// Priority represents the importance level of a task.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

//nolint:gochecknoglobals // Read-only enumeration tables
var (
	// Statuses lists every valid status in display order.
	Statuses = []Status{StatusPending, StatusCompleted}

	// Priorities lists every valid priority from most to least important.
	Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

	// PriorityRank is the sort order for priorities (lower = higher priority).
	PriorityRank = map[Priority]int{
		PriorityHigh:   1,
		PriorityMedium: 2,
		PriorityLow:    3,
	}
)

const unrankedPriority = 99

// PriorityOrder returns the position of p in rank, or a value after every ranked priority.
func PriorityOrder(rank map[Priority]int, p Priority) int {
	if r, ok := rank[p]; ok {
		return r
	}
	return unrankedPriority
}

// parseEnum matches s against allowed case-insensitively and returns the canonical value.
func parseEnum[T ~string](s string, allowed []T) (T, bool) {
	s = strings.TrimSpace(s)
	for _, v := range allowed {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// PriorityChoices lists the valid priorities for messages, e.g. "High, Medium, Low".
func PriorityChoices() string {
	return joinEnum(Priorities)
}

// StatusChoices lists the valid statuses for messages, e.g. "Pending, Completed".
func StatusChoices() string {
	return joinEnum(Statuses)
}

func joinEnum[T ~string](allowed []T) string {
	parts := make([]string, len(allowed))
	for i, v := range allowed {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// ParsePriority canonicalizes a priority ("high" -> High).
func ParsePriority(s string) (Priority, bool) {
	return parseEnum(s, Priorities)
}

// ParseStatus canonicalizes a status ("completed" -> Completed).
func ParseStatus(s string) (Status, bool) {
	return parseEnum(s, Statuses)
}

// IsValidPriority checks if a priority string is valid, ignoring case.
func IsValidPriority(s string) bool {
	_, ok := ParsePriority(s)
	return ok
}

// IsValidStatus checks if a status string is valid, ignoring case.
func IsValidStatus(s string) bool {
	_, ok := ParseStatus(s)
	return ok
}

// IsValidDate checks if s is a calendar date in YYYY-MM-DD form.
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(s))
	return err == nil
}

// Task represents one tracked academic item.
// Only Status changes after construction.
type Task struct {
	ID          int
	Title       string
	Description string
	DueDate     string
	Priority    Priority
	Status      Status
	CreatedAt   time.Time
}

// Fields holds the raw, user-supplied values of a task.
type Fields struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
	Status      string
}

func required(field string) error {
	return sterrors.ValidationError{Field: field, Reason: "must not be empty"}
}

// New validates f and builds a Task with canonical priority and status.
// createdAt is kept at second precision so it survives a storage round trip.
func New(id int, f Fields, createdAt time.Time) (*Task, error) {
	if id <= 0 {
		return nil, sterrors.ValidationError{Field: "id", Value: strconv.Itoa(id), Reason: "must be a positive integer"}
	}

	title := strings.TrimSpace(f.Title)
	if title == "" {
		return nil, required("title")
	}
	description := strings.TrimSpace(f.Description)
	if description == "" {
		return nil, required("description")
	}

	dueRaw := strings.TrimSpace(f.DueDate)
	if dueRaw == "" {
		return nil, required("due_date")
	}
	due, err := time.Parse(DateLayout, dueRaw)
	if err != nil {
		return nil, sterrors.ValidationError{Field: "due_date", Value: dueRaw, Reason: "must be a valid YYYY-MM-DD date"}
	}

	priority, ok := ParsePriority(f.Priority)
	if !ok {
		return nil, sterrors.ValidationError{
			Field:  "priority",
			Value:  f.Priority,
			Reason: "must be one of " + PriorityChoices(),
		}
	}
	status, ok := ParseStatus(f.Status)
	if !ok {
		return nil, sterrors.ValidationError{
			Field:  "status",
			Value:  f.Status,
			Reason: "must be one of " + StatusChoices(),
		}
	}

	return &Task{
		ID:          id,
		Title:       title,
		Description: description,
		DueDate:     due.Format(DateLayout),
		Priority:    priority,
		Status:      status,
		CreatedAt:   createdAt.Truncate(time.Second),
	}, nil
}

// Due returns the parsed due date at midnight UTC.
func (t *Task) Due() time.Time {
	d, _ := time.Parse(DateLayout, t.DueDate)
	return d
}
