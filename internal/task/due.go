package task

import "time"

// DueState classifies a task by how close its due date is.
type DueState string

const (
	DueOverdue   DueState = "overdue"
	DueToday     DueState = "due_today"
	DueSoon      DueState = "due_soon"
	DueUpcoming  DueState = "upcoming"
	DueCompleted DueState = "completed"
)

// dueSoonDays is the widest gap, in days, still reported as DueSoon.
const dueSoonDays = 3

// DaysLeft returns the number of calendar days from today until the due date.
// Negative values mean the due date has passed.
func (t *Task) DaysLeft(today time.Time) int {
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(t.Due().Sub(start).Hours() / 24) //nolint:mnd // hours per day
}

// DueState classifies the task against today. It is never cached: the answer
// changes as the calendar moves.
func (t *Task) DueState(today time.Time) DueState {
	if t.Status == StatusCompleted {
		return DueCompleted
	}
	days := t.DaysLeft(today)
	switch {
	case days < 0:
		return DueOverdue
	case days == 0:
		return DueToday
	case days <= dueSoonDays:
		return DueSoon
	default:
		return DueUpcoming
	}
}
