package tracker

import (
	"cmp"
	"slices"
	"strings"

	"github.com/abatilo/studytrack/internal/task"
)

// SortKey names a list ordering.
type SortKey string

const (
	SortByDueDate  SortKey = "due_date"
	SortByPriority SortKey = "priority"
	SortByTitle    SortKey = "title"
)

// IsValidSortKey checks if s names a known ordering.
func IsValidSortKey(s SortKey) bool {
	switch s {
	case SortByDueDate, SortByPriority, SortByTitle:
		return true
	default:
		return false
	}
}

// ListOptions controls which tasks List returns and in what order.
type ListOptions struct {
	// Status keeps only tasks with this status. Empty keeps every task.
	Status task.Status
	// SortBy defaults to SortByDueDate. Unknown keys keep collection order.
	SortBy SortKey
}

// List returns copies of the matching tasks in the requested order.
func (c *Collection) List(opts ListOptions) []task.Task {
	out := make([]task.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if opts.Status == "" || t.Status == opts.Status {
			out = append(out, *t)
		}
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = SortByDueDate
	}
	sortTasks(out, sortBy, task.PriorityRank)
	return out
}

// sortTasks orders tasks in place. Every ordering is stable.
func sortTasks(tasks []task.Task, by SortKey, rank map[task.Priority]int) {
	switch by {
	case SortByDueDate:
		// Pending tasks come first, each partition ascending by due date.
		slices.SortStableFunc(tasks, func(a, b task.Task) int {
			if c := cmp.Compare(statusPartition(a.Status), statusPartition(b.Status)); c != 0 {
				return c
			}
			return a.Due().Compare(b.Due())
		})
	case SortByPriority:
		slices.SortStableFunc(tasks, func(a, b task.Task) int {
			return cmp.Compare(task.PriorityOrder(rank, a.Priority), task.PriorityOrder(rank, b.Priority))
		})
	case SortByTitle:
		slices.SortStableFunc(tasks, func(a, b task.Task) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})
	}
}

func statusPartition(s task.Status) int {
	if s == task.StatusPending {
		return 0
	}
	return 1
}
