//nolint:testpackage // Tests require internal access for thorough testing
package task

import (
	"testing"
	"time"
)

func TestDueState(t *testing.T) {
	// Late evening local time must still count as the same calendar day.
	today := time.Date(2025, 3, 10, 23, 45, 0, 0, time.FixedZone("EST", -5*60*60))

	tests := []struct {
		name     string
		due      string
		status   Status
		want     DueState
		wantDays int
	}{
		{"due yesterday", "2025-03-09", StatusPending, DueOverdue, -1},
		{"due today", "2025-03-10", StatusPending, DueToday, 0},
		{"due tomorrow", "2025-03-11", StatusPending, DueSoon, 1},
		{"due in three days", "2025-03-13", StatusPending, DueSoon, 3},
		{"due in four days", "2025-03-14", StatusPending, DueUpcoming, 4},
		{"completed and overdue", "2025-01-01", StatusCompleted, DueCompleted, -68},
		{"completed and upcoming", "2025-12-01", StatusCompleted, DueCompleted, 266},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := &Task{ID: 1, DueDate: tt.due, Status: tt.status}
			if got := tk.DueState(today); got != tt.want {
				t.Errorf("DueState() = %q, want %q", got, tt.want)
			}
			if got := tk.DaysLeft(today); got != tt.wantDays {
				t.Errorf("DaysLeft() = %d, want %d", got, tt.wantDays)
			}
		})
	}
}

func TestDueStateAcrossMonthBoundary(t *testing.T) {
	today := time.Date(2024, 2, 28, 8, 0, 0, 0, time.UTC)
	tk := &Task{ID: 1, DueDate: "2024-03-02", Status: StatusPending}

	if got := tk.DaysLeft(today); got != 3 {
		t.Errorf("DaysLeft() = %d, want 3 (leap year)", got)
	}
	if got := tk.DueState(today); got != DueSoon {
		t.Errorf("DueState() = %q, want %q", got, DueSoon)
	}
}
