package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/abatilo/studytrack/internal/task"
)

const separatorWidth = 40

// HumanFormatter formats output for human-readable terminal display.
type HumanFormatter struct {
	now func() time.Time

	red    *color.Color
	yellow *color.Color
	green  *color.Color
	blue   *color.Color
	cyan   *color.Color
}

// NewHumanFormatter creates a new HumanFormatter. When useColor is false every
// escape sequence is suppressed regardless of the terminal.
func NewHumanFormatter(useColor bool) *HumanFormatter {
	f := &HumanFormatter{
		now:    time.Now,
		red:    color.New(color.FgHiRed),
		yellow: color.New(color.FgHiYellow),
		green:  color.New(color.FgHiGreen),
		blue:   color.New(color.FgHiBlue),
		cyan:   color.New(color.FgHiCyan),
	}
	if !useColor {
		for _, c := range []*color.Color{f.red, f.yellow, f.green, f.blue, f.cyan} {
			c.DisableColor()
		}
	}
	return f
}

// FormatTask formats a single task as a detail block.
func (f *HumanFormatter) FormatTask(t task.Task) string {
	var sb strings.Builder

	sb.WriteString(f.cyan.Sprintf("--- Task ID: %d | %s", t.ID, t.Title))
	sb.WriteString(" ---\n")
	fmt.Fprintf(&sb, "  Description: %s\n", t.Description)
	fmt.Fprintf(&sb, "  Due Date: %s (%s)\n", t.DueDate, f.dueLabel(t))
	fmt.Fprintf(&sb, "  Priority: %s\n", f.priorityColor(t.Priority).Sprint(t.Priority))
	fmt.Fprintf(&sb, "  Status: %s\n", f.statusColor(t.Status).Sprint(t.Status))
	fmt.Fprintf(&sb, "  Created At: %s\n", t.CreatedAt.Local().Format(task.TimestampLayout))
	sb.WriteString(strings.Repeat("-", separatorWidth))
	sb.WriteString("\n")

	return sb.String()
}

// FormatTaskList formats a list of tasks followed by a total line.
func (f *HumanFormatter) FormatTaskList(tasks []task.Task) string {
	if len(tasks) == 0 {
		return f.yellow.Sprint("No tasks found.") + "\n"
	}

	var sb strings.Builder
	for _, t := range tasks {
		sb.WriteString(f.FormatTask(t))
	}
	sb.WriteString("\n")
	sb.WriteString(f.blue.Sprintf("Total Tasks: %d", len(tasks)))
	sb.WriteString("\n")
	return sb.String()
}

func (f *HumanFormatter) dueLabel(t task.Task) string {
	today := f.now()
	switch t.DueState(today) {
	case task.DueCompleted:
		return "Completed"
	case task.DueOverdue:
		return f.red.Sprint("OVERDUE!")
	case task.DueToday:
		return f.red.Sprint("Due Today!")
	case task.DueSoon:
		return f.yellow.Sprintf("%d day(s) left!", t.DaysLeft(today))
	default:
		return fmt.Sprintf("%d days left", t.DaysLeft(today))
	}
}

func (f *HumanFormatter) priorityColor(p task.Priority) *color.Color {
	switch p {
	case task.PriorityHigh:
		return f.red
	case task.PriorityMedium:
		return f.yellow
	default:
		return f.blue
	}
}

func (f *HumanFormatter) statusColor(s task.Status) *color.Color {
	if s == task.StatusCompleted {
		return f.green
	}
	return f.yellow
}

// FormatError formats an error for display.
func (f *HumanFormatter) FormatError(err error) string {
	return f.red.Sprintf("Error: %s", err.Error()) + "\n"
}

// FormatMessage formats a simple message.
func (f *HumanFormatter) FormatMessage(msg string) string {
	return f.green.Sprint(msg) + "\n"
}

// FormatWarning formats a recoverable problem.
func (f *HumanFormatter) FormatWarning(msg string) string {
	return f.yellow.Sprintf("Warning: %s", msg) + "\n"
}
