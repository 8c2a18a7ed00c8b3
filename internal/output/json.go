package output

import (
	"encoding/json"
	"time"

	"github.com/abatilo/studytrack/internal/task"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	now func() time.Time
}

// marshalJSON marshals a value to indented JSON with a trailing newline.
func marshalJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data) + "\n"
}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{now: time.Now}
}

// taskJSON is the JSON representation of a task. DueState and DaysLeft are
// computed at render time.
type taskJSON struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	DueState    string `json:"due_state"`
	DaysLeft    int    `json:"days_left"`
}

func (f *JSONFormatter) toTaskJSON(t task.Task) taskJSON {
	today := f.now()
	return taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.Local().Format(task.TimestampLayout),
		DueState:    string(t.DueState(today)),
		DaysLeft:    t.DaysLeft(today),
	}
}

// FormatTask formats a single task as JSON.
func (f *JSONFormatter) FormatTask(t task.Task) string {
	return marshalJSON(f.toTaskJSON(t))
}

// FormatTaskList formats a list of tasks as JSON.
func (f *JSONFormatter) FormatTaskList(tasks []task.Task) string {
	jsonTasks := make([]taskJSON, len(tasks))
	for i, t := range tasks {
		jsonTasks[i] = f.toTaskJSON(t)
	}
	return marshalJSON(jsonTasks)
}

// errorJSON is the JSON representation of an error.
type errorJSON struct {
	Error string `json:"error"`
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(err error) string {
	return marshalJSON(errorJSON{Error: err.Error()})
}

// messageJSON is the JSON representation of a message.
type messageJSON struct {
	Message string `json:"message"`
}

// FormatMessage formats a simple message as JSON.
func (f *JSONFormatter) FormatMessage(msg string) string {
	return marshalJSON(messageJSON{Message: msg})
}

type warningJSON struct {
	Warning string `json:"warning"`
}

// FormatWarning formats a recoverable problem as JSON.
func (f *JSONFormatter) FormatWarning(msg string) string {
	return marshalJSON(warningJSON{Warning: msg})
}
