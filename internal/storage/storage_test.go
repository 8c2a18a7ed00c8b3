//nolint:testpackage // Tests require internal access for thorough testing
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	sterrors "github.com/abatilo/studytrack/internal/errors"
	"github.com/abatilo/studytrack/internal/task"
)

func mustTask(t *testing.T, id int, title, due string, priority task.Priority, status task.Status) *task.Task {
	t.Helper()
	tk, err := task.New(id, task.Fields{
		Title:       title,
		Description: title + " description",
		DueDate:     due,
		Priority:    string(priority),
		Status:      string(status),
	}, time.Date(2025, 1, 2, 9, 30, 15, 0, time.Local))
	if err != nil {
		t.Fatalf("task.New failed: %v", err)
	}
	return tk
}

func newTestStore(t *testing.T, name string) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), name), "")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestNewStoreFormat(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		format Format
		want   Format
	}{
		{"json extension", "tasks.json", "", FormatJSON},
		{"yaml extension", "tasks.yaml", "", FormatYAML},
		{"yml extension", "tasks.yml", "", FormatYAML},
		{"toml extension", "tasks.toml", "", FormatTOML},
		{"no extension", "tasks", "", FormatJSON},
		{"explicit overrides extension", "tasks.json", FormatYAML, FormatYAML},
		{"explicit is case-insensitive", "tasks", Format("TOML"), FormatTOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.path, tt.format)
			if err != nil {
				t.Fatalf("NewStore failed: %v", err)
			}
			if got := store.Format(); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewStoreRejects(t *testing.T) {
	if _, err := NewStore("", ""); err == nil {
		t.Error("NewStore with empty path should fail")
	}
	if _, err := NewStore("tasks.json", Format("xml")); err == nil {
		t.Error("NewStore with unknown format should fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := newTestStore(t, "missing.json")

	tasks, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Load returned %d tasks, want 0", len(tasks))
	}
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"tasks.json", "tasks.yaml", "tasks.toml"} {
		t.Run(name, func(t *testing.T) {
			store := newTestStore(t, name)
			original := []*task.Task{
				mustTask(t, 3, "Essay", "2025-01-10", task.PriorityHigh, task.StatusPending),
				mustTask(t, 1, "Lab report", "2025-01-05", task.PriorityLow, task.StatusCompleted),
			}

			if err := store.Save(original); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			loaded, err := store.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			if len(loaded) != len(original) {
				t.Fatalf("Load returned %d tasks, want %d", len(loaded), len(original))
			}
			for i, want := range original {
				got := loaded[i]
				if got.ID != want.ID || got.Title != want.Title || got.Description != want.Description ||
					got.DueDate != want.DueDate || got.Priority != want.Priority || got.Status != want.Status {
					t.Errorf("task %d = %+v, want %+v", i, got, want)
				}
				if !got.CreatedAt.Equal(want.CreatedAt) {
					t.Errorf("task %d CreatedAt = %v, want %v", i, got.CreatedAt, want.CreatedAt)
				}
			}
		})
	}
}

func TestSaveWritesFlatRecords(t *testing.T) {
	store := newTestStore(t, "tasks.json")
	if err := store.Save([]*task.Task{
		mustTask(t, 1, "Essay", "2025-01-10", task.PriorityHigh, task.StatusPending),
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var raw []map[string]any
	if err = json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("document is not a JSON array: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("document has %d records, want 1", len(raw))
	}

	wantKeys := []string{"id", "title", "description", "due_date", "priority", "status", "created_at"}
	if len(raw[0]) != len(wantKeys) {
		t.Errorf("record has %d keys, want %d: %v", len(raw[0]), len(wantKeys), raw[0])
	}
	for _, k := range wantKeys {
		if _, ok := raw[0][k]; !ok {
			t.Errorf("record missing key %q", k)
		}
	}
	if raw[0]["created_at"] != "2025-01-02 09:30:15" {
		t.Errorf("created_at = %v, want %q", raw[0]["created_at"], "2025-01-02 09:30:15")
	}
}

func TestSaveEmptyCollection(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"tasks.json", "[]"},
		{"tasks.yaml", "[]"},
		{"tasks.toml", "tasks = []"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			store := newTestStore(t, tt.file)
			if err := store.Save(nil); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			data, err := os.ReadFile(store.Path())
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if got := string(bytes.TrimSpace(data)); got != tt.want {
				t.Errorf("document = %q, want %q", got, tt.want)
			}

			tasks, err := store.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(tasks) != 0 {
				t.Errorf("Load returned %d tasks, want 0", len(tasks))
			}
		})
	}
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tasks.json")
	store, err := NewStore(path, "")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if err = store.Save([]*task.Task{
		mustTask(t, 1, "Essay", "2025-01-10", task.PriorityHigh, task.StatusPending),
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err = os.Stat(path); err != nil {
		t.Errorf("document not created: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (temporary file left behind?)", len(entries))
	}
}

func TestSaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	store, err := NewStore(filepath.Join(blocker, "tasks.json"), "")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	err = store.Save([]*task.Task{})
	var writeErr sterrors.StorageWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Save error = %v, want StorageWriteError", err)
	}
	if writeErr.Path != store.Path() {
		t.Errorf("StorageWriteError.Path = %q, want %q", writeErr.Path, store.Path())
	}
}

func TestLoadCorruptDocument(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"truncated json", "tasks.json", `[{"id": 1, "title": "Essay"`},
		{"empty json", "tasks.json", ""},
		{"json object instead of array", "tasks.json", `{"id": 1}`},
		{"invalid yaml", "tasks.yaml", "- id: [1\n"},
		{"invalid toml", "tasks.toml", "[[tasks]\nid = 1\n"},
		{"toml tasks not an array", "tasks.toml", "tasks = \"none\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, tt.file)
			if err := os.WriteFile(store.Path(), []byte(tt.content), 0o644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			tasks, err := store.Load()
			if len(tasks) != 0 {
				t.Errorf("Load returned %d tasks, want 0", len(tasks))
			}
			var corrupt sterrors.StorageCorruptError
			if !errors.As(err, &corrupt) {
				t.Fatalf("Load error = %v, want StorageCorruptError", err)
			}

			data, readErr := os.ReadFile(store.Path())
			if readErr != nil {
				t.Fatalf("corrupt document was removed: %v", readErr)
			}
			if string(data) != tt.content {
				t.Errorf("corrupt document was modified: %q", data)
			}
		})
	}
}

func TestLoadDefaultsOptionalFields(t *testing.T) {
	store := newTestStore(t, "tasks.json")
	content := `[
    {"id": 4, "title": "Reading", "description": "Chapter 3", "due_date": "2025-02-01"}
]`
	if err := os.WriteFile(store.Path(), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	loadedAt := time.Date(2025, 1, 20, 8, 0, 0, 0, time.Local)
	store.now = func() time.Time { return loadedAt }

	tasks, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Load returned %d tasks, want 1", len(tasks))
	}
	if tasks[0].Priority != task.PriorityMedium {
		t.Errorf("Priority = %q, want %q", tasks[0].Priority, task.PriorityMedium)
	}
	if tasks[0].Status != task.StatusPending {
		t.Errorf("Status = %q, want %q", tasks[0].Status, task.StatusPending)
	}
	if !tasks[0].CreatedAt.Equal(loadedAt) {
		t.Errorf("CreatedAt = %v, want %v", tasks[0].CreatedAt, loadedAt)
	}
}

func TestLoadCanonicalizesStoredValues(t *testing.T) {
	store := newTestStore(t, "tasks.yaml")
	content := `- id: 2
  title: Essay
  description: Draft
  due_date: "2025-01-10"
  priority: high
  status: completed
  created_at: "2025-01-02 09:30:15"
`
	if err := os.WriteFile(store.Path(), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tasks, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Load returned %d tasks, want 1", len(tasks))
	}
	if tasks[0].Priority != task.PriorityHigh || tasks[0].Status != task.StatusCompleted {
		t.Errorf("Priority/Status = %q/%q, want High/Completed", tasks[0].Priority, tasks[0].Status)
	}
}

func TestLoadInvalidRecordAbortsLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		field   string
	}{
		{
			name:    "missing id",
			content: `[{"title": "Essay", "description": "Draft", "due_date": "2025-01-10"}]`,
			field:   "id",
		},
		{
			name:    "missing title",
			content: `[{"id": 1, "description": "Draft", "due_date": "2025-01-10"}]`,
			field:   "title",
		},
		{
			name:    "missing description",
			content: `[{"id": 1, "title": "Essay", "due_date": "2025-01-10"}]`,
			field:   "description",
		},
		{
			name:    "missing due date",
			content: `[{"id": 1, "title": "Essay", "description": "Draft"}]`,
			field:   "due_date",
		},
		{
			name: "second record invalid",
			content: `[{"id": 1, "title": "Essay", "description": "Draft", "due_date": "2025-01-10"},
			           {"id": 2, "title": "Lab", "description": "Report", "due_date": "2025-01-10", "priority": "urgent"}]`,
			field: "priority",
		},
		{
			name: "duplicate id",
			content: `[{"id": 1, "title": "Essay", "description": "Draft", "due_date": "2025-01-10"},
			           {"id": 1, "title": "Lab", "description": "Report", "due_date": "2025-01-11"}]`,
			field: "id",
		},
		{
			name:    "malformed created_at",
			content: `[{"id": 1, "title": "Essay", "description": "Draft", "due_date": "2025-01-10", "created_at": "yesterday"}]`,
			field:   "created_at",
		},
		{
			name: "json string id",
			content: `[{"id": 1, "title": "Essay", "description": "Draft", "due_date": "2025-01-10"},
			           {"id": "2", "title": "Lab", "description": "Report", "due_date": "2025-01-11"}]`,
			field: "id",
		},
		{
			name:    "json fractional id",
			content: `[{"id": 1.5, "title": "Essay", "description": "Draft", "due_date": "2025-01-10"}]`,
			field:   "id",
		},
		{
			name:    "json numeric title",
			content: `[{"id": 1, "title": 5, "description": "Draft", "due_date": "2025-01-10"}]`,
			field:   "title",
		},
		{
			name:    "json record not an object",
			content: `[{"id": 1, "title": "Essay", "description": "Draft", "due_date": "2025-01-10"}, 7]`,
			field:   "record",
		},
		{
			name:    "yaml string id",
			file:    "tasks.yaml",
			content: "- id: 1\n  title: Essay\n  description: Draft\n  due_date: \"2025-01-10\"\n- id: \"3\"\n  title: Lab\n  description: Report\n  due_date: \"2025-01-11\"\n",
			field:   "id",
		},
		{
			name:    "yaml unquoted date",
			file:    "tasks.yaml",
			content: "- id: 1\n  title: Essay\n  description: Draft\n  due_date: [2025, 1, 10]\n",
			field:   "due_date",
		},
		{
			name:    "toml string id",
			file:    "tasks.toml",
			content: "[[tasks]]\nid = 1\ntitle = \"Essay\"\ndescription = \"Draft\"\ndue_date = \"2025-01-10\"\n\n[[tasks]]\nid = \"2\"\ntitle = \"Lab\"\ndescription = \"Report\"\ndue_date = \"2025-01-11\"\n",
			field:   "id",
		},
		{
			name:    "toml numeric status",
			file:    "tasks.toml",
			content: "[[tasks]]\nid = 1\ntitle = \"Essay\"\ndescription = \"Draft\"\ndue_date = \"2025-01-10\"\nstatus = 1\n",
			field:   "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := tt.file
			if file == "" {
				file = "tasks.json"
			}
			store := newTestStore(t, file)
			if err := os.WriteFile(store.Path(), []byte(tt.content), 0o644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			tasks, err := store.Load()
			if tasks != nil {
				t.Errorf("Load returned %d tasks, want none", len(tasks))
			}
			var corrupt sterrors.StorageCorruptError
			if errors.As(err, &corrupt) {
				t.Fatalf("Load error = %v, want a ValidationError, not StorageCorruptError", err)
			}
			var verr sterrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Load error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", "", false},
		{"json", FormatJSON, false},
		{" YAML ", FormatYAML, false},
		{"toml", FormatTOML, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
