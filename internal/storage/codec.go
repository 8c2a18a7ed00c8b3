package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	sterrors "github.com/abatilo/studytrack/internal/errors"
	"github.com/abatilo/studytrack/internal/task"
)

// Format selects the encoding of the task document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat validates a format name. An empty name is returned unchanged so
// the store can infer the format from the file extension.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (valid: json, yaml, toml)", s)
	}
}

// formatFromPath infers the format from the file extension, defaulting to JSON.
func formatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// record is the persisted form of a task. Pointer fields tell a missing key
// apart from an empty value.
type record struct {
	ID          *int    `json:"id"          yaml:"id"          toml:"id"`
	Title       *string `json:"title"       yaml:"title"       toml:"title"`
	Description *string `json:"description" yaml:"description" toml:"description"`
	DueDate     *string `json:"due_date"    yaml:"due_date"    toml:"due_date"`
	Priority    *string `json:"priority"    yaml:"priority"    toml:"priority"`
	Status      *string `json:"status"      yaml:"status"      toml:"status"`
	CreatedAt   *string `json:"created_at"  yaml:"created_at"  toml:"created_at"`
}

// tomlDocument wraps the records because a TOML document must be a table.
type tomlDocument struct {
	Tasks []record `toml:"tasks"`
}

func toRecord(t *task.Task) record {
	id := t.ID
	priority := string(t.Priority)
	status := string(t.Status)
	createdAt := t.CreatedAt.In(time.Local).Format(task.TimestampLayout)
	return record{
		ID:          &id,
		Title:       &t.Title,
		Description: &t.Description,
		DueDate:     &t.DueDate,
		Priority:    &priority,
		Status:      &status,
		CreatedAt:   &createdAt,
	}
}

func missing(field string) error {
	return sterrors.ValidationError{Field: field, Reason: "missing from stored record"}
}

// fromRecord rebuilds a task from storage. Older records without priority or
// status get Medium and Pending; records without created_at are stamped with loadedAt.
func fromRecord(r record, loadedAt time.Time) (*task.Task, error) {
	switch {
	case r.ID == nil:
		return nil, missing("id")
	case r.Title == nil:
		return nil, missing("title")
	case r.Description == nil:
		return nil, missing("description")
	case r.DueDate == nil:
		return nil, missing("due_date")
	}

	f := task.Fields{
		Title:       *r.Title,
		Description: *r.Description,
		DueDate:     *r.DueDate,
		Priority:    string(task.PriorityMedium),
		Status:      string(task.StatusPending),
	}
	if r.Priority != nil {
		f.Priority = *r.Priority
	}
	if r.Status != nil {
		f.Status = *r.Status
	}

	createdAt := loadedAt
	if r.CreatedAt != nil {
		ts, err := time.ParseInLocation(task.TimestampLayout, *r.CreatedAt, time.Local)
		if err != nil {
			return nil, sterrors.ValidationError{
				Field:  "created_at",
				Value:  *r.CreatedAt,
				Reason: "must be a YYYY-MM-DD HH:MM:SS timestamp",
			}
		}
		createdAt = ts
	}

	return task.New(*r.ID, f, createdAt)
}

func encode(format Format, records []record) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2) //nolint:mnd // two-space YAML indent
		if err := enc.Encode(records); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(tomlDocument{Tasks: records}); err != nil {
			return nil, err
		}
	default:
		data, err := json.MarshalIndent(records, "", "    ")
		if err != nil {
			return nil, err
		}
		buf.Write(data)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// decode parses the document into raw records. Only a document that cannot
// be parsed, or is not a sequence, fails here; field types are checked later
// by recordFromRaw so one bad record is reported as invalid, not corrupt.
func decode(format Format, data []byte) ([]any, error) {
	var raw []any

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatTOML:
		var doc map[string]any
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, err
		}
		switch tasks := doc["tasks"].(type) {
		case nil:
		case []map[string]any:
			for _, t := range tasks {
				raw = append(raw, t)
			}
		case []any:
			raw = tasks
		default:
			return nil, fmt.Errorf("tasks must be an array of tables, got %T", tasks)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}

	return raw, nil
}

func wrongType(field string, v any, want string) error {
	return sterrors.ValidationError{
		Field:  field,
		Value:  fmt.Sprint(v),
		Reason: "wrong type: must be " + want,
	}
}

// recordFromRaw checks the type of every known key in one decoded record.
// A null value counts as a missing key.
func recordFromRaw(raw any) (record, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return record{}, sterrors.ValidationError{Field: "record", Reason: "must be a mapping of field names to values"}
	}

	var r record
	if v, ok := m["id"]; ok && v != nil {
		id, ok := asInt(v)
		if !ok {
			return record{}, wrongType("id", v, "an integer")
		}
		r.ID = &id
	}

	for _, f := range []struct {
		name string
		dst  **string
	}{
		{"title", &r.Title},
		{"description", &r.Description},
		{"due_date", &r.DueDate},
		{"priority", &r.Priority},
		{"status", &r.Status},
		{"created_at", &r.CreatedAt},
	} {
		v, ok := m[f.name]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return record{}, wrongType(f.name, v, "a string")
		}
		*f.dst = &s
	}

	return r, nil
}

// asInt accepts the integer forms each decoder produces: int (YAML), int64
// (TOML) and integral float64 (JSON).
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
