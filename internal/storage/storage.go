package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sterrors "github.com/abatilo/studytrack/internal/errors"
	"github.com/abatilo/studytrack/internal/task"
)

const (
	// DefaultFile is the task document used when nothing else is configured.
	DefaultFile = "student_tasks.json"

	filePerm = 0o644
	dirPerm  = 0o755
)

// Store persists the whole task collection as a single document.
// Every Save rewrites the document in full.
type Store struct {
	path   string
	format Format
	now    func() time.Time
}

// NewStore creates a Store for the document at path. An empty format is
// inferred from the file extension.
func NewStore(path string, format Format) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("task file path is required")
	}
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = formatFromPath(path)
	}
	return &Store{path: path, format: format, now: time.Now}, nil
}

// Path returns the location of the task document.
func (s *Store) Path() string {
	return s.path
}

// Format returns the encoding used for the task document.
func (s *Store) Format() Format {
	return s.format
}

// Load reads every task from the document.
//
// A missing document yields no tasks and no error. A document that cannot be
// read or decoded yields no tasks and a StorageCorruptError; the file is left
// as it is. A record that fails validation, including a field of the wrong
// type, aborts the whole load with a ValidationError.
func (s *Store) Load() ([]*task.Task, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, sterrors.StorageCorruptError{Path: s.path, Err: err}
	}

	raw, err := decode(s.format, data)
	if err != nil {
		return nil, sterrors.StorageCorruptError{Path: s.path, Err: err}
	}

	loadedAt := s.now()
	seen := make(map[int]bool, len(raw))
	tasks := make([]*task.Task, 0, len(raw))
	for i, v := range raw {
		r, err := recordFromRaw(v)
		if err != nil {
			return nil, fmt.Errorf("record %d in %s: %w", i+1, s.path, err)
		}
		t, err := fromRecord(r, loadedAt)
		if err != nil {
			return nil, fmt.Errorf("record %d in %s: %w", i+1, s.path, err)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("record %d in %s: %w", i+1, s.path, sterrors.ValidationError{
				Field:  "id",
				Value:  strconv.Itoa(t.ID),
				Reason: "duplicate id",
			})
		}
		seen[t.ID] = true
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Save replaces the document with tasks. The new content is written to a
// temporary file and renamed into place.
func (s *Store) Save(tasks []*task.Task) error {
	records := make([]record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, toRecord(t))
	}

	data, err := encode(s.format, records)
	if err != nil {
		return sterrors.StorageWriteError{Path: s.path, Err: err}
	}
	if err := writeFileAtomic(s.path, data, filePerm); err != nil {
		return sterrors.StorageWriteError{Path: s.path, Err: err}
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return fsyncDir(dir)
}

func fsyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
