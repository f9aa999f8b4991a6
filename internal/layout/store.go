package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// activeFile is the single active layout record inside the store
// directory. A new save fully overwrites it.
const activeFile = "layout.json"

// PersistenceError reports a storage write or read failure. Write
// failures are pipeline-fatal: the result is discarded rather than left
// partially saved.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("layout store: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ErrNotFound is returned by Load when no layout has been saved yet.
var ErrNotFound = errors.New("no layout saved")

// Store persists the single active Layout under a directory. It is the
// only component that touches the on-disk representation.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on
// first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of the active layout record.
func (s *Store) Path() string {
	return filepath.Join(s.dir, activeFile)
}

// Save validates the layout and atomically replaces the active record.
// The JSON is written to a temp file in the same directory and renamed
// into place, so a crash mid-write never leaves a truncated layout.
func (s *Store) Save(l *Layout) error {
	if err := l.Validate(); err != nil {
		return &PersistenceError{Op: "validate", Err: err}
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return &PersistenceError{Op: "create store directory", Err: err}
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, "layout-*.json.tmp")
	if err != nil {
		return &PersistenceError{Op: "create temp file", Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &PersistenceError{Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Op: "close temp file", Err: err}
	}

	if err := os.Rename(tmpPath, s.Path()); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Op: "replace active layout", Err: err}
	}
	return nil
}

// Load reads the active layout record back. Returns ErrNotFound when
// nothing has been saved.
func (s *Store) Load() (*Layout, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "read", Err: err}
	}

	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, &PersistenceError{Op: "decode", Err: err}
	}
	return &l, nil
}
