package devstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kingrea/roster/internal/employee"
)

// Snapshot keeps the collection in a JSON file between runs. A missing file
// loads as an empty collection.
type Snapshot struct {
	path string
	now  func() time.Time
}

type snapshotFile struct {
	SavedAt   time.Time           `json:"saved_at"`
	Employees []employee.Employee `json:"employees"`
}

// NewSnapshot returns a snapshot backed by path.
func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path, now: time.Now}
}

// Path returns the backing file.
func (s *Snapshot) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Load reads the saved records in their stored order.
func (s *Snapshot) Load() ([]employee.Employee, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("devstore: read snapshot: %w", err)
	}
	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("devstore: invalid snapshot %s: %w", s.path, err)
	}
	return file.Employees, nil
}

// Save replaces the file with records. The write goes through a temp file in
// the same directory so a crash never leaves a half-written snapshot.
func (s *Snapshot) Save(records []employee.Employee) error {
	if records == nil {
		records = []employee.Employee{}
	}
	encoded, err := json.MarshalIndent(snapshotFile{SavedAt: s.now().UTC(), Employees: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("devstore: encode snapshot: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("devstore: create snapshot temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("devstore: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("devstore: write snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
