package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// ValidatingSpec is a stored document that can sanity-check itself on load.
type ValidatingSpec interface {
	Validate() error
}

// Record is the versioned JSON envelope wrapped around a stored document.
type Record[T ValidatingSpec] struct {
	Version uint      `json:"version"`
	SavedAt time.Time `json:"savedAt"`
	Spec    T         `json:"spec"`
}

// DocStore persists a single JSON document at a fixed path. Writes go
// through a temp file and rename so an interrupted process never leaves a
// partial file behind.
type DocStore[T ValidatingSpec] struct {
	path string

	mu sync.RWMutex
}

func NewDocStore[T ValidatingSpec](path string) *DocStore[T] {
	return &DocStore[T]{path: path}
}

// Save writes the document, replacing whatever was there.
func (s *DocStore[T]) Save(spec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &Record[T]{
		Version: 1,
		SavedAt: time.Now().UTC(),
		Spec:    spec,
	}

	jsonData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	return atomicWrite(s.path, jsonData, 0644)
}

// Load reads the document back. The second return is false when no
// document has been saved yet.
func (s *DocStore[T]) Load() (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T

	jsonData, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("reading file: %w", err)
	}

	var rec Record[T]
	if err := json.Unmarshal(jsonData, &rec); err != nil {
		return zero, false, fmt.Errorf("unmarshalling record: %w", err)
	}

	if err := rec.Spec.Validate(); err != nil {
		return zero, false, fmt.Errorf("validating record: %w", err)
	}

	return rec.Spec, true, nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
