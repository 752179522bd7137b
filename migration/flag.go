package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Flag is the persisted completion marker of the migration. It is kept
// outside of the relational tables so that it survives a reset of them.
type Flag interface {
	IsSet() (bool, error)
	Set() error
	Clear() error
}

// FileFlag is a marker file. Its content is the completion time, for
// diagnostics only.
type FileFlag string

func (f FileFlag) IsSet() (bool, error) {
	_, err := os.Stat(string(f))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read migration flag: %w", err)
	}
	return true, nil
}

// Set writes the marker atomically: a crash leaves either no marker or a
// complete one.
func (f FileFlag) Set() error {
	dir := filepath.Dir(string(f))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write migration flag: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".migration-*")
	if err != nil {
		return fmt.Errorf("write migration flag: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(time.Now().UTC().Format(time.RFC3339) + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("write migration flag: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write migration flag: %w", err)
	}
	if err := os.Rename(tmp.Name(), string(f)); err != nil {
		return fmt.Errorf("write migration flag: %w", err)
	}
	return nil
}

func (f FileFlag) Clear() error {
	if err := os.Remove(string(f)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear migration flag: %w", err)
	}
	return nil
}

// MemoryFlag is a Flag for tests. The error fields, when set, are returned
// by the matching method.
type MemoryFlag struct {
	mu       sync.Mutex
	set      bool
	ReadErr  error
	WriteErr error
}

func (f *MemoryFlag) IsSet() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set, f.ReadErr
}

func (f *MemoryFlag) Set() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.set = true
	return nil
}

func (f *MemoryFlag) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.set = false
	return nil
}
