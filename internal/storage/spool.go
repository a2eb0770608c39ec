package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrTooLarge is returned by Stage when a file exceeds the configured limit.
var ErrTooLarge = errors.New("file exceeds the maximum size")

// Spool keeps files picked during the wizard until the submission uploads
// them. A staged file is addressed by an opaque reference.
type Spool struct {
	dir     string
	maxSize int64
}

// NewSpool creates dir if needed. maxSize <= 0 disables the limit.
func NewSpool(dir string, maxSize int64) (*Spool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Spool{dir: dir, maxSize: maxSize}, nil
}

// Stage copies r into the spool and returns its reference and size.
func (s *Spool) Stage(r io.Reader) (string, int64, error) {
	ref := uuid.NewString()
	f, err := os.Create(s.path(ref))
	if err != nil {
		return "", 0, fmt.Errorf("stage file: %w", err)
	}
	defer f.Close()

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	n, err := io.Copy(f, src)
	if err != nil {
		_ = os.Remove(s.path(ref))
		return "", 0, fmt.Errorf("stage file: %w", err)
	}
	if s.maxSize > 0 && n > s.maxSize {
		_ = os.Remove(s.path(ref))
		return "", 0, ErrTooLarge
	}
	return ref, n, nil
}

// Read returns the content of a staged file.
func (s *Spool) Read(ref string) ([]byte, error) {
	if _, err := uuid.Parse(ref); err != nil {
		return nil, fmt.Errorf("invalid staged file reference %q", ref)
	}
	return os.ReadFile(s.path(ref))
}

// Touch marks a staged file as used now.
func (s *Spool) Touch(ref string) error {
	if _, err := uuid.Parse(ref); err != nil {
		return fmt.Errorf("invalid staged file reference %q", ref)
	}
	now := time.Now()
	return os.Chtimes(s.path(ref), now, now)
}

// Remove deletes a staged file. Missing files are ignored.
func (s *Spool) Remove(ref string) error {
	if _, err := uuid.Parse(ref); err != nil {
		return nil
	}
	if err := os.Remove(s.path(ref)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveOlderThan deletes staged files last modified before cutoff and
// returns how many were removed.
func (s *Spool) RemoveOlderThan(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (s *Spool) path(ref string) string {
	return filepath.Join(s.dir, ref)
}
