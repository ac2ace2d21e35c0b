package data

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Staged is a fully written and synced temporary file waiting to be renamed
// over its target. Exactly one of Commit or Discard should be called.
type Staged struct {
	Path string
	tmp  string
}

// Stage writes the content for path to a temporary file in the same
// directory. Nothing at path changes until Commit.
func Stage(path string, write func(w io.Writer) error) (_ *Staged, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = bw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return nil, fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return nil, err
	}
	return &Staged{Path: path, tmp: tmp.Name()}, nil
}

// Commit renames the staged file into place.
func (s *Staged) Commit() error {
	if err := os.Rename(s.tmp, s.Path); err != nil {
		os.Remove(s.tmp)
		return fmt.Errorf("failed to publish %s: %w", s.Path, err)
	}
	return nil
}

// Discard removes the staged file, leaving path untouched.
func (s *Staged) Discard() error {
	if err := os.Remove(s.tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Publish writes path via a temporary file in the same directory that is
// renamed into place once write and sync succeed. Readers never observe a
// partially written file.
func Publish(path string, write func(w io.Writer) error) error {
	s, err := Stage(path, write)
	if err != nil {
		return err
	}
	return s.Commit()
}
