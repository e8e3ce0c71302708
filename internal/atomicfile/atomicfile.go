// Package atomicfile replaces files on a billy filesystem without ever
// exposing a partially written file to readers.
package atomicfile

import (
	"fmt"
	"path"

	"github.com/go-git/go-billy/v6"
)

// Staged is a fully written temporary file waiting to replace its target.
type Staged struct {
	fs     billy.Filesystem
	target string
	temp   string
	done   bool
}

type syncer interface {
	Sync() error
}

// Stage writes data to a temporary file next to name. The target is not
// touched until Publish.
func Stage(fs billy.Filesystem, name string, data []byte) (*Staged, error) {
	dir := path.Dir(name)
	if dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := fs.TempFile(dir, "."+path.Base(name)+".tmp-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file for %s: %w", name, err)
	}
	temp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = fs.Remove(temp)
		return nil, fmt.Errorf("failed to write %s: %w", temp, err)
	}
	// osfs files wrap *os.File; memfs files have nothing to flush.
	if s, ok := f.(syncer); ok {
		if err := s.Sync(); err != nil {
			_ = f.Close()
			_ = fs.Remove(temp)
			return nil, fmt.Errorf("failed to sync %s: %w", temp, err)
		}
	}
	if err := f.Close(); err != nil {
		_ = fs.Remove(temp)
		return nil, fmt.Errorf("failed to close %s: %w", temp, err)
	}

	return &Staged{fs: fs, target: name, temp: temp}, nil
}

// Publish renames the temporary file over the target.
func (s *Staged) Publish() error {
	if s.done {
		return fmt.Errorf("staged file for %s already finished", s.target)
	}
	s.done = true
	if err := s.fs.Rename(s.temp, s.target); err != nil {
		_ = s.fs.Remove(s.temp)
		return fmt.Errorf("failed to replace %s: %w", s.target, err)
	}
	return nil
}

// Discard removes the temporary file and leaves the target unchanged.
func (s *Staged) Discard() {
	if s.done {
		return
	}
	s.done = true
	_ = s.fs.Remove(s.temp)
}

// WriteFile atomically replaces name with data.
func WriteFile(fs billy.Filesystem, name string, data []byte) error {
	staged, err := Stage(fs, name, data)
	if err != nil {
		return err
	}
	return staged.Publish()
}
