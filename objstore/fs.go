package objstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FS stores blobs as files.  Names are paths, relative to Root when Root is
// set.
type FS struct {
	Root string
}

func (f *FS) path(name string) string {
	if f.Root == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(f.Root, name)
}

// Get reads the file name.
func (f *FS) Get(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("objstore: read %s: %w", name, err)
	}
	return data, nil
}

// Put writes data to name, creating parent directories as needed.  The file
// is written to a temporary sibling first and renamed into place.
func (f *FS) Put(_ context.Context, name string, data []byte, opts PutOptions) error {
	p := f.path(name)
	mode := os.FileMode(0o644)
	if opts.Private {
		mode = 0o600
	}
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("objstore: create %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".tmp-*")
	if err != nil {
		return fmt.Errorf("objstore: create %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("objstore: write %s: %w", name, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("objstore: chmod %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("objstore: close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("objstore: rename %s: %w", name, err)
	}
	return nil
}
