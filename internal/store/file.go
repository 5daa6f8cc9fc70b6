package store

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// File is a Store backed by a directory tree: each key maps to a file
// under the root, with slash-separated keys becoming subdirectories.
// Writes go through a temp file and rename so readers never observe a
// partial blob. Conditional writes are atomic within one process only.
type File struct {
	root string
	mu   sync.Mutex // serializes conditional read-modify-write
}

// NewFile creates (if needed) and opens a filesystem store rooted at dir.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &File{root: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.root, filepath.FromSlash(key))
}

func (f *File) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Key: key}
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (f *File) Write(_ context.Context, key string, data []byte) error {
	return f.writeAtomic(key, data)
}

func (f *File) WriteConditional(_ context.Context, key string, data, expected []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := os.ReadFile(f.path(key))
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", key, err)
	}

	if expected == nil {
		if exists {
			return &ConditionFailedError{Key: key}
		}
	} else if !exists || !bytes.Equal(current, expected) {
		return &ConditionFailedError{Key: key}
	}

	return f.writeAtomic(key, data)
}

// writeAtomic writes via a temp file in the destination directory and
// renames it into place.
func (f *File) writeAtomic(key string, data []byte) error {
	path := f.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{Key: key}
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (f *File) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}
