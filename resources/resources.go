// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package resources abstracts the filesystem the pipeline reads and writes
// through, grounded on the teacher's loader.Result/loader.All filesystem
// walk, generalized to a narrow interface so tests can substitute an
// in-memory implementation instead of touching disk.
package resources

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/dark-lua/darklua-core/dlerror"
)

// Resources is the storage surface the bundler and the CLI use; every
// method takes a path in the same "/"-separated form the AST and bundler
// use internally, regardless of the underlying OS separator.
type Resources interface {
	// Exists reports whether path names a readable resource.
	Exists(path string) bool
	// IsDirectory reports whether path names a directory.
	IsDirectory(path string) bool
	// Get returns path's raw content.
	Get(path string) ([]byte, error)
	// Write stores content at path, creating parent directories as needed.
	Write(path string, content []byte) error
	// ListDirectory returns the immediate entries of path, relative to path.
	ListDirectory(path string) ([]string, error)
}

// FS is the default Resources implementation, rooted at the real OS
// filesystem.
type FS struct{}

// NewFS returns a Resources backed by the OS filesystem.
func NewFS() FS { return FS{} }

func toOSPath(path string) string {
	return filepath.FromSlash(path)
}

func (FS) Exists(path string) bool {
	_, err := os.Stat(toOSPath(path))
	return err == nil
}

func (FS) IsDirectory(path string) bool {
	info, err := os.Stat(toOSPath(path))
	if err != nil {
		return false
	}
	return info.IsDir()
}

func (FS) Get(path string) ([]byte, error) {
	content, err := os.ReadFile(toOSPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dlerror.NewResourceNotFound(path)
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return content, nil
}

func (FS) Write(path string, content []byte) error {
	dir := filepath.Dir(toOSPath(path))
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating directory for %s", path)
		}
	}
	if err := os.WriteFile(toOSPath(path), content, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func (FS) ListDirectory(path string) ([]string, error) {
	entries, err := os.ReadDir(toOSPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dlerror.NewResourceNotFound(path)
		}
		return nil, errors.Wrapf(err, "listing %s", path)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Memory is an in-memory Resources used by tests; keys are "/"-separated
// paths.
type Memory struct {
	files map[string][]byte
}

// NewMemory returns an empty in-memory Resources.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// Set seeds path with content, for test setup.
func (m *Memory) Set(path string, content []byte) {
	m.files[path] = content
}

func (m *Memory) Exists(path string) bool {
	if _, ok := m.files[path]; ok {
		return true
	}
	return m.IsDirectory(path)
}

func (m *Memory) IsDirectory(path string) bool {
	prefix := strings.TrimSuffix(path, "/") + "/"
	if prefix == "/" {
		return len(m.files) > 0
	}
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func (m *Memory) Get(path string) ([]byte, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, dlerror.NewResourceNotFound(path)
	}
	return content, nil
}

func (m *Memory) Write(path string, content []byte) error {
	m.files[path] = content
	return nil
}

func (m *Memory) ListDirectory(path string) ([]string, error) {
	prefix := strings.TrimSuffix(path, "/") + "/"
	if prefix == "/" {
		prefix = ""
	}
	seen := make(map[string]bool)
	var names []string
	for p := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if idx := strings.Index(rest, "/"); idx >= 0 {
			rest = rest[:idx]
		}
		if rest != "" && !seen[rest] {
			seen[rest] = true
			names = append(names, rest)
		}
	}
	sort.Strings(names)
	return names, nil
}
