// Package sink materializes generated files.
//
// An OutputSink is a flat, slash-separated file namespace rooted somewhere:
// a directory on disk or a map in memory. Write and Diff operate on whole
// output sets and never touch a sink until every path has been validated.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// OutputSink receives generated file content.
// Implementations MUST be safe for concurrent calls.
type OutputSink interface {
	// WriteFile writes content to the specified path.
	// The path is relative; the sink determines the actual location.
	WriteFile(ctx context.Context, path string, content []byte) error

	// ReadFile returns the content at path, or an error wrapping
	// fs.ErrNotExist.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// MkdirAll ensures dir exists.
	MkdirAll(ctx context.Context, dir string) error

	// List returns the names of regular files directly inside dir, sorted.
	// A missing dir has no files.
	List(ctx context.Context, dir string) ([]string, error)

	// Remove deletes the file at path.
	Remove(ctx context.Context, path string) error
}

// FilesystemSink writes to a directory on the local filesystem.
type FilesystemSink struct {
	// Root is the base directory for all writes.
	Root string

	// Mode is the file permission mode (default: 0644).
	Mode os.FileMode
}

// NewFilesystemSink creates a new FilesystemSink writing to the specified root directory.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{
		Root: root,
		Mode: 0644,
	}
}

// resolve maps a validated relative path into Root.
func (s *FilesystemSink) resolve(p string) (string, error) {
	if err := ValidatePath(p); err != nil {
		return "", fmt.Errorf("invalid path %q: %w", p, err)
	}
	fullPath := filepath.Join(s.Root, filepath.FromSlash(p))

	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root directory: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) && absPath != absRoot {
		return "", fmt.Errorf("path escapes root directory: %q", p)
	}
	return fullPath, nil
}

// WriteFile writes content to path within the root directory.
// It creates parent directories as needed and performs atomic writes via temp file + rename.
func (s *FilesystemSink) WriteFile(ctx context.Context, path string, content []byte) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}

	// Unique temp names keep concurrent writers apart.
	tempFile, err := os.CreateTemp(dir, ".vocabgen-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	_, writeErr := tempFile.Write(content)
	closeErr := tempFile.Close()

	cleanupTempFile := func() {
		_ = os.Remove(tempPath)
	}

	if writeErr != nil {
		cleanupTempFile()
		return fmt.Errorf("failed to write temp file: %w", writeErr)
	}
	if closeErr != nil {
		cleanupTempFile()
		return fmt.Errorf("failed to close temp file: %w", closeErr)
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		cleanupTempFile()
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := ctx.Err(); err != nil {
		cleanupTempFile()
		return err
	}
	// os.Rename atomically replaces any existing file
	if err := os.Rename(tempPath, fullPath); err != nil {
		cleanupTempFile()
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ReadFile reads path within the root directory.
func (s *FilesystemSink) ReadFile(ctx context.Context, path string) ([]byte, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

// MkdirAll creates dir within the root directory.
func (s *FilesystemSink) MkdirAll(ctx context.Context, dir string) error {
	fullPath, err := s.resolve(dir)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.MkdirAll(fullPath, 0755)
}

// List returns the regular files directly inside dir.
func (s *FilesystemSink) List(ctx context.Context, dir string) ([]string, error) {
	fullPath, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Remove deletes path within the root directory.
func (s *FilesystemSink) Remove(ctx context.Context, path string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Remove(fullPath)
}

// MemorySink stores generated files in memory.
// All operations are thread-safe.
type MemorySink struct {
	mu     sync.RWMutex
	files  map[string][]byte
	dirs   map[string]bool
	writes int
}

// NewMemorySink creates a new MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// WriteFile writes content to the in-memory store.
func (s *MemorySink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[path] = bytes.Clone(content)
	s.writes++
	return nil
}

// ReadFile returns a copy of the stored content.
func (s *MemorySink) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[p]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
	}
	return bytes.Clone(content), nil
}

// MkdirAll records dir and its parents.
func (s *MemorySink) MkdirAll(ctx context.Context, dir string) error {
	if err := ValidatePath(dir); err != nil {
		return fmt.Errorf("invalid path %q: %w", dir, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for d := dir; d != "." && d != "/"; d = path.Dir(d) {
		s.dirs[d] = true
	}
	return nil
}

// List returns the files stored directly under dir.
func (s *MemorySink) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for p := range s.files {
		if path.Dir(p) == dir {
			names = append(names, path.Base(p))
		}
	}
	slices.Sort(names)
	return names, nil
}

// Remove deletes a stored file.
func (s *MemorySink) Remove(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[p]; !ok {
		return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrNotExist}
	}
	delete(s.files, p)
	return nil
}

// Files returns a copy of all written files.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]byte, len(s.files))
	for path, content := range s.files {
		result[path] = bytes.Clone(content)
	}
	return result
}

// Get returns the content of a single file, or nil if not found.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[path]
	if !ok {
		return nil
	}
	return bytes.Clone(content)
}

// HasDir reports whether dir was created.
func (s *MemorySink) HasDir(dir string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirs[dir]
}

// Writes returns the number of WriteFile calls.
func (s *MemorySink) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Reset clears all stored files.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files = make(map[string][]byte)
	s.dirs = make(map[string]bool)
	s.writes = 0
}

// ValidatePath checks if a path is valid for output.
// Paths MUST be relative (no leading /), use / as separator,
// not contain .. components, and be clean (no ./, duplicate /).
func ValidatePath(p string) error {
	if p == "" {
		return errors.New("path is empty")
	}

	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return errors.New("absolute paths not allowed")
	}

	// Windows drive letters are rejected on every platform.
	if len(p) >= 2 && p[1] == ':' && ((p[0] >= 'A' && p[0] <= 'Z') || (p[0] >= 'a' && p[0] <= 'z')) {
		return errors.New("absolute paths not allowed")
	}

	if strings.Contains(p, `\`) {
		return errors.New("backslash separators not allowed")
	}

	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return errors.New("path traversal not allowed")
		}
	}

	if cleaned := path.Clean(p); cleaned != p {
		return fmt.Errorf("path is not clean (expected %q, got %q)", cleaned, p)
	}
	return nil
}
