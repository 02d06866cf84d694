// Package vfs provides a virtual file system abstraction.
//
// The VFS interface allows swapping the underlying file system implementation,
// enabling testing with in-memory file systems. Files it opens are seekable
// byte streams suitable as buffer sources and sinks.
package vfs

import (
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/google/uuid"
)

// OpenMode selects how OpenFile opens a path.
type OpenMode uint8

const (
	// OpenRead opens an existing file for reading.
	OpenRead OpenMode = iota

	// OpenWrite opens a file for reading and writing, creating it or
	// truncating it to zero length.
	OpenWrite

	// OpenAppend opens a file for reading and writing, creating it if
	// needed. Every write goes to the end of the file.
	OpenAppend
)

// String returns the mode name.
func (m OpenMode) String() string {
	switch m {
	case OpenRead:
		return "read"
	case OpenWrite:
		return "write"
	case OpenAppend:
		return "append"
	default:
		return fmt.Sprintf("OpenMode(%d)", m)
	}
}

// File is an open file. Seek supports all three whence values.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer

	// Name returns the path the file was opened with.
	Name() string
}

// VFS is a virtual file system abstraction.
// It provides a unified interface for file operations across different
// storage backends (OS file system, in-memory).
type VFS interface {
	// OpenFile opens path in the given mode.
	OpenFile(path string, mode OpenMode) (File, error)

	// TempFile creates a new file in dir, opened for writing, whose name
	// starts with hint and carries a random suffix.
	TempFile(dir, hint string) (File, error)

	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm fs.FileMode) error

	// Remove removes a file or empty directory.
	Remove(path string) error

	// Rename renames (moves) a file, replacing any file at newPath.
	Rename(oldPath, newPath string) error

	// Exists returns true if the path exists.
	Exists(path string) bool

	// Dir returns the directory portion of a path.
	Dir(path string) string

	// Join joins path elements.
	Join(elem ...string) string
}

// tempName returns a file name for TempFile.
func tempName(hint string) string {
	if hint == "" {
		hint = "tmp"
	}
	return "." + hint + "." + uuid.NewString() + ".tmp"
}

// FileInfo describes a file or directory.
type FileInfo struct {
	path    string
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

// NewFileInfo creates a FileInfo from the given parameters.
func NewFileInfo(path, name string, size int64, mode fs.FileMode, modTime time.Time, isDir bool) FileInfo {
	return FileInfo{
		path:    path,
		name:    name,
		size:    size,
		mode:    mode,
		modTime: modTime,
		isDir:   isDir,
	}
}

// Path returns the full path.
func (fi FileInfo) Path() string { return fi.path }

// Name returns the base name.
func (fi FileInfo) Name() string { return fi.name }

// Size returns the file size in bytes.
func (fi FileInfo) Size() int64 { return fi.size }

// Mode returns the file mode.
func (fi FileInfo) Mode() fs.FileMode { return fi.mode }

// ModTime returns the modification time.
func (fi FileInfo) ModTime() time.Time { return fi.modTime }

// IsDir returns true if this is a directory.
func (fi FileInfo) IsDir() bool { return fi.isDir }

// IsRegular returns true if this is a regular file.
func (fi FileInfo) IsRegular() bool { return fi.mode.IsRegular() }
