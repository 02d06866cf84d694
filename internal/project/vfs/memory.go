package vfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

// Standard error values for MemFS operations.
// These align with POSIX errors for consistency with OSFS.
var (
	errIsDir    = syscall.EISDIR
	errNotEmpty = syscall.ENOTEMPTY
	errNotDir   = syscall.ENOTDIR
	errClosed   = fs.ErrClosed
	errReadOnly = errors.New("file opened read-only")
)

// MemFS implements VFS using an in-memory file system.
// It is primarily used for testing.
//
// MemFS is safe for concurrent use. Open handles keep referring to their
// file across a Rename, as on POSIX systems.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memFile
	dirs  map[string]bool
}

type memFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMemFS creates a new in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string]*memFile),
		dirs:  map[string]bool{"/": true},
	}
}

// Ensure MemFS implements VFS.
var _ VFS = (*MemFS)(nil)

// OpenFile opens path in the given mode.
func (m *MemFS) OpenFile(filePath string, mode OpenMode) (File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = m.cleanPath(filePath)
	if m.dirs[filePath] {
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: errIsDir}
	}

	f, ok := m.files[filePath]
	switch mode {
	case OpenRead:
		if !ok {
			return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrNotExist}
		}
	case OpenWrite, OpenAppend:
		if !ok {
			if err := m.checkParentLocked("open", filePath); err != nil {
				return nil, err
			}
			f = &memFile{mode: 0o644, modTime: time.Now()}
			m.files[filePath] = f
		} else if mode == OpenWrite {
			f.content = nil
			f.modTime = time.Now()
		}
	default:
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fmt.Errorf("invalid mode %v", mode)}
	}
	return &memHandle{fs: m, name: filePath, file: f, mode: mode}, nil
}

// TempFile creates a new file in dir for writing.
func (m *MemFS) TempFile(dir, hint string) (File, error) {
	if dir == "" {
		dir = "/tmp"
	}
	name := m.cleanPath(path.Join(dir, tempName(hint)))

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkParentLocked("open", name); err != nil {
		return nil, err
	}
	if _, ok := m.files[name]; ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrExist}
	}
	f := &memFile{mode: 0o644, modTime: time.Now()}
	m.files[name] = f
	return &memHandle{fs: m, name: name, file: f, mode: OpenWrite}, nil
}

// ReadFile reads the entire file content.
func (m *MemFS) ReadFile(filePath string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = m.cleanPath(filePath)
	f, ok := m.files[filePath]
	if !ok {
		if m.dirs[filePath] {
			return nil, &fs.PathError{Op: "read", Path: filePath, Err: errIsDir}
		}
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: fs.ErrNotExist}
	}

	// Return a copy to prevent modification
	content := make([]byte, len(f.content))
	copy(content, f.content)
	return content, nil
}

// WriteFile writes data to a file, creating it if necessary.
func (m *MemFS) WriteFile(filePath string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = m.cleanPath(filePath)

	// Check if path is a directory
	if m.dirs[filePath] {
		return &fs.PathError{Op: "write", Path: filePath, Err: errIsDir}
	}
	if err := m.checkParentLocked("write", filePath); err != nil {
		return err
	}

	// Make a copy of the data
	content := make([]byte, len(data))
	copy(content, data)

	m.files[filePath] = &memFile{
		content: content,
		mode:    perm,
		modTime: time.Now(),
	}
	return nil
}

// Stat returns file information.
func (m *MemFS) Stat(filePath string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = m.cleanPath(filePath)

	if f, ok := m.files[filePath]; ok {
		return NewFileInfo(
			filePath,
			path.Base(filePath),
			int64(len(f.content)),
			f.mode,
			f.modTime,
			false,
		), nil
	}

	if m.dirs[filePath] {
		return NewFileInfo(
			filePath,
			path.Base(filePath),
			0,
			fs.ModeDir|0755,
			time.Now(),
			true,
		), nil
	}

	return FileInfo{}, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
}

// MkdirAll creates a directory and all parent directories.
func (m *MemFS) MkdirAll(dirPath string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dirPath = m.cleanPath(dirPath)

	// Check if it's a file
	if _, ok := m.files[dirPath]; ok {
		return &fs.PathError{Op: "mkdir", Path: dirPath, Err: errNotDir}
	}

	// Create all directories in path
	parts := strings.Split(strings.Trim(dirPath, "/"), "/")
	current := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		current += "/" + part
		if _, ok := m.files[current]; ok {
			return &fs.PathError{Op: "mkdir", Path: current, Err: errNotDir}
		}
		m.dirs[current] = true
	}

	return nil
}

// Remove removes a file or empty directory.
func (m *MemFS) Remove(filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = m.cleanPath(filePath)

	// Check if it's a file
	if _, ok := m.files[filePath]; ok {
		delete(m.files, filePath)
		return nil
	}

	// Check if it's a directory
	if !m.dirs[filePath] {
		return &fs.PathError{Op: "remove", Path: filePath, Err: fs.ErrNotExist}
	}

	// Check if directory is empty
	prefix := filePath
	if prefix != "/" {
		prefix += "/"
	}
	for f := range m.files {
		if strings.HasPrefix(f, prefix) {
			return &fs.PathError{Op: "remove", Path: filePath, Err: errNotEmpty}
		}
	}
	for d := range m.dirs {
		if d != filePath && strings.HasPrefix(d, prefix) {
			return &fs.PathError{Op: "remove", Path: filePath, Err: errNotEmpty}
		}
	}

	delete(m.dirs, filePath)
	return nil
}

// Rename renames (moves) a file, replacing any file at newPath.
func (m *MemFS) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldPath = m.cleanPath(oldPath)
	newPath = m.cleanPath(newPath)

	f, ok := m.files[oldPath]
	if !ok {
		if m.dirs[oldPath] {
			return &fs.PathError{Op: "rename", Path: oldPath, Err: errIsDir}
		}
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
	}
	if m.dirs[newPath] {
		return &fs.PathError{Op: "rename", Path: newPath, Err: errIsDir}
	}
	if err := m.checkParentLocked("rename", newPath); err != nil {
		return err
	}

	m.files[newPath] = f
	if newPath != oldPath {
		delete(m.files, oldPath)
	}
	return nil
}

// Exists returns true if the path exists.
func (m *MemFS) Exists(filePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = m.cleanPath(filePath)
	_, isFile := m.files[filePath]
	return isFile || m.dirs[filePath]
}

// Dir returns the directory portion of a path.
func (m *MemFS) Dir(filePath string) string {
	return path.Dir(m.cleanPath(filePath))
}

// Join joins path elements.
func (m *MemFS) Join(elem ...string) string {
	return path.Join(elem...)
}

func (m *MemFS) checkParentLocked(op, filePath string) error {
	dir := path.Dir(filePath)
	if dir != "/" && !m.dirs[dir] {
		return &fs.PathError{Op: op, Path: filePath, Err: fs.ErrNotExist}
	}
	return nil
}

// cleanPath normalizes a path.
func (m *MemFS) cleanPath(p string) string {
	p = path.Clean(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// AddFile is a convenience method for adding files during setup.
func (m *MemFS) AddFile(filePath string, content string) error {
	// Ensure parent directories exist
	dir := path.Dir(m.cleanPath(filePath))
	if dir != "/" {
		if err := m.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return m.WriteFile(filePath, []byte(content), 0644)
}

// Files returns all file paths in the file system.
// Useful for testing and debugging.
func (m *MemFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]string, 0, len(m.files))
	for f := range m.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// memHandle is an open MemFS file.
type memHandle struct {
	fs     *MemFS
	name   string
	file   *memFile
	mode   OpenMode
	pos    int64
	closed bool
}

func (h *memHandle) Name() string { return h.name }

func (h *memHandle) Read(p []byte) (int, error) {
	if h.closed {
		return 0, &fs.PathError{Op: "read", Path: h.name, Err: errClosed}
	}
	h.fs.mu.RLock()
	defer h.fs.mu.RUnlock()

	if h.pos >= int64(len(h.file.content)) {
		return 0, io.EOF
	}
	n := copy(p, h.file.content[h.pos:])
	h.pos += int64(n)
	return n, nil
}

func (h *memHandle) Write(p []byte) (int, error) {
	if h.closed {
		return 0, &fs.PathError{Op: "write", Path: h.name, Err: errClosed}
	}
	if h.mode == OpenRead {
		return 0, &fs.PathError{Op: "write", Path: h.name, Err: errReadOnly}
	}
	h.fs.mu.Lock()
	defer h.fs.mu.Unlock()

	f := h.file
	if h.mode == OpenAppend {
		h.pos = int64(len(f.content))
	}
	end := h.pos + int64(len(p))
	if oldLen := int64(len(f.content)); end > oldLen {
		if end > int64(cap(f.content)) {
			grown := make([]byte, end, max(end, 2*int64(cap(f.content))))
			copy(grown, f.content)
			f.content = grown
		} else {
			f.content = f.content[:end]
			if h.pos > oldLen {
				clear(f.content[oldLen:h.pos])
			}
		}
	}
	copy(f.content[h.pos:], p)
	h.pos = end
	f.modTime = time.Now()
	return len(p), nil
}

func (h *memHandle) Seek(offset int64, whence int) (int64, error) {
	if h.closed {
		return 0, &fs.PathError{Op: "seek", Path: h.name, Err: errClosed}
	}
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = h.pos
	case io.SeekEnd:
		h.fs.mu.RLock()
		base = int64(len(h.file.content))
		h.fs.mu.RUnlock()
	default:
		return 0, &fs.PathError{Op: "seek", Path: h.name, Err: syscall.EINVAL}
	}
	pos := base + offset
	if pos < 0 {
		return 0, &fs.PathError{Op: "seek", Path: h.name, Err: syscall.EINVAL}
	}
	h.pos = pos
	return pos, nil
}

func (h *memHandle) Close() error {
	if h.closed {
		return &fs.PathError{Op: "close", Path: h.name, Err: errClosed}
	}
	h.closed = true
	return nil
}
