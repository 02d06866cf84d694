package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

// memFS is an in-memory file system for testing.
type memFS struct {
	files map[string][]byte
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string][]byte)}
}

func (m *memFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return data, nil
}

func TestTOMLLoader_Load(t *testing.T) {
	memfs := newMemFS()
	memfs.AddFile("/bbuf.toml", `
[logging]
level = "debug"
format = "json"

[buffer]
windowSize = 65536
narrowCodeUnits = true

[engine]
watchDelay = "250ms"
`)

	loader := NewTOMLLoaderWithFS(memfs, "/bbuf.toml")
	config, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	logging, ok := config["logging"].(map[string]any)
	if !ok {
		t.Fatal("expected logging to be a map")
	}
	if logging["level"] != "debug" {
		t.Errorf("level = %v, want 'debug'", logging["level"])
	}

	buffer, ok := config["buffer"].(map[string]any)
	if !ok {
		t.Fatal("expected buffer to be a map")
	}
	if buffer["windowSize"] != int64(65536) {
		t.Errorf("windowSize = %v (%T), want 65536", buffer["windowSize"], buffer["windowSize"])
	}
	if buffer["narrowCodeUnits"] != true {
		t.Errorf("narrowCodeUnits = %v, want true", buffer["narrowCodeUnits"])
	}
}

func TestTOMLLoader_LoadNonExistent(t *testing.T) {
	loader := NewTOMLLoaderWithFS(newMemFS(), "/nonexistent.toml")

	config, err := loader.Load()
	if err != nil {
		t.Fatalf("expected no error for non-existent file, got: %v", err)
	}
	if config != nil {
		t.Error("expected nil config for non-existent file")
	}
}

func TestTOMLLoader_LoadInvalid(t *testing.T) {
	memfs := newMemFS()
	memfs.AddFile("/invalid.toml", "[logging\nlevel = 4\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/invalid.toml").Load()
	if err == nil {
		t.Fatal("expected parse error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Path != "/invalid.toml" {
		t.Errorf("Path = %q, want '/invalid.toml'", parseErr.Path)
	}
	if parseErr.Line != 1 {
		t.Errorf("Line = %d, want 1", parseErr.Line)
	}
}

func TestTOMLLoader_LoadEmpty(t *testing.T) {
	memfs := newMemFS()
	memfs.AddFile("/empty.toml", "")

	config, err := NewTOMLLoaderWithFS(memfs, "/empty.toml").Load()
	if err != nil {
		t.Fatal(err)
	}
	if config == nil || len(config) != 0 {
		t.Errorf("config = %v, want empty map", config)
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	loader := NewTOMLLoader("")

	config, err := loader.LoadFromReader(strings.NewReader("level = \"warn\"\nsize = 12\n"))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if config["level"] != "warn" {
		t.Errorf("level = %v, want 'warn'", config["level"])
	}
	if config["size"] != int64(12) {
		t.Errorf("size = %v, want 12", config["size"])
	}
}
