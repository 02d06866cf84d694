package vfs

import (
	"errors"
	"io"
	"io/fs"
	"testing"
)

func TestMemFSAddFile(t *testing.T) {
	m := NewMemFS()
	if err := m.AddFile("/deep/nested/file.txt", "content"); err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}
	if !m.Exists("/deep/nested") {
		t.Error("parent dirs should be created")
	}
	files := m.Files()
	if len(files) != 1 || files[0] != "/deep/nested/file.txt" {
		t.Errorf("Files = %v", files)
	}
}

func TestMemFSRelativePaths(t *testing.T) {
	m := NewMemFS()
	m.AddFile("dir/file.txt", "x")
	if !m.Exists("/dir/file.txt") {
		t.Error("relative path should resolve from root")
	}
}

func TestMemFSWriteMissingParent(t *testing.T) {
	m := NewMemFS()
	if _, err := m.OpenFile("/nope/file.txt", OpenWrite); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	if _, err := m.TempFile("/nope", "x"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemFSOpenDirectory(t *testing.T) {
	m := NewMemFS()
	m.MkdirAll("/dir", 0755)
	if _, err := m.OpenFile("/dir", OpenRead); err == nil {
		t.Error("opening a directory should fail")
	}
	if err := m.Rename("/dir", "/other"); err == nil {
		t.Error("renaming a directory should fail")
	}
	if err := m.Remove("/"); err == nil {
		t.Error("removing a non-empty root should fail")
	}
}

func TestMemFSHandleSurvivesRename(t *testing.T) {
	m := NewMemFS()
	m.AddFile("/a.txt", "data")

	f, err := m.OpenFile("/a.txt", OpenRead)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := m.Rename("/a.txt", "/b.txt"); err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(f)
	if err != nil || string(got) != "data" {
		t.Errorf("read after rename = %q, %v", got, err)
	}
}

func TestMemFSHandleSeek(t *testing.T) {
	m := NewMemFS()
	f, err := m.OpenFile("/f.txt", OpenWrite)
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(f, "abc")

	if pos, err := f.Seek(-1, io.SeekCurrent); err != nil || pos != 2 {
		t.Errorf("SeekCurrent = %d, %v", pos, err)
	}
	if _, err := f.Seek(-10, io.SeekStart); err == nil {
		t.Error("negative seek should fail")
	}
	if _, err := f.Seek(0, 42); err == nil {
		t.Error("bad whence should fail")
	}

	// Writing past the end zero fills the gap.
	f.Seek(5, io.SeekStart)
	io.WriteString(f, "z")
	got, _ := m.ReadFile("/f.txt")
	if string(got) != "abc\x00\x00z" {
		t.Errorf("got %q", got)
	}
}

func TestMemFSHandleClosed(t *testing.T) {
	m := NewMemFS()
	f, _ := m.OpenFile("/f.txt", OpenWrite)
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("second close = %v", err)
	}
	if _, err := f.Read(make([]byte, 1)); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("read after close = %v", err)
	}
	if _, err := f.Write([]byte("x")); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("write after close = %v", err)
	}
}

func TestMemFSInvalidMode(t *testing.T) {
	m := NewMemFS()
	if _, err := m.OpenFile("/f.txt", OpenMode(7)); err == nil {
		t.Error("invalid mode should fail")
	}
}
