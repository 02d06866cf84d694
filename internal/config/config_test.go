package config

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/dshills/bbuf/internal/engine"
	"github.com/dshills/bbuf/internal/engine/buffer"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(s), nil
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	buf := c.Buffer()
	if buf.WindowSize != buffer.DefaultWindowSize {
		t.Errorf("WindowSize = %d, want %d", buf.WindowSize, buffer.DefaultWindowSize)
	}
	if buf.MaxScratch != 0 || buf.NarrowCodeUnits {
		t.Errorf("Buffer() = %+v", buf)
	}

	eng := c.Engine()
	if eng.MaxUndo != engine.DefaultMaxUndoEntries {
		t.Errorf("MaxUndo = %d, want %d", eng.MaxUndo, engine.DefaultMaxUndoEntries)
	}
	if eng.WatchDelay != engine.DefaultWatchDelay {
		t.Errorf("WatchDelay = %v, want %v", eng.WatchDelay, engine.DefaultWatchDelay)
	}
	if eng.Encoding != "" || eng.ReadOnly {
		t.Errorf("Engine() = %+v", eng)
	}

	log := c.Logging()
	if log.Level != "info" || log.Format != "console" || log.Output != "stderr" {
		t.Errorf("Logging() = %+v", log)
	}

	for _, path := range Settings() {
		if src, _ := c.Source(path); src != SourceDefault {
			t.Errorf("Source(%q) = %v, want default", path, src)
		}
	}
}

func TestConfig_LoadTOML(t *testing.T) {
	fsys := memFS{"/etc/bbuf.toml": `
[logging]
level = "debug"

[buffer]
windowSize = 4096
narrowCodeUnits = true

[engine]
encoding = "utf-16le"
watchDelay = "250ms"
`}

	c := New(WithFile("/etc/bbuf.toml"), WithFileSystem(fsys), WithEnvPrefix(""))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := c.Logging().Level; got != "debug" {
		t.Errorf("logging.level = %q, want 'debug'", got)
	}
	buf := c.Buffer()
	if buf.WindowSize != 4096 || !buf.NarrowCodeUnits {
		t.Errorf("Buffer() = %+v", buf)
	}
	eng := c.Engine()
	if eng.Encoding != "utf-16le" {
		t.Errorf("engine.encoding = %q", eng.Encoding)
	}
	if eng.WatchDelay != 250*time.Millisecond {
		t.Errorf("engine.watchDelay = %v", eng.WatchDelay)
	}

	if src, _ := c.Source("buffer.windowSize"); src != SourceFile {
		t.Errorf("Source(buffer.windowSize) = %v, want file", src)
	}
	if src, _ := c.Source("engine.maxUndo"); src != SourceDefault {
		t.Errorf("Source(engine.maxUndo) = %v, want default", src)
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	fsys := memFS{"/bbuf.yml": "engine:\n  maxUndo: 50\n  readOnly: true\n  watchDelay: 20\n"}

	c := New(WithFile("/bbuf.yml"), WithFileSystem(fsys), WithEnvPrefix(""))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	eng := c.Engine()
	if eng.MaxUndo != 50 || !eng.ReadOnly {
		t.Errorf("Engine() = %+v", eng)
	}
	if eng.WatchDelay != 20*time.Millisecond {
		t.Errorf("WatchDelay = %v, want 20ms", eng.WatchDelay)
	}
}

func TestConfig_LoadEnvOverridesFile(t *testing.T) {
	t.Setenv("BBUF_WINDOW_SIZE", "8192")
	t.Setenv("BBUF_READ_ONLY", "1")
	t.Setenv("BBUF_BUFFER_MAX_SCRATCH", "1024")
	t.Setenv("BBUF_NOT_A_SETTING", "ignored")

	fsys := memFS{"/bbuf.toml": "[buffer]\nwindowSize = 4096\n"}
	c := New(WithFile("/bbuf.toml"), WithFileSystem(fsys))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	buf := c.Buffer()
	if buf.WindowSize != 8192 {
		t.Errorf("WindowSize = %d, want 8192", buf.WindowSize)
	}
	if buf.MaxScratch != 1024 {
		t.Errorf("MaxScratch = %d, want 1024", buf.MaxScratch)
	}
	if !c.Engine().ReadOnly {
		t.Error("ReadOnly = false, want true")
	}
	if src, _ := c.Source("buffer.windowSize"); src != SourceEnv {
		t.Errorf("Source = %v, want env", src)
	}
}

func TestConfig_LoadMissingFile(t *testing.T) {
	c := New(WithFile("/missing.toml"), WithFileSystem(memFS{}), WithEnvPrefix(""))
	err := c.Load(context.Background())
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("Load() error = %v, want ErrFileNotFound", err)
	}
}

func TestConfig_LoadUnsupportedFormat(t *testing.T) {
	c := New(WithFile("/bbuf.json"), WithFileSystem(memFS{"/bbuf.json": "{}"}), WithEnvPrefix(""))
	if err := c.Load(context.Background()); err == nil {
		t.Fatal("expected error for .json config")
	}
}

func TestConfig_LoadInvalid(t *testing.T) {
	fsys := memFS{"/bbuf.toml": `
[logging]
level = "loud"
colour = true

[buffer]
windowSize = 8
maxScratch = "big"

[engine]
encoding = "latin1"
`}

	c := New(WithFile("/bbuf.toml"), WithFileSystem(fsys), WithEnvPrefix(""))
	err := c.Load(context.Background())
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("error %v does not match ErrValidationFailed", err)
	}
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("error %v does not match ErrTypeMismatch", err)
	}

	codes := map[string]ValidationErrorCode{
		"logging.level":     ErrCodeInvalidEnum,
		"logging.colour":    ErrCodeUnknownSetting,
		"buffer.windowSize": ErrCodeOutOfRange,
		"buffer.maxScratch": ErrCodeTypeMismatch,
		"engine.encoding":   ErrCodeInvalidEnum,
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("error %T is not a joined error", err)
	}
	errs := joined.Unwrap()
	if len(errs) != len(codes) {
		t.Fatalf("got %d errors, want %d: %v", len(errs), len(codes), err)
	}
	for _, e := range errs {
		var ve *ValidationError
		if !errors.As(e, &ve) {
			t.Errorf("error %v is not a ValidationError", e)
			continue
		}
		if want, ok := codes[ve.Path]; !ok || ve.Code != want {
			t.Errorf("%s: code = %v, want %v", ve.Path, ve.Code, want)
		}
	}

	// Failed loads keep the previous values.
	if got := c.Logging().Level; got != "info" {
		t.Errorf("logging.level = %q after failed load, want 'info'", got)
	}
}

func TestConfig_Set(t *testing.T) {
	c := Default()

	if err := c.Set("engine.maxUndo", int64(5)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := c.GetInt("engine.maxUndo"); got != 5 {
		t.Errorf("engine.maxUndo = %d, want 5", got)
	}
	if src, _ := c.Source("engine.maxUndo"); src != SourceSet {
		t.Errorf("Source = %v, want set", src)
	}

	if err := c.Set("engine.watchDelay", "1s"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := c.GetDuration("engine.watchDelay"); got != time.Second {
		t.Errorf("engine.watchDelay = %v, want 1s", got)
	}

	if err := c.Set("buffer.narrowCodeUnits", 2); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Set(bool, 2) error = %v, want type mismatch", err)
	}
	if err := c.Set("buffer.maxScratch", 2); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Set(maxScratch, 2) error = %v, want validation failure", err)
	}
	if err := c.Set("no.such", 1); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("Set(unknown) error = %v, want ErrSettingNotFound", err)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestConfig_Getters(t *testing.T) {
	c := Default()

	if _, err := c.GetString("nope"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("GetString(nope) error = %v", err)
	}
	if _, err := c.GetInt("logging.level"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetInt(logging.level) error = %v, want type mismatch", err)
	}
	if _, err := c.GetBool("engine.maxUndo"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetBool(engine.maxUndo) error = %v, want type mismatch", err)
	}
	if _, err := c.GetDuration("engine.readOnly"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetDuration(engine.readOnly) error = %v, want type mismatch", err)
	}
}

func TestConfig_Merged(t *testing.T) {
	merged := Default().Merged()

	logging, ok := merged["logging"].(map[string]any)
	if !ok {
		t.Fatalf("merged[logging] = %T", merged["logging"])
	}
	if logging["format"] != "console" {
		t.Errorf("logging.format = %v", logging["format"])
	}
	if len(merged) != 3 {
		t.Errorf("merged has %d sections, want 3", len(merged))
	}
}

func TestDescribe(t *testing.T) {
	d, ok := Describe("buffer.windowSize")
	if !ok {
		t.Fatal("Describe(buffer.windowSize) not found")
	}
	if !strings.HasPrefix(d, "buffer.windowSize (int, default ") {
		t.Errorf("Describe = %q", d)
	}
	if _, ok := Describe("nope"); ok {
		t.Error("Describe(nope) found")
	}
}

func TestSource_String(t *testing.T) {
	tests := []struct {
		s    Source
		want string
	}{
		{SourceDefault, "default"},
		{SourceFile, "file"},
		{SourceEnv, "env"},
		{SourceSet, "set"},
		{Source(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Source(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
