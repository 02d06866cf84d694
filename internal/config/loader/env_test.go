package loader

import (
	"strings"
	"testing"
	"time"
)

func TestEnvLoader_Load(t *testing.T) {
	t.Setenv("BBUF_LOG_LEVEL", "debug")
	t.Setenv("BBUF_WINDOW_SIZE", "65536")
	t.Setenv("BBUF_WATCH_DELAY", "250ms")

	loader := NewEnvLoader("BBUF_")
	config, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if val, ok := getByPath(config, "logging.level"); !ok || val != "debug" {
		t.Errorf("logging.level = %v, want 'debug'", val)
	}
	if val, ok := getByPath(config, "buffer.windowSize"); !ok || val != int64(65536) {
		t.Errorf("buffer.windowSize = %v (%T), want 65536", val, val)
	}
	if val, ok := getByPath(config, "engine.watchDelay"); !ok || val != 250*time.Millisecond {
		t.Errorf("engine.watchDelay = %v (%T), want 250ms", val, val)
	}
}

func TestEnvLoader_LoadUnmapped(t *testing.T) {
	t.Setenv("BBUF_BUFFER_MAX_SCRATCH", "4096")

	loader := NewEnvLoader("BBUF_")
	config, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if val, ok := getByPath(config, "buffer.maxScratch"); !ok || val != int64(4096) {
		t.Errorf("buffer.maxScratch = %v, want 4096", val)
	}
}

func TestEnvLoader_envToPath(t *testing.T) {
	loader := NewEnvLoader("BBUF_")

	tests := []struct {
		env      string
		expected string
	}{
		{"BBUF_BUFFER_WINDOW_SIZE", "buffer.windowSize"},
		{"BBUF_LOGGING_LEVEL", "logging.level"},
		{"BBUF_SIMPLE", "simple"},
		{"BBUF_ENGINE_NARROW_CODE_UNITS", "engine.narrowCodeUnits"},
	}

	for _, tt := range tests {
		got := loader.envToPath(tt.env)
		if got != tt.expected {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.expected)
		}
	}
}

func TestEnvLoader_parseValue(t *testing.T) {
	loader := NewEnvLoader("BBUF_")

	tests := []struct {
		input    string
		expected any
	}{
		// Booleans
		{"true", true},
		{"True", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"FALSE", false},
		{"no", false},
		{"off", false},

		// Integers, including the digits that read like flags
		{"1", int64(1)},
		{"0", int64(0)},
		{"42", int64(42)},
		{"-10", int64(-10)},

		// Floats (only with decimal point)
		{"3.14", 3.14},

		// Durations
		{"500ms", 500 * time.Millisecond},
		{"1s", time.Second},

		// Strings (default)
		{"utf-16le", "utf-16le"},
		{"hello world", "hello world"},
		{"", ""},
	}

	for _, tt := range tests {
		got := loader.parseValue(tt.input)
		if got != tt.expected {
			t.Errorf("parseValue(%q) = %v (%T), want %v (%T)",
				tt.input, got, got, tt.expected, tt.expected)
		}
	}

	if got, ok := loader.parseValue(`["a","b"]`).([]any); !ok || len(got) != 2 {
		t.Errorf("parseValue(json array) = %v", got)
	}
}

func TestEnvLoader_AddRemoveMapping(t *testing.T) {
	loader := NewEnvLoader("BBUF_")
	loader.AddMapping("CUSTOM_VAR", "custom.path")
	t.Setenv("CUSTOM_VAR", "custom_value")

	config, _ := loader.Load()
	if val, ok := getByPath(config, "custom.path"); !ok || val != "custom_value" {
		t.Errorf("custom.path = %v, want 'custom_value'", val)
	}

	loader.RemoveMapping("CUSTOM_VAR")
	config, _ = loader.Load()
	if _, ok := getByPath(config, "custom.path"); ok {
		t.Error("removed mapping still applied")
	}
}

func TestNewEnvLoaderWithMapping(t *testing.T) {
	loader := NewEnvLoaderWithMapping("MY_", map[string]string{
		"MY_VAR": "my.setting",
	})
	t.Setenv("MY_VAR", "test_value")

	config, _ := loader.Load()
	if val, ok := getByPath(config, "my.setting"); !ok || val != "test_value" {
		t.Errorf("my.setting = %v, want 'test_value'", val)
	}
}

func TestExpandEnvInString(t *testing.T) {
	t.Setenv("TEST_VAR", "world")

	tests := []struct {
		input    string
		expected string
	}{
		{"hello $TEST_VAR", "hello world"},
		{"hello ${TEST_VAR}", "hello world"},
		{"no vars", "no vars"},
	}

	for _, tt := range tests {
		if got := ExpandEnvInString(tt.input); got != tt.expected {
			t.Errorf("ExpandEnvInString(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

// Helper to get value by path
func getByPath(data map[string]any, path string) (any, bool) {
	current := any(data)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		val, exists := m[part]
		if !exists {
			return nil, false
		}
		current = val
	}
	return current, true
}

func TestEnvLoader_MappedWins(t *testing.T) {
	t.Setenv("BBUF_WINDOW_SIZE", "4096")
	t.Setenv("BBUF_BUFFER_WINDOW_SIZE", "8192")

	config, err := NewEnvLoader("BBUF_").Load()
	if err != nil {
		t.Fatal(err)
	}
	if val, _ := getByPath(config, "buffer.windowSize"); val != int64(4096) {
		t.Errorf("buffer.windowSize = %v, want 4096", val)
	}
}

func TestEnvLoader_EmptyPrefix(t *testing.T) {
	t.Setenv("BBUF_TEST_UNRELATED", "x")

	config, err := NewEnvLoaderWithMapping("", map[string]string{}).Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(config) != 0 {
		t.Errorf("empty prefix loaded %v", config)
	}
}
