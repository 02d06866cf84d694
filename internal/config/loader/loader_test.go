package loader

import (
	"reflect"
	"testing"
)

func TestForPath(t *testing.T) {
	memfs := newMemFS()

	tests := []struct {
		path string
		want string
	}{
		{"/a.toml", "*loader.TOMLLoader"},
		{"/a.TOML", "*loader.TOMLLoader"},
		{"/a.yaml", "*loader.YAMLLoader"},
		{"/a.yml", "*loader.YAMLLoader"},
	}
	for _, tt := range tests {
		l, err := ForPath(memfs, tt.path)
		if err != nil {
			t.Errorf("ForPath(%q) error = %v", tt.path, err)
			continue
		}
		if got := reflect.TypeOf(l).String(); got != tt.want {
			t.Errorf("ForPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}

	if _, err := ForPath(memfs, "/a.json"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name     string
		dst      map[string]any
		src      map[string]any
		expected map[string]any
	}{
		{
			name:     "nil dst",
			dst:      nil,
			src:      map[string]any{"a": 1},
			expected: map[string]any{"a": 1},
		},
		{
			name:     "nil src",
			dst:      map[string]any{"a": 1},
			src:      nil,
			expected: map[string]any{"a": 1},
		},
		{
			name:     "src overrides dst",
			dst:      map[string]any{"a": 1},
			src:      map[string]any{"a": 2},
			expected: map[string]any{"a": 2},
		},
		{
			name: "nested merge",
			dst: map[string]any{
				"buffer": map[string]any{"windowSize": 4096},
			},
			src: map[string]any{
				"buffer": map[string]any{"maxScratch": 1024},
			},
			expected: map[string]any{
				"buffer": map[string]any{"windowSize": 4096, "maxScratch": 1024},
			},
		},
		{
			name: "scalar replaces map",
			dst: map[string]any{
				"buffer": map[string]any{"windowSize": 4096},
			},
			src:      map[string]any{"buffer": "none"},
			expected: map[string]any{"buffer": "none"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeepMerge(tt.dst, tt.src)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("DeepMerge = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	got := Flatten(map[string]any{
		"top": 1,
		"engine": map[string]any{
			"maxUndo": 10,
			"deep":    map[string]any{"x": "y"},
		},
	})
	want := map[string]any{
		"top":            1,
		"engine.maxUndo": 10,
		"engine.deep.x":  "y",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten = %v, want %v", got, want)
	}
}
