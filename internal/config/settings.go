package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dshills/bbuf/internal/engine"
	"github.com/dshills/bbuf/internal/engine/buffer"
	"github.com/dshills/bbuf/internal/engine/textenc"
)

type kind uint8

const (
	kindString kind = iota
	kindInt
	kindBool
	kindDuration
)

func (k kind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindInt:
		return "int"
	case kindBool:
		return "bool"
	case kindDuration:
		return "duration"
	default:
		return "unknown"
	}
}

// setting describes one known configuration path.
type setting struct {
	kind    kind
	def     any
	min     int64 // ints and durations
	enum    []string
	check   func(v any) error
	summary string
}

var settings = map[string]setting{
	"logging.level": {
		kind:    kindString,
		def:     "info",
		enum:    []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled"},
		summary: "minimum level written to the log",
	},
	"logging.format": {
		kind:    kindString,
		def:     "console",
		enum:    []string{"console", "json"},
		summary: "log line format",
	},
	"logging.output": {
		kind:    kindString,
		def:     "stderr",
		summary: "stderr, stdout, or a file path",
	},
	"buffer.windowSize": {
		kind:    kindInt,
		def:     buffer.DefaultWindowSize,
		min:     buffer.MinWindowSize,
		summary: "bytes of file data held in the read window",
	},
	"buffer.maxScratch": {
		kind:    kindInt,
		def:     0,
		check:   checkScratch,
		summary: "cap on transcoding scratch capacity, 0 for none",
	},
	"buffer.narrowCodeUnits": {
		kind:    kindBool,
		def:     false,
		summary: "truncate decoded characters to 16 bits",
	},
	"engine.maxUndo": {
		kind:    kindInt,
		def:     engine.DefaultMaxUndoEntries,
		min:     1,
		summary: "undo entries kept per document",
	},
	"engine.readOnly": {
		kind:    kindBool,
		def:     false,
		summary: "reject edits and saves",
	},
	"engine.encoding": {
		kind:    kindString,
		def:     "",
		check:   checkEncoding,
		summary: "encoding used when saving, empty keeps the source encoding",
	},
	"engine.watchDelay": {
		kind:    kindDuration,
		def:     engine.DefaultWatchDelay,
		summary: "debounce delay for external change events",
	},
}

// Settings returns the known setting paths in sorted order.
func Settings() []string {
	paths := make([]string, 0, len(settings))
	for p := range settings {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Describe returns a one-line description of the setting at path.
func Describe(path string) (string, bool) {
	s, ok := settings[path]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s (%s, default %v): %s", path, s.kind, s.def, s.summary), true
}

// coerce converts a loaded value to the setting's canonical Go type.
// Integers arrive as int from YAML and int64 from TOML and the
// environment; durations arrive as strings from files.
func (s setting) coerce(path string, v any) (any, error) {
	mismatch := func() error {
		return &ValidationError{
			Path:    path,
			Message: fmt.Sprintf("expected %s, got %s", s.kind, typeName(v)),
			Value:   v,
			Code:    ErrCodeTypeMismatch,
		}
	}

	var out any
	switch s.kind {
	case kindString:
		str, ok := v.(string)
		if !ok {
			return nil, mismatch()
		}
		if len(s.enum) > 0 && !slices.Contains(s.enum, strings.ToLower(str)) {
			return nil, &ValidationError{
				Path:    path,
				Message: "must be one of " + strings.Join(s.enum, ", "),
				Value:   v,
				Code:    ErrCodeInvalidEnum,
			}
		}
		out = str

	case kindInt:
		n, ok := toInt64(v)
		if !ok {
			return nil, mismatch()
		}
		if n < s.min || n > math.MaxInt32 {
			return nil, &ValidationError{
				Path:    path,
				Message: fmt.Sprintf("must be between %d and %d", s.min, math.MaxInt32),
				Value:   v,
				Code:    ErrCodeOutOfRange,
			}
		}
		out = int(n)

	case kindBool:
		switch b := v.(type) {
		case bool:
			out = b
		default:
			// The environment loader reads 0 and 1 as integers.
			n, ok := toInt64(v)
			if !ok || (n != 0 && n != 1) {
				return nil, mismatch()
			}
			out = n == 1
		}

	case kindDuration:
		var d time.Duration
		switch t := v.(type) {
		case time.Duration:
			d = t
		case string:
			parsed, err := time.ParseDuration(t)
			if err != nil {
				return nil, mismatch()
			}
			d = parsed
		default:
			// Bare numbers are milliseconds.
			n, ok := toInt64(v)
			if !ok {
				return nil, mismatch()
			}
			d = time.Duration(n) * time.Millisecond
		}
		if d < time.Duration(s.min) {
			return nil, &ValidationError{
				Path:    path,
				Message: "must not be negative",
				Value:   v,
				Code:    ErrCodeOutOfRange,
			}
		}
		out = d
	}

	if s.check != nil {
		if err := s.check(out); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Path = path
				ve.Value = v
				return nil, ve
			}
			return nil, &ValidationError{Path: path, Message: err.Error(), Value: v, Code: ErrCodeInvalidEnum}
		}
	}
	return out, nil
}

func checkEncoding(v any) error {
	name := v.(string)
	if name == "" {
		return nil
	}
	_, err := textenc.ParseEncoding(name)
	return err
}

// checkScratch rejects caps too small for a single UCS-4 character.
func checkScratch(v any) error {
	n := v.(int)
	if n != 0 && n < 4 {
		return &ValidationError{Message: "must be 0 or at least 4", Code: ErrCodeOutOfRange}
	}
	return nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// typeName returns a human-readable type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
