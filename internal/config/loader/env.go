package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvLoader loads configuration from environment variables.
//
// Variables named in the mapping set the mapped path. Other variables
// starting with the prefix are converted to a path: the first word is
// the section and the remaining words form a camelCase key, so
// BBUF_BUFFER_WINDOW_SIZE sets buffer.windowSize. Mapped names win when
// both forms are present.
type EnvLoader struct {
	prefix  string
	mapping map[string]string // variable name -> setting path
}

// NewEnvLoader creates a loader for prefix with the default short names.
// The prefix should include the trailing underscore (e.g., "BBUF_").
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, defaultEnvMapping())
}

// NewEnvLoaderWithMapping creates a loader with custom variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{prefix: prefix, mapping: mapping}
}

// defaultEnvMapping returns the short names for common settings.
func defaultEnvMapping() map[string]string {
	return map[string]string{
		"BBUF_LOG_LEVEL":   "logging.level",
		"BBUF_LOG_FORMAT":  "logging.format",
		"BBUF_LOG_OUTPUT":  "logging.output",
		"BBUF_WINDOW_SIZE": "buffer.windowSize",
		"BBUF_MAX_SCRATCH": "buffer.maxScratch",
		"BBUF_NARROW":      "buffer.narrowCodeUnits",
		"BBUF_MAX_UNDO":    "engine.maxUndo",
		"BBUF_READ_ONLY":   "engine.readOnly",
		"BBUF_ENCODING":    "engine.encoding",
		"BBUF_WATCH_DELAY": "engine.watchDelay",
	}
}

// Load reads the environment into a nested configuration map. Empty
// values are kept as empty strings.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	var mapped [][2]string

	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if path, ok := l.mapping[name]; ok {
			mapped = append(mapped, [2]string{path, value})
			continue
		}
		if l.prefix == "" || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		setByPath(config, l.envToPath(name), l.parseValue(value))
	}
	for _, m := range mapped {
		setByPath(config, m[0], l.parseValue(m[1]))
	}
	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// RemoveMapping removes an environment variable mapping.
func (l *EnvLoader) RemoveMapping(envVar string) {
	delete(l.mapping, envVar)
}

// envToPath converts BBUF_BUFFER_WINDOW_SIZE to buffer.windowSize.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, rest, found := strings.Cut(name, "_")
	if !found {
		return section
	}
	words := strings.Split(rest, "_")
	for i := 1; i < len(words); i++ {
		if words[i] != "" {
			words[i] = strings.ToUpper(words[i][:1]) + words[i][1:]
		}
	}
	return section + "." + strings.Join(words, "")
}

// parseValue converts a variable's text to the most specific type it
// reads as: bool words, integer, decimal, duration, JSON array or
// object, and otherwise string. "1" and "0" are integers.
func (l *EnvLoader) parseValue(s string) any {
	switch strings.ToLower(s) {
	case "":
		return s
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path,
// replacing any scalar found where a section is needed.
func setByPath(data map[string]any, path string, value any) {
	keys := strings.Split(path, ".")
	m := data
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = value
}

// ExpandEnvInString expands environment variables in a string.
// Supports both $VAR and ${VAR} syntax.
func ExpandEnvInString(s string) string {
	return os.ExpandEnv(s)
}
