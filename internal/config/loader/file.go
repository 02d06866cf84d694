package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// decodeFunc parses one document. It returns a *ParseError with Path
// unset on malformed input.
type decodeFunc func(data []byte) (map[string]any, error)

// fileLoader reads a configuration file through a FileSystem and parses
// it with the format's decoder.
type fileLoader struct {
	fs     FileSystem
	path   string
	decode decodeFunc
}

// Load reads configuration from the configured path.
func (l *fileLoader) Load() (map[string]any, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads configuration from a specific path. A missing file
// returns nil, nil.
func (l *fileLoader) LoadFrom(path string) (map[string]any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return l.parse(path, data)
}

// LoadFromReader reads configuration from an io.Reader.
func (l *fileLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return l.parse("<reader>", data)
}

func (l *fileLoader) parse(source string, data []byte) (map[string]any, error) {
	config, err := l.decode(data)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = source
		}
		return nil, err
	}
	if config == nil {
		config = make(map[string]any)
	}
	return config, nil
}
