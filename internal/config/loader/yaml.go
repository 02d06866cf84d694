package loader

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLLoader loads configuration from YAML files.
type YAMLLoader struct {
	fileLoader
}

// NewYAMLLoader creates a new YAML loader for the given path.
func NewYAMLLoader(path string) *YAMLLoader {
	return NewYAMLLoaderWithFS(DefaultFS(), path)
}

// NewYAMLLoaderWithFS creates a YAML loader with a custom file system.
func NewYAMLLoaderWithFS(fs FileSystem, path string) *YAMLLoader {
	return &YAMLLoader{fileLoader{fs: fs, path: path, decode: decodeYAML}}
}

func decodeYAML(data []byte) (map[string]any, error) {
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		perr := &ParseError{Message: err.Error(), Err: err}
		// yaml.v3 reports positions only in the message text.
		msg := strings.TrimPrefix(err.Error(), "yaml: ")
		if _, serr := fmt.Sscanf(msg, "line %d:", &perr.Line); serr == nil {
			_, perr.Message, _ = strings.Cut(msg, ": ")
		}
		return nil, perr
	}
	return config, nil
}
