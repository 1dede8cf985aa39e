package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type decodeFunc func([]byte) (Config, error)

var decoders = map[string]decodeFunc{
	".yaml": FromYAML,
	".yml":  FromYAML,
	".json": FromJSON,
}

// FromFile reads a .yaml, .yml or .json file into a Config. $VAR and
// ${VAR} references are expanded from the environment before decoding.
func FromFile(path string) (Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return Config{}, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := decode([]byte(os.ExpandEnv(string(raw))))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// FromYAML decodes a YAML document. An empty document yields an empty Config.
func FromYAML(data []byte) (Config, error) {
	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	return New(values), nil
}

// FromJSON decodes a JSON object.
func FromJSON(data []byte) (Config, error) {
	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		return Config{}, fmt.Errorf("decode json: %w", err)
	}
	return New(values), nil
}
