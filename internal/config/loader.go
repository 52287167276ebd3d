package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ModelConfig holds per-model-type training parameters.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type ModelConfig struct {
	Algorithm  string   `json:"algorithm" yaml:"algorithm" toml:"algorithm"`
	Fallback   []string `json:"fallback" yaml:"fallback" toml:"fallback"`
	DataPath   string   `json:"data_path" yaml:"data_path" toml:"data_path"`
	MaxDepth   int      `json:"max_depth" yaml:"max_depth" toml:"max_depth"`
	Trees      int      `json:"trees" yaml:"trees" toml:"trees"`
	TestRatio  float64  `json:"test_ratio" yaml:"test_ratio" toml:"test_ratio"`
	Seed       int64    `json:"seed" yaml:"seed" toml:"seed"`
	MetricName string   `json:"metric_name" yaml:"metric_name" toml:"metric_name"`
	MetricMin  float64  `json:"metric_min" yaml:"metric_min" toml:"metric_min"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr           string                 `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir      string                 `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	LogsDir        string                 `json:"logs_dir" yaml:"logs_dir" toml:"logs_dir"`
	DBPath         string                 `json:"db_path" yaml:"db_path" toml:"db_path"`
	AllowedOrigins []string               `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	Models         map[string]ModelConfig `json:"models" yaml:"models" toml:"models"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
