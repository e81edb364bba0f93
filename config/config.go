package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/isnet/core/factory"
	"github.com/kilianp07/isnet/core/metrics"
	"github.com/kilianp07/isnet/core/model"
	"github.com/kilianp07/isnet/core/planner"
	"github.com/kilianp07/isnet/infra/workbook"
)

// EnvPrefix marks environment variables overriding configuration keys.
// Nested keys are separated by a double underscore, e.g.
// ISNET_MODEL__BIG_M=1e9.
const EnvPrefix = "ISNET_"

type Config struct {
	Input   workbook.Config      `json:"input"`
	Network model.NetworkConfig  `json:"network"`
	Model   planner.Parameters   `json:"model"`
	Solver  factory.ModuleConfig `json:"solver"`
	Metrics metrics.Config       `json:"metrics"`
	Log     LogConfig            `json:"log"`
}

// Default returns the configuration of the reference case study solved with
// the built-in branch-and-bound backend.
func Default() Config {
	return Config{
		Input:   workbook.DefaultConfig(),
		Network: model.DefaultNetworkConfig(),
		Model:   planner.DefaultParameters(),
		Solver:  factory.ModuleConfig{Type: "bnb"},
		Log:     DefaultLogConfig(),
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path loads the defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Input.Validate(); err != nil {
		return err
	}
	if err := c.Network.Validate(); err != nil {
		return err
	}
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if c.Solver.Type == "" {
		return fmt.Errorf("solver: type is required")
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}
