package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/giordipeperkamp/Megaplanner/core/roster"
)

// Config is the one configuration record for a planner run.
type Config struct {
	Planner roster.Config `json:"planner"`
}

// Load reads configuration from an optional file plus MP_-prefixed
// environment overrides. An empty path, or a path to a file that does not
// exist, yields the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
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
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}
	// Optional environment overrides, e.g. MP_PLANNER__WORKER_COUNT=4.
	if err := k.Load(env.Provider("MP_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "mp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Planner.SetDefaults()
	if err := cfg.Planner.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
