package generator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template describes one weekly recurring session slot. Blank times fall
// back to the location's default day window.
type Template struct {
	Weekday       string `json:"weekday" yaml:"weekday"`
	LocationID    string `json:"location_id" yaml:"location_id"`
	StartTime     string `json:"start_time" yaml:"start_time"`
	EndTime       string `json:"end_time" yaml:"end_time"`
	RequiredSkill string `json:"required_skill" yaml:"required_skill"`
	Room          string `json:"room" yaml:"room"`
}

// Config is the template document loaded from a YAML or JSON file.
type Config struct {
	Templates []Template `json:"templates" yaml:"templates"`
}

// LoadConfig loads a template Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeConfig(f, ext)
}

// DecodeConfig reads from r to decode a template Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		dec := json.NewDecoder(r)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	return cfg, nil
}
