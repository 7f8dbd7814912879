package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a CitationConfig from a YAML file, starting from
// DefaultCitationConfig and overriding only the fields present in the
// file, then validating the result. A caller with no file to load
// should just use DefaultCitationConfig directly.
func Load(path string) (CitationConfig, error) {
	cfg := DefaultCitationConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return CitationConfig{}, fmt.Errorf("load citation config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CitationConfig{}, fmt.Errorf("parse citation config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return CitationConfig{}, err
	}

	return cfg, nil
}
