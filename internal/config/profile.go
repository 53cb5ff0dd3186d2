package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile describes an upstream server profile loaded from YAML.
// Every field is optional; set fields override the environment values.
type Profile struct {
	Server struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Name    string `yaml:"name"`
	} `yaml:"server"`
}

// applyProfile reads a YAML profile file and overlays it onto cfg.
func applyProfile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profile file: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to parse profile yaml: %w", err)
	}

	if p.Server.BaseURL != "" {
		cfg.FiveMBaseURL = p.Server.BaseURL
	}
	if p.Server.APIKey != "" {
		cfg.FiveMAPIKey = p.Server.APIKey
	}
	if p.Server.Name != "" {
		cfg.ServerName = p.Server.Name
	}
	return nil
}
