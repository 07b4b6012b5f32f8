// Package config loads the optional YAML configuration file the
// cmd/* tools accept for settings that are awkward to pass as
// environment variables or flags, such as a hardware bridge's serial
// port and baud rate.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level document shape.
type Config struct {
	Listen   ListenConfig   `yaml:"listen"`
	Hardware HardwareConfig `yaml:"hardware"`
}

// ListenConfig configures the cardbridge WebSocket/HTTP server.
type ListenConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// HardwareConfig configures an hwcard.Bridge, when one is used in
// place of a virtual card.
type HardwareConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// Load reads and parses the YAML document at path.
func Load(path string) (*Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
