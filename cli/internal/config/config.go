package config

import (
	"os"
	"path/filepath"

	"github.com/zhaobenny/stayboard/internal/parser"
	"gopkg.in/yaml.v3"
)

// Config holds the CLI configuration
type Config struct {
	Encoding     string         `yaml:"encoding,omitempty"`
	CurrencyUnit string         `yaml:"currency_unit,omitempty"`
	DayUnit      string         `yaml:"day_unit,omitempty"`
	Columns      parser.Columns `yaml:"columns,omitempty"`
}

// Path returns the path to the config file
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".stayboard.yaml"), nil
}

// Load loads the configuration from disk
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads the configuration at path; a missing file is an empty config
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save saves the configuration to disk
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes the configuration to path
func SaveFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
