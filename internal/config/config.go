package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const configFileName = "ward_roster_config.yaml"

// SolverConfig bounds the constraint solver's single invocation per run
type SolverConfig struct {
	// Workers is the parallel search budget
	Workers int `yaml:"workers" validate:"required,min=1"`

	// TimeLimitSeconds is the wall-clock budget for one solve
	TimeLimitSeconds int `yaml:"timeLimitSeconds" validate:"required,min=1"`
}

// Config represents the application configuration. It is loaded once and
// passed into each component as an immutable value.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// HREmail receives run summaries and is the reply-to for offers
	HREmail string `yaml:"hrEmail" validate:"required,email"`

	// GmailUserID is the account offers are sent from
	GmailUserID string `yaml:"gmailUserID" validate:"required"`

	// ExemptEmployee is excluded from the rolling 7-day window cap
	ExemptEmployee string `yaml:"exemptEmployee,omitempty"`

	Solver SolverConfig `yaml:"solver"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from ward_roster_config.yaml.
// It looks for the config file in the current directory first, then in the
// user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// findConfigFile searches for the config file in the current directory and
// the home directory
func findConfigFile() (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
