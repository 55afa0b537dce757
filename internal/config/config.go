package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the application configuration
type Config struct {
	Jira  JiraConfig  `yaml:"jira"`
	Query QueryConfig `yaml:"query"`
}

// JiraConfig represents JIRA API configuration
type JiraConfig struct {
	BaseURL    string `yaml:"base_url"`
	Username   string `yaml:"username"`
	APIToken   string `yaml:"api_token"`
	ProjectKey string `yaml:"project_key"`
	Timeout    int    `yaml:"timeout_seconds"`
}

// QueryConfig represents defaults for listing and JQL queries
type QueryConfig struct {
	DefaultMaxResults int `yaml:"default_max_results"`
	ItemsPerBatch     int `yaml:"items_per_batch"`
}

// ConfigError describes a missing or invalid configuration field
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// LoadConfig loads configuration from a YAML file, falling back to
// environment variables for any credential the file does not set. A missing
// file is not an error so that a fully env-configured setup works.
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// fall through to environment variables
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if config.Jira.BaseURL == "" {
		config.Jira.BaseURL = os.Getenv("JIRA_URL")
	}
	if config.Jira.Username == "" {
		config.Jira.Username = os.Getenv("JIRA_USERNAME")
	}
	if config.Jira.APIToken == "" {
		config.Jira.APIToken = os.Getenv("JIRA_API_TOKEN")
	}
	if config.Jira.ProjectKey == "" {
		config.Jira.ProjectKey = os.Getenv("JIRA_PROJECT_KEY")
	}

	if config.Jira.Timeout == 0 {
		config.Jira.Timeout = 30
	}
	if config.Query.ItemsPerBatch == 0 {
		config.Query.ItemsPerBatch = 50
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Jira.BaseURL == "" {
		return &ConfigError{Field: "jira.base_url", Message: "JIRA base URL is required (or set JIRA_URL)"}
	}

	if c.Jira.Username == "" {
		return &ConfigError{Field: "jira.username", Message: "JIRA username is required (or set JIRA_USERNAME)"}
	}

	if c.Jira.APIToken == "" {
		return &ConfigError{Field: "jira.api_token", Message: "JIRA API token is required (or set JIRA_API_TOKEN)"}
	}

	if c.Query.ItemsPerBatch < 1 {
		return &ConfigError{Field: "query.items_per_batch", Message: "batch size must be positive"}
	}

	return nil
}
