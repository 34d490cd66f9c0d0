package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Storage     StorageConfig   `toml:"storage"`
	Alerts      AlertsConfig    `toml:"alerts"`
	GitHub      GitHubConfig    `toml:"github"`
	Claude      ClaudeConfig    `toml:"claude"`
	Research    ResearchConfig  `toml:"research"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration for the audit store
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// AlertsConfig controls the admission gate for inbound monitoring alerts
type AlertsConfig struct {
	IgnorePatterns []string `toml:"ignore_patterns"` // Substrings of alarm names to skip (matched lower-case)
}

// GitHubConfig contains the repository host credentials and candidate repositories
type GitHubConfig struct {
	Token        string             `toml:"token"`         // Personal access token (GITHUB_TOKEN env overrides)
	GitPath      string             `toml:"git_path"`      // Git executable path (default: "git" from PATH)
	CloneTimeout string             `toml:"clone_timeout"` // Timeout for shallow clones as duration string (default: "2m")
	Repositories []RepositoryConfig `toml:"repositories" validate:"dive"`
}

// RepositoryConfig describes one candidate repository in the configuration file
type RepositoryConfig struct {
	Owner        string   `toml:"owner" validate:"required"`
	Name         string   `toml:"name" validate:"required"`
	Branch       string   `toml:"branch"`
	FilePatterns []string `toml:"file_patterns"`
	Keywords     []string `toml:"keywords"`
	Priority     string   `toml:"priority" validate:"omitempty,oneof=low medium high"`
}

// ClaudeConfig contains Anthropic Claude API configuration for the reasoning agent
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key (ANTHROPIC_API_KEY env overrides)
	Model       string  `toml:"model"`       // Model for analysis (default: "claude-sonnet-4-20250514")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	RateLimit   string  `toml:"rate_limit"`  // Minimum interval between API calls (default: "1s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.2)
}

// ResearchConfig contains job processing configuration
type ResearchConfig struct {
	WorkspaceDir string `toml:"workspace_dir"` // Base directory for ephemeral clone workspaces (default: OS temp)
}

// SchedulerConfig contains the periodic status reporter configuration
type SchedulerConfig struct {
	StatusSchedule string `toml:"status_schedule"` // Cron expression for registry status logging (default: "@every 5m")
	Enabled        bool   `toml:"enabled"`
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings are exposed in medeor.toml; ranking constants
// are fixed in code because changing them changes which repositories get
// investigated.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Alerts: AlertsConfig{
			IgnorePatterns: []string{},
		},
		GitHub: GitHubConfig{
			GitPath:      "git",
			CloneTimeout: "2m",
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   8192,
			Timeout:     "5m",
			RateLimit:   "1s",
			Temperature: 0.2,
		},
		Research: ResearchConfig{
			WorkspaceDir: "", // Empty means os.TempDir()
		},
		Scheduler: SchedulerConfig{
			StatusSchedule: "@every 5m",
			Enabled:        true,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for structural errors
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	seen := make(map[string]bool)
	for _, repo := range c.GitHub.Repositories {
		fullName := repo.Owner + "/" + repo.Name
		if seen[fullName] {
			return fmt.Errorf("invalid configuration: duplicate repository %s", fullName)
		}
		seen[fullName] = true
	}

	if _, err := time.ParseDuration(c.GitHub.CloneTimeout); err != nil {
		return fmt.Errorf("invalid clone_timeout %q: %w", c.GitHub.CloneTimeout, err)
	}

	return nil
}

// CloneTimeoutDuration returns the parsed clone timeout
func (c *GitHubConfig) CloneTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.CloneTimeout)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MEDEOR_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("MEDEOR_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("MEDEOR_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("MEDEOR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("MEDEOR_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("MEDEOR_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Collaborator credentials
	if token := os.Getenv("MEDEOR_GITHUB_TOKEN"); token != "" {
		config.GitHub.Token = token
	} else if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		config.GitHub.Token = token
	}
	if apiKey := os.Getenv("MEDEOR_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	} else if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}

	if workspace := os.Getenv("MEDEOR_WORKSPACE_DIR"); workspace != "" {
		config.Research.WorkspaceDir = workspace
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
