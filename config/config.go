package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/loamlabs/branchwatch/internal/duration"
)

// Source kinds.
const (
	SourceGitHub = "github"
	SourceLocal  = "local"
)

// Config represents the application configuration
type Config struct {
	// Account is the source-control organization or user owning the repos.
	Account string `yaml:"account,omitempty"`

	// Repos are the repository names to scan, in report order.
	Repos []string `yaml:"repos,omitempty"`

	// Source selects where branches are read from: github or local.
	Source string `yaml:"source,omitempty"`

	// LocalRoot is the directory holding local clones for the local source.
	LocalRoot string `yaml:"local_root,omitempty"`

	BranchPrefixes []string `yaml:"branch_prefixes,omitempty"`
	DoneStatuses   []string `yaml:"done_statuses,omitempty"`

	Workers       int    `yaml:"workers,omitempty"`
	MinAge        string `yaml:"min_age,omitempty"`
	DefaultFormat string `yaml:"default_format,omitempty"`

	Tracker TrackerConfig `yaml:"tracker,omitempty"`
	Notify  NotifyConfig  `yaml:"notify,omitempty"`
}

// TrackerConfig points at the issue tracker. Credentials are read from the
// environment only, never from config files.
type TrackerConfig struct {
	URL string `yaml:"url,omitempty"`

	// Disabled skips ticket resolution entirely. Every behind branch is
	// then flagged, since no ticket can protect it.
	Disabled bool `yaml:"disabled,omitempty"`
}

// NotifyConfig selects the Slack delivery target. A webhook URL and a
// channel (used with SLACK_TOKEN) are alternatives; the webhook wins when
// both are set.
type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url,omitempty"`
	Channel    string `yaml:"channel,omitempty"`
}

// DefaultBranchPrefixes returns the branch prefixes scanned by default.
func DefaultBranchPrefixes() []string {
	return []string{"feature/", "hotfix/"}
}

// DefaultDoneStatuses returns the ticket statuses treated as completed
// work by default.
func DefaultDoneStatuses() []string {
	return []string{"Resolved", "Closed"}
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".branchwatch"
	}
	return filepath.Join(configDir, "branchwatch")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".branchwatch.yaml"
}

// ConfigFileExists returns true if the config file exists on disk
func ConfigFileExists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Load loads the configuration from disk and the environment.
// It first loads the global config from the XDG config directory, then
// merges any local .branchwatch.yaml on top (local values take precedence),
// then applies environment overrides (environment wins over both files).
func Load() (*Config, error) {
	cfg := &Config{}

	// Load global config if it exists
	globalPath := ConfigPath()
	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	// Load local config if it exists and merge on top
	localPath := LocalConfigPath()
	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}

		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}

		cfg = mergeConfig(cfg, &localCfg)
	}

	cfg.applyEnv()

	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "text"
	}

	return cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{}

	if local.Account != "" {
		result.Account = local.Account
	} else {
		result.Account = global.Account
	}

	if local.Source != "" {
		result.Source = local.Source
	} else {
		result.Source = global.Source
	}

	if local.LocalRoot != "" {
		result.LocalRoot = local.LocalRoot
	} else {
		result.LocalRoot = global.LocalRoot
	}

	if local.MinAge != "" {
		result.MinAge = local.MinAge
	} else {
		result.MinAge = global.MinAge
	}

	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	} else {
		result.DefaultFormat = global.DefaultFormat
	}

	if local.Workers != 0 {
		result.Workers = local.Workers
	} else {
		result.Workers = global.Workers
	}

	// Merge arrays (local replaces if non-empty)
	if len(local.Repos) > 0 {
		result.Repos = local.Repos
	} else {
		result.Repos = global.Repos
	}

	if len(local.BranchPrefixes) > 0 {
		result.BranchPrefixes = local.BranchPrefixes
	} else {
		result.BranchPrefixes = global.BranchPrefixes
	}

	if len(local.DoneStatuses) > 0 {
		result.DoneStatuses = local.DoneStatuses
	} else {
		result.DoneStatuses = global.DoneStatuses
	}

	if local.Tracker.URL != "" {
		result.Tracker.URL = local.Tracker.URL
	} else {
		result.Tracker.URL = global.Tracker.URL
	}
	result.Tracker.Disabled = global.Tracker.Disabled || local.Tracker.Disabled

	if local.Notify.WebhookURL != "" {
		result.Notify.WebhookURL = local.Notify.WebhookURL
	} else {
		result.Notify.WebhookURL = global.Notify.WebhookURL
	}

	if local.Notify.Channel != "" {
		result.Notify.Channel = local.Notify.Channel
	} else {
		result.Notify.Channel = global.Notify.Channel
	}

	return result
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("BRANCHWATCH_ACCOUNT"); v != "" {
		c.Account = v
	}
	if v := os.Getenv("BRANCHWATCH_REPOS"); v != "" {
		c.Repos = splitList(v)
	}
	if v := os.Getenv("BRANCHWATCH_SOURCE"); v != "" {
		c.Source = v
	}
	if v := os.Getenv("BRANCHWATCH_LOCAL_ROOT"); v != "" {
		c.LocalRoot = v
	}
	if v := os.Getenv("BRANCHWATCH_DONE_STATUSES"); v != "" {
		c.DoneStatuses = splitList(v)
	}
	if v := os.Getenv("JIRA_URL"); v != "" {
		c.Tracker.URL = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		c.Notify.WebhookURL = v
	}
	if v := os.Getenv("BRANCHWATCH_NOTIFY_CHANNEL"); v != "" {
		c.Notify.Channel = v
	}
}

// splitList splits a comma-separated value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SourceKind returns the configured source, defaulting to github.
func (c *Config) SourceKind() string {
	if c.Source == "" {
		return SourceGitHub
	}
	return c.Source
}

// Validate checks that every required key is present. The returned error
// lists all missing keys at once so a broken setup is fixed in one pass.
func (c *Config) Validate() error {
	kind := c.SourceKind()
	if kind != SourceGitHub && kind != SourceLocal {
		return fmt.Errorf("invalid source %q (use %s or %s)", c.Source, SourceGitHub, SourceLocal)
	}

	var missing []string
	if len(c.Repos) == 0 {
		missing = append(missing, "repos (BRANCHWATCH_REPOS)")
	}
	if kind == SourceGitHub && c.Account == "" {
		missing = append(missing, "account (BRANCHWATCH_ACCOUNT)")
	}
	if kind == SourceLocal && c.LocalRoot == "" {
		missing = append(missing, "local_root (BRANCHWATCH_LOCAL_ROOT)")
	}
	if !c.Tracker.Disabled && c.Tracker.URL == "" {
		missing = append(missing, "tracker.url (JIRA_URL)")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetBranchPrefixes returns the configured branch prefixes, using defaults
// if not configured
func (c *Config) GetBranchPrefixes() []string {
	if len(c.BranchPrefixes) > 0 {
		return c.BranchPrefixes
	}
	return DefaultBranchPrefixes()
}

// GetDoneStatuses returns the configured completion statuses, using
// defaults if not configured
func (c *Config) GetDoneStatuses() []string {
	if len(c.DoneStatuses) > 0 {
		return c.DoneStatuses
	}
	return DefaultDoneStatuses()
}

// GetMinAge parses the configured min_age as a duration. An empty value
// means no age filter.
func (c *Config) GetMinAge() (time.Duration, error) {
	if c.MinAge == "" {
		return 0, nil
	}
	d, err := duration.Parse(c.MinAge)
	if err != nil {
		return 0, fmt.Errorf("invalid min_age: %w", err)
	}
	return d, nil
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment variable.
// Following 12-factor app best practices, tokens are only read from the environment.
func (c *Config) GetGitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}

// GetSlackToken returns the Slack bot token from the SLACK_TOKEN
// environment variable. Tokens are only read from the environment.
func (c *Config) GetSlackToken() string {
	return os.Getenv("SLACK_TOKEN")
}

// HasNotifyTarget reports whether a Slack delivery target is configured.
func (c *Config) HasNotifyTarget() bool {
	if c.Notify.WebhookURL != "" {
		return true
	}
	return c.Notify.Channel != "" && c.GetSlackToken() != ""
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configDir := DefaultConfigDir()

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := ConfigPath()
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SetDefaultFormat sets the default output format and saves
func (c *Config) SetDefaultFormat(format string) error {
	c.DefaultFormat = format
	return c.Save()
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	return &Config{
		Source:         SourceGitHub,
		BranchPrefixes: DefaultBranchPrefixes(),
		DoneStatuses:   DefaultDoneStatuses(),
		Workers:        1,
		DefaultFormat:  "text",
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	// Get absolute path for local config
	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# branchwatch configuration file
# See: branchwatch config defaults  (for all available options)

# Source-control organization or user
account: my-org

# Repositories to scan
repos:
  - service-a
  - service-b

# Branch prefixes considered for staleness (optional)
# branch_prefixes:
#   - feature/
#   - hotfix/

# Ticket statuses that count as done (optional)
# done_statuses:
#   - Resolved
#   - Closed

# Issue tracker base URL (credentials come from the environment)
tracker:
  url: https://jira.example.com

# Slack delivery (optional)
# notify:
#   webhook_url: https://hooks.slack.com/services/...

# Output format: text or json
default_format: text

# Tokens (GITHUB_TOKEN, JIRA_*, SLACK_TOKEN) are read from the
# environment only and cannot be stored in config files.
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
