package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bymeisam/use/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "use.json"

	// DefaultRegion is the default registry bucket region.
	DefaultRegion = "us-east-1"

	// DefaultPrefix is the default key prefix inside the registry bucket.
	DefaultPrefix = "modules"

	// DefaultMaxHeaderLength is the default commit header length limit.
	DefaultMaxHeaderLength = 72
)

// defaultLintTypes is the default set of allowed commit types.
var defaultLintTypes = []string{
	"feat", "fix", "docs", "style", "refactor",
	"perf", "test", "build", "ci", "chore", "revert",
}

// Config represents the complete use.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Registry contains module registry settings for publishing.
	Registry RegistryConfig `json:"registry,omitempty"`

	// Lint contains commit message linting settings.
	Lint LintConfig `json:"lint,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RegistryConfig contains module registry settings.
type RegistryConfig struct {
	// Bucket is the S3 bucket holding the registry.
	Bucket string `json:"bucket,omitempty"`

	// Region is the bucket region.
	Region string `json:"region,omitempty"`

	// Prefix is the key prefix inside the bucket (default: "modules").
	Prefix string `json:"prefix,omitempty"`

	// Endpoint is a custom S3-compatible endpoint, for MinIO and friends.
	Endpoint string `json:"endpoint,omitempty"`
}

// LintConfig contains commit message linting settings.
type LintConfig struct {
	// Types is the set of allowed commit types.
	Types []string `json:"types,omitempty"`

	// MaxHeaderLength is the maximum header line length.
	MaxHeaderLength int `json:"maxHeaderLength,omitempty"`

	// RequireScope requires every commit to carry a scope.
	RequireScope bool `json:"requireScope,omitempty"`

	// Scopes is the set of allowed scopes. Empty allows any scope.
	Scopes []string `json:"scopes,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		Registry: RegistryConfig{
			Region: DefaultRegion,
			Prefix: DefaultPrefix,
		},
		Lint: LintConfig{
			Types:           append([]string(nil), defaultLintTypes...),
			MaxHeaderLength: DefaultMaxHeaderLength,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for use.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C001").
				WithDetail("No use.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'use init' to create one")
		}
		return nil, errors.New("C002").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("C002").
			WithDetail("Failed to parse use.json: " + err.Error()).
			WithSuggestion("Check that use.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("C002").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("C002").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Registry.Region == "" {
		c.Registry.Region = DefaultRegion
	}
	if c.Registry.Prefix == "" {
		c.Registry.Prefix = DefaultPrefix
	}
	if len(c.Lint.Types) == 0 {
		c.Lint.Types = append([]string(nil), defaultLintTypes...)
	}
	if c.Lint.MaxHeaderLength == 0 {
		c.Lint.MaxHeaderLength = DefaultMaxHeaderLength
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Lint.MaxHeaderLength < 0 {
		return errors.New("C003").
			WithDetail("lint.maxHeaderLength must not be negative")
	}
	for _, typ := range c.Lint.Types {
		if typ == "" {
			return errors.New("C003").
				WithDetail("lint.types must not contain empty strings")
		}
	}
	return nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing use.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("C001").
				WithDetail("No use.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'use init' to create one")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
