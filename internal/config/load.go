package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/schema"
)

// Load reads, completes and validates the config at path.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithoutValidation reads the config at path, applying defaults and
// environment overrides but skipping validation.
func LoadWithoutValidation(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// LoadFromBytes parses, completes and validates config data.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.ApplyDefaults()
	cfg.ApplyEnv(os.LookupEnv)
	return &cfg, nil
}

// ApplyEnv overlays secrets and the kubeconfig path from the environment.
// Environment values win over file values.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvS3AccessKey); ok && v != "" {
		c.Store.S3.AccessKey = v
	}
	if v, ok := lookup(EnvS3SecretKey); ok && v != "" {
		c.Store.S3.SecretKey = v
	}
	if v, ok := lookup(EnvPostgresDSN); ok && v != "" {
		c.Store.Postgres.DSN = v
	}
	if c.Store.Kubernetes.Kubeconfig == "" {
		if v, ok := lookup(EnvKubeconfig); ok {
			c.Store.Kubernetes.Kubeconfig = v
		}
	}
}

// LoadOrDefault loads path when given, otherwise searches for
// planguard.yaml and falls back to the defaults when none exists.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	found, err := FindConfigFile()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnv(os.LookupEnv)
		return cfg, nil
	}
	return Load(found)
}

// SchemaProvider returns the configured plan schema.
func (c *Config) SchemaProvider() (governance.SchemaProvider, error) {
	if c.Schema.File == "" {
		return schema.Builtin(), nil
	}
	path := c.Schema.File
	if !filepath.IsAbs(path) && c.path != "" {
		path = filepath.Join(filepath.Dir(c.path), path)
	}
	s, err := schema.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultConfigPath returns planguard.yaml in the working directory.
func DefaultConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return DefaultConfigFilename
	}
	return filepath.Join(cwd, DefaultConfigFilename)
}

// FindConfigFile looks for planguard.yaml in the working directory and
// then in each parent directory.
func FindConfigFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return findConfigFileFrom(cwd)
}

func findConfigFileFrom(dir string) (string, error) {
	for {
		path := filepath.Join(dir, DefaultConfigFilename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("config file %s not found", DefaultConfigFilename)
}

// Save writes cfg to path. Secrets are written as given, so callers should
// clear them when they come from the environment.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
