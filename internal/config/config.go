package config

import (
	"strings"

	"github.com/imamik/planguard/internal/governance"
)

// DefaultConfigFilename is the default configuration filename.
const DefaultConfigFilename = "planguard.yaml"

// Backend names a policy store implementation.
type Backend string

// Supported backends.
const (
	BackendKubernetes Backend = "kubernetes"
	BackendS3         Backend = "s3"
	BackendPostgres   Backend = "postgres"
)

// Backends returns the supported backends.
func Backends() []Backend {
	return []Backend{BackendKubernetes, BackendS3, BackendPostgres}
}

// Default values applied by Load.
const (
	DefaultNamespace = "planguard-system"
	DefaultS3Region  = "fsn1"
	DefaultS3Prefix  = "planguard"
	DefaultGlobal    = governance.DefaultDeny
)

// Environment variables that override file values.
const (
	EnvS3AccessKey = "PLANGUARD_S3_ACCESS_KEY"
	EnvS3SecretKey = "PLANGUARD_S3_SECRET_KEY"
	EnvPostgresDSN = "PLANGUARD_POSTGRES_DSN"
	EnvKubeconfig  = "KUBECONFIG"
)

// Config is the contents of planguard.yaml.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Schema   SchemaConfig   `yaml:"schema"`

	// path is the file the config was loaded from, if any.
	path string
}

// StoreConfig selects and configures the policy store.
type StoreConfig struct {
	Backend    Backend          `yaml:"backend"`
	Kubernetes KubernetesConfig `yaml:"kubernetes"`
	S3         S3Config         `yaml:"s3"`
	Postgres   PostgresConfig   `yaml:"postgres"`
}

// KubernetesConfig configures the PlanPolicy CRD backend.
type KubernetesConfig struct {
	Kubeconfig string `yaml:"kubeconfig,omitempty"`
	Context    string `yaml:"context,omitempty"`
	Namespace  string `yaml:"namespace"`
}

// S3Config configures the object storage backend.
type S3Config struct {
	Endpoint     string `yaml:"endpoint"`
	Region       string `yaml:"region"`
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	AccessKey    string `yaml:"accessKey,omitempty"`
	SecretKey    string `yaml:"secretKey,omitempty"`
	UsePathStyle bool   `yaml:"usePathStyle,omitempty"`
}

// PostgresConfig configures the PostgreSQL backend.
type PostgresConfig struct {
	DSN      string `yaml:"dsn,omitempty"`
	MaxConns int32  `yaml:"maxConns,omitempty"`
}

// DefaultsConfig holds the global default decision and per-provider
// overrides. Values are DefaultAllow or DefaultDeny; "allow" and "deny"
// are accepted too.
type DefaultsConfig struct {
	Global    string            `yaml:"global"`
	Providers map[string]string `yaml:"providers,omitempty"`
}

// SchemaConfig points at the plan schema.
type SchemaConfig struct {
	// File is a YAML map of provider kind to field names. Relative paths
	// are resolved against the directory of the config file. Empty means
	// the builtin schema.
	File string `yaml:"file,omitempty"`

	// Strict rejects rules for fields missing from the schema.
	Strict bool `yaml:"strict"`
}

// Path returns the file the config was loaded from, or "" for configs
// built in code.
func (c *Config) Path() string {
	return c.path
}

// ApplyDefaults fills in missing values.
func (c *Config) ApplyDefaults() {
	if c.Store.Backend == "" {
		c.Store.Backend = BackendKubernetes
	}
	c.Store.Backend = Backend(strings.ToLower(string(c.Store.Backend)))
	if c.Store.Kubernetes.Namespace == "" {
		c.Store.Kubernetes.Namespace = DefaultNamespace
	}
	if c.Store.S3.Region == "" {
		c.Store.S3.Region = DefaultS3Region
	}
	if c.Store.S3.Prefix == "" {
		c.Store.S3.Prefix = DefaultS3Prefix
	}
	if c.Defaults.Global == "" {
		c.Defaults.Global = DefaultGlobal.String()
	}
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// GlobalDefault returns the parsed global default. Invalid values, which
// Validate rejects, resolve to DefaultDeny.
func (c *Config) GlobalDefault() governance.Decision {
	d, err := governance.ParseDefault(c.Defaults.Global)
	if err != nil {
		return DefaultGlobal
	}
	return d
}

// ResolveDefault returns the default decision for kind: the provider
// override when one is configured, the global default otherwise.
func (c *Config) ResolveDefault(kind governance.ProviderKind) governance.Decision {
	for name, value := range c.Defaults.Providers {
		if !strings.EqualFold(name, kind.String()) {
			continue
		}
		if d, err := governance.ParseDefault(value); err == nil {
			return d
		}
	}
	return c.GlobalDefault()
}
