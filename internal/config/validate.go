package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/imamik/planguard/internal/governance"
)

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}
	if err := c.validateDefaults(); err != nil {
		return fmt.Errorf("defaults validation failed: %w", err)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendKubernetes:
		if c.Store.Kubernetes.Namespace == "" {
			return errors.New("kubernetes.namespace is required")
		}
	case BackendS3:
		return c.Store.S3.validate()
	case BackendPostgres:
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required (or set %s)", EnvPostgresDSN)
		}
		if c.Store.Postgres.MaxConns < 0 {
			return fmt.Errorf("postgres.maxConns must not be negative, got %d", c.Store.Postgres.MaxConns)
		}
	default:
		return fmt.Errorf("unknown backend %q (must be one of %v)", c.Store.Backend, Backends())
	}
	return nil
}

func (s S3Config) validate() error {
	if s.Endpoint == "" {
		return errors.New("s3.endpoint is required")
	}
	u, err := url.Parse(s.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("s3.endpoint must be an absolute URL, got %q", s.Endpoint)
	}
	if s.Bucket == "" {
		return errors.New("s3.bucket is required")
	}
	if s.AccessKey == "" || s.SecretKey == "" {
		return fmt.Errorf("s3 credentials are required (set s3.accessKey/s3.secretKey or %s/%s)", EnvS3AccessKey, EnvS3SecretKey)
	}
	return nil
}

func (c *Config) validateDefaults() error {
	if _, err := governance.ParseDefault(c.Defaults.Global); err != nil {
		return fmt.Errorf("global: %w", err)
	}
	for name, value := range c.Defaults.Providers {
		if _, err := governance.ParseProviderKind(name); err != nil {
			return fmt.Errorf("providers: %w", err)
		}
		if _, err := governance.ParseDefault(value); err != nil {
			return fmt.Errorf("providers.%s: %w", name, err)
		}
	}
	return nil
}
