package wizard

import "github.com/imamik/planguard/internal/config"

// BuildConfig creates a Config from the wizard result.
func BuildConfig(result *WizardResult) *config.Config {
	cfg := &config.Config{
		Store: config.StoreConfig{
			Backend: config.Backend(result.Backend),
		},
		Defaults: config.DefaultsConfig{
			Global: result.GlobalDefault,
		},
		Schema: config.SchemaConfig{
			Strict: result.StrictSchema,
		},
	}

	switch cfg.Store.Backend {
	case config.BackendKubernetes:
		cfg.Store.Kubernetes.Namespace = result.Namespace
	case config.BackendS3:
		cfg.Store.S3 = config.S3Config{
			Endpoint: result.S3Endpoint,
			Region:   result.S3Region,
			Bucket:   result.S3Bucket,
		}
	case config.BackendPostgres:
		cfg.Store.Postgres.DSN = result.PostgresDSN
	}

	cfg.ApplyDefaults()
	return cfg
}
