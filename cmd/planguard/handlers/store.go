package handlers

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/jackc/pgx/v5/pgxpool"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/imamik/planguard/api/v1alpha1"
	"github.com/imamik/planguard/internal/config"
	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/platform/s3"
	"github.com/imamik/planguard/internal/store/kube"
	"github.com/imamik/planguard/internal/store/objectstore"
	"github.com/imamik/planguard/internal/store/postgres"
	"github.com/imamik/planguard/internal/util/labels"
)

// backend is an opened policy store.
type backend struct {
	store governance.Store

	// provision creates the bucket or table the store needs. Nil when the
	// backend has nothing to create.
	provision func(ctx context.Context) error

	close func()
}

// postgresPool is the part of *pgxpool.Pool the CLI uses.
type postgresPool interface {
	postgres.Beginner
	Close()
}

// Factory function variables for store backends - can be replaced in tests.
var (
	newKubeClient = func(cfg config.KubernetesConfig) (client.Client, error) {
		rules := clientcmd.NewDefaultClientConfigLoadingRules()
		rules.ExplicitPath = cfg.Kubeconfig
		overrides := &clientcmd.ConfigOverrides{CurrentContext: cfg.Context}
		restCfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
		}
		c, err := client.New(restCfg, client.Options{Scheme: v1alpha1.Scheme})
		if err != nil {
			return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
		}
		return c, nil
	}

	newObjectClient = func(cfg config.S3Config) (objectstore.ObjectClient, error) {
		c, err := s3.NewClient(cfg.Endpoint, cfg.Region, cfg.AccessKey, cfg.SecretKey, s3.WithPathStyle(cfg.UsePathStyle))
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	newPostgresPool = func(ctx context.Context, cfg config.PostgresConfig) (postgresPool, error) {
		poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("invalid postgres dsn: %w", err)
		}
		if cfg.MaxConns > 0 {
			poolCfg.MaxConns = cfg.MaxConns
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return pool, nil
	}
)

func defaultOpenBackend(ctx context.Context, cfg *config.Config, log logr.Logger) (*backend, error) {
	switch cfg.Store.Backend {
	case config.BackendKubernetes:
		c, err := newKubeClient(cfg.Store.Kubernetes)
		if err != nil {
			return nil, err
		}
		store := kube.NewStore(c,
			kube.WithNamespace(cfg.Store.Kubernetes.Namespace),
			kube.WithManagedBy(labels.ManagedByCLI),
			kube.WithLogger(log),
		)
		return &backend{store: store}, nil

	case config.BackendS3:
		c, err := newObjectClient(cfg.Store.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		store := objectstore.NewStore(c, cfg.Store.S3.Bucket,
			objectstore.WithPrefix(cfg.Store.S3.Prefix),
			objectstore.WithManagedBy(labels.ManagedByCLI),
			objectstore.WithLogger(log),
		)
		return &backend{store: store, provision: store.EnsureBucket}, nil

	case config.BackendPostgres:
		pool, err := newPostgresPool(ctx, cfg.Store.Postgres)
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(pool, postgres.WithLogger(log))
		return &backend{store: store, provision: store.EnsureSchema, close: pool.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}
