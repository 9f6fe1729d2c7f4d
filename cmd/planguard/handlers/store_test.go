package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/imamik/planguard/api/v1alpha1"
	"github.com/imamik/planguard/internal/bootstrap"
	"github.com/imamik/planguard/internal/config"
	"github.com/imamik/planguard/internal/platform/s3/s3test"
	"github.com/imamik/planguard/internal/util/labels"
)

func restoreBackendFactories(t *testing.T) {
	origKube, origObject, origPostgres := newKubeClient, newObjectClient, newPostgresPool
	t.Cleanup(func() {
		newKubeClient, newObjectClient, newPostgresPool = origKube, origObject, origPostgres
	})
}

type closingPool struct {
	closed bool
}

func (p *closingPool) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("no database")
}

func (p *closingPool) Close() { p.closed = true }

func TestDefaultOpenBackend_Kubernetes(t *testing.T) {
	restoreBackendFactories(t)

	c := fake.NewClientBuilder().WithScheme(v1alpha1.Scheme).Build()
	var got config.KubernetesConfig
	newKubeClient = func(cfg config.KubernetesConfig) (client.Client, error) {
		got = cfg
		return c, nil
	}

	cfg := config.Default()
	cfg.Store.Kubernetes.Context = "prod"
	b, err := defaultOpenBackend(t.Context(), cfg, logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, "prod", got.Context)
	assert.Nil(t, b.provision)

	res, err := bootstrap.Seed(t.Context(), b.store, logr.Discard())
	require.NoError(t, err)
	assert.Len(t, res.Created, 3)

	var list v1alpha1.PlanPolicyList
	require.NoError(t, c.List(t.Context(), &list, client.InNamespace(config.DefaultNamespace)))
	require.Len(t, list.Items, 3)
	assert.Equal(t, labels.ManagedByCLI, list.Items[0].Labels[labels.KeyManagedBy])
}

func TestDefaultOpenBackend_KubernetesClientError(t *testing.T) {
	restoreBackendFactories(t)
	newKubeClient = func(config.KubernetesConfig) (client.Client, error) {
		return nil, errors.New("failed to load kubeconfig: no context")
	}

	_, err := defaultOpenBackend(t.Context(), config.Default(), logr.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no context")
}

func TestDefaultOpenBackend_S3(t *testing.T) {
	server := s3test.NewServer()
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Store.Backend = config.BackendS3
	cfg.Store.S3.Endpoint = server.URL
	cfg.Store.S3.Bucket = "policies"
	cfg.Store.S3.AccessKey = "key"
	cfg.Store.S3.SecretKey = "secret"
	cfg.Store.S3.UsePathStyle = true

	b, err := defaultOpenBackend(t.Context(), cfg, logr.Discard())
	require.NoError(t, err)
	require.NotNil(t, b.provision)
	require.NoError(t, b.provision(t.Context()))

	res, err := bootstrap.Seed(t.Context(), b.store, logr.Discard())
	require.NoError(t, err)
	assert.Len(t, res.Created, 3)
	assert.Len(t, server.Keys("policies"), 3)
}

func TestDefaultOpenBackend_Postgres(t *testing.T) {
	restoreBackendFactories(t)

	pool := &closingPool{}
	var got config.PostgresConfig
	newPostgresPool = func(_ context.Context, cfg config.PostgresConfig) (postgresPool, error) {
		got = cfg
		return pool, nil
	}

	cfg := config.Default()
	cfg.Store.Backend = config.BackendPostgres
	cfg.Store.Postgres.DSN = "postgres://planguard@localhost/planguard"
	cfg.Store.Postgres.MaxConns = 4

	b, err := defaultOpenBackend(t.Context(), cfg, logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, int32(4), got.MaxConns)
	require.NotNil(t, b.provision)

	err = b.provision(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database")

	require.NotNil(t, b.close)
	b.close()
	assert.True(t, pool.closed)
}

func TestDefaultOpenBackend_PostgresInvalidDSN(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendPostgres
	cfg.Store.Postgres.DSN = "postgres://%zz"

	_, err := defaultOpenBackend(t.Context(), cfg, logr.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid postgres dsn")
}

func TestDefaultOpenBackend_Unsupported(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "etcd"

	_, err := defaultOpenBackend(t.Context(), cfg, logr.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported store backend "etcd"`)
}

func TestOpenSession_ConfigError(t *testing.T) {
	setupHandlers(t)
	loadConfig = func(string) (*config.Config, error) {
		return nil, errors.New("store validation failed")
	}

	_, err := openSession(t.Context(), &Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config: store validation failed")
}

func TestOpenSession_SchemaFileMissing(t *testing.T) {
	env := setupHandlers(t)
	env.cfg.Schema.File = "/nonexistent/schema.yaml"

	_, err := openSession(t.Context(), &Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load plan schema")
}
