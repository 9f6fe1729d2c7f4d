package handlers

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/imamik/planguard/internal/bootstrap"
	"github.com/imamik/planguard/internal/config"
	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/store/memory"
)

type testEnv struct {
	cfg   *config.Config
	store *memory.Store
	out   *bytes.Buffer

	// provisioned counts calls to the backend's provision hook.
	provisioned int
}

// setupHandlers points the handlers at a seeded in-memory store and
// captures their output. Tests using it must not run in parallel.
func setupHandlers(t *testing.T) *testEnv {
	t.Helper()

	origLoad, origOpen, origOut, origInteractive := loadConfig, openBackend, stdout, isInteractive
	origWizard := runPolicyWizard
	t.Cleanup(func() {
		loadConfig, openBackend, stdout, isInteractive = origLoad, origOpen, origOut, origInteractive
		runPolicyWizard = origWizard
	})

	env := &testEnv{
		cfg:   config.Default(),
		store: memory.NewStore(),
		out:   &bytes.Buffer{},
	}
	_, err := bootstrap.Seed(t.Context(), env.store, logr.Discard())
	require.NoError(t, err)

	loadConfig = func(string) (*config.Config, error) { return env.cfg, nil }
	openBackend = func(context.Context, *config.Config, logr.Logger) (*backend, error) {
		return &backend{
			store: env.store,
			provision: func(context.Context) error {
				env.provisioned++
				return nil
			},
		}, nil
	}
	stdout = env.out
	isInteractive = func() bool { return false }

	return env
}

// useStore makes the handlers open store instead of the seeded memory store.
func (e *testEnv) useStore(store governance.Store) {
	openBackend = func(context.Context, *config.Config, logr.Logger) (*backend, error) {
		return &backend{store: store}, nil
	}
}

// conflictingStore reports a concurrent modification on the first
// `failures` updates and deletes.
type conflictingStore struct {
	governance.Store

	mu       sync.Mutex
	failures int
	attempts int
}

func (s *conflictingStore) fail() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.failures > 0 {
		s.failures--
		return governance.ConflictError(errors.New("resource version changed"))
	}
	return nil
}

func (s *conflictingStore) Update(ctx context.Context, p *governance.Policy) (*governance.Policy, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return s.Store.Update(ctx, p)
}

func (s *conflictingStore) Delete(ctx context.Context, p *governance.Policy) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.Store.Delete(ctx, p)
}

func mustKey(t *testing.T, kind, name string) governance.PolicyKey {
	t.Helper()
	key, err := governance.NewPolicyKey(kind, name)
	require.NoError(t, err)
	return key
}
