// Package handlers implements the business logic of the planguard CLI.
//
// Each exported function backs one command. Handlers load planguard.yaml,
// open the configured policy store and delegate to the admin service.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/imamik/planguard/internal/admin"
	"github.com/imamik/planguard/internal/config"
	"github.com/imamik/planguard/internal/governance"
)

// Options carries the persistent flags shared by every command.
type Options struct {
	ConfigPath string
	Output     string
	Verbose    bool
}

// Factory function variables - can be replaced in tests.
var (
	// loadConfig loads planguard.yaml or falls back to the defaults.
	loadConfig = config.LoadOrDefault

	// openBackend opens the store selected by the config.
	openBackend = defaultOpenBackend

	// stdout receives all command output.
	stdout io.Writer = os.Stdout
)

// session bundles what a command needs to talk to the policy store.
type session struct {
	cfg     *config.Config
	backend *backend
	svc     *admin.Service
	log     logr.Logger
	printer *printer
}

func newLogger(verbose bool) logr.Logger {
	if !verbose {
		return logr.Discard()
	}
	return zap.New(zap.UseDevMode(true), zap.WriteTo(os.Stderr))
}

// openSession loads the config and opens its store. The caller must call
// close when done.
func openSession(ctx context.Context, opts *Options) (*session, error) {
	p, err := newPrinter(opts.Output)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := newLogger(opts.Verbose)

	schemaProvider, err := cfg.SchemaProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to load plan schema: %w", err)
	}

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	svc := admin.NewService(b.store,
		admin.WithSchema(schemaProvider),
		admin.WithStrictFields(cfg.Schema.Strict),
		admin.WithLogger(log),
		admin.WithMetrics(false),
	)

	return &session{cfg: cfg, backend: b, svc: svc, log: log, printer: p}, nil
}

func (s *session) close() {
	if s.backend.close != nil {
		s.backend.close()
	}
}

// parseKey builds a policy key from command arguments.
func parseKey(kind, name string) (governance.PolicyKey, error) {
	return governance.NewPolicyKey(kind, name)
}
