package controller

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	"github.com/imamik/planguard/internal/bootstrap"
	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/util/retry"
)

// Seeder creates the built-in policies once the manager has started. It
// runs only on the elected leader.
type Seeder struct {
	store governance.Store
	log   logr.Logger
	opts  []retry.Option
}

var (
	_ manager.Runnable               = (*Seeder)(nil)
	_ manager.LeaderElectionRunnable = (*Seeder)(nil)
)

// NewSeeder returns a runnable that seeds store. Transient store errors
// are retried with opts.
func NewSeeder(store governance.Store, log logr.Logger, opts ...retry.Option) *Seeder {
	return &Seeder{store: store, log: log, opts: opts}
}

// Start implements manager.Runnable.
func (s *Seeder) Start(ctx context.Context) error {
	var res bootstrap.Result
	err := retry.Do(ctx, func() error {
		var err error
		res, err = bootstrap.Seed(ctx, s.store, s.log)
		return err
	}, s.opts...)
	if err != nil {
		return fmt.Errorf("failed to seed built-in policies: %w", err)
	}

	recordSeedMetric("created", len(res.Created))
	recordSeedMetric("existing", len(res.Existing))
	recordSeedMetric("shadowed", len(res.Shadowed))
	s.log.Info("built-in policies ready",
		"created", len(res.Created),
		"existing", len(res.Existing),
		"shadowed", len(res.Shadowed),
	)
	return nil
}

// NeedLeaderElection implements manager.LeaderElectionRunnable.
func (s *Seeder) NeedLeaderElection() bool {
	return true
}
