package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/planguard/internal/bootstrap"
)

// Seed handles the seed command. It prepares the backend's bucket or table
// and creates the missing built-in policies.
func Seed(ctx context.Context, opts *Options) error {
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	if s.backend.provision != nil {
		if err := s.backend.provision(ctx); err != nil {
			return fmt.Errorf("failed to prepare %s store: %w", s.cfg.Store.Backend, err)
		}
	}

	res, err := bootstrap.Seed(ctx, s.backend.store, s.log)
	if err != nil {
		return err
	}

	view := newSeedView(res)
	return s.printer.emit(view, func(st styles) string {
		return renderSeed(st, view)
	})
}
