package handlers

import (
	"context"
	"errors"

	"github.com/imamik/planguard/internal/governance"
)

// RuleInput holds the arguments of the allow and deny commands.
type RuleInput struct {
	ProviderKind string
	Name         string
	Fields       []string

	// Unset clears the flag instead of setting it.
	Unset bool
}

type toggleFunc func(ctx context.Context, s *session, key governance.PolicyKey, field string, value bool) (*governance.Policy, error)

// Allow handles the allow command.
func Allow(ctx context.Context, opts *Options, in RuleInput) error {
	return setRule(ctx, opts, in, func(ctx context.Context, s *session, key governance.PolicyKey, field string, value bool) (*governance.Policy, error) {
		return s.svc.ToggleAllow(ctx, key, field, value)
	})
}

// Deny handles the deny command.
func Deny(ctx context.Context, opts *Options, in RuleInput) error {
	return setRule(ctx, opts, in, func(ctx context.Context, s *session, key governance.PolicyKey, field string, value bool) (*governance.Policy, error) {
		return s.svc.ToggleDeny(ctx, key, field, value)
	})
}

// setRule applies toggle to every field in order. Fields before a failing
// one stay applied.
func setRule(ctx context.Context, opts *Options, in RuleInput, toggle toggleFunc) error {
	if len(in.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	key, err := parseKey(in.ProviderKind, in.Name)
	if err != nil {
		return err
	}

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	var p *governance.Policy
	for _, field := range in.Fields {
		err := onConflict(ctx, func() error {
			var err error
			p, err = toggle(ctx, s, key, field, !in.Unset)
			return err
		})
		if err != nil {
			return err
		}
	}

	return s.printer.emit(newPolicyView(p), func(st styles) string {
		return renderPolicy(st, "Updated", p)
	})
}
