package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/planguard/internal/governance"
)

// EvaluateInput holds the arguments of the evaluate command.
type EvaluateInput struct {
	ProviderKind string
	Name         string

	// Fields to evaluate. Empty evaluates every schema field in strict mode
	// and every ruled field otherwise.
	Fields []string

	// Default overrides the configured global default.
	Default string

	// FailOnDeny turns any denied field into an error after printing.
	FailOnDeny bool
}

// Evaluate handles the evaluate command.
func Evaluate(ctx context.Context, opts *Options, in EvaluateInput) error {
	key, err := parseKey(in.ProviderKind, in.Name)
	if err != nil {
		return err
	}

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	globalDefault := s.cfg.ResolveDefault(key.ProviderKind)
	if in.Default != "" {
		if globalDefault, err = governance.ParseDefault(in.Default); err != nil {
			return err
		}
	}

	decisions, err := s.svc.EvaluatePolicy(ctx, key, globalDefault, in.Fields...)
	if err != nil {
		return err
	}

	view := newEvaluationView(key, globalDefault, decisions)
	if err := s.printer.emit(view, func(st styles) string {
		return renderEvaluation(st, view)
	}); err != nil {
		return err
	}

	if in.FailOnDeny {
		denied := 0
		for _, fd := range decisions {
			if !fd.Decision.Allowed() {
				denied++
			}
		}
		if denied > 0 {
			return fmt.Errorf("%s: %d of %d fields denied", key, denied, len(decisions))
		}
	}
	return nil
}
