package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/planguard/internal/config/wizard"
	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/util/retry"
)

// conflictRetries bounds how often a mutation is replayed after a
// concurrent write.
const conflictRetries = 5

// runPolicyWizard prompts for a new policy. Replaced in tests.
var runPolicyWizard = wizard.RunPolicyWizard

// CreateInput holds the arguments of the create command.
type CreateInput struct {
	ProviderKind string
	Name         string
	Description  string
	Summary      string
}

// UpdateInput holds the arguments of the update command. Nil fields are
// left unchanged.
type UpdateInput struct {
	ProviderKind string
	Name         string
	Description  *string
	Summary      *string
}

// onConflict replays fn while the store reports a concurrent modification.
func onConflict(ctx context.Context, fn func() error) error {
	return retry.OnConflict(ctx, governance.IsConflict, fn, retry.WithMaxRetries(conflictRetries))
}

// Create handles the create command. Without a provider kind or name on a
// terminal it asks for them interactively.
func Create(ctx context.Context, opts *Options, in CreateInput) error {
	if in.ProviderKind == "" || in.Name == "" {
		if !isInteractive() {
			return errors.New("provider kind and policy name are required")
		}
		res, err := runPolicyWizard(ctx, wizard.PolicyResult{
			ProviderKind: in.ProviderKind,
			Name:         in.Name,
			Description:  in.Description,
			Summary:      in.Summary,
		})
		if err != nil {
			return fmt.Errorf("wizard canceled: %w", err)
		}
		in = CreateInput(*res)
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

	p, err := s.svc.Create(ctx, key.ProviderKind, key.Name, in.Description, in.Summary)
	if err != nil {
		return err
	}
	return s.printer.emit(newPolicyView(p), func(st styles) string {
		return renderPolicy(st, "Created", p)
	})
}

// Update handles the update command.
func Update(ctx context.Context, opts *Options, in UpdateInput) error {
	update := governance.PolicyUpdate{Description: in.Description, Summary: in.Summary}
	if update.IsEmpty() {
		return errors.New("nothing to update: set --description or --summary")
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
	err = onConflict(ctx, func() error {
		var err error
		p, err = s.svc.Update(ctx, key, update)
		return err
	})
	if err != nil {
		return err
	}
	return s.printer.emit(newPolicyView(p), func(st styles) string {
		return renderPolicy(st, "Updated", p)
	})
}

// Delete handles the delete command.
func Delete(ctx context.Context, opts *Options, kind, name string) error {
	key, err := parseKey(kind, name)
	if err != nil {
		return err
	}

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	if err := onConflict(ctx, func() error { return s.svc.Delete(ctx, key) }); err != nil {
		return err
	}

	view := DeletedView{ProviderKind: key.ProviderKind.String(), Name: key.Name, Deleted: true}
	return s.printer.emit(view, func(st styles) string {
		return fmt.Sprintf("\n  Deleted %s\n\n", st.title(key.String()))
	})
}

// Get handles the get command.
func Get(ctx context.Context, opts *Options, kind, name string) error {
	key, err := parseKey(kind, name)
	if err != nil {
		return err
	}

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	p, err := s.svc.Get(ctx, key)
	if err != nil {
		return err
	}
	return s.printer.emit(newPolicyView(p), func(st styles) string {
		return renderPolicy(st, "", p)
	})
}

// List handles the list command. An empty kind lists every provider kind.
func List(ctx context.Context, opts *Options, kind string) error {
	var pk governance.ProviderKind
	if kind != "" {
		var err error
		if pk, err = governance.ParseProviderKind(kind); err != nil {
			return err
		}
	}

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	policies, err := s.svc.List(ctx, pk)
	if err != nil {
		return err
	}

	views := make([]PolicyView, 0, len(policies))
	for i := range policies {
		views = append(views, newPolicyView(&policies[i]))
	}
	return s.printer.emit(views, func(st styles) string {
		return renderPolicyList(st, policies)
	})
}
