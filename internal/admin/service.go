package admin

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/planguard/internal/bootstrap"
	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/schema"
)

// Operation names used in errors, logs and metrics.
const (
	OpCreate         = "create"
	OpUpdate         = "update"
	OpDelete         = "delete"
	OpToggleAllow    = "toggle-allow"
	OpToggleDeny     = "toggle-deny"
	OpEvaluate       = "evaluate"
	OpEvaluatePolicy = "evaluate-policy"
	OpGet            = "get"
	OpList           = "list"
)

// Service administers policies stored in a governance.Store.
type Service struct {
	store         governance.Store
	schema        governance.SchemaProvider
	strict        bool
	log           logr.Logger
	enableMetrics bool
}

// Option is a functional option for configuring the Service.
type Option func(*Service)

// WithSchema sets the plan schema used for strict field checks and for
// evaluating every plan field at once.
func WithSchema(p governance.SchemaProvider) Option {
	return func(s *Service) {
		s.schema = p
	}
}

// WithStrictFields makes toggles reject fields missing from the plan schema
// with governance.ErrUnknownField. Without WithSchema the builtin schema is used.
func WithStrictFields(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithMetrics enables or disables Prometheus metrics.
func WithMetrics(enable bool) Option {
	return func(s *Service) {
		s.enableMetrics = enable
	}
}

// NewService creates a policy admin service.
func NewService(store governance.Store, opts ...Option) *Service {
	s := &Service{
		store:         store,
		log:           logr.Discard(),
		enableMetrics: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.strict && s.schema == nil {
		s.schema = schema.Builtin()
	}
	return s
}

// Strict reports whether unknown fields are rejected.
func (s *Service) Strict() bool {
	return s.strict
}

func (s *Service) observe(op string, start time.Time, err error) {
	if s.enableMetrics {
		recordOperationMetric(op, err, time.Since(start).Seconds())
	}
}

// fail wraps err in a PolicyError. Not-found and duplicate errors from the
// store are reduced to their sentinel since the PolicyError already names
// the key.
func fail(op string, key governance.PolicyKey, field string, err error) error {
	for _, sentinel := range []error{governance.ErrPolicyNotFound, governance.ErrDuplicatePolicyName} {
		if errors.Is(err, sentinel) {
			err = sentinel
			break
		}
	}
	return &governance.PolicyError{Op: op, Key: key, Field: field, Err: err}
}

// Get returns the policy stored under key.
func (s *Service) Get(ctx context.Context, key governance.PolicyKey) (p *governance.Policy, err error) {
	defer func(start time.Time) { s.observe(OpGet, start, err) }(time.Now())

	p, err = s.store.Get(ctx, key)
	if err != nil {
		return nil, fail(OpGet, key, "", err)
	}
	s.log.V(1).Info("Read policy", "provider", key.ProviderKind.String(), "policy", key.Name)
	return p, nil
}

// List returns the policies of kind, or of every kind when kind is empty,
// sorted by provider kind then name.
func (s *Service) List(ctx context.Context, kind governance.ProviderKind) (policies []governance.Policy, err error) {
	defer func(start time.Time) { s.observe(OpList, start, err) }(time.Now())

	if kind != "" && !kind.IsValid() {
		return nil, &governance.PolicyError{Op: OpList, Key: governance.PolicyKey{ProviderKind: kind}, Err: governance.ErrInvalidProviderKind}
	}
	policies, err = s.store.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	s.log.V(1).Info("Listed policies", "provider", kind.String(), "count", len(policies))
	return policies, nil
}

// Create stores a new, writable policy with an empty rule set. The
// built-in name of each provider kind is reserved, seeded or not.
func (s *Service) Create(ctx context.Context, kind governance.ProviderKind, name, description, summary string) (p *governance.Policy, err error) {
	defer func(start time.Time) { s.observe(OpCreate, start, err) }(time.Now())

	key := governance.PolicyKey{ProviderKind: kind, Name: name}
	if err := key.Validate(); err != nil {
		return nil, fail(OpCreate, key, "", err)
	}
	if key == bootstrap.BuiltinKey(kind) {
		return nil, fail(OpCreate, key, "", governance.ErrDuplicatePolicyName)
	}

	p, err = s.store.Create(ctx, &governance.Policy{
		Key:         key,
		Description: description,
		Summary:     summary,
		Rules:       governance.RuleSet{},
	})
	if err != nil {
		return nil, fail(OpCreate, key, "", err)
	}
	s.log.Info("Created policy", "provider", key.ProviderKind.String(), "policy", key.Name)
	return p, nil
}

// Update changes the description and summary of a writable policy. An update
// that changes nothing performs no write.
func (s *Service) Update(ctx context.Context, key governance.PolicyKey, update governance.PolicyUpdate) (p *governance.Policy, err error) {
	defer func(start time.Time) { s.observe(OpUpdate, start, err) }(time.Now())

	p, err = s.loadWritable(ctx, OpUpdate, key, "")
	if err != nil {
		return nil, err
	}
	if !update.ApplyTo(p) {
		return p, nil
	}

	p, err = s.store.Update(ctx, p)
	if err != nil {
		return nil, fail(OpUpdate, key, "", err)
	}
	s.log.Info("Updated policy", "provider", key.ProviderKind.String(), "policy", key.Name)
	return p, nil
}

// Delete removes a writable policy.
func (s *Service) Delete(ctx context.Context, key governance.PolicyKey) (err error) {
	defer func(start time.Time) { s.observe(OpDelete, start, err) }(time.Now())

	p, err := s.loadWritable(ctx, OpDelete, key, "")
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, p); err != nil {
		return fail(OpDelete, key, "", err)
	}
	s.log.Info("Deleted policy", "provider", key.ProviderKind.String(), "policy", key.Name)
	return nil
}

// ToggleAllow sets the allow flag of field. The deny flag is left untouched.
func (s *Service) ToggleAllow(ctx context.Context, key governance.PolicyKey, field string, value bool) (*governance.Policy, error) {
	return s.toggle(ctx, OpToggleAllow, key, field, value, (*governance.RuleSet).SetAllow)
}

// ToggleDeny sets the deny flag of field. The allow flag is left untouched.
func (s *Service) ToggleDeny(ctx context.Context, key governance.PolicyKey, field string, value bool) (*governance.Policy, error) {
	return s.toggle(ctx, OpToggleDeny, key, field, value, (*governance.RuleSet).SetDeny)
}

func (s *Service) toggle(
	ctx context.Context,
	op string,
	key governance.PolicyKey,
	field string,
	value bool,
	set func(*governance.RuleSet, string, bool) bool,
) (p *governance.Policy, err error) {
	defer func(start time.Time) { s.observe(op, start, err) }(time.Now())

	if err := governance.ValidateFieldName(field); err != nil {
		return nil, fail(op, key, field, err)
	}
	p, err = s.loadWritable(ctx, op, key, field)
	if err != nil {
		return nil, err
	}
	if s.strict {
		known, err := schema.Contains(ctx, s.schema, key.ProviderKind, field)
		if err != nil {
			return nil, fail(op, key, field, err)
		}
		if !known {
			return nil, fail(op, key, field, governance.ErrUnknownField)
		}
	}

	if !set(&p.Rules, field, value) {
		s.log.V(1).Info("Rule already set", "provider", key.ProviderKind.String(), "policy", key.Name, "field", field, "value", value)
		return p, nil
	}

	p, err = s.store.Update(ctx, p)
	if err != nil {
		return nil, fail(op, key, field, err)
	}
	s.log.Info("Changed rule", "operation", op, "provider", key.ProviderKind.String(), "policy", key.Name, "field", field, "value", value)
	return p, nil
}

// loadWritable reads the policy and rejects read-only ones.
func (s *Service) loadWritable(ctx context.Context, op string, key governance.PolicyKey, field string) (*governance.Policy, error) {
	p, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fail(op, key, field, err)
	}
	if p.ReadOnly {
		return nil, fail(op, key, field, governance.ErrPolicyReadOnly)
	}
	return p, nil
}

// Evaluate resolves field of the stored policy under globalDefault.
func (s *Service) Evaluate(ctx context.Context, key governance.PolicyKey, field string, globalDefault governance.Decision) (d governance.Decision, err error) {
	defer func(start time.Time) { s.observe(OpEvaluate, start, err) }(time.Now())

	if err := governance.ValidateFieldName(field); err != nil {
		return "", fail(OpEvaluate, key, field, err)
	}
	p, err := s.store.Get(ctx, key)
	if err != nil {
		return "", fail(OpEvaluate, key, field, err)
	}

	d = p.Evaluate(field, globalDefault)
	if s.enableMetrics {
		recordEvaluationMetric(key.ProviderKind, d)
	}
	s.log.V(1).Info("Evaluated field", "provider", key.ProviderKind.String(), "policy", key.Name, "field", field, "decision", d.String())
	return d, nil
}

// EvaluatePolicy resolves several fields at once. Without fields it
// evaluates every schema field of the policy's provider kind in strict mode,
// and every ruled field otherwise.
func (s *Service) EvaluatePolicy(ctx context.Context, key governance.PolicyKey, globalDefault governance.Decision, fields ...string) (out []governance.FieldDecision, err error) {
	defer func(start time.Time) { s.observe(OpEvaluatePolicy, start, err) }(time.Now())

	for _, f := range fields {
		if err := governance.ValidateFieldName(f); err != nil {
			return nil, fail(OpEvaluatePolicy, key, f, err)
		}
	}
	p, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fail(OpEvaluatePolicy, key, "", err)
	}

	if len(fields) == 0 && s.strict {
		fields, err = s.schema.FieldNames(ctx, key.ProviderKind)
		if err != nil {
			return nil, fail(OpEvaluatePolicy, key, "", err)
		}
	}

	out = governance.EvaluateFields(p.Rules, globalDefault, fields...)
	if s.enableMetrics {
		for _, fd := range out {
			recordEvaluationMetric(key.ProviderKind, fd.Decision)
		}
	}
	s.log.V(1).Info("Evaluated policy", "provider", key.ProviderKind.String(), "policy", key.Name, "fields", len(out))
	return out, nil
}
