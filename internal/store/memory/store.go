// Package memory provides an in-process governance.Store. It backs unit
// tests of the admin service and the CLI and suits embedding the engine
// without persistence.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imamik/planguard/internal/governance"
)

// Store keeps policies in a map guarded by a mutex. Records are cloned on
// the way in and out, so callers never share state with the store.
type Store struct {
	mu       sync.RWMutex
	policies map[governance.PolicyKey]*governance.Policy
	version  int64
	now      func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		policies: make(map[governance.PolicyKey]*governance.Policy),
		now:      time.Now,
	}
}

func (s *Store) nextVersion() string {
	s.version++
	return strconv.FormatInt(s.version, 10)
}

// Get implements governance.Store.
func (s *Store) Get(_ context.Context, key governance.PolicyKey) (*governance.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", governance.ErrPolicyNotFound, key)
	}
	return p.Clone(), nil
}

// List implements governance.Store.
func (s *Store) List(_ context.Context, kind governance.ProviderKind) ([]governance.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]governance.Policy, 0, len(s.policies))
	for key, p := range s.policies {
		if kind != "" && key.ProviderKind != kind {
			continue
		}
		out = append(out, *p.Clone())
	}
	governance.SortPolicies(out)
	return out, nil
}

// Create implements governance.Store.
func (s *Store) Create(_ context.Context, policy *governance.Policy) (*governance.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[policy.Key]; ok {
		return nil, fmt.Errorf("%w: %s", governance.ErrDuplicatePolicyName, policy.Key)
	}
	p := policy.Clone()
	p.Rules.Canonicalize()
	p.ResourceVersion = s.nextVersion()
	p.UID = uuid.NewString()
	p.CreatedAt = s.now().UTC()
	s.policies[p.Key] = p
	return p.Clone(), nil
}

// Update implements governance.Store.
func (s *Store) Update(_ context.Context, policy *governance.Policy) (*governance.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.current(policy)
	if err != nil {
		return nil, err
	}
	p := current.Clone()
	p.Description = policy.Description
	p.Summary = policy.Summary
	p.Rules = policy.Rules.Clone()
	p.Rules.Canonicalize()
	p.ResourceVersion = s.nextVersion()
	s.policies[p.Key] = p
	return p.Clone(), nil
}

// Delete implements governance.Store.
func (s *Store) Delete(_ context.Context, policy *governance.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.current(policy); err != nil {
		return err
	}
	delete(s.policies, policy.Key)
	return nil
}

func (s *Store) current(policy *governance.Policy) (*governance.Policy, error) {
	current, ok := s.policies[policy.Key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", governance.ErrPolicyNotFound, policy.Key)
	}
	if current.ResourceVersion != policy.ResourceVersion {
		return nil, governance.ConflictError(fmt.Errorf("resource version %q is stale, current is %q",
			policy.ResourceVersion, current.ResourceVersion))
	}
	return current, nil
}
