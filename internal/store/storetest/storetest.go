// Package storetest provides a conformance suite that every governance.Store
// backend runs from its own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/planguard/internal/governance"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) governance.Store

// NewPolicy returns an unsaved policy with the given key and rules.
func NewPolicy(kind governance.ProviderKind, name string, rules governance.RuleSet) *governance.Policy {
	return &governance.Policy{
		Key:         governance.PolicyKey{ProviderKind: kind, Name: name},
		Description: name + " description",
		Summary:     name + " summary",
		Rules:       rules,
	}
}

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s governance.Store)
	}{
		{"CreateAndGet", testCreateAndGet},
		{"CreateDuplicate", testCreateDuplicate},
		{"SameNameAcrossKinds", testSameNameAcrossKinds},
		{"GetMissing", testGetMissing},
		{"ListSortedAndFiltered", testList},
		{"Update", testUpdate},
		{"UpdateKeepsIdentity", testUpdateKeepsIdentity},
		{"UpdateStale", testUpdateStale},
		{"UpdateMissing", testUpdateMissing},
		{"Delete", testDelete},
		{"DeleteStale", testDeleteStale},
		{"DeleteMissing", testDeleteMissing},
		{"CanonicalRules", testCanonicalRules},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func testCreateAndGet(t *testing.T, s governance.Store) {
	ctx := context.Background()
	in := NewPolicy(governance.ProviderGKE, "testpolicy", governance.RuleSet{
		"clusterUsers": {Allow: true},
		"domain":       {Deny: true},
	})

	created, err := s.Create(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ResourceVersion)
	assert.Equal(t, in.Key, created.Key)

	got, err := s.Get(ctx, in.Key)
	require.NoError(t, err)
	assert.Equal(t, in.Key, got.Key)
	assert.Equal(t, in.Description, got.Description)
	assert.Equal(t, in.Summary, got.Summary)
	assert.False(t, got.ReadOnly)
	assert.True(t, in.Rules.Equal(got.Rules), "rules = %v", got.Rules)
	assert.Equal(t, created.ResourceVersion, got.ResourceVersion)
	assert.Equal(t, created.UID, got.UID)
}

func testCreateDuplicate(t *testing.T, s governance.Store) {
	ctx := context.Background()
	_, err := s.Create(ctx, NewPolicy(governance.ProviderGKE, "testpolicy", nil))
	require.NoError(t, err)

	_, err = s.Create(ctx, NewPolicy(governance.ProviderGKE, "testpolicy", governance.RuleSet{"domain": {Deny: true}}))
	require.ErrorIs(t, err, governance.ErrDuplicatePolicyName)

	got, err := s.Get(ctx, governance.PolicyKey{ProviderKind: governance.ProviderGKE, Name: "testpolicy"})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Rules.Len(), "failed create must not overwrite the record")
}

func testSameNameAcrossKinds(t *testing.T, s governance.Store) {
	ctx := context.Background()
	_, err := s.Create(ctx, NewPolicy(governance.ProviderGKE, "shared", nil))
	require.NoError(t, err)
	_, err = s.Create(ctx, NewPolicy(governance.ProviderEKS, "shared", nil))
	require.NoError(t, err)
}

func testGetMissing(t *testing.T, s governance.Store) {
	_, err := s.Get(context.Background(), governance.PolicyKey{ProviderKind: governance.ProviderAKS, Name: "missing"})
	require.ErrorIs(t, err, governance.ErrPolicyNotFound)
}

func testList(t *testing.T, s governance.Store) {
	ctx := context.Background()
	for _, p := range []*governance.Policy{
		NewPolicy(governance.ProviderGKE, "zeta", nil),
		NewPolicy(governance.ProviderEKS, "alpha", nil),
		NewPolicy(governance.ProviderGKE, "alpha", nil),
		NewPolicy(governance.ProviderAKS, "beta", nil),
	} {
		_, err := s.Create(ctx, p)
		require.NoError(t, err)
	}

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"AKS/beta", "EKS/alpha", "GKE/alpha", "GKE/zeta"}, keys(all))

	gke, err := s.List(ctx, governance.ProviderGKE)
	require.NoError(t, err)
	assert.Equal(t, []string{"GKE/alpha", "GKE/zeta"}, keys(gke))

	empty, err := s.List(ctx, governance.ProviderAKS)
	require.NoError(t, err)
	assert.Len(t, empty, 1)
}

func testUpdate(t *testing.T, s governance.Store) {
	ctx := context.Background()
	created, err := s.Create(ctx, NewPolicy(governance.ProviderGKE, "testpolicy", nil))
	require.NoError(t, err)

	changed := created.Clone()
	changed.Description = "new description"
	changed.Rules.SetAllow("authorizedMasterNetworks", true)
	changed.Rules.SetDeny("authorizedMasterNetworks", true)

	updated, err := s.Update(ctx, changed)
	require.NoError(t, err)
	assert.NotEqual(t, created.ResourceVersion, updated.ResourceVersion)

	got, err := s.Get(ctx, created.Key)
	require.NoError(t, err)
	assert.Equal(t, "new description", got.Description)
	assert.Equal(t, governance.FieldRule{Allow: true, Deny: true}, got.Rules.Get("authorizedMasterNetworks"))
	assert.Equal(t, updated.ResourceVersion, got.ResourceVersion)
}

func testUpdateKeepsIdentity(t *testing.T, s governance.Store) {
	ctx := context.Background()
	builtin := NewPolicy(governance.ProviderGKE, "default-gke", nil)
	builtin.ReadOnly = true
	created, err := s.Create(ctx, builtin)
	require.NoError(t, err)

	changed := created.Clone()
	changed.ReadOnly = false
	changed.Summary = "changed"

	_, err = s.Update(ctx, changed)
	require.NoError(t, err)

	got, err := s.Get(ctx, created.Key)
	require.NoError(t, err)
	assert.True(t, got.ReadOnly, "update must not clear the read-only flag")
	assert.Equal(t, created.UID, got.UID)
	assert.Equal(t, "changed", got.Summary)
}

func testUpdateStale(t *testing.T, s governance.Store) {
	ctx := context.Background()
	created, err := s.Create(ctx, NewPolicy(governance.ProviderGKE, "testpolicy", nil))
	require.NoError(t, err)

	first := created.Clone()
	first.Rules.SetDeny("domain", true)
	current, err := s.Update(ctx, first)
	require.NoError(t, err)

	stale := created.Clone()
	stale.Rules.SetAllow("domain", true)
	_, err = s.Update(ctx, stale)
	require.ErrorIs(t, err, governance.ErrConflict)

	got, err := s.Get(ctx, created.Key)
	require.NoError(t, err)
	assert.Equal(t, current.ResourceVersion, got.ResourceVersion)
	assert.Equal(t, governance.FieldRule{Deny: true}, got.Rules.Get("domain"))
}

func testUpdateMissing(t *testing.T, s governance.Store) {
	p := NewPolicy(governance.ProviderEKS, "missing", nil)
	p.ResourceVersion = "1"
	_, err := s.Update(context.Background(), p)
	require.ErrorIs(t, err, governance.ErrPolicyNotFound)
}

func testDelete(t *testing.T, s governance.Store) {
	ctx := context.Background()
	created, err := s.Create(ctx, NewPolicy(governance.ProviderGKE, "testpolicy", nil))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created))

	_, err = s.Get(ctx, created.Key)
	require.ErrorIs(t, err, governance.ErrPolicyNotFound)

	_, err = s.Create(ctx, NewPolicy(governance.ProviderGKE, "testpolicy", nil))
	require.NoError(t, err, "name must be reusable after delete")
}

func testDeleteStale(t *testing.T, s governance.Store) {
	ctx := context.Background()
	created, err := s.Create(ctx, NewPolicy(governance.ProviderGKE, "testpolicy", nil))
	require.NoError(t, err)

	changed := created.Clone()
	changed.Summary = "changed"
	_, err = s.Update(ctx, changed)
	require.NoError(t, err)

	err = s.Delete(ctx, created)
	require.ErrorIs(t, err, governance.ErrConflict)

	_, err = s.Get(ctx, created.Key)
	require.NoError(t, err)
}

func testDeleteMissing(t *testing.T, s governance.Store) {
	p := NewPolicy(governance.ProviderGKE, "missing", nil)
	p.ResourceVersion = "1"
	err := s.Delete(context.Background(), p)
	require.ErrorIs(t, err, governance.ErrPolicyNotFound)
}

func testCanonicalRules(t *testing.T, s governance.Store) {
	ctx := context.Background()
	created, err := s.Create(ctx, NewPolicy(governance.ProviderGKE, "testpolicy", governance.RuleSet{
		"clusterUsers": {Allow: true},
	}))
	require.NoError(t, err)

	changed := created.Clone()
	changed.Rules.SetAllow("clusterUsers", false)
	_, err = s.Update(ctx, changed)
	require.NoError(t, err)

	got, err := s.Get(ctx, created.Key)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Rules.Len())
	assert.NotContains(t, got.Rules, "clusterUsers")
}

func keys(policies []governance.Policy) []string {
	out := make([]string, 0, len(policies))
	for _, p := range policies {
		out = append(out, p.Key.String())
	}
	return out
}
