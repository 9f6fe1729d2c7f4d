package governance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProviderKind(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"GKE", "gke", " Eks ", "aks"} {
		k, err := ParseProviderKind(in)
		require.NoError(t, err, in)
		assert.True(t, k.IsValid())
	}

	_, err := ParseProviderKind("HETZNER")
	assert.ErrorIs(t, err, ErrInvalidProviderKind)

	assert.Equal(t, "gke", ProviderGKE.Lower())
	assert.Equal(t, []ProviderKind{ProviderGKE, ProviderEKS, ProviderAKS}, KnownProviderKinds())
}

func TestNewPolicyKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    string
		pname   string
		wantErr error
	}{
		{"valid", "gke", "testpolicy", nil},
		{"valid with dash", "EKS", "default-eks", nil},
		{"bad kind", "openstack", "testpolicy", ErrInvalidProviderKind},
		{"empty name", "GKE", "", ErrInvalidName},
		{"uppercase name", "GKE", "TestPolicy", ErrInvalidName},
		{"dotted name", "GKE", "test.policy", ErrInvalidName},
		{"too long", "GKE", strings.Repeat("a", 64), ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key, err := NewPolicyKey(tt.kind, tt.pname)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pname, key.Name)
		})
	}
}

func TestPolicyKey_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "GKE/testpolicy", PolicyKey{ProviderKind: ProviderGKE, Name: "testpolicy"}.String())
}

func TestPolicy_CloneIsDeep(t *testing.T) {
	t.Parallel()

	p := &Policy{
		Key:   PolicyKey{ProviderKind: ProviderGKE, Name: "testpolicy"},
		Rules: RuleSet{"domain": {Deny: true}},
	}
	c := p.Clone()
	c.Rules.SetAllow("clusterUsers", true)
	c.Description = "changed"

	assert.Equal(t, 1, p.Rules.Len())
	assert.Empty(t, p.Description)
	assert.Nil(t, (*Policy)(nil).Clone())
}

func TestPolicy_Evaluate(t *testing.T) {
	t.Parallel()

	p := &Policy{Rules: RuleSet{"clusterUsers": {Allow: true}, "domain": {Deny: true}}}

	assert.Equal(t, ExplicitAllow, p.Evaluate("clusterUsers", DefaultDeny))
	assert.Equal(t, ExplicitDeny, p.Evaluate("domain", DefaultDeny))
	assert.Equal(t, DefaultDeny, p.Evaluate("description", DefaultDeny))
}

func TestPolicy_Validate(t *testing.T) {
	t.Parallel()

	valid := &Policy{Key: PolicyKey{ProviderKind: ProviderAKS, Name: "p"}, Rules: RuleSet{"x": {Allow: true}}}
	require.NoError(t, valid.Validate())

	bad := &Policy{Key: PolicyKey{ProviderKind: ProviderAKS, Name: "p"}, Rules: RuleSet{"a b": {Allow: true}}}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidFieldName)
}

func TestPolicyUpdate_ApplyTo(t *testing.T) {
	t.Parallel()

	desc := "new description"
	same := "summary"
	p := &Policy{Description: "old", Summary: "summary"}

	assert.True(t, PolicyUpdate{}.IsEmpty())
	assert.False(t, PolicyUpdate{}.ApplyTo(p))
	assert.False(t, PolicyUpdate{Summary: &same}.ApplyTo(p))
	assert.True(t, PolicyUpdate{Description: &desc, Summary: &same}.ApplyTo(p))
	assert.Equal(t, "new description", p.Description)
	assert.Equal(t, "summary", p.Summary)
}

func TestSortPolicies(t *testing.T) {
	t.Parallel()

	ps := []Policy{
		{Key: PolicyKey{ProviderKind: ProviderGKE, Name: "b"}},
		{Key: PolicyKey{ProviderKind: ProviderAKS, Name: "z"}},
		{Key: PolicyKey{ProviderKind: ProviderGKE, Name: "a"}},
	}
	SortPolicies(ps)

	assert.Equal(t, "AKS/z", ps[0].Key.String())
	assert.Equal(t, "GKE/a", ps[1].Key.String())
	assert.Equal(t, "GKE/b", ps[2].Key.String())
}
