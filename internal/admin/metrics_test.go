package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/store/memory"
)

func TestResultLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, resultSuccess},
		{&governance.PolicyError{Err: governance.ErrPolicyNotFound}, resultNotFound},
		{&governance.PolicyError{Err: governance.ErrDuplicatePolicyName}, resultDuplicate},
		{&governance.PolicyError{Err: governance.ErrPolicyReadOnly}, resultReadOnly},
		{&governance.PolicyError{Err: governance.ErrUnknownField}, resultUnknownField},
		{governance.ConflictError(errors.New("stale")), resultConflict},
		{governance.ErrInvalidFieldName, resultInvalid},
		{errors.New("boom"), resultError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, resultLabel(tt.err), "%v", tt.err)
	}
}

func TestServiceRecordsMetrics(t *testing.T) {
	operationsTotal.Reset()
	operationDuration.Reset()
	evaluationsTotal.Reset()

	ctx := context.Background()
	svc := NewService(memory.NewStore())

	_, err := svc.Create(ctx, governance.ProviderAKS, "metrics", "", "")
	assert.NoError(t, err)
	_, err = svc.Create(ctx, governance.ProviderAKS, "metrics", "", "")
	assert.Error(t, err)

	key := governance.PolicyKey{ProviderKind: governance.ProviderAKS, Name: "metrics"}
	_, err = svc.Evaluate(ctx, key, "vmSize", governance.DefaultDeny)
	assert.NoError(t, err)

	created, err := operationsTotal.GetMetricWithLabelValues(OpCreate, resultSuccess)
	assert.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(created))

	duplicate, err := operationsTotal.GetMetricWithLabelValues(OpCreate, resultDuplicate)
	assert.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(duplicate))

	evaluated, err := evaluationsTotal.GetMetricWithLabelValues("AKS", "DefaultDeny")
	assert.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(evaluated))
}
