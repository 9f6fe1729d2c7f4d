package s3

import (
	"errors"
	"fmt"
	"testing"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func TestIsBucketAlreadyOwnedByYou(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"typed owned", &s3types.BucketAlreadyOwnedByYou{}, true},
		{"typed exists", fmt.Errorf("wrapped: %w", &s3types.BucketAlreadyExists{}), true},
		{"generic code", &smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}, true},
		{"other code", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isBucketAlreadyOwnedByYou(tt.err)
			if got != tt.want {
				t.Errorf("isBucketAlreadyOwnedByYou() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"no such key", fmt.Errorf("get: %w", &s3types.NoSuchKey{}), true},
		{"no such bucket", &s3types.NoSuchBucket{}, true},
		{"head not found", &s3types.NotFound{}, true},
		{"generic code", &smithy.GenericAPIError{Code: "NoSuchKey"}, true},
		{"precondition", &smithy.GenericAPIError{Code: "PreconditionFailed"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsNotFound(tt.err)
			if got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsPreconditionFailed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic code", fmt.Errorf("put: %w", &smithy.GenericAPIError{Code: "PreconditionFailed"}), true},
		{"not found", &s3types.NoSuchKey{}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsPreconditionFailed(tt.err)
			if got != tt.want {
				t.Errorf("IsPreconditionFailed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsConditionalConflict(t *testing.T) {
	if !IsConditionalConflict(&smithy.GenericAPIError{Code: "ConditionalRequestConflict"}) {
		t.Error("expected ConditionalRequestConflict to be a conditional conflict")
	}
	if IsConditionalConflict(&smithy.GenericAPIError{Code: "PreconditionFailed"}) {
		t.Error("expected PreconditionFailed not to be a conditional conflict")
	}
	if IsConditionalConflict(nil) {
		t.Error("expected nil not to be a conditional conflict")
	}
}
