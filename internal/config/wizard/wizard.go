package wizard

import (
	"context"
	"fmt"

	"github.com/imamik/planguard/internal/config"
)

// WizardResult holds the answers of the configuration wizard.
type WizardResult struct {
	Backend string

	// Kubernetes
	Namespace string

	// S3
	S3Region   string
	S3Endpoint string
	S3Bucket   string

	// PostgreSQL. Left empty when the DSN comes from the environment.
	PostgresDSN string

	GlobalDefault string
	StrictSchema  bool
}

// RunWizard runs the interactive configuration wizard.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		Backend:       string(config.BackendKubernetes),
		Namespace:     config.DefaultNamespace,
		S3Region:      config.DefaultS3Region,
		GlobalDefault: config.DefaultGlobal.String(),
	}

	if err := runBackendGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}

	switch config.Backend(result.Backend) {
	case config.BackendKubernetes:
		if err := runKubernetesGroup(ctx, result); err != nil {
			return nil, fmt.Errorf("kubernetes: %w", err)
		}
	case config.BackendS3:
		if err := runS3Group(ctx, result); err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
	case config.BackendPostgres:
		if err := runPostgresGroup(ctx, result); err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
	}

	if err := runDefaultsGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}

	return result, nil
}

// PolicyResult holds the answers of the policy wizard.
type PolicyResult struct {
	ProviderKind string
	Name         string
	Description  string
	Summary      string
}

// RunPolicyWizard prompts for a new policy. Non-empty fields of preset are
// used as initial values.
func RunPolicyWizard(ctx context.Context, preset PolicyResult) (*PolicyResult, error) {
	result := preset
	if err := runPolicyGroup(ctx, &result); err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	return &result, nil
}
