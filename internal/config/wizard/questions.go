package wizard

import (
	"context"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"k8s.io/apimachinery/pkg/util/validation"
)

// runBackendGroup prompts for the policy store backend.
func runBackendGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Policy Store").
				Description("Where plan policies are persisted").
				Options(BackendOptions...).
				Value(&result.Backend),
		).Title("Backend"),
	).RunWithContext(ctx)
}

// runKubernetesGroup prompts for the namespace holding PlanPolicy resources.
func runKubernetesGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Namespace").
				Description("Namespace for PlanPolicy resources").
				Placeholder("planguard-system").
				Value(&result.Namespace).
				Validate(validateNamespace),
		).Title("Kubernetes"),
	).RunWithContext(ctx)
}

// runS3Group prompts for the object storage location.
func runS3Group(ctx context.Context, result *WizardResult) error {
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Region").
				Description("Hetzner Object Storage region").
				Options(RegionsToOptions()...).
				Value(&result.S3Region),
		).Title("Object Storage"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	if result.S3Endpoint == "" {
		result.S3Endpoint = S3Endpoint(result.S3Region)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Endpoint").
				Value(&result.S3Endpoint).
				Validate(validateEndpoint),
			huh.NewInput().
				Title("Bucket").
				Description("Created on first use if missing").
				Placeholder("plan-policies").
				Value(&result.S3Bucket).
				Validate(validateBucket),
		).Title("Object Storage"),
	).RunWithContext(ctx)
}

// runPostgresGroup prompts for the database DSN.
func runPostgresGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("DSN (Optional)").
				Description("Leave empty to read PLANGUARD_POSTGRES_DSN at runtime").
				Placeholder("postgres://planguard@localhost:5432/planguard").
				Value(&result.PostgresDSN).
				Validate(validateDSN),
		).Title("PostgreSQL"),
	).RunWithContext(ctx)
}

// runDefaultsGroup prompts for the global default and strict field checks.
func runDefaultsGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Global Default").
				Description("Decision for fields without an explicit rule").
				Options(DefaultOptions...).
				Value(&result.GlobalDefault),
			huh.NewConfirm().
				Title("Strict Fields").
				Description("Reject rules for fields missing from the plan schema").
				Value(&result.StrictSchema),
		).Title("Evaluation"),
	).RunWithContext(ctx)
}

// runPolicyGroup prompts for the fields of a new policy.
func runPolicyGroup(ctx context.Context, result *PolicyResult) error {
	if result.ProviderKind == "" {
		result.ProviderKind = ProviderKindOptions()[0].Value
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Provider").
				Options(ProviderKindOptions()...).
				Value(&result.ProviderKind),
			huh.NewInput().
				Title("Name").
				Description("Lowercase alphanumeric characters or hyphens").
				Placeholder("team-a").
				Value(&result.Name).
				Validate(validatePolicyName),
			huh.NewInput().
				Title("Description").
				Value(&result.Description),
			huh.NewInput().
				Title("Summary").
				Value(&result.Summary),
		).Title("New Policy"),
	).RunWithContext(ctx)
}

// validatePolicyName validates the policy name format.
func validatePolicyName(s string) error {
	if s == "" {
		return errPolicyNameRequired
	}
	if len(validation.IsDNS1123Label(s)) > 0 {
		return errPolicyNameInvalid
	}
	return nil
}

func validateNamespace(s string) error {
	if s == "" {
		return errNamespaceRequired
	}
	if len(validation.IsDNS1123Label(s)) > 0 {
		return errNamespaceInvalid
	}
	return nil
}

func validateEndpoint(s string) error {
	if s == "" {
		return errEndpointRequired
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errEndpointInvalid
	}
	return nil
}

func validateBucket(s string) error {
	if strings.TrimSpace(s) == "" {
		return errBucketRequired
	}
	return nil
}

// validateDSN accepts an empty DSN, which defers to the environment.
func validateDSN(s string) error {
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "postgres://") && !strings.HasPrefix(s, "postgresql://") {
		return errDSNInvalid
	}
	return nil
}
