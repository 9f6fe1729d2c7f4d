package wizard

import (
	"github.com/charmbracelet/huh"

	"github.com/imamik/planguard/internal/config"
	"github.com/imamik/planguard/internal/governance"
)

// RegionOption represents an object storage region.
type RegionOption struct {
	Value       string
	Label       string
	Description string
}

// Regions contains the Hetzner Object Storage regions.
var Regions = []RegionOption{
	{Value: "fsn1", Label: "fsn1", Description: "Falkenstein, Germany"},
	{Value: "nbg1", Label: "nbg1", Description: "Nuremberg, Germany"},
	{Value: "hel1", Label: "hel1", Description: "Helsinki, Finland"},
}

// BackendOptions contains the policy store backends.
var BackendOptions = []huh.Option[string]{
	huh.NewOption("Kubernetes (PlanPolicy resources)", string(config.BackendKubernetes)),
	huh.NewOption("S3-compatible object storage", string(config.BackendS3)),
	huh.NewOption("PostgreSQL", string(config.BackendPostgres)),
}

// DefaultOptions contains the global default decisions.
var DefaultOptions = []huh.Option[string]{
	huh.NewOption("Deny unruled fields (Recommended)", governance.DefaultDeny.String()),
	huh.NewOption("Allow unruled fields", governance.DefaultAllow.String()),
}

// RegionsToOptions converts Regions to huh options.
func RegionsToOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(Regions))
	for i, r := range Regions {
		opts[i] = huh.NewOption(r.Label+" - "+r.Description, r.Value)
	}
	return opts
}

// ProviderKindOptions converts the known provider kinds to huh options.
func ProviderKindOptions() []huh.Option[string] {
	kinds := governance.KnownProviderKinds()
	opts := make([]huh.Option[string], len(kinds))
	for i, k := range kinds {
		opts[i] = huh.NewOption(k.String(), k.String())
	}
	return opts
}

// S3Endpoint returns the Hetzner Object Storage endpoint for region.
func S3Endpoint(region string) string {
	return "https://" + region + ".your-objectstorage.com"
}
