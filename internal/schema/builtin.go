package schema

import "github.com/imamik/planguard/internal/governance"

// Fields shared by every plan regardless of provider.
var commonFields = []string{
	"clusterUsers",
	"description",
	"domain",
	"kubernetesVersion",
	"labels",
	"maxNodeCount",
	"minNodeCount",
	"nodeCount",
}

var providerFields = map[governance.ProviderKind][]string{
	governance.ProviderGKE: {
		"authorizedMasterNetworks",
		"diskSizeGb",
		"machineType",
		"networkPolicy",
		"preemptible",
		"privateCluster",
		"region",
		"releaseChannel",
		"zone",
	},
	governance.ProviderEKS: {
		"diskSizeGb",
		"endpointPublicAccess",
		"instanceType",
		"publicAccessCidrs",
		"region",
		"subnetIds",
		"vpcId",
	},
	governance.ProviderAKS: {
		"authorizedIpRanges",
		"location",
		"networkPlugin",
		"osDiskSizeGb",
		"privateCluster",
		"vmSize",
	},
}

// Builtin returns the stock plan fields for GKE, EKS and AKS.
func Builtin() Static {
	out := make(Static, len(providerFields))
	for kind, fields := range providerFields {
		all := make([]string, 0, len(commonFields)+len(fields))
		all = append(all, commonFields...)
		all = append(all, fields...)
		out[kind] = all
	}
	return out
}
