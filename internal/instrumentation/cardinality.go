package instrumentation

import "strings"

// Cardinality management helpers for metrics.
//
// Cluster names in mcp-proxmox are bounded by configuration, but
// dashboards often want an environment-level rollup rather than one
// series per cluster. ClusterTier collapses cluster names into a small
// fixed set of tiers for that purpose.

// ClusterTier represents a classification of cluster names for metrics.
type ClusterTier string

// Cluster tier classifications for metrics cardinality control.
const (
	// TierProduction represents production clusters.
	TierProduction ClusterTier = "production"

	// TierStaging represents staging/pre-production clusters.
	TierStaging ClusterTier = "staging"

	// TierDevelopment represents development, demo and test clusters.
	TierDevelopment ClusterTier = "development"

	// TierDefault represents the implicit single-cluster registration.
	TierDefault ClusterTier = "default"

	// TierOther represents clusters that don't match any known pattern.
	TierOther ClusterTier = "other"
)

// ClassifyCluster maps a cluster to a tier for metric labels.
//
// When the operator configured an explicit tier (PROXMOX_CLUSTER_<name>_TIER)
// that wins. Otherwise the cluster name is matched case-insensitively
// against common naming conventions:
//
//	| Pattern                            | Tier        |
//	|------------------------------------|-------------|
//	| "default" or empty                 | default     |
//	| prod-, prod_, -prod, production    | production  |
//	| staging, stg-, -stg                | staging     |
//	| dev-, -dev, development, demo, test| development |
//	| everything else                    | other       |
//
// Organizations with other conventions (e.g. "live-", "uat-") should
// set the tier explicitly; unmatched names land in "other".
func ClassifyCluster(name, tier string) string {
	if tier != "" {
		return strings.ToLower(tier)
	}

	if name == "" || name == "default" {
		return string(TierDefault)
	}

	nameLower := strings.ToLower(name)

	if strings.HasPrefix(nameLower, "prod-") ||
		strings.HasPrefix(nameLower, "prod_") ||
		strings.Contains(nameLower, "production") ||
		strings.Contains(nameLower, "-prod-") ||
		strings.HasSuffix(nameLower, "-prod") {
		return string(TierProduction)
	}

	if strings.Contains(nameLower, "staging") ||
		strings.HasPrefix(nameLower, "stg-") ||
		strings.Contains(nameLower, "-stg-") ||
		strings.HasSuffix(nameLower, "-stg") {
		return string(TierStaging)
	}

	if strings.HasPrefix(nameLower, "dev-") ||
		strings.HasPrefix(nameLower, "dev_") ||
		strings.Contains(nameLower, "development") ||
		strings.Contains(nameLower, "-dev-") ||
		strings.HasSuffix(nameLower, "-dev") ||
		strings.HasPrefix(nameLower, "demo") ||
		strings.Contains(nameLower, "-demo-") ||
		strings.HasPrefix(nameLower, "test-") ||
		strings.Contains(nameLower, "-test-") ||
		strings.HasSuffix(nameLower, "-test") {
		return string(TierDevelopment)
	}

	return string(TierOther)
}
