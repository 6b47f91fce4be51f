package cluster

import (
	"strings"
)

// SelectCluster deterministically maps an optional explicit cluster
// name and an optional resource name to exactly one cluster.
//
// Priority order:
//  1. An explicit cluster name wins unconditionally. It must exist,
//     otherwise the call fails with ErrClusterNotFound.
//  2. Otherwise, if a resource name is given, it is matched against
//     every cluster's name patterns as a plain prefix. A unique match
//     wins; multiple matches fail with ErrAmbiguousSelection listing
//     every candidate. Ambiguity is a caller-configuration bug and is
//     never resolved by picking arbitrarily.
//  3. Otherwise the configured default cluster is used.
//
// Patterns are plain prefixes, not regular expressions, so matching is
// O(clusters x patterns) with no backtracking. SelectCluster is a pure
// function over its inputs and holds no state.
func SelectCluster(config *RegistryConfig, explicit, resourceName string) (string, error) {
	if explicit != "" {
		if _, ok := config.Lookup(explicit); !ok {
			return "", &ClusterNotFoundError{ClusterName: explicit}
		}
		return explicit, nil
	}

	if resourceName != "" {
		candidates := matchResourceName(config, resourceName)
		switch len(candidates) {
		case 0:
			// Fall through to the default.
		case 1:
			return candidates[0], nil
		default:
			return "", &AmbiguousSelectionError{
				ResourceName: resourceName,
				Candidates:   candidates,
			}
		}
	}

	return config.DefaultCluster, nil
}

// matchResourceName collects, in insertion order, every cluster whose
// patterns prefix-match the resource name. When no configured pattern
// matches, it falls back to the naming convention
// "{cluster}-{rest}": a resource named "prod-web01" routes to a
// cluster named "prod" if one exists.
func matchResourceName(config *RegistryConfig, resourceName string) []string {
	name := resourceName
	if config.CaseInsensitivePatterns {
		name = strings.ToLower(name)
	}

	var matched []string
	for _, c := range config.Clusters {
		for _, pattern := range c.NamePatterns {
			if config.CaseInsensitivePatterns {
				pattern = strings.ToLower(pattern)
			}
			if strings.HasPrefix(name, pattern) {
				matched = append(matched, c.Name)
				break
			}
		}
	}
	if len(matched) > 0 {
		return matched
	}

	if head, _, ok := strings.Cut(resourceName, "-"); ok {
		if _, exists := config.Lookup(head); exists {
			return []string{head}
		}
	}
	return nil
}
