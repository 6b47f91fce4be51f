package cluster

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultCacheTTL is the process-wide time-to-live for cached API
// clients. One hour matches the typical Proxmox API token session
// budget and keeps reconnect churn low; operators can override it via
// PROXMOX_CLUSTER_CACHE_TTL.
const DefaultCacheTTL = time.Hour

// ClusterConfig is the immutable configuration of one Proxmox cluster.
// Instances are never mutated after loading.
type ClusterConfig struct {
	// Name is the unique identity used to address this cluster.
	Name string

	// APIURL is the base URL of the cluster API, e.g.
	// "https://pve1.example.com:8006".
	APIURL string

	// TokenID is the API token identity ("user@realm!tokenname").
	TokenID string

	// TokenSecret is the API token secret. Never logged or echoed.
	TokenSecret string

	// InsecureSkipVerify disables TLS certificate verification for
	// clusters with self-signed certificates.
	InsecureSkipVerify bool

	// DefaultNode, DefaultStorage and DefaultBridge are optional hints
	// used by operation wrappers when the caller does not specify one.
	// The registry itself never consults them.
	DefaultNode    string
	DefaultStorage string
	DefaultBridge  string

	// Region and Tier are free-form metadata used for display and
	// filtering only, never for selection.
	Region string
	Tier   string

	// NamePatterns is an ordered list of resource-name prefixes that
	// route to this cluster.
	NamePatterns []string
}

// Redacted returns a copy safe for display: the token secret is
// blanked and the token name is masked.
func (c ClusterConfig) Redacted() ClusterConfig {
	redacted := c
	redacted.TokenSecret = ""
	if user, _, ok := strings.Cut(c.TokenID, "!"); ok {
		redacted.TokenID = user + "!***"
	}
	return redacted
}

// RegistryConfig is the immutable snapshot of all configured clusters.
// It is built once at process start and never modified afterwards, so
// it requires no locking.
type RegistryConfig struct {
	// Clusters holds all cluster configurations in insertion order.
	// The first cluster is the implicit default.
	Clusters []ClusterConfig

	// DefaultCluster is the cluster used when neither an explicit name
	// nor a matching pattern applies.
	DefaultCluster string

	// CacheTTL is the process-wide TTL applied to every cached client.
	CacheTTL time.Duration

	// CaseInsensitivePatterns makes resource-name pattern matching
	// ignore case.
	CaseInsensitivePatterns bool

	// index maps cluster name to its position in Clusters.
	index map[string]int
}

// NewRegistryConfig builds a RegistryConfig from an ordered cluster
// list. The configuration loader guarantees unique names; this
// constructor re-checks only because a duplicate would silently shadow
// a cluster in the index.
func NewRegistryConfig(clusters []ClusterConfig) (*RegistryConfig, error) {
	if len(clusters) == 0 {
		return nil, fmt.Errorf("at least one cluster is required")
	}

	index := make(map[string]int, len(clusters))
	for i, c := range clusters {
		if c.Name == "" {
			return nil, fmt.Errorf("cluster at position %d has no name", i)
		}
		if _, dup := index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate cluster name %q", c.Name)
		}
		index[c.Name] = i
	}

	return &RegistryConfig{
		Clusters:       clusters,
		DefaultCluster: clusters[0].Name,
		CacheTTL:       DefaultCacheTTL,
		index:          index,
	}, nil
}

// Lookup returns the configuration for the named cluster.
func (rc *RegistryConfig) Lookup(name string) (ClusterConfig, bool) {
	i, ok := rc.index[name]
	if !ok {
		return ClusterConfig{}, false
	}
	return rc.Clusters[i], true
}

// Names returns all cluster names in insertion order.
func (rc *RegistryConfig) Names() []string {
	names := make([]string, len(rc.Clusters))
	for i, c := range rc.Clusters {
		names[i] = c.Name
	}
	return names
}

// envSettings are the fixed-shape environment knobs, decoded with
// envconfig under the PROXMOX_ prefix. The per-cluster keys have a
// dynamic shape and are read manually in LoadFromEnv.
type envSettings struct {
	// Clusters is the comma-separated list of cluster names
	// (PROXMOX_CLUSTERS). Empty means single-cluster mode.
	Clusters string `envconfig:"CLUSTERS"`

	// ClusterPatterns maps name prefixes to clusters, format
	// "prod-:production,stage-:staging" (PROXMOX_CLUSTER_PATTERNS).
	ClusterPatterns string `envconfig:"CLUSTER_PATTERNS"`

	// ClusterCacheTTL overrides the client cache TTL
	// (PROXMOX_CLUSTER_CACHE_TTL, seconds). Kept as a string so an
	// empty value is treated as unset rather than a parse error.
	ClusterCacheTTL string `envconfig:"CLUSTER_CACHE_TTL"`

	// Single-cluster mode settings.
	APIURL         string `envconfig:"API_URL"`
	TokenID        string `envconfig:"TOKEN_ID"`
	TokenSecret    string `envconfig:"TOKEN_SECRET"`
	Verify         string `envconfig:"VERIFY"`
	DefaultNode    string `envconfig:"DEFAULT_NODE"`
	DefaultStorage string `envconfig:"DEFAULT_STORAGE"`
	DefaultBridge  string `envconfig:"DEFAULT_BRIDGE"`
}

// LoadFromEnv builds a RegistryConfig from environment variables.
//
// Multi-cluster mode (PROXMOX_CLUSTERS set) expects per-cluster keys:
//
//	PROXMOX_CLUSTERS=production,staging
//	PROXMOX_CLUSTER_production_API_URL=https://pve1.example.com:8006
//	PROXMOX_CLUSTER_production_TOKEN_ID=root@pam!mcp
//	PROXMOX_CLUSTER_production_TOKEN_SECRET=...
//	PROXMOX_CLUSTER_production_VERIFY=true
//	PROXMOX_CLUSTER_PATTERNS=prod-:production,stage-:staging
//
// Single-cluster mode falls back to the flat PROXMOX_API_URL /
// PROXMOX_TOKEN_ID / PROXMOX_TOKEN_SECRET variables and registers the
// cluster under the name "default".
func LoadFromEnv() (*RegistryConfig, error) {
	var settings envSettings
	if err := envconfig.Process("proxmox", &settings); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	var clusters []ClusterConfig
	if strings.TrimSpace(settings.Clusters) != "" {
		names := splitList(settings.Clusters)
		if len(names) == 0 {
			return nil, fmt.Errorf("PROXMOX_CLUSTERS is empty")
		}
		for _, name := range names {
			cc, err := readClusterEnv(name)
			if err != nil {
				return nil, err
			}
			clusters = append(clusters, cc)
		}
	} else {
		// Single-cluster mode, backward compatible with flat variables.
		if settings.APIURL == "" {
			return nil, fmt.Errorf("missing PROXMOX_API_URL (or PROXMOX_CLUSTERS for multi-cluster mode)")
		}
		if settings.TokenID == "" {
			return nil, fmt.Errorf("missing PROXMOX_TOKEN_ID (format: user@realm!tokenname)")
		}
		if settings.TokenSecret == "" {
			return nil, fmt.Errorf("missing PROXMOX_TOKEN_SECRET")
		}
		clusters = append(clusters, ClusterConfig{
			Name:               "default",
			APIURL:             settings.APIURL,
			TokenID:            settings.TokenID,
			TokenSecret:        settings.TokenSecret,
			InsecureSkipVerify: !parseBool(settings.Verify, true),
			DefaultNode:        settings.DefaultNode,
			DefaultStorage:     settings.DefaultStorage,
			DefaultBridge:      settings.DefaultBridge,
		})
	}

	if err := applyPatterns(clusters, settings.ClusterPatterns); err != nil {
		return nil, err
	}

	config, err := NewRegistryConfig(clusters)
	if err != nil {
		return nil, err
	}
	if ttl := strings.TrimSpace(settings.ClusterCacheTTL); ttl != "" {
		seconds, err := strconv.Atoi(ttl)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid PROXMOX_CLUSTER_CACHE_TTL %q: expected a positive number of seconds", ttl)
		}
		config.CacheTTL = time.Duration(seconds) * time.Second
	}
	return config, nil
}

// readClusterEnv reads the PROXMOX_CLUSTER_<name>_* variables for one
// cluster.
func readClusterEnv(name string) (ClusterConfig, error) {
	prefix := "PROXMOX_CLUSTER_" + name + "_"

	apiURL := strings.TrimSpace(os.Getenv(prefix + "API_URL"))
	tokenID := strings.TrimSpace(os.Getenv(prefix + "TOKEN_ID"))
	tokenSecret := strings.TrimSpace(os.Getenv(prefix + "TOKEN_SECRET"))

	if apiURL == "" {
		return ClusterConfig{}, fmt.Errorf("missing %sAPI_URL for cluster %q", prefix, name)
	}
	if tokenID == "" {
		return ClusterConfig{}, fmt.Errorf("missing %sTOKEN_ID for cluster %q (format: user@realm!tokenname)", prefix, name)
	}
	if tokenSecret == "" {
		return ClusterConfig{}, fmt.Errorf("missing %sTOKEN_SECRET for cluster %q", prefix, name)
	}

	return ClusterConfig{
		Name:               name,
		APIURL:             apiURL,
		TokenID:            tokenID,
		TokenSecret:        tokenSecret,
		InsecureSkipVerify: !parseBool(os.Getenv(prefix+"VERIFY"), true),
		DefaultNode:        os.Getenv(prefix + "DEFAULT_NODE"),
		DefaultStorage:     os.Getenv(prefix + "DEFAULT_STORAGE"),
		DefaultBridge:      os.Getenv(prefix + "DEFAULT_BRIDGE"),
		Region:             os.Getenv(prefix + "REGION"),
		Tier:               os.Getenv(prefix + "TIER"),
	}, nil
}

// applyPatterns parses "prefix:cluster,prefix:cluster" and attaches
// each prefix to the named cluster, preserving declaration order.
func applyPatterns(clusters []ClusterConfig, patterns string) error {
	if strings.TrimSpace(patterns) == "" {
		return nil
	}

	byName := make(map[string]*ClusterConfig, len(clusters))
	for i := range clusters {
		byName[clusters[i].Name] = &clusters[i]
	}

	for _, pair := range splitList(patterns) {
		prefix, name, ok := strings.Cut(pair, ":")
		if !ok {
			return fmt.Errorf("invalid cluster pattern %q (expected prefix:cluster)", pair)
		}
		prefix = strings.TrimSpace(prefix)
		name = strings.TrimSpace(name)
		target, exists := byName[name]
		if !exists {
			return fmt.Errorf("cluster pattern %q references unknown cluster %q", pair, name)
		}
		target.NamePatterns = append(target.NamePatterns, prefix)
	}
	return nil
}

// splitList splits a comma-separated list, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseBool interprets common truthy strings, falling back to def for
// empty or unparseable input.
func parseBool(s string, def bool) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return def
	}
	switch s {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	if parsed, err := strconv.ParseBool(s); err == nil {
		return parsed
	}
	return def
}
