package cluster

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/giantswarm/mcp-proxmox/internal/proxmox"
)

// ClientFactory constructs a ready-to-use API client for a single
// cluster. It is invoked by the cache on a miss, at most once per
// cluster at a time.
type ClientFactory func(ctx context.Context, config ClusterConfig) (proxmox.Client, error)

// CacheConfig holds configuration options for the ClientCache.
//
// The key space is bounded by the number of configured clusters, so
// the cache carries no capacity limit. TTL-based expiry exists to pick
// up credential rotation and to drop handles to clusters that have
// been torn down.
type CacheConfig struct {
	// TTL is the time-to-live for cached clients. After this duration,
	// entries are rebuilt on next access.
	//
	// Default: 1 hour.
	TTL time.Duration

	// CleanupInterval is how often the background cleanup runs to
	// remove expired entries.
	//
	// Default: 1 minute.
	CleanupInterval time.Duration
}

// DefaultCacheConfig returns a CacheConfig with sensible defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:             DefaultCacheTTL,
		CleanupInterval: 1 * time.Minute,
	}
}

// cachedClient holds a cached Proxmox client along with metadata.
type cachedClient struct {
	client proxmox.Client

	createdAt time.Time
	expiry    time.Time

	clusterName string
}

// isExpired returns true if the cached client has passed its TTL.
func (c *cachedClient) isExpired(now time.Time) bool {
	return now.After(c.expiry)
}

// CacheMetricsRecorder defines the interface for recording cache metrics.
// This allows decoupling from the concrete instrumentation implementation.
type CacheMetricsRecorder interface {
	// RecordCacheHit records a cache hit event.
	RecordCacheHit(ctx context.Context, clusterName string)

	// RecordCacheMiss records a cache miss event.
	RecordCacheMiss(ctx context.Context, clusterName string)

	// RecordCacheEviction records a cache eviction event.
	RecordCacheEviction(ctx context.Context, reason string)

	// SetCacheSize sets the current cache size gauge.
	SetCacheSize(ctx context.Context, size int)
}

// noopMetricsRecorder is a no-op implementation of CacheMetricsRecorder.
type noopMetricsRecorder struct{}

func (n *noopMetricsRecorder) RecordCacheHit(context.Context, string)      {}
func (n *noopMetricsRecorder) RecordCacheMiss(context.Context, string)     {}
func (n *noopMetricsRecorder) RecordCacheEviction(context.Context, string) {}
func (n *noopMetricsRecorder) SetCacheSize(context.Context, int)           {}

// ClientCache provides thread-safe caching of Proxmox API clients with
// TTL-based eviction.
//
// Entries are keyed by cluster name. Concurrent requests for the same
// cluster during a miss share a single construction via singleflight:
// one caller builds the client, the rest wait for its result.
type ClientCache struct {
	mu      sync.RWMutex
	clients map[string]*cachedClient

	config CacheConfig
	logger *slog.Logger

	// Singleflight to prevent thundering herd when creating clients
	createGroup singleflight.Group

	metrics CacheMetricsRecorder

	// Lifecycle
	stopCh chan struct{}
	wg     sync.WaitGroup
	closed bool

	// Clock abstraction for testing
	now func() time.Time
}

// ClientCacheOption is a functional option for configuring ClientCache.
type ClientCacheOption func(*ClientCache)

// WithCacheConfig sets the cache configuration.
func WithCacheConfig(config CacheConfig) ClientCacheOption {
	return func(c *ClientCache) {
		c.config = config
	}
}

// WithCacheLogger sets the logger for the cache.
func WithCacheLogger(logger *slog.Logger) ClientCacheOption {
	return func(c *ClientCache) {
		c.logger = logger
	}
}

// WithCacheMetrics sets the metrics recorder for the cache.
func WithCacheMetrics(metrics CacheMetricsRecorder) ClientCacheOption {
	return func(c *ClientCache) {
		c.metrics = metrics
	}
}

// withCacheClock sets the clock function for testing.
func withCacheClock(now func() time.Time) ClientCacheOption {
	return func(c *ClientCache) {
		c.now = now
	}
}

// NewClientCache creates a new ClientCache with the provided options.
// The cache automatically starts a background goroutine for cleanup.
func NewClientCache(opts ...ClientCacheOption) *ClientCache {
	c := &ClientCache{
		clients: make(map[string]*cachedClient),
		config:  DefaultCacheConfig(),
		logger:  slog.Default(),
		metrics: &noopMetricsRecorder{},
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Validate configuration
	if c.config.TTL <= 0 {
		c.config.TTL = DefaultCacheConfig().TTL
	}
	if c.config.CleanupInterval <= 0 {
		c.config.CleanupInterval = DefaultCacheConfig().CleanupInterval
	}

	// Start background cleanup
	c.wg.Add(1)
	go c.cleanupLoop()

	c.logger.Info("Client cache initialized",
		"ttl", c.config.TTL,
		"cleanup_interval", c.config.CleanupInterval)

	return c
}

// Get retrieves a cached client for the given cluster.
// Returns nil if no valid cached client exists.
// This method is thread-safe and records cache hit/miss metrics.
func (c *ClientCache) Get(ctx context.Context, clusterName string) proxmox.Client {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil
	}

	cached, ok := c.clients[clusterName]
	if !ok {
		c.metrics.RecordCacheMiss(ctx, clusterName)
		return nil
	}

	if cached.isExpired(now) {
		c.metrics.RecordCacheMiss(ctx, clusterName)
		return nil
	}

	c.metrics.RecordCacheHit(ctx, clusterName)
	return cached.client
}

// setAndReturn stores a client in the cache and returns it.
// This is used internally by GetOrCreate to avoid a redundant Get after Set.
func (c *ClientCache) setAndReturn(ctx context.Context, clusterName string, client proxmox.Client) proxmox.Client {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return client
	}

	c.clients[clusterName] = &cachedClient{
		client:      client,
		createdAt:   now,
		expiry:      now.Add(c.config.TTL),
		clusterName: clusterName,
	}

	c.metrics.SetCacheSize(ctx, len(c.clients))

	c.logger.Debug("Cached client",
		"cluster", clusterName,
		"expiry", c.config.TTL)

	return client
}

// GetOrCreate retrieves a cached client or creates a new one using the
// provided factory. Singleflight guarantees the factory runs at most
// once per cluster at a time, even under high concurrency: losers of
// the race receive the winner's client (or the winner's error).
//
// A factory failure is wrapped in a *ConnectionError and is never
// cached, so the next caller retries construction.
func (c *ClientCache) GetOrCreate(ctx context.Context, config ClusterConfig, factory ClientFactory) (proxmox.Client, error) {
	// Check cache first (fast path)
	if cached := c.Get(ctx, config.Name); cached != nil {
		return cached, nil
	}

	result, err, _ := c.createGroup.Do(config.Name, func() (interface{}, error) {
		// Double-check cache inside singleflight
		if cached := c.Get(ctx, config.Name); cached != nil {
			return cached, nil
		}

		client, err := factory(ctx, config)
		if err != nil {
			return nil, &ConnectionError{ClusterName: config.Name, Err: err}
		}

		return c.setAndReturn(ctx, config.Name, client), nil
	})

	if err != nil {
		return nil, err
	}

	return result.(proxmox.Client), nil
}

// Delete removes the cached client for the given cluster.
// This is useful for invalidating cache entries when credentials change.
func (c *ClientCache) Delete(ctx context.Context, clusterName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if _, ok := c.clients[clusterName]; ok {
		delete(c.clients, clusterName)
		c.metrics.RecordCacheEviction(ctx, "manual")
		c.metrics.SetCacheSize(ctx, len(c.clients))

		c.logger.Debug("Deleted cached client", "cluster", clusterName)
	}
}

// DeleteAll removes every cached client.
func (c *ClientCache) DeleteAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	deleted := len(c.clients)
	c.clients = make(map[string]*cachedClient)

	if deleted > 0 {
		for i := 0; i < deleted; i++ {
			c.metrics.RecordCacheEviction(ctx, "manual")
		}
		c.metrics.SetCacheSize(ctx, 0)
		c.logger.Debug("Deleted all cached clients", "count", deleted)
	}
}

// Size returns the current number of entries in the cache.
func (c *ClientCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}

// Close stops the background cleanup goroutine and clears the cache.
// After Close is called, all cache operations become no-ops.
func (c *ClientCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	// Signal cleanup goroutine to stop
	close(c.stopCh)

	// Wait for cleanup goroutine to finish
	c.wg.Wait()

	// Clear all entries
	c.mu.Lock()
	c.clients = make(map[string]*cachedClient)
	c.mu.Unlock()

	c.logger.Info("Client cache closed")
	return nil
}

// cleanupLoop periodically removes expired entries from the cache.
func (c *ClientCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes all expired entries from the cache.
func (c *ClientCache) cleanup() {
	now := c.now()
	ctx := context.Background()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	expiredCount := 0
	for key, cached := range c.clients {
		if cached.isExpired(now) {
			delete(c.clients, key)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.metrics.SetCacheSize(ctx, len(c.clients))
		for i := 0; i < expiredCount; i++ {
			c.metrics.RecordCacheEviction(ctx, "expired")
		}
		c.logger.Debug("Cleaned up expired cache entries",
			"expired_count", expiredCount,
			"remaining", len(c.clients))
	}
}

// CacheStats holds current cache statistics.
type CacheStats struct {
	// Size is the current number of entries in the cache.
	Size int

	// TTL is the configured time-to-live.
	TTL time.Duration

	// OldestEntry is the age of the oldest entry (if any).
	OldestEntry time.Duration

	// NewestEntry is the age of the newest entry (if any).
	NewestEntry time.Duration
}

// Stats returns current cache statistics for monitoring.
func (c *ClientCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{
		Size: len(c.clients),
		TTL:  c.config.TTL,
	}

	if len(c.clients) == 0 {
		return stats
	}

	now := c.now()
	var oldest, newest time.Time

	for _, cached := range c.clients {
		if oldest.IsZero() || cached.createdAt.Before(oldest) {
			oldest = cached.createdAt
		}
		if newest.IsZero() || cached.createdAt.After(newest) {
			newest = cached.createdAt
		}
	}

	if !oldest.IsZero() {
		stats.OldestEntry = now.Sub(oldest)
	}
	if !newest.IsZero() {
		stats.NewestEntry = now.Sub(newest)
	}

	return stats
}
