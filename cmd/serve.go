package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-proxmox/internal/cluster"
	"github.com/giantswarm/mcp-proxmox/internal/instrumentation"
	"github.com/giantswarm/mcp-proxmox/internal/logging"
	"github.com/giantswarm/mcp-proxmox/internal/proxmox"
	"github.com/giantswarm/mcp-proxmox/internal/server"
	clustertools "github.com/giantswarm/mcp-proxmox/internal/tools/cluster"
	"github.com/giantswarm/mcp-proxmox/internal/tools/lxc"
	"github.com/giantswarm/mcp-proxmox/internal/tools/node"
	"github.com/giantswarm/mcp-proxmox/internal/tools/notes"
	"github.com/giantswarm/mcp-proxmox/internal/tools/storage"
	"github.com/giantswarm/mcp-proxmox/internal/tools/task"
	"github.com/giantswarm/mcp-proxmox/internal/tools/vm"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// serverName identifies this MCP server to connecting clients.
const serverName = "mcp-proxmox"

func newServeCmd() *cobra.Command {
	config := &ServeConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Proxmox MCP server",
		Long: `Start the MCP server exposing Proxmox VE operations as tools.

Cluster connections are configured through environment variables. A single
cluster uses PROXMOX_API_URL, PROXMOX_TOKEN_ID and PROXMOX_TOKEN_SECRET.
Multiple clusters are declared with PROXMOX_CLUSTERS plus per-cluster
PROXMOX_CLUSTER_<NAME>_* variables; see the project README for details.

The server supports three transports:
  stdio            - standard input/output (default, for MCP clients)
  sse              - Server-Sent Events over HTTP
  streamable-http  - streamable HTTP sessions`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(config)
		},
	}

	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio,
		"Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080",
		"HTTP listen address for sse and streamable-http transports")
	cmd.Flags().StringVar(&config.SSEEndpoint, "sse-endpoint", "/sse",
		"SSE endpoint path")
	cmd.Flags().StringVar(&config.MessageEndpoint, "message-endpoint", "/message",
		"Message endpoint path for the sse transport")
	cmd.Flags().StringVar(&config.HTTPEndpoint, "http-endpoint", "/mcp",
		"Endpoint path for the streamable-http transport")

	cmd.Flags().BoolVar(&config.NonDestructiveMode, "non-destructive", true,
		"Reject state-changing operations")
	cmd.Flags().BoolVar(&config.RequireConfirmation, "require-confirmation", false,
		"Require confirm=true on disruptive operations such as stop and migrate")
	cmd.Flags().StringSliceVar(&config.AllowedOperations, "allowed-operations", []string{"get", "list", "status"},
		"Operations that stay available in non-destructive mode")
	cmd.Flags().StringSliceVar(&config.RestrictedNodes, "restricted-nodes", nil,
		"Node names that tools must not operate on")

	cmd.Flags().BoolVar(&config.Debug, "debug", false,
		"Enable debug logging")
	cmd.Flags().StringVar(&config.LogLevel, "log-level", "info",
		"Log level: debug, info, warn, or error")

	cmd.Flags().BoolVar(&config.Metrics.Enabled, "metrics", false,
		"Expose Prometheus metrics on a dedicated listener")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr,
		"Listen address for the metrics server")

	return cmd
}

func runServe(config *ServeConfig) error {
	switch config.Transport {
	case transportStdio, transportSSE, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", config.Transport)
	}

	logLevel := config.LogLevel
	if config.Debug {
		logLevel = "debug"
	}
	logger := logging.Setup(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = rootCmd.Version
	if config.Metrics.Enabled {
		instrConfig.Enabled = true
	}
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize instrumentation: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil && config.Transport != transportStdio {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	registryConfig, err := cluster.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load cluster configuration: %w", err)
	}

	factory := func(ctx context.Context, cc cluster.ClusterConfig) (proxmox.Client, error) {
		client, err := proxmox.Connect(proxmox.Config{
			APIURL:             cc.APIURL,
			TokenID:            cc.TokenID,
			TokenSecret:        cc.TokenSecret,
			InsecureSkipVerify: cc.InsecureSkipVerify,
		})
		if err != nil {
			return nil, err
		}
		if provider.Enabled() && provider.Metrics() != nil {
			return proxmox.Instrument(client, cc.Name, provider.Metrics()), nil
		}
		return client, nil
	}

	registryOpts := []cluster.RegistryOption{
		cluster.WithRegistryLogger(logger),
	}
	if provider.Enabled() && provider.Metrics() != nil {
		registryOpts = append(registryOpts, cluster.WithRegistryCacheMetrics(provider.Metrics()))
	}
	registry, err := cluster.NewRegistry(registryConfig, factory, registryOpts...)
	if err != nil {
		return fmt.Errorf("failed to create cluster registry: %w", err)
	}

	sc, err := server.NewServerContext(ctx,
		server.WithRegistry(registry),
		server.WithLogger(newServerLogger(logger)),
		server.WithServerName(serverName),
		server.WithVersion(rootCmd.Version),
		server.WithNonDestructiveMode(config.NonDestructiveMode),
		server.WithRequireConfirmation(config.RequireConfirmation),
		server.WithAllowedOperations(config.AllowedOperations),
		server.WithRestrictedNodes(config.RestrictedNodes),
		server.WithLogLevel(logLevel),
		server.WithInstrumentationProvider(provider),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := sc.Shutdown(); err != nil {
			logger.Error("server context shutdown failed", logging.Err(err))
		}
	}()

	mcpSrv := mcpserver.NewMCPServer(serverName, rootCmd.Version,
		mcpserver.WithToolCapabilities(true),
	)

	registrations := []struct {
		name     string
		register func(*mcpserver.MCPServer, *server.ServerContext) error
	}{
		{"cluster", clustertools.RegisterClusterTools},
		{"node", node.RegisterNodeTools},
		{"vm", vm.RegisterVMTools},
		{"lxc", lxc.RegisterContainerTools},
		{"notes", notes.RegisterNotesTools},
		{"storage", storage.RegisterStorageTools},
		{"task", task.RegisterTaskTools},
	}
	for _, r := range registrations {
		if err := r.register(mcpSrv, sc); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", r.name, err)
		}
	}

	logger.Info("starting MCP server",
		"transport", config.Transport,
		"version", rootCmd.Version,
		"clusters", len(registry.ListClusters()),
		"default_cluster", registry.DefaultCluster(),
		"non_destructive", config.NonDestructiveMode,
	)

	switch config.Transport {
	case transportSSE:
		return runSSEServer(ctx, mcpSrv, sc, config)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(ctx, mcpSrv, sc, config)
	default:
		return runStdioServer(ctx, mcpSrv, sc)
	}
}
