// Package cinegraph exposes a Neo4j movies graph over the Model Context
// Protocol. It wires the graph client, the movies query service, and the
// MCP tool server into a single embeddable Server.
package cinegraph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cinegraph/cinegraph/internal/config"
	"github.com/cinegraph/cinegraph/internal/errortypes"
	"github.com/cinegraph/cinegraph/internal/graph"
	"github.com/cinegraph/cinegraph/internal/movies"
	"github.com/cinegraph/cinegraph/internal/server"
	"github.com/cinegraph/cinegraph/internal/telemetry"
)

// Config represents the configuration for the cinegraph service.
type Config = config.Config

// Transport names accepted by Server.Start.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Server represents the cinegraph service.
type Server struct {
	config     *config.Config
	client     graph.Client
	service    *movies.Service
	metrics    *telemetry.Collector
	toolServer *server.MovieToolServer
	logger     *slog.Logger
}

// Options defines the options for creating a new Server.
type Options struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, defaults apply.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewServer creates a new cinegraph Server with the given options, connects
// to Neo4j, and verifies connectivity before returning. The caller owns the
// returned server and must Stop it to release the driver.
func NewServer(ctx context.Context, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	switch {
	case opts.Config != nil:
		cfg = opts.Config
		logger.Info("Using provided Config object for server initialization")
	case opts.ConfigPath != "":
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "failed to load configuration from path: "+opts.ConfigPath)
		}
	default:
		logger.Info("No Config object or ConfigPath provided, loading default configuration")
		cfg, err = config.LoadConfigWithPath(config.DefaultConfigFilename)
		if err != nil {
			return nil, err
		}
	}

	client, err := connectGraph(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	service := movies.NewService(client)
	metrics := telemetry.NewCollector()

	logger.Info("Initializing movie tool server component")
	toolServer := server.NewMovieToolServer(cfg.Server.Name, service, metrics)
	if err := toolServer.Initialize(); err != nil {
		logger.Error("Failed to initialize movie tool server component", "error", err)
		if closeErr := client.Close(ctx); closeErr != nil {
			logger.Error("Failed to close graph client after initialization failure", "error", closeErr)
		}
		return nil, errortypes.ConfigError(err, "failed to initialize movie tool server component")
	}

	logger.Info("Cinegraph server successfully initialized")
	return &Server{
		config:     cfg,
		client:     client,
		service:    service,
		metrics:    metrics,
		toolServer: toolServer,
		logger:     logger,
	}, nil
}

// connectGraph dials Neo4j and runs the startup health check.
func connectGraph(ctx context.Context, cfg *config.Config, logger *slog.Logger) (graph.Client, error) {
	graphCfg := cfg.GraphConfig()

	logger.Info("Connecting to Neo4j", "uri", graphCfg.URI, "database", graphCfg.Database)
	client, err := graph.NewNeo4jClient(graphCfg)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		logger.Error("Failed to connect to Neo4j", "uri", graphCfg.URI, "error", err)
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		logger.Error("Neo4j connectivity check failed", "uri", graphCfg.URI, "error", err)
		if closeErr := client.Close(ctx); closeErr != nil {
			logger.Error("Failed to close graph client after connectivity failure", "error", closeErr)
		}
		return nil, err
	}

	logger.Info("Connected to Neo4j", "uri", graphCfg.URI)
	return client, nil
}

// Start serves MCP on the configured transport. It blocks until the
// transport shuts down.
func (s *Server) Start() error {
	switch s.config.Server.Transport {
	case TransportStdio:
		s.logger.Info("Starting cinegraph service on stdio")
		return s.toolServer.ServeStdio()
	case TransportHTTP, "":
		s.logger.Info("Starting cinegraph service on streamable HTTP", "addr", s.config.Server.HTTPAddr)
		return s.toolServer.ServeHTTP(s.config.Server.HTTPAddr)
	default:
		return errortypes.ConfigError(
			fmt.Errorf("unknown transport %q", s.config.Server.Transport),
			"cannot start server")
	}
}

// Stop releases the Neo4j driver. Safe to call after a failed Start.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping cinegraph service")

	if err := s.client.Close(ctx); err != nil {
		s.logger.Error("Failed to close graph client", "error", err)
		return err
	}

	s.logger.Info("Cinegraph service stopped", "metrics", s.metrics.Report())
	return nil
}

// Service returns the movies query service used by the server.
func (s *Server) Service() *movies.Service {
	return s.service
}

// Metrics returns the telemetry collector used by the server.
func (s *Server) Metrics() *telemetry.Collector {
	return s.metrics
}
