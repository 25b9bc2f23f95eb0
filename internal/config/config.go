// Package config loads the cinegraph configuration from defaults, an
// optional JSON config file, and the environment.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/localrivet/configurator"

	"github.com/cinegraph/cinegraph/internal/graph"
)

// Config represents the cinegraph server configuration.
type Config struct {
	// Neo4j contains the movies database connection settings.
	Neo4j struct {
		// URI is the bolt/neo4j connection URI.
		URI string `json:"uri" env:"NEO4J_URI" validate:"required"`

		// Username and Password authenticate against the database.
		Username string `json:"username" env:"NEO4J_USERNAME"`
		Password string `json:"password" env:"NEO4J_PASSWORD"`

		// Database is the database queries run against.
		Database string `json:"database" env:"NEO4J_DATABASE"`

		// MaxPoolSize caps the driver connection pool.
		MaxPoolSize int `json:"max_pool_size" env:"NEO4J_MAX_POOL_SIZE" validate:"min:1"`

		// TimeoutSeconds bounds connection acquisition and transaction
		// retries.
		TimeoutSeconds int `json:"timeout_seconds" env:"NEO4J_TIMEOUT_SECONDS" validate:"min:1"`
	} `json:"neo4j"`

	// Server contains MCP transport settings.
	Server struct {
		// Name is the server name announced to MCP clients.
		Name string `json:"name" env:"SERVER_NAME"`

		// Transport selects "http" (streamable HTTP) or "stdio".
		Transport string `json:"transport" env:"SERVER_TRANSPORT"`

		// HTTPAddr is the listen address for the http transport.
		HTTPAddr string `json:"http_addr" env:"SERVER_HTTP_ADDR"`
	} `json:"server"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log output format ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`
}

// Default configuration values
const (
	DefaultConfigFilename = ".cinegraphconfig"
	DefaultServerName     = "Movies GraphRAG Server"
	DefaultTransport      = "http"
	DefaultHTTPAddr       = ":8000"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"

	envPrefix = "CINEGRAPH"
)

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.Neo4j.URI = graph.DefaultURI
	cfg.Neo4j.Username = graph.DefaultUsername
	cfg.Neo4j.Password = graph.DefaultPassword
	cfg.Neo4j.Database = graph.DefaultDatabase
	cfg.Neo4j.MaxPoolSize = 50
	cfg.Neo4j.TimeoutSeconds = 30
	cfg.Server.Name = DefaultServerName
	cfg.Server.Transport = DefaultTransport
	cfg.Server.HTTPAddr = DefaultHTTPAddr
	cfg.Logging.Level = DefaultLogLevel
	cfg.Logging.Format = DefaultLogFormat
	return cfg
}

// LoadConfig loads the configuration from the default path.
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path.
// A missing file is not an error; defaults and the environment apply.
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Stderr keeps stdout clean for the stdio transport.
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := NewConfig()

	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		stdLogger.Info("Config file not found, using default configuration", "path", configPath)
		cfg.applyConnectionEnv()
		return cfg, nil
	}

	stdLogger.Info("Loading configuration", "path", configPath)

	loader := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider()).
		WithProvider(configurator.NewFileProvider(configPath)).
		WithProvider(configurator.NewEnvProvider(envPrefix)).
		WithValidator(configurator.NewDefaultValidator())

	ctx := context.Background()
	if err := loader.Load(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.applyConnectionEnv()

	return cfg, nil
}

// applyConnectionEnv applies the conventional unprefixed NEO4J_* variables
// used by the Neo4j tooling ecosystem. They win over file values so a
// deployment can point an existing config at another database.
func (c *Config) applyConnectionEnv() {
	if v, ok := os.LookupEnv("NEO4J_URI"); ok && v != "" {
		c.Neo4j.URI = v
	}
	if v, ok := os.LookupEnv("NEO4J_USERNAME"); ok && v != "" {
		c.Neo4j.Username = v
	}
	if v, ok := os.LookupEnv("NEO4J_PASSWORD"); ok && v != "" {
		c.Neo4j.Password = v
	}
	if v, ok := os.LookupEnv("NEO4J_DATABASE"); ok && v != "" {
		c.Neo4j.Database = v
	}
}

// GraphConfig converts the Neo4j section into a graph client config.
func (c *Config) GraphConfig() graph.Config {
	timeout := time.Duration(c.Neo4j.TimeoutSeconds) * time.Second
	return graph.Config{
		URI:                     c.Neo4j.URI,
		Username:                c.Neo4j.Username,
		Password:                c.Neo4j.Password,
		Database:                c.Neo4j.Database,
		MaxConnectionPoolSize:   c.Neo4j.MaxPoolSize,
		ConnectionTimeout:       timeout,
		MaxTransactionRetryTime: timeout,
	}
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}
