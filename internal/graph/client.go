// Package graph provides the connection lifecycle wrapper and query
// interface for the Neo4j movies database.
package graph

import (
	"context"
	"errors"
	"time"

	"github.com/cinegraph/cinegraph/internal/errortypes"
)

// Client is the interface handlers use to run read-only Cypher against the
// movies graph. Implementations must be safe for concurrent use; the whole
// process shares a single Client.
type Client interface {
	// Connect establishes the underlying driver connection.
	Connect(ctx context.Context) error

	// Close releases the driver. Safe to call on an unconnected client.
	Close(ctx context.Context) error

	// VerifyConnectivity checks that the database is reachable.
	VerifyConnectivity(ctx context.Context) error

	// ReadQuery executes a parameterized read-only Cypher query and
	// returns the collected result rows.
	ReadQuery(ctx context.Context, cypher string, params map[string]any) (Result, error)
}

// Result holds the collected rows of a query.
type Result struct {
	// Records contains the result rows as maps of column name to value.
	Records []map[string]any

	// Keys contains the column names of the result set.
	Keys []string

	// ExecutionTime is the wall-clock duration of the query.
	ExecutionTime time.Duration
}

// Config holds the connection settings for the movies database.
type Config struct {
	// URI is the bolt/neo4j connection URI, e.g. "bolt://localhost:7687".
	URI string

	// Username and Password authenticate against the database.
	Username string
	Password string

	// Database selects the database to run queries against.
	// Empty string uses the server default.
	Database string

	// MaxConnectionPoolSize caps the driver's connection pool.
	// Zero or negative uses the driver default.
	MaxConnectionPoolSize int

	// ConnectionTimeout bounds connection acquisition.
	ConnectionTimeout time.Duration

	// MaxTransactionRetryTime bounds the driver's transaction retries.
	MaxTransactionRetryTime time.Duration
}

// Connection defaults for a local movies database.
const (
	DefaultURI      = "bolt://localhost:7687"
	DefaultUsername = "neo4j"
	DefaultPassword = "password"
	DefaultDatabase = "neo4j"
)

// DefaultConfig returns a Config with working local defaults.
func DefaultConfig() Config {
	return Config{
		URI:                     DefaultURI,
		Username:                DefaultUsername,
		Password:                DefaultPassword,
		Database:                DefaultDatabase,
		MaxConnectionPoolSize:   50,
		ConnectionTimeout:       30 * time.Second,
		MaxTransactionRetryTime: 30 * time.Second,
	}
}

// Validate checks the configuration before a connection attempt.
func (c Config) Validate() error {
	if c.URI == "" {
		return errortypes.ConfigError(errors.New("URI cannot be empty"), "invalid graph config")
	}
	if c.Username == "" {
		return errortypes.ConfigError(errors.New("username cannot be empty"), "invalid graph config")
	}
	if c.Password == "" {
		return errortypes.ConfigError(errors.New("password cannot be empty"), "invalid graph config")
	}
	if c.ConnectionTimeout <= 0 {
		return errortypes.ConfigError(errors.New("connection timeout must be positive"), "invalid graph config")
	}
	if c.MaxTransactionRetryTime <= 0 {
		return errortypes.ConfigError(errors.New("transaction retry time must be positive"), "invalid graph config")
	}
	return nil
}
