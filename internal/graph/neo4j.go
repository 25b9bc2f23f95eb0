package graph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/cinegraph/cinegraph/internal/errortypes"
)

// Neo4jClient implements Client on the official Neo4j driver. The driver
// owns connection pooling; one Neo4jClient is created at startup and
// shared by every handler for the life of the process.
type Neo4jClient struct {
	config Config
	driver neo4j.DriverWithContext
}

// NewNeo4jClient creates an unconnected client. Call Connect before use.
func NewNeo4jClient(config Config) (*Neo4jClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Neo4jClient{config: config}, nil
}

// Connect creates the driver and verifies connectivity, retrying with
// capped exponential backoff so the server survives a database that is
// still starting up.
func (c *Neo4jClient) Connect(ctx context.Context) error {
	auth := neo4j.BasicAuth(c.config.Username, c.config.Password, "")

	driverConfig := func(config *neo4j.Config) {
		config.MaxConnectionPoolSize = c.config.MaxConnectionPoolSize
		config.ConnectionAcquisitionTimeout = c.config.ConnectionTimeout
		config.MaxTransactionRetryTime = c.config.MaxTransactionRetryTime
	}

	var lastErr error
	const maxRetries = 5
	baseDelay := 100 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		driver, err := neo4j.NewDriverWithContext(c.config.URI, auth, driverConfig)
		if err == nil {
			err = driver.VerifyConnectivity(ctx)
			if err == nil {
				c.driver = driver
				return nil
			}
		}
		lastErr = err

		if ctx.Err() != nil {
			return errortypes.DatabaseError(ctx.Err(), "connection attempt cancelled")
		}

		delay := baseDelay * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.config.ConnectionTimeout {
			delay = c.config.ConnectionTimeout
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return errortypes.DatabaseError(ctx.Err(), "connection attempt cancelled")
		}
	}

	return errortypes.DatabaseError(lastErr,
		fmt.Sprintf("failed to connect after %d attempts", maxRetries)).
		WithField("uri", c.config.URI)
}

// Close releases the driver and its connection pool.
func (c *Neo4jClient) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}

	if err := c.driver.Close(ctx); err != nil {
		return errortypes.DatabaseError(err, "failed to close driver")
	}

	c.driver = nil
	return nil
}

// VerifyConnectivity checks that the database is reachable.
func (c *Neo4jClient) VerifyConnectivity(ctx context.Context) error {
	if c.driver == nil {
		return errortypes.DatabaseError(errors.New("driver not connected"), "connectivity check failed")
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.driver.VerifyConnectivity(checkCtx); err != nil {
		return errortypes.DatabaseError(err, "connectivity check failed")
	}
	return nil
}

// ReadQuery runs a parameterized Cypher query in a read transaction
// against the configured database and collects the full result set.
func (c *Neo4jClient) ReadQuery(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	if c.driver == nil {
		return Result{}, errortypes.DatabaseError(errors.New("driver not connected"), "query failed")
	}

	startTime := time.Now()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.config.Database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		neoResult, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}

		records, err := neoResult.Collect(ctx)
		if err != nil {
			return nil, err
		}

		return collectRecords(records), nil
	})

	if err != nil {
		return Result{}, errortypes.DatabaseError(err, "query execution failed")
	}

	queryResult := result.(Result)
	queryResult.ExecutionTime = time.Since(startTime)

	return queryResult, nil
}

// collectRecords converts driver records into column-keyed maps.
func collectRecords(records []*neo4j.Record) Result {
	result := Result{
		Records: make([]map[string]any, 0, len(records)),
		Keys:    []string{},
	}

	if len(records) > 0 {
		result.Keys = records[0].Keys
	}

	for _, record := range records {
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = record.Values[i]
		}
		result.Records = append(result.Records, row)
	}

	return result
}
