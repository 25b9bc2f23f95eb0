package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cinegraph/cinegraph/internal/errortypes"
)

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"empty URI", func(c *Config) { c.URI = "" }, true},
		{"empty username", func(c *Config) { c.Username = "" }, true},
		{"empty password", func(c *Config) { c.Password = "" }, true},
		{"zero connection timeout", func(c *Config) { c.ConnectionTimeout = 0 }, true},
		{"negative retry time", func(c *Config) { c.MaxTransactionRetryTime = -time.Second }, true},
		{"empty database is allowed", func(c *Config) { c.Database = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var appErr *errortypes.AppError
				if !errors.As(err, &appErr) || appErr.Type != errortypes.ErrorTypeConfig {
					t.Errorf("Validate() error type = %T, want config AppError", err)
				}
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.URI != "bolt://localhost:7687" {
		t.Errorf("URI = %q, want bolt://localhost:7687", cfg.URI)
	}
	if cfg.Username != "neo4j" || cfg.Password != "password" {
		t.Errorf("credentials = %q/%q, want neo4j/password", cfg.Username, cfg.Password)
	}
	if cfg.Database != "neo4j" {
		t.Errorf("Database = %q, want neo4j", cfg.Database)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestNewNeo4jClient(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		client, err := NewNeo4jClient(DefaultConfig())
		if err != nil {
			t.Fatalf("NewNeo4jClient() error = %v", err)
		}
		if client == nil {
			t.Fatal("NewNeo4jClient() returned nil client")
		}
		if client.driver != nil {
			t.Error("driver should be nil before Connect")
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.URI = ""
		client, err := NewNeo4jClient(cfg)
		if err == nil {
			t.Fatal("NewNeo4jClient() expected error for empty URI")
		}
		if client != nil {
			t.Error("NewNeo4jClient() should return nil client on error")
		}
	})
}

func TestNeo4jClientUnconnected(t *testing.T) {
	client, err := NewNeo4jClient(DefaultConfig())
	if err != nil {
		t.Fatalf("NewNeo4jClient() error = %v", err)
	}

	ctx := context.Background()

	if _, err := client.ReadQuery(ctx, "RETURN 1", nil); !errortypes.IsDatabaseError(err) {
		t.Errorf("ReadQuery on unconnected client: error = %v, want database error", err)
	}
	if err := client.VerifyConnectivity(ctx); !errortypes.IsDatabaseError(err) {
		t.Errorf("VerifyConnectivity on unconnected client: error = %v, want database error", err)
	}
	// Close before Connect is a no-op
	if err := client.Close(ctx); err != nil {
		t.Errorf("Close on unconnected client: error = %v, want nil", err)
	}
}

func TestMockClientReplay(t *testing.T) {
	mock := NewMockClient()
	mock.EnqueueResult(Result{
		Records: []map[string]any{{"nodes": int64(12)}},
		Keys:    []string{"nodes"},
	})

	ctx := context.Background()

	first, err := mock.ReadQuery(ctx, "RETURN COUNT {()} AS nodes", map[string]any{})
	if err != nil {
		t.Fatalf("ReadQuery() error = %v", err)
	}
	if len(first.Records) != 1 || first.Records[0]["nodes"] != int64(12) {
		t.Errorf("first result = %+v, want one record with nodes=12", first.Records)
	}

	// Queue exhausted: empty result, not an error
	second, err := mock.ReadQuery(ctx, "RETURN 1", nil)
	if err != nil {
		t.Fatalf("ReadQuery() error = %v", err)
	}
	if len(second.Records) != 0 {
		t.Errorf("second result has %d records, want 0", len(second.Records))
	}

	if len(mock.Queries) != 2 {
		t.Errorf("recorded %d queries, want 2", len(mock.Queries))
	}
}
