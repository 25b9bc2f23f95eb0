package graph

import (
	"context"
	"sync"
)

// MockQuery records a single ReadQuery invocation on the mock.
type MockQuery struct {
	Cypher string
	Params map[string]any
}

// MockClient is an in-memory Client used by tests. Results are served
// per-query in registration order; every call is recorded for
// verification.
type MockClient struct {
	mu sync.Mutex

	connected bool
	results   []Result
	next      int

	Queries []MockQuery

	ConnectError error
	CloseError   error
	VerifyError  error
	QueryError   error
}

// NewMockClient creates an empty mock graph client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// EnqueueResult registers the result returned by the next ReadQuery call.
func (m *MockClient) EnqueueResult(result Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
}

// Connect simulates establishing a connection.
func (m *MockClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConnectError != nil {
		return m.ConnectError
	}
	m.connected = true
	return nil
}

// Close simulates releasing the connection.
func (m *MockClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CloseError != nil {
		return m.CloseError
	}
	m.connected = false
	return nil
}

// VerifyConnectivity returns the configured verification error.
func (m *MockClient) VerifyConnectivity(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.VerifyError
}

// ReadQuery records the call and returns the next enqueued result.
// With nothing enqueued it returns an empty result set.
func (m *MockClient) ReadQuery(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Queries = append(m.Queries, MockQuery{Cypher: cypher, Params: params})

	if m.QueryError != nil {
		return Result{}, m.QueryError
	}

	if m.next < len(m.results) {
		result := m.results[m.next]
		m.next++
		return result, nil
	}
	return Result{Records: []map[string]any{}}, nil
}
