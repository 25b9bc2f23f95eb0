package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cinegraph/cinegraph/internal/graph"
	"github.com/cinegraph/cinegraph/internal/movies"
	"github.com/cinegraph/cinegraph/internal/telemetry"
	"github.com/cinegraph/cinegraph/internal/tools"
)

func newTestServer(t *testing.T, mock *graph.MockClient) *MovieToolServer {
	t.Helper()

	srv := NewMovieToolServer("test-movies", movies.NewService(mock), telemetry.NewCollector())
	if err := srv.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return srv
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if len(result.Content) != 1 {
		t.Fatalf("result has %d content items, want 1", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", result.Content[0])
	}
	return text.Text
}

func TestInitializeRequiresDependencies(t *testing.T) {
	srv := NewMovieToolServer("broken", nil, nil)
	if err := srv.Initialize(); err == nil {
		t.Error("Initialize() with nil dependencies should fail")
	}

	if err := srv.ServeStdio(); err == nil {
		t.Error("ServeStdio() before Initialize should fail")
	}
}

func TestHandleGraphStatistics(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mock := graph.NewMockClient()
		mock.EnqueueResult(graph.Result{
			Records: []map[string]any{{"nodes": int64(100), "relationships": int64(250)}},
		})
		srv := newTestServer(t, mock)

		result, err := srv.handleGraphStatistics(context.Background(), toolRequest(tools.ToolGraphStatistics, nil))
		if err != nil {
			t.Fatalf("handler error = %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %s", resultText(t, result))
		}

		var stats movies.Statistics
		if err := json.Unmarshal([]byte(resultText(t, result)), &stats); err != nil {
			t.Fatalf("result is not valid JSON: %v", err)
		}
		if stats.Nodes != 100 || stats.Relationships != 250 {
			t.Errorf("stats = %+v, want nodes=100 relationships=250", stats)
		}

		if got := srv.metrics.Counter(telemetry.MetricToolCalls + "." + tools.ToolGraphStatistics); got != 1 {
			t.Errorf("tool call counter = %d, want 1", got)
		}
	})

	t.Run("database failure becomes tool error", func(t *testing.T) {
		mock := graph.NewMockClient()
		mock.QueryError = context.DeadlineExceeded
		srv := newTestServer(t, mock)

		result, err := srv.handleGraphStatistics(context.Background(), toolRequest(tools.ToolGraphStatistics, nil))
		if err != nil {
			t.Fatalf("handler error = %v, failures should be tool errors", err)
		}
		if !result.IsError {
			t.Error("result.IsError = false, want true")
		}
		if got := srv.metrics.Counter(telemetry.MetricToolErrors + "." + tools.ToolGraphStatistics); got != 1 {
			t.Errorf("tool error counter = %d, want 1", got)
		}
	})
}

func TestHandleGetMoviesByGenre(t *testing.T) {
	mock := graph.NewMockClient()
	mock.EnqueueResult(graph.Result{
		Records: []map[string]any{
			{"title": "Die Hard", "released": "1988", "rating": 8.2},
		},
	})
	srv := newTestServer(t, mock)

	result, err := srv.handleGetMoviesByGenre(context.Background(), toolRequest(
		tools.ToolGetMoviesByGenre, map[string]any{"genre": "Action", "limit": float64(5)}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	var found []movies.Movie
	if err := json.Unmarshal([]byte(resultText(t, result)), &found); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if len(found) != 1 || found[0].Title != "Die Hard" {
		t.Errorf("found = %+v, want Die Hard", found)
	}

	if got := mock.Queries[0].Params["limit"]; got != 5 {
		t.Errorf("limit param = %v, want 5", got)
	}

	t.Run("missing genre argument", func(t *testing.T) {
		result, err := srv.handleGetMoviesByGenre(context.Background(), toolRequest(
			tools.ToolGetMoviesByGenre, map[string]any{}))
		if err != nil {
			t.Fatalf("handler error = %v", err)
		}
		if !result.IsError {
			t.Error("missing required argument should produce a tool error")
		}
	})
}

func TestHandleListMoviesByGenre(t *testing.T) {
	records := make([]map[string]any, movies.DefaultPageSize)
	for i := range records {
		records[i] = map[string]any{"title": "Movie", "released": "1990", "rating": 5.0}
	}

	mock := graph.NewMockClient()
	mock.EnqueueResult(graph.Result{Records: records})
	srv := newTestServer(t, mock)

	result, err := srv.handleListMoviesByGenre(context.Background(), toolRequest(
		tools.ToolListMoviesByGenre, map[string]any{"genre": "Comedy", "cursor": float64(2)}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	var page movies.Page
	if err := json.Unmarshal([]byte(resultText(t, result)), &page); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if page.Page != 3 || !page.HasMore || page.NextCursor == nil || *page.NextCursor != 30 {
		t.Errorf("page = %+v, want page=3 has_more=true next_cursor=30", page)
	}
	if got := mock.Queries[0].Params["skip"]; got != 20 {
		t.Errorf("skip param = %v, want 20", got)
	}
}

func TestHandleSearchMovies(t *testing.T) {
	mock := graph.NewMockClient()
	mock.EnqueueResult(graph.Result{
		Records: []map[string]any{
			{"title": "The Matrix", "released": "1999-03-31", "rating": 8.7},
		},
	})
	srv := newTestServer(t, mock)

	result, err := srv.handleSearchMovies(context.Background(), toolRequest(
		tools.ToolSearchMovies, map[string]any{"query": "matrix"}))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	if !strings.Contains(resultText(t, result), "The Matrix") {
		t.Errorf("result missing matched title: %s", resultText(t, result))
	}
}

func TestHandleMovieResource(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := graph.NewMockClient()
		mock.EnqueueResult(graph.Result{
			Records: []map[string]any{{
				"title":     "The Matrix",
				"released":  "1999-03-31",
				"tagline":   "Welcome to the Real World",
				"runtime":   int64(136),
				"plot":      "A hacker discovers reality is a simulation.",
				"genres":    []any{"Action", "Sci-Fi"},
				"actors":    []any{map[string]any{"name": "Keanu Reeves", "role": "Neo"}},
				"directors": []any{"Lana Wachowski"},
			}},
		})
		srv := newTestServer(t, mock)

		req := mcp.ReadResourceRequest{}
		req.Params.URI = "movie://603"

		contents, err := srv.handleMovieResource(context.Background(), req)
		if err != nil {
			t.Fatalf("handler error = %v", err)
		}
		if len(contents) != 1 {
			t.Fatalf("got %d contents, want 1", len(contents))
		}

		text := contents[0].(mcp.TextResourceContents)
		if text.MIMEType != "text/markdown" {
			t.Errorf("MIMEType = %q, want text/markdown", text.MIMEType)
		}
		if !strings.Contains(text.Text, "# The Matrix (1999-03-31)") {
			t.Errorf("body missing title header:\n%s", text.Text)
		}
		if got := mock.Queries[0].Params["tmdb_id"]; got != "603" {
			t.Errorf("tmdb_id param = %v, want 603", got)
		}
	})

	t.Run("not found returns a readable body", func(t *testing.T) {
		mock := graph.NewMockClient()
		srv := newTestServer(t, mock)

		req := mcp.ReadResourceRequest{}
		req.Params.URI = "movie://999999"

		contents, err := srv.handleMovieResource(context.Background(), req)
		if err != nil {
			t.Fatalf("handler error = %v, missing movies must not error", err)
		}

		text := contents[0].(mcp.TextResourceContents)
		if !strings.Contains(text.Text, "999999 not found") {
			t.Errorf("body should echo the missing id: %s", text.Text)
		}
	})
}

func TestHandleGenresResource(t *testing.T) {
	mock := graph.NewMockClient()
	mock.EnqueueResult(graph.Result{
		Records: []map[string]any{{"name": "Action"}, {"name": "Comedy"}},
	})
	srv := newTestServer(t, mock)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = tools.ResourceGenres

	contents, err := srv.handleGenresResource(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}

	text := contents[0].(mcp.TextResourceContents)
	var genres []string
	if err := json.Unmarshal([]byte(text.Text), &genres); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if len(genres) != 2 || genres[0] != "Action" {
		t.Errorf("genres = %v, want [Action Comedy]", genres)
	}
}

func TestHandleDiscoveryPrompt(t *testing.T) {
	mock := graph.NewMockClient()
	srv := newTestServer(t, mock)

	t.Run("without genre", func(t *testing.T) {
		req := mcp.GetPromptRequest{}

		result, err := srv.handleDiscoveryPrompt(context.Background(), req)
		if err != nil {
			t.Fatalf("handler error = %v", err)
		}
		if len(result.Messages) != 1 {
			t.Fatalf("got %d messages, want 1", len(result.Messages))
		}

		content := result.Messages[0].Content.(mcp.TextContent)
		if !strings.Contains(content.Text, "graph_statistics") {
			t.Errorf("prompt should mention the statistics tool:\n%s", content.Text)
		}
		if strings.Contains(content.Text, "Focus on the") {
			t.Error("prompt without genre should not include the focus line")
		}
	})

	t.Run("with genre", func(t *testing.T) {
		req := mcp.GetPromptRequest{}
		req.Params.Arguments = map[string]string{"genre": "Horror"}

		result, err := srv.handleDiscoveryPrompt(context.Background(), req)
		if err != nil {
			t.Fatalf("handler error = %v", err)
		}

		content := result.Messages[0].Content.(mcp.TextContent)
		if !strings.Contains(content.Text, "Focus on the Horror genre first.") {
			t.Errorf("prompt missing genre focus line:\n%s", content.Text)
		}
	})
}
