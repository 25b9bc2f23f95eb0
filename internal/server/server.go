// Package server wires the movies service into an MCP server: tools,
// resources, the quick-start prompt, and the stdio/HTTP transports.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cinegraph/cinegraph/internal/errortypes"
	"github.com/cinegraph/cinegraph/internal/movies"
	"github.com/cinegraph/cinegraph/internal/telemetry"
	"github.com/cinegraph/cinegraph/internal/tools"
)

//go:embed prompt.txt
var discoveryPrompt string

// Version is announced to MCP clients during initialization.
const Version = "0.1.0"

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// MovieToolServer exposes the movies graph over MCP.
type MovieToolServer struct {
	name      string
	service   *movies.Service
	metrics   *telemetry.Collector
	mcpServer *server.MCPServer
}

// NewMovieToolServer creates a new MovieToolServer instance.
func NewMovieToolServer(name string, service *movies.Service, metrics *telemetry.Collector) *MovieToolServer {
	return &MovieToolServer{
		name:    name,
		service: service,
		metrics: metrics,
	}
}

// Initialize registers the tools, resources, and prompt.
func (s *MovieToolServer) Initialize() error {
	slog.Info("Initializing movie tool server", "name", s.name)

	if s.service == nil || s.metrics == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}

	srv := server.NewMCPServer(
		s.name,
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	s.registerTools(srv)
	s.registerResources(srv)
	s.registerPrompt(srv)

	s.mcpServer = srv
	slog.Info("Movie tool server initialized", "tool_count", 4)
	return nil
}

// ServeStdio serves MCP over stdin/stdout. Blocks until stdin closes.
func (s *MovieToolServer) ServeStdio() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	slog.Info("Starting movie tool server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP serves MCP over the streamable HTTP transport on addr.
// Blocks until the listener fails or is shut down.
func (s *MovieToolServer) ServeHTTP(addr string) error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	slog.Info("Starting movie tool server on streamable HTTP", "addr", addr)
	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(addr)
}

func (s *MovieToolServer) registerTools(srv *server.MCPServer) {
	srv.AddTool(mcp.NewTool(tools.ToolGraphStatistics,
		mcp.WithDescription("Count the number of nodes and relationships in the graph"),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleGraphStatistics)

	srv.AddTool(mcp.NewTool(tools.ToolGetMoviesByGenre,
		mcp.WithDescription("Get the top rated movies in a genre"),
		mcp.WithString(tools.ArgGenre,
			mcp.Required(),
			mcp.Description("The genre to search for (e.g. \"Action\", \"Drama\", \"Comedy\")"),
		),
		mcp.WithNumber(tools.ArgLimit,
			mcp.Description(fmt.Sprintf("Maximum number of movies to return (default: %d)", movies.DefaultLimit)),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleGetMoviesByGenre)

	srv.AddTool(mcp.NewTool(tools.ToolListMoviesByGenre,
		mcp.WithDescription("Browse movies in a genre alphabetically with pagination support"),
		mcp.WithString(tools.ArgGenre,
			mcp.Required(),
			mcp.Description("Genre name (e.g. \"Action\", \"Comedy\", \"Drama\")"),
		),
		mcp.WithNumber(tools.ArgCursor,
			mcp.Description("Pagination cursor - position in the result set (default 0)"),
		),
		mcp.WithNumber(tools.ArgPageSize,
			mcp.Description(fmt.Sprintf("Number of movies per page (default %d)", movies.DefaultPageSize)),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleListMoviesByGenre)

	srv.AddTool(mcp.NewTool(tools.ToolSearchMovies,
		mcp.WithDescription("Find movies whose title contains the given text, best rated first"),
		mcp.WithString(tools.ArgQuery,
			mcp.Required(),
			mcp.Description("Text to look for in movie titles"),
		),
		mcp.WithNumber(tools.ArgLimit,
			mcp.Description(fmt.Sprintf("Maximum number of movies to return (default: %d)", movies.DefaultLimit)),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handleSearchMovies)
}

func (s *MovieToolServer) registerResources(srv *server.MCPServer) {
	srv.AddResourceTemplate(mcp.NewResourceTemplate(
		tools.ResourceMovieTemplate,
		"movie_details",
		mcp.WithTemplateDescription("Detailed information about a movie by TMDB ID, as Markdown"),
		mcp.WithTemplateMIMEType("text/markdown"),
	), s.handleMovieResource)

	srv.AddResource(mcp.NewResource(
		tools.ResourceGenres,
		"genres",
		mcp.WithResourceDescription("All genre names in the movies graph"),
		mcp.WithMIMEType("application/json"),
	), s.handleGenresResource)
}

func (s *MovieToolServer) registerPrompt(srv *server.MCPServer) {
	srv.AddPrompt(mcp.NewPrompt(tools.PromptMovieDiscovery,
		mcp.WithPromptDescription("A quick-start prompt for exploring the movies graph"),
		mcp.WithArgument(tools.ArgGenre,
			mcp.ArgumentDescription("Optional genre to focus the exploration on"),
		),
	), s.handleDiscoveryPrompt)
}

// handleGraphStatistics handles the graph_statistics tool call.
func (s *MovieToolServer) handleGraphStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slog.Info("Processing graph_statistics request")

	stats, err := s.service.Statistics(ctx)
	if err != nil {
		return s.toolError(tools.ToolGraphStatistics, err), nil
	}

	return s.toolJSON(tools.ToolGraphStatistics, stats)
}

// handleGetMoviesByGenre handles the get_movies_by_genre tool call.
func (s *MovieToolServer) handleGetMoviesByGenre(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	genre, err := request.RequireString(tools.ArgGenre)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := request.GetInt(tools.ArgLimit, movies.DefaultLimit)

	slog.Info("Processing get_movies_by_genre request", "genre", genre, "limit", limit)

	start := time.Now()
	found, err := s.service.MoviesByGenre(ctx, genre, limit)
	s.metrics.RecordDuration(telemetry.MetricQueryDuration, time.Since(start))
	if err != nil {
		return s.toolError(tools.ToolGetMoviesByGenre, err), nil
	}

	slog.Info("Found movies for genre", "genre", genre, "count", len(found))
	return s.toolJSON(tools.ToolGetMoviesByGenre, found)
}

// handleListMoviesByGenre handles the paginated list_movies_by_genre tool call.
func (s *MovieToolServer) handleListMoviesByGenre(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	genre, err := request.RequireString(tools.ArgGenre)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cursor := request.GetInt(tools.ArgCursor, 0)
	pageSize := request.GetInt(tools.ArgPageSize, movies.DefaultPageSize)

	start := time.Now()
	page, err := s.service.PageByGenre(ctx, genre, cursor, pageSize)
	s.metrics.RecordDuration(telemetry.MetricQueryDuration, time.Since(start))
	if err != nil {
		return s.toolError(tools.ToolListMoviesByGenre, err), nil
	}

	slog.Info("Returned genre page", "genre", genre, "page", page.Page, "count", len(page.Movies))
	return s.toolJSON(tools.ToolListMoviesByGenre, page)
}

// handleSearchMovies handles the search_movies tool call.
func (s *MovieToolServer) handleSearchMovies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString(tools.ArgQuery)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := request.GetInt(tools.ArgLimit, movies.DefaultLimit)

	slog.Info("Processing search_movies request", "query", query, "limit", limit)

	start := time.Now()
	found, err := s.service.SearchByTitle(ctx, query, limit)
	s.metrics.RecordDuration(telemetry.MetricQueryDuration, time.Since(start))
	if err != nil {
		return s.toolError(tools.ToolSearchMovies, err), nil
	}

	return s.toolJSON(tools.ToolSearchMovies, found)
}

// handleMovieResource serves the movie://{tmdb_id} resource template.
// A missing movie produces a readable not-found body rather than an error.
func (s *MovieToolServer) handleMovieResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tmdbID := strings.TrimPrefix(request.Params.URI, tools.ResourceMovieScheme)
	slog.Info("Fetching movie details", "tmdb_id", tmdbID)

	s.metrics.Increment(telemetry.MetricResourceReads)

	details, err := s.service.MovieByTMDBID(ctx, tmdbID)
	if err != nil {
		if errortypes.IsNotFoundError(err) {
			slog.Warn("Movie not found", "tmdb_id", tmdbID)
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      request.Params.URI,
					MIMEType: "text/markdown",
					Text:     movies.FormatNotFound(tmdbID),
				},
			}, nil
		}
		s.metrics.Increment(telemetry.MetricResourceErrors)
		errortypes.LogError(nil, err)
		return nil, err
	}

	slog.Info("Fetched movie details", "title", details.Title)
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/markdown",
			Text:     movies.FormatMarkdown(details),
		},
	}, nil
}

// handleGenresResource serves the movies://genres resource.
func (s *MovieToolServer) handleGenresResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.metrics.Increment(telemetry.MetricResourceReads)

	genres, err := s.service.Genres(ctx)
	if err != nil {
		s.metrics.Increment(telemetry.MetricResourceErrors)
		errortypes.LogError(nil, err)
		return nil, err
	}

	payload, err := json.Marshal(genres)
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to encode genres")
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      tools.ResourceGenres,
			MIMEType: "application/json",
			Text:     string(payload),
		},
	}, nil
}

// handleDiscoveryPrompt serves the movie_discovery prompt.
func (s *MovieToolServer) handleDiscoveryPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	s.metrics.Increment(telemetry.MetricPromptFetches)

	text := discoveryPrompt
	if genre := request.Params.Arguments[tools.ArgGenre]; genre != "" {
		text += fmt.Sprintf("\nFocus on the %s genre first.\n", genre)
	}

	return mcp.NewGetPromptResult(
		"A quick-start prompt for exploring the movies graph",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleAssistant, mcp.NewTextContent(text)),
		},
	), nil
}

// toolJSON counts a successful call and renders data as a JSON text result.
func (s *MovieToolServer) toolJSON(tool string, data any) (*mcp.CallToolResult, error) {
	s.metrics.Increment(telemetry.MetricToolCalls + "." + tool)

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to encode tool result").WithField("tool", tool)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// toolError logs the failure and surfaces it to the client as a tool error.
func (s *MovieToolServer) toolError(tool string, err error) *mcp.CallToolResult {
	s.metrics.Increment(telemetry.MetricToolCalls + "." + tool)
	s.metrics.Increment(telemetry.MetricToolErrors + "." + tool)

	errortypes.LogError(nil, err)
	return mcp.NewToolResultError(err.Error())
}
