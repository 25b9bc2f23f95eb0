// Package tools defines the names, arguments, and URIs of the MCP surface
// exposed by the cinegraph server.
package tools

// Tool names
const (
	// ToolGraphStatistics counts nodes and relationships in the graph.
	ToolGraphStatistics = "graph_statistics"

	// ToolGetMoviesByGenre returns the top-rated movies in a genre.
	ToolGetMoviesByGenre = "get_movies_by_genre"

	// ToolListMoviesByGenre browses a genre with offset pagination.
	ToolListMoviesByGenre = "list_movies_by_genre"

	// ToolSearchMovies finds movies by title substring.
	ToolSearchMovies = "search_movies"
)

// Argument names shared by the browse and search tools.
const (
	ArgGenre    = "genre"
	ArgLimit    = "limit"
	ArgCursor   = "cursor"
	ArgPageSize = "page_size"
	ArgQuery    = "query"
)

// Resource URIs
const (
	// ResourceMovieTemplate serves one movie as Markdown by TMDB id.
	ResourceMovieTemplate = "movie://{tmdb_id}"

	// ResourceMovieScheme is the URI prefix of ResourceMovieTemplate.
	ResourceMovieScheme = "movie://"

	// ResourceGenres lists the genre names in the graph.
	ResourceGenres = "movies://genres"
)

// PromptMovieDiscovery is the quick-start prompt registered with the
// server. It takes an optional genre argument.
const PromptMovieDiscovery = "movie_discovery"
