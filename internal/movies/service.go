package movies

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cinegraph/cinegraph/internal/errortypes"
	"github.com/cinegraph/cinegraph/internal/graph"
)

// Cypher shipped with the server. Every statement is read-only and takes
// its user input through parameters, never through string interpolation.
const (
	statisticsQuery = `RETURN COUNT {()} AS nodes, COUNT {()-[]-()} AS relationships`

	moviesByGenreQuery = `
MATCH (m:Movie)-[:IN_GENRE]->(g:Genre {name: $genre})
RETURN m.title AS title,
       m.imdbRating AS rating,
       m.released AS released
ORDER BY coalesce(m.imdbRating, 0) DESC
LIMIT $limit`

	moviesByGenrePageQuery = `
MATCH (m:Movie)-[:IN_GENRE]->(g:Genre {name: $genre})
RETURN m.title AS title,
       m.released AS released,
       m.imdbRating AS rating
ORDER BY m.title ASC
SKIP $skip
LIMIT $limit`

	movieDetailsQuery = `
MATCH (m:Movie {tmdbId: $tmdb_id})
RETURN m.title AS title,
       m.released AS released,
       m.tagline AS tagline,
       m.runtime AS runtime,
       m.plot AS plot,
       [ (m)-[:IN_GENRE]->(g:Genre) | g.name ] AS genres,
       [ (p)-[r:ACTED_IN]->(m) | {name: p.name, role: r.role} ] AS actors,
       [ (d)-[:DIRECTED]->(m) | d.name ] AS directors`

	searchByTitleQuery = `
MATCH (m:Movie)
WHERE toLower(m.title) CONTAINS toLower($query)
RETURN m.title AS title,
       m.imdbRating AS rating,
       m.released AS released
ORDER BY coalesce(m.imdbRating, 0) DESC
LIMIT $limit`

	genresQuery = `MATCH (g:Genre) RETURN g.name AS name ORDER BY g.name ASC`
)

// ErrMovieNotFound is returned when a TMDB id matches no movie.
var ErrMovieNotFound = errors.New("movie not found")

// Service runs the shipped queries against a shared graph client.
type Service struct {
	client graph.Client
}

// NewService creates a Service backed by the given graph client.
func NewService(client graph.Client) *Service {
	return &Service{client: client}
}

// Statistics counts the nodes and relationships in the graph. An empty
// result set yields zero counts, not an error.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	result, err := s.client.ReadQuery(ctx, statisticsQuery, nil)
	if err != nil {
		return Statistics{}, err
	}

	if len(result.Records) == 0 {
		return Statistics{}, nil
	}

	record := result.Records[0]
	return Statistics{
		Nodes:         asInt(record["nodes"]),
		Relationships: asInt(record["relationships"]),
	}, nil
}

// MoviesByGenre returns the top-rated movies in a genre. A non-positive
// limit falls back to DefaultLimit.
func (s *Service) MoviesByGenre(ctx context.Context, genre string, limit int) ([]Movie, error) {
	if genre == "" {
		return nil, errortypes.ValidationError(errors.New("genre cannot be empty"), "invalid genre browse request")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	slog.Debug("Executing genre query", "genre", genre, "limit", limit)

	result, err := s.client.ReadQuery(ctx, moviesByGenreQuery, map[string]any{
		"genre": genre,
		"limit": limit,
	})
	if err != nil {
		return nil, err
	}

	found := make([]Movie, 0, len(result.Records))
	for _, record := range result.Records {
		found = append(found, movieFromRecord(record))
	}

	if len(found) == 0 {
		slog.Warn("No movies found for genre", "genre", genre)
	}

	return found, nil
}

// PageByGenre browses a genre with offset pagination, ordered by title.
// skip = cursor * pageSize; the next cursor is present only when the page
// came back full.
func (s *Service) PageByGenre(ctx context.Context, genre string, cursor, pageSize int) (Page, error) {
	if genre == "" {
		return Page{}, errortypes.ValidationError(errors.New("genre cannot be empty"), "invalid paginated browse request")
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if cursor < 0 {
		cursor = 0
	}

	skip := cursor * pageSize
	pageNum := skip/pageSize + 1

	slog.Info("Fetching genre page", "genre", genre, "page", pageNum, "page_size", pageSize)

	result, err := s.client.ReadQuery(ctx, moviesByGenrePageQuery, map[string]any{
		"genre": genre,
		"skip":  skip,
		"limit": pageSize,
	})
	if err != nil {
		return Page{}, err
	}

	found := make([]Movie, 0, len(result.Records))
	for _, record := range result.Records {
		found = append(found, movieFromRecord(record))
	}

	page := Page{
		Genre:    genre,
		Movies:   found,
		Page:     pageNum,
		PageSize: pageSize,
	}
	if len(found) == pageSize {
		next := skip + pageSize
		page.NextCursor = &next
		page.HasMore = true
	} else {
		slog.Info("Reached last page of genre", "genre", genre, "page", pageNum)
	}

	return page, nil
}

// MovieByTMDBID fetches the full record behind the movie:// resource.
// Unknown ids return ErrMovieNotFound wrapped as a not-found error.
func (s *Service) MovieByTMDBID(ctx context.Context, tmdbID string) (Details, error) {
	if tmdbID == "" {
		return Details{}, errortypes.ValidationError(errors.New("tmdb id cannot be empty"), "invalid movie lookup")
	}

	result, err := s.client.ReadQuery(ctx, movieDetailsQuery, map[string]any{
		"tmdb_id": tmdbID,
	})
	if err != nil {
		return Details{}, err
	}

	if len(result.Records) == 0 {
		return Details{}, errortypes.NotFoundError(ErrMovieNotFound, "movie lookup failed").
			WithField("tmdb_id", tmdbID)
	}

	record := result.Records[0]
	return Details{
		Title:     asString(record["title"]),
		Released:  asString(record["released"]),
		Tagline:   asString(record["tagline"]),
		Runtime:   asInt(record["runtime"]),
		Plot:      asString(record["plot"]),
		Genres:    asStringSlice(record["genres"]),
		Actors:    asCast(record["actors"]),
		Directors: asStringSlice(record["directors"]),
	}, nil
}

// SearchByTitle finds movies whose title contains the query,
// case-insensitively, best rated first.
func (s *Service) SearchByTitle(ctx context.Context, query string, limit int) ([]Movie, error) {
	if query == "" {
		return nil, errortypes.ValidationError(errors.New("query cannot be empty"), "invalid title search")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	result, err := s.client.ReadQuery(ctx, searchByTitleQuery, map[string]any{
		"query": query,
		"limit": limit,
	})
	if err != nil {
		return nil, err
	}

	found := make([]Movie, 0, len(result.Records))
	for _, record := range result.Records {
		found = append(found, movieFromRecord(record))
	}
	return found, nil
}

// Genres lists all genre names, alphabetically.
func (s *Service) Genres(ctx context.Context) ([]string, error) {
	result, err := s.client.ReadQuery(ctx, genresQuery, nil)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(result.Records))
	for _, record := range result.Records {
		names = append(names, asString(record["name"]))
	}
	return names, nil
}
