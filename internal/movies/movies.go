// Package movies holds the domain queries and result shaping for the
// movies graph: statistics, genre browsing, pagination, title search, and
// per-movie detail lookups.
package movies

import (
	"fmt"
	"strconv"
)

// Default page and result sizes for browse operations.
const (
	DefaultLimit    = 10
	DefaultPageSize = 10
)

// Statistics holds the node and relationship counts of the graph.
type Statistics struct {
	Nodes         int64 `json:"nodes"`
	Relationships int64 `json:"relationships"`
}

// Movie is a single row of a browse or search result.
type Movie struct {
	Title    string   `json:"title"`
	Released string   `json:"released"`
	Rating   *float64 `json:"rating"`
}

// Page is one page of an offset-paginated genre browse.
type Page struct {
	Genre      string  `json:"genre"`
	Movies     []Movie `json:"movies"`
	NextCursor *int    `json:"next_cursor"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	HasMore    bool    `json:"has_more"`
}

// CastMember is an actor credit on a movie.
type CastMember struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Details holds the full record backing the movie:// resource.
type Details struct {
	Title     string       `json:"title"`
	Released  string       `json:"released"`
	Tagline   string       `json:"tagline,omitempty"`
	Runtime   int64        `json:"runtime,omitempty"`
	Plot      string       `json:"plot,omitempty"`
	Genres    []string     `json:"genres"`
	Actors    []CastMember `json:"actors"`
	Directors []string     `json:"directors"`
}

// asString renders a Neo4j property value as a string. The dataset stores
// release dates as strings in some versions and as integer years in
// others; both render naturally.
func asString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// asFloatPtr converts a numeric property, keeping null as nil.
func asFloatPtr(v any) *float64 {
	switch value := v.(type) {
	case float64:
		return &value
	case int64:
		f := float64(value)
		return &f
	default:
		return nil
	}
}

// asInt converts a numeric property, treating null as zero.
func asInt(v any) int64 {
	switch value := v.(type) {
	case int64:
		return value
	case float64:
		return int64(value)
	default:
		return 0
	}
}

// asStringSlice converts a list property, dropping null entries.
func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// asCast converts the actor pattern-comprehension rows of the detail query.
func asCast(v any) []CastMember {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]CastMember, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		member := CastMember{Name: asString(entry["name"])}
		if role, ok := entry["role"].(string); ok {
			member.Role = role
		}
		out = append(out, member)
	}
	return out
}

// movieFromRecord shapes one browse/search row.
func movieFromRecord(record map[string]any) Movie {
	return Movie{
		Title:    asString(record["title"]),
		Released: asString(record["released"]),
		Rating:   asFloatPtr(record["rating"]),
	}
}
