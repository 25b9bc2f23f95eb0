package movies

import (
	"fmt"
	"strings"
)

// FormatMarkdown renders movie details as the Markdown document served by
// the movie:// resource. Sections with no data are omitted.
func FormatMarkdown(d Details) string {
	var out []string

	out = append(out, fmt.Sprintf("# %s (%s)", d.Title, d.Released), "")

	if d.Tagline != "" {
		out = append(out, fmt.Sprintf("_%s_", d.Tagline), "")
	}

	if d.Runtime > 0 {
		out = append(out, fmt.Sprintf("**Runtime:** %d minutes", d.Runtime))
	}
	if len(d.Genres) > 0 {
		out = append(out, fmt.Sprintf("**Genres:** %s", strings.Join(d.Genres, ", ")))
	}
	if len(d.Directors) > 0 {
		out = append(out, fmt.Sprintf("**Director(s):** %s", strings.Join(d.Directors, ", ")))
	}

	if d.Plot != "" {
		out = append(out, "", "## Plot", d.Plot)
	}

	if len(d.Actors) > 0 {
		out = append(out, "", "## Cast")
		for _, actor := range d.Actors {
			if actor.Role != "" {
				out = append(out, fmt.Sprintf("- %s as %s", actor.Name, actor.Role))
			} else {
				out = append(out, fmt.Sprintf("- %s", actor.Name))
			}
		}
	}

	return strings.Join(out, "\n")
}

// FormatNotFound renders the body returned when a TMDB id matches nothing.
func FormatNotFound(tmdbID string) string {
	return fmt.Sprintf("Movie with TMDB ID %s not found in database", tmdbID)
}
