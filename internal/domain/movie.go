package domain

import (
	"strings"
)

// PosterBaseURL is the image host every poster path resolves against.
const PosterBaseURL = "https://image.tmdb.org/t/p/"

// PosterSize selects one of the image variants served by the image host.
type PosterSize string

const (
	// PosterThumbnail is used for result cards.
	PosterThumbnail PosterSize = "w200"
	// PosterLarge is used for the detail view.
	PosterLarge PosterSize = "w500"
)

// MovieSummary is one search result as returned by the catalog.
type MovieSummary struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

// MovieDetail is the full catalog record shown in the detail view.
type MovieDetail struct {
	MovieSummary
	Overview string `json:"overview"`
}

// ReleaseYear returns the YYYY part of a YYYY-MM-DD date, or "N/A" when unknown.
func ReleaseYear(date string) string {
	year, _, _ := strings.Cut(strings.TrimSpace(date), "-")
	if year == "" {
		return "N/A"
	}
	return year
}

// PosterURL resolves a poster path for the requested size. An absent path
// resolves to the empty string so callers can render a placeholder.
func PosterURL(path *string, size PosterSize) string {
	if path == nil {
		return ""
	}
	p := strings.TrimSpace(*path)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return PosterBaseURL + string(size) + p
}
