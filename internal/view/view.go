// Package view renders controller state as plain text for the terminal
// front end.
package view

import (
	"fmt"
	"strings"

	"github.com/Clark-Hu/movie-ratings/internal/detail"
	"github.com/Clark-Hu/movie-ratings/internal/domain"
	"github.com/Clark-Hu/movie-ratings/internal/search"
)

const (
	LoadingText     = "Loading..."
	EmptyResultText = "No movies found. Try a different search."
	NoSynopsisText  = "No synopsis available"
	NoImageText     = "No Image"
	RemoveHintText  = "Click the same star to remove your rating"
)

// CardLabel is the caption of a result card, e.g. "Inception (2010)".
func CardLabel(m domain.MovieSummary) string {
	return fmt.Sprintf("%s (%s)", m.Title, domain.ReleaseYear(m.ReleaseDate))
}

// Stars draws a five-star bar with the first filled stars highlighted.
func Stars(filled int) string {
	if filled < 0 {
		filled = 0
	}
	if filled > domain.MaxRating {
		filled = domain.MaxRating
	}
	return strings.Repeat("★", filled) + strings.Repeat("☆", domain.MaxRating-filled)
}

// RenderSearch renders the search screen.
func RenderSearch(s search.State) string {
	var b strings.Builder
	if s.ErrorMessage != "" {
		b.WriteString(s.ErrorMessage)
		b.WriteByte('\n')
	}
	if s.IsLoading() {
		b.WriteString(LoadingText)
		b.WriteByte('\n')
	}
	if s.Empty() && s.ErrorMessage == "" {
		b.WriteString(EmptyResultText)
		b.WriteByte('\n')
	}
	for i, m := range s.Results {
		poster := domain.PosterURL(m.PosterPath, domain.PosterThumbnail)
		if poster == "" {
			poster = NoImageText
		}
		fmt.Fprintf(&b, "%2d. [%d] %s  %s\n", i+1, m.ID, CardLabel(m), poster)
	}
	return b.String()
}

// RenderDetail renders the detail view. A closed view renders as nothing.
func RenderDetail(s detail.State) string {
	var b strings.Builder
	switch s.Phase {
	case detail.Closed:
		return ""
	case detail.Opening:
		b.WriteString(LoadingText)
		b.WriteByte('\n')
		return b.String()
	case detail.OpeningFailed:
		b.WriteString(s.ErrorMessage)
		b.WriteByte('\n')
		return b.String()
	}

	m := s.Movie
	if m == nil {
		return ""
	}
	b.WriteString(m.Title)
	b.WriteByte('\n')
	if poster := domain.PosterURL(m.PosterPath, domain.PosterLarge); poster != "" {
		b.WriteString(poster)
		b.WriteByte('\n')
	}
	release := m.ReleaseDate
	if release == "" {
		release = "N/A"
	}
	fmt.Fprintf(&b, "Released: %s\n", release)
	overview := m.Overview
	if overview == "" {
		overview = NoSynopsisText
	}
	fmt.Fprintf(&b, "Synopsis: %s\n", overview)
	fmt.Fprintf(&b, "Your Rating: %s\n", Stars(s.DisplayStars()))
	if s.Rating > 0 {
		b.WriteString(RemoveHintText)
		b.WriteByte('\n')
	}
	if s.RatingError != "" {
		b.WriteString(s.RatingError)
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderRatings lists stored ratings, one per line.
func RenderRatings(ratings []domain.Rating) string {
	if len(ratings) == 0 {
		return "No ratings yet.\n"
	}
	var b strings.Builder
	for _, r := range ratings {
		fmt.Fprintf(&b, "[%d] %s %s\n", r.MovieID, r.MovieTitle, Stars(r.Value))
	}
	return b.String()
}
