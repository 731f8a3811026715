package domain

import "time"

// Star values a rating may take. Zero is never stored; it means unrated.
const (
	MinRating = 1
	MaxRating = 5
)

// Rating is the single stored rating of one movie. MovieTitle is a snapshot
// taken when the rating was last saved.
type Rating struct {
	ID         int64     `json:"id"`
	MovieID    int       `json:"tmdb_movie_id"`
	MovieTitle string    `json:"movie_title"`
	Value      int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidRating reports whether v is an accepted star value.
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}
