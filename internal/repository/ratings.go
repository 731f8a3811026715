package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
)

// RatingsRepository stores one personal rating per TMDB movie.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

// RatingUpsertParams captures the payload required to upsert a rating.
type RatingUpsertParams struct {
	MovieID    int
	MovieTitle string
	Value      int
}

const ratingColumns = `id, tmdb_movie_id, movie_title, rating, created_at, updated_at`

// Upsert inserts or updates a rating and indicates whether it was newly created.
// The stored title is rewritten on every save.
func (r *RatingsRepository) Upsert(ctx context.Context, params RatingUpsertParams) (domain.Rating, bool, error) {
	const query = `
        INSERT INTO movie_ratings (tmdb_movie_id, movie_title, rating)
        VALUES ($1,$2,$3)
        ON CONFLICT (tmdb_movie_id)
        DO UPDATE SET movie_title = EXCLUDED.movie_title, rating = EXCLUDED.rating, updated_at = now()
        RETURNING ` + ratingColumns + `, (xmax = 0) AS inserted
    `

	var rating domain.Rating
	var inserted bool
	err := r.pool.QueryRow(ctx, query, params.MovieID, params.MovieTitle, params.Value).Scan(
		&rating.ID,
		&rating.MovieID,
		&rating.MovieTitle,
		&rating.Value,
		&rating.CreatedAt,
		&rating.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return domain.Rating{}, false, fmt.Errorf("upsert rating: %w", err)
	}
	return rating, inserted, nil
}

// Get retrieves the rating for a movie.
func (r *RatingsRepository) Get(ctx context.Context, movieID int) (domain.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM movie_ratings WHERE tmdb_movie_id = $1`
	rating, err := scanRating(r.pool.QueryRow(ctx, query, movieID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// List returns every rating, most recently updated first.
func (r *RatingsRepository) List(ctx context.Context) ([]domain.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM movie_ratings ORDER BY updated_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]domain.Rating, 0)
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

// Delete removes the rating for a movie, returning ErrNotFound when none existed.
func (r *RatingsRepository) Delete(ctx context.Context, movieID int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movie_ratings WHERE tmdb_movie_id = $1`, movieID)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var rating domain.Rating
	err := row.Scan(
		&rating.ID,
		&rating.MovieID,
		&rating.MovieTitle,
		&rating.Value,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	return rating, err
}
