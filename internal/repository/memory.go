package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
)

// MemoryRatings is an in-process rating store with the same semantics as
// RatingsRepository. The HTTP handler and client end-to-end tests run on it.
type MemoryRatings struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int]domain.Rating
	now    func() time.Time
}

// NewMemoryRatings returns an empty store.
func NewMemoryRatings() *MemoryRatings {
	return &MemoryRatings{
		byID: make(map[int]domain.Rating),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryRatings) Upsert(_ context.Context, params RatingUpsertParams) (domain.Rating, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	rating, ok := m.byID[params.MovieID]
	if !ok {
		m.nextID++
		rating = domain.Rating{ID: m.nextID, MovieID: params.MovieID, CreatedAt: now}
	}
	rating.MovieTitle = params.MovieTitle
	rating.Value = params.Value
	rating.UpdatedAt = now
	m.byID[params.MovieID] = rating
	return rating, !ok, nil
}

func (m *MemoryRatings) Get(_ context.Context, movieID int) (domain.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rating, ok := m.byID[movieID]
	if !ok {
		return domain.Rating{}, ErrNotFound
	}
	return rating, nil
}

func (m *MemoryRatings) List(_ context.Context) ([]domain.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ratings := make([]domain.Rating, 0, len(m.byID))
	for _, r := range m.byID {
		ratings = append(ratings, r)
	}
	sort.Slice(ratings, func(i, j int) bool {
		if !ratings[i].UpdatedAt.Equal(ratings[j].UpdatedAt) {
			return ratings[i].UpdatedAt.After(ratings[j].UpdatedAt)
		}
		return ratings[i].ID > ratings[j].ID
	})
	return ratings, nil
}

func (m *MemoryRatings) Delete(_ context.Context, movieID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[movieID]; !ok {
		return ErrNotFound
	}
	delete(m.byID, movieID)
	return nil
}
