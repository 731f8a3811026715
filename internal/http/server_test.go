package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Clark-Hu/movie-ratings/internal/config"
	"github.com/Clark-Hu/movie-ratings/internal/domain"
	"github.com/Clark-Hu/movie-ratings/internal/repository"
	"github.com/Clark-Hu/movie-ratings/internal/tmdb"
)

func strPtr(s string) *string { return &s }

// fakeCatalog serves a fixed set of movies in place of TMDB.
type fakeCatalog struct {
	mu      sync.Mutex
	movies  map[int]domain.MovieDetail
	fail    bool
	fetches map[int]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		movies: map[int]domain.MovieDetail{
			27205: {
				MovieSummary: domain.MovieSummary{
					ID:          27205,
					Title:       "Inception",
					PosterPath:  strPtr("/inception.jpg"),
					ReleaseDate: "2010-07-16",
					VoteAverage: 8.4,
				},
				Overview: "A thief who steals corporate secrets through dream-sharing technology.",
			},
			155: {
				MovieSummary: domain.MovieSummary{ID: 155, Title: "The Dark Knight", ReleaseDate: "2008-07-16", VoteAverage: 8.5},
			},
		},
		fetches: make(map[int]int),
	}
}

func (f *fakeCatalog) SearchMovies(_ context.Context, query string) (*tmdb.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("tmdb unavailable")
	}
	results := []domain.MovieSummary{}
	for _, m := range f.movies {
		if strings.Contains(strings.ToLower(m.Title), strings.ToLower(query)) {
			results = append(results, m.MovieSummary)
		}
	}
	return &tmdb.SearchResult{Page: 1, Results: results, TotalPages: 1, TotalResults: len(results)}, nil
}

func (f *fakeCatalog) Movie(_ context.Context, id int) (*domain.MovieDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[id]++
	if f.fail {
		return nil, errors.New("tmdb unavailable")
	}
	m, ok := f.movies[id]
	if !ok {
		return nil, tmdb.ErrNotFound
	}
	return &m, nil
}

func (f *fakeCatalog) fetchCount(id int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[id]
}

type healthFunc func(ctx context.Context) error

func (h healthFunc) HealthCheck(ctx context.Context) error { return h(ctx) }

func buildTestServer(t *testing.T, catalog *fakeCatalog, health HealthChecker) (*Server, *repository.MemoryRatings) {
	t.Helper()
	cfg := config.Config{
		Port:            "0",
		TMDBTimeoutSecs: 1,
		AllowOrigins:    "*",
	}
	ratings := repository.NewMemoryRatings()
	return New(cfg, health, ratings, catalog, zaptest.NewLogger(t)), ratings
}

func doRequest(t *testing.T, h http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestSearchRoute(t *testing.T) {
	catalog := newFakeCatalog()
	srv, _ := buildTestServer(t, catalog, nil)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/search?query=incep", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 27205, resp.Results[0].ID)

	rec = doRequest(t, srv.Handler(), http.MethodGet, "/api/search?query=%20%20", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Code)

	catalog.fail = true
	rec = doRequest(t, srv.Handler(), http.MethodGet, "/api/search?query=incep", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "UPSTREAM_ERROR", decodeError(t, rec).Code)
}

func TestMovieRoute(t *testing.T) {
	srv, _ := buildTestServer(t, newFakeCatalog(), nil)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{name: "found", target: "/api/movie/27205", status: http.StatusOK},
		{name: "unknown", target: "/api/movie/999", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "non numeric", target: "/api/movie/abc", status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "zero", target: "/api/movie/0", status: http.StatusBadRequest, code: "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv.Handler(), http.MethodGet, tt.target, "")
			require.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, rec).Code)
				return
			}
			var movie domain.MovieDetail
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&movie))
			assert.Equal(t, "Inception", movie.Title)
			assert.NotEmpty(t, movie.Overview)
		})
	}
}

func TestRatingsLifecycle(t *testing.T) {
	srv, _ := buildTestServer(t, newFakeCatalog(), nil)
	h := srv.Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/ratings/27205", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/ratings", `{"tmdb_movie_id":27205,"movie_title":"Inception","rating":4}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Rating
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, 4, created.Value)

	rec = doRequest(t, h, http.MethodPost, "/api/ratings", `{"tmdb_movie_id":27205,"movie_title":"Inception","rating":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/ratings/27205", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched domain.Rating
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fetched))
	assert.Equal(t, 2, fetched.Value)
	assert.Equal(t, created.ID, fetched.ID)

	rec = doRequest(t, h, http.MethodGet, "/api/ratings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Rating
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 1)

	rec = doRequest(t, h, http.MethodDelete, "/api/ratings/27205", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(t, h, http.MethodDelete, "/api/ratings/27205", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/ratings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSaveRatingValidation(t *testing.T) {
	srv, _ := buildTestServer(t, newFakeCatalog(), nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "empty body", body: "", status: http.StatusUnprocessableEntity},
		{name: "malformed", body: `{"tmdb_movie_id":}`, status: http.StatusUnprocessableEntity},
		{name: "wrong type", body: `{"tmdb_movie_id":"x","movie_title":"A","rating":3}`, status: http.StatusUnprocessableEntity},
		{name: "unknown field", body: `{"tmdb_movie_id":1,"movie_title":"A","rating":3,"extra":1}`, status: http.StatusBadRequest},
		{name: "missing id", body: `{"movie_title":"A","rating":3}`, status: http.StatusUnprocessableEntity},
		{name: "blank title", body: `{"tmdb_movie_id":1,"movie_title":"  ","rating":3}`, status: http.StatusUnprocessableEntity},
		{name: "rating too low", body: `{"tmdb_movie_id":1,"movie_title":"A","rating":0}`, status: http.StatusUnprocessableEntity},
		{name: "rating too high", body: `{"tmdb_movie_id":1,"movie_title":"A","rating":6}`, status: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/ratings", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	healthy, _ := buildTestServer(t, newFakeCatalog(), healthFunc(func(context.Context) error { return nil }))
	rec := doRequest(t, healthy.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down, _ := buildTestServer(t, newFakeCatalog(), healthFunc(func(context.Context) error { return errors.New("down") }))
	rec = doRequest(t, down.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := buildTestServer(t, newFakeCatalog(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/ratings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func FuzzSaveRatingBody(f *testing.F) {
	seeds := []string{
		`{"tmdb_movie_id":27205,"movie_title":"Inception","rating":4}`,
		`{"rating":9}`,
		`[]`,
		``,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	ratings := repository.NewMemoryRatings()
	srv := New(config.Config{AllowOrigins: "*"}, nil, ratings, newFakeCatalog(), nil)

	f.Fuzz(func(t *testing.T, body string) {
		rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/ratings", body)
		switch rec.Code {
		case http.StatusOK, http.StatusCreated, http.StatusBadRequest, http.StatusUnprocessableEntity:
		default:
			t.Fatalf("unexpected status %d for %q", rec.Code, body)
		}
	})
}

func BenchmarkSaveRating(b *testing.B) {
	srv := New(config.Config{AllowOrigins: "*"}, nil, repository.NewMemoryRatings(), newFakeCatalog(), nil)
	body := []byte(`{"tmdb_movie_id":27205,"movie_title":"Inception","rating":4}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/ratings", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK && rec.Code != http.StatusCreated {
			b.Fatalf("status = %d", rec.Code)
		}
	}
}
