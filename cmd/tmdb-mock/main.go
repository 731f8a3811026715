package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
	"github.com/Clark-Hu/movie-ratings/internal/logging"
)

func strPtr(s string) *string { return &s }

var builtinMovies = []domain.MovieDetail{
	{
		MovieSummary: domain.MovieSummary{ID: 27205, Title: "Inception", PosterPath: strPtr("/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg"), ReleaseDate: "2010-07-15", VoteAverage: 8.369},
		Overview:     "Cobb, a skilled thief who commits corporate espionage by infiltrating the subconscious of his targets, is offered a chance to regain his old life.",
	},
	{
		MovieSummary: domain.MovieSummary{ID: 155, Title: "The Dark Knight", PosterPath: strPtr("/qJ2tW6WMUDux911r6m7haRef0WH.jpg"), ReleaseDate: "2008-07-16", VoteAverage: 8.5},
		Overview:     "Batman raises the stakes in his war on crime.",
	},
	{
		MovieSummary: domain.MovieSummary{ID: 157336, Title: "Interstellar", ReleaseDate: "2014-11-05", VoteAverage: 8.4},
	},
}

func main() {
	var (
		port     = flag.String("port", "9098", "port to listen on")
		data     = flag.String("data", "", "optional JSON file with an array of movies")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logger, err := logging.New(*logLevel, "console")
	if err != nil {
		os.Stderr.WriteString("logger error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	movies := builtinMovies
	if *data != "" {
		file, err := os.ReadFile(*data)
		if err != nil {
			logger.Fatal("read mock data", zap.Error(err))
		}
		if err := json.Unmarshal(file, &movies); err != nil {
			logger.Fatal("parse mock data", zap.Error(err))
		}
	}
	byID := make(map[int]domain.MovieDetail, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get("/3/search/movie", func(w http.ResponseWriter, r *http.Request) {
		query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
		results := []domain.MovieSummary{}
		for _, m := range movies {
			if query != "" && strings.Contains(strings.ToLower(m.Title), query) {
				results = append(results, m.MovieSummary)
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"page":          1,
			"results":       results,
			"total_pages":   1,
			"total_results": len(results),
		})
	})
	r.Get("/3/movie/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		entry, ok := byID[id]
		if err != nil || !ok {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"status_code":    34,
				"status_message": "The resource you requested could not be found.",
			})
			return
		}
		writeJSON(w, http.StatusOK, entry)
	})

	addr := ":" + *port
	logger.Info("mock tmdb listening", zap.String("addr", addr), zap.Int("movies", len(movies)))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
