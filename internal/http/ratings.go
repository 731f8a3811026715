package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
	"github.com/Clark-Hu/movie-ratings/internal/repository"
)

type ratingRequest struct {
	MovieID    int    `json:"tmdb_movie_id"`
	MovieTitle string `json:"movie_title"`
	Rating     int    `json:"rating"`
}

func (req ratingRequest) validate() string {
	switch {
	case req.MovieID <= 0:
		return "tmdb_movie_id must be a positive integer"
	case strings.TrimSpace(req.MovieTitle) == "":
		return "movie_title is required"
	case !domain.ValidRating(req.Rating):
		return "rating must be an integer between 1 and 5"
	}
	return ""
}

func (s *Server) handleListRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := s.ratings.List(r.Context())
	if err != nil {
		s.logger.Error("list ratings failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list ratings")
		return
	}
	s.respondJSON(w, http.StatusOK, ratings)
}

func (s *Server) handleGetRating(w http.ResponseWriter, r *http.Request) {
	id, err := movieIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	rating, err := s.ratings.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Rating not found")
			return
		}
		s.logger.Error("get rating failed", zap.Int("movie_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch rating")
		return
	}
	s.respondJSON(w, http.StatusOK, rating)
}

func (s *Server) handleSaveRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if msg := req.validate(); msg != "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", msg)
		return
	}

	rating, inserted, err := s.ratings.Upsert(r.Context(), repository.RatingUpsertParams{
		MovieID:    req.MovieID,
		MovieTitle: strings.TrimSpace(req.MovieTitle),
		Value:      req.Rating,
	})
	if err != nil {
		s.logger.Error("upsert rating failed", zap.Int("movie_id", req.MovieID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save rating")
		return
	}

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, rating)
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	id, err := movieIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := s.ratings.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Rating not found")
			return
		}
		s.logger.Error("delete rating failed", zap.Int("movie_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete rating")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
