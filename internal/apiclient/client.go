// Package apiclient is the typed boundary to the catalog-and-ratings service.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
)

var (
	// ErrTransport covers network failures, unexpected statuses and malformed bodies.
	ErrTransport = errors.New("apiclient: transport failure")
	// ErrNotFound is returned when the service has no movie with the requested id.
	ErrNotFound = errors.New("apiclient: not found")
	// ErrInvalidRating is returned before any request when a value is outside 1-5.
	ErrInvalidRating = errors.New("apiclient: rating must be between 1 and 5")
)

const maxResponseBody = 4 << 20

// Client defines the round-trips the controllers depend on.
type Client interface {
	Search(ctx context.Context, query string) ([]domain.MovieSummary, error)
	GetDetails(ctx context.Context, id int) (domain.MovieDetail, error)
	GetRating(ctx context.Context, id int) (*domain.Rating, error)
	ListRatings(ctx context.Context) ([]domain.Rating, error)
	SaveRating(ctx context.Context, id int, title string, value int) (domain.Rating, error)
	DeleteRating(ctx context.Context, id int) error
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient constructs a client for the service rooted at baseURL, for
// example http://localhost:5000/api.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	return &HTTPClient{
		baseURL: parsed,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger.Named("apiclient"),
	}, nil
}

type searchResponse struct {
	Results []domain.MovieSummary `json:"results"`
}

type saveRatingRequest struct {
	MovieID    int    `json:"tmdb_movie_id"`
	MovieTitle string `json:"movie_title"`
	Rating     int    `json:"rating"`
}

// Search resolves a free-text query to movie summaries. A blank query is a
// no-op and issues no request.
func (c *HTTPClient) Search(ctx context.Context, query string) ([]domain.MovieSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("query", query)

	resp, err := c.do(ctx, http.MethodGet, "search", q, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("search", resp)
	}
	var payload searchResponse
	if err := decode(resp, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %w", ErrTransport, err)
	}
	if payload.Results == nil {
		payload.Results = []domain.MovieSummary{}
	}
	return payload.Results, nil
}

// GetDetails fetches the full record of one movie.
func (c *HTTPClient) GetDetails(ctx context.Context, id int) (domain.MovieDetail, error) {
	resp, err := c.do(ctx, http.MethodGet, "movie/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return domain.MovieDetail{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var movie domain.MovieDetail
		if err := decode(resp, &movie); err != nil {
			return domain.MovieDetail{}, fmt.Errorf("%w: decode movie %d: %w", ErrTransport, id, err)
		}
		return movie, nil
	case http.StatusNotFound:
		return domain.MovieDetail{}, fmt.Errorf("movie %d: %w", id, ErrNotFound)
	default:
		return domain.MovieDetail{}, c.statusError("get details", resp)
	}
}

// GetRating returns the stored rating of a movie, or nil when there is none.
func (c *HTTPClient) GetRating(ctx context.Context, id int) (*domain.Rating, error) {
	resp, err := c.do(ctx, http.MethodGet, "ratings/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// some deployments answer a missing rating with 200 and a JSON null
		var rating *domain.Rating
		if err := decode(resp, &rating); err != nil {
			return nil, fmt.Errorf("%w: decode rating %d: %w", ErrTransport, id, err)
		}
		return rating, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, c.statusError("get rating", resp)
	}
}

// ListRatings returns every stored rating.
func (c *HTTPClient) ListRatings(ctx context.Context) ([]domain.Rating, error) {
	resp, err := c.do(ctx, http.MethodGet, "ratings", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("list ratings", resp)
	}
	var ratings []domain.Rating
	if err := decode(resp, &ratings); err != nil {
		return nil, fmt.Errorf("%w: decode ratings: %w", ErrTransport, err)
	}
	if ratings == nil {
		ratings = []domain.Rating{}
	}
	return ratings, nil
}

// SaveRating creates or updates the rating of a movie.
func (c *HTTPClient) SaveRating(ctx context.Context, id int, title string, value int) (domain.Rating, error) {
	if !domain.ValidRating(value) {
		return domain.Rating{}, ErrInvalidRating
	}
	body, err := json.Marshal(saveRatingRequest{MovieID: id, MovieTitle: title, Rating: value})
	if err != nil {
		return domain.Rating{}, fmt.Errorf("encode rating: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "ratings", nil, body)
	if err != nil {
		return domain.Rating{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return domain.Rating{}, c.statusError("save rating", resp)
	}
	var rating domain.Rating
	if err := decode(resp, &rating); err != nil {
		return domain.Rating{}, fmt.Errorf("%w: decode saved rating: %w", ErrTransport, err)
	}
	return rating, nil
}

// DeleteRating removes the rating of a movie. A rating that is already gone
// counts as deleted.
func (c *HTTPClient) DeleteRating(ctx context.Context, id int) error {
	resp, err := c.do(ctx, http.MethodDelete, "ratings/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		c.logger.Debug("rating already absent", zap.Int("movie_id", id))
		return nil
	default:
		return c.statusError("delete rating", resp)
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Response, error) {
	endpoint := c.baseURL.JoinPath(path)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, endpoint.Path, err)
	}
	return resp, nil
}

func (c *HTTPClient) statusError(op string, resp *http.Response) error {
	c.logger.Warn("unexpected status",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.String("path", resp.Request.URL.Path),
	)
	return fmt.Errorf("%w: %s: service returned %d", ErrTransport, op, resp.StatusCode)
}

func decode(resp *http.Response, dst interface{}) error {
	return json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(dst)
}
