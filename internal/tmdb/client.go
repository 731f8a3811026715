package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
)

// ErrNotFound is returned when TMDB has no movie with the requested id.
var ErrNotFound = errors.New("tmdb: not found")

// SearchResult is one page of a TMDB movie search.
type SearchResult struct {
	Page         int                   `json:"page"`
	Results      []domain.MovieSummary `json:"results"`
	TotalPages   int                   `json:"total_pages"`
	TotalResults int                   `json:"total_results"`
}

// Client defines the catalog lookups the service exposes.
type Client interface {
	SearchMovies(ctx context.Context, query string) (*SearchResult, error)
	Movie(ctx context.Context, id int) (*domain.MovieDetail, error)
}

// HTTPClient implements Client against the TMDB v3 API.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewHTTPClient constructs a TMDB client allowing rps requests per second.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, rps int, logger *zap.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rps <= 0 {
		rps = 1
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:          20,
				MaxConnsPerHost:       10,
				IdleConnTimeout:       20 * time.Second,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		logger:  logger.Named("tmdb"),
	}, nil
}

// SearchMovies runs a free-text movie search and returns the first page.
func (c *HTTPClient) SearchMovies(ctx context.Context, query string) (*SearchResult, error) {
	q := url.Values{}
	q.Set("query", query)

	var result SearchResult
	if err := c.get(ctx, "search/movie", q, &result); err != nil {
		return nil, err
	}
	if result.Results == nil {
		result.Results = []domain.MovieSummary{}
	}
	return &result, nil
}

// Movie fetches the details of a single movie.
func (c *HTTPClient) Movie(ctx context.Context, id int) (*domain.MovieDetail, error) {
	var movie domain.MovieDetail
	if err := c.get(ctx, "movie/"+strconv.Itoa(id), nil, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, dst interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("tmdb: rate limit wait: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	endpoint := c.baseURL.JoinPath(path)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("decode tmdb response: %w", err)
		}
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	default:
		c.logger.Warn("unexpected status", zap.Int("status", resp.StatusCode), zap.String("path", endpoint.Path))
		return fmt.Errorf("tmdb: upstream returned %d", resp.StatusCode)
	}
}
