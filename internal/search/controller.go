// Package search owns the query, result list and loading/error flags of the
// movie search screen.
package search

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
)

// Searcher is the catalog round-trip the controller depends on.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.MovieSummary, error)
}

// Controller runs search round-trips. It is safe for concurrent use; when
// submissions overlap, the most recent one wins.
type Controller struct {
	client  Searcher
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	state  State
	latest uint64
	cancel context.CancelFunc
}

// New constructs a controller. A non-positive timeout leaves round-trips
// bounded only by ctx.
func New(client Searcher, timeout time.Duration, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		client:  client,
		timeout: timeout,
		logger:  logger.Named("search"),
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Submit runs a search for query and returns the state once this submission
// has settled. A blank query leaves the state untouched. Submitting while a
// previous search is pending cancels it and discards its response.
func (c *Controller) Submit(ctx context.Context, query string) State {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Snapshot()
	}

	var reqCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.latest++
	gen := c.latest
	c.cancel = cancel
	c.state = reduce(c.state, submitted{query: query, generation: gen})
	c.mu.Unlock()

	results, err := c.client.Search(reqCtx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.latest {
		c.cancel = nil
	}
	if err != nil {
		if gen == c.latest {
			c.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		} else {
			c.logger.Debug("discarding superseded search failure", zap.String("query", query), zap.Error(err))
		}
		c.state = reduce(c.state, failed{generation: gen})
		return c.snapshotLocked()
	}
	if gen != c.latest {
		c.logger.Debug("discarding superseded search results", zap.String("query", query))
	}
	c.state = reduce(c.state, succeeded{generation: gen, results: results})
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	s := c.state
	s.Results = slices.Clone(s.Results)
	return s
}
