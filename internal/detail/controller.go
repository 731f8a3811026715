// Package detail owns the open movie, its acknowledged rating, and the rating
// mutations issued from the detail view.
package detail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
)

var (
	// ErrNotOpen is returned by SetRating when no movie is loaded.
	ErrNotOpen = errors.New("detail: no movie is open")
	// ErrInvalidRating is returned by SetRating for values outside 1-5.
	ErrInvalidRating = errors.New("detail: rating must be between 1 and 5")
)

// Service is the set of round-trips the detail view depends on.
type Service interface {
	GetDetails(ctx context.Context, id int) (domain.MovieDetail, error)
	GetRating(ctx context.Context, id int) (*domain.Rating, error)
	SaveRating(ctx context.Context, id int, title string, value int) (domain.Rating, error)
	DeleteRating(ctx context.Context, id int) error
}

// Controller drives one detail view. It is safe for concurrent use. Rating
// mutations are serialized so each one compares against acknowledged state.
type Controller struct {
	client  Service
	timeout time.Duration
	logger  *zap.Logger

	mutate sync.Mutex

	mu             sync.Mutex
	state          State
	epoch          uint64
	cancelOpen     context.CancelFunc
	cancelMutation context.CancelFunc
}

// New constructs a controller. A non-positive timeout leaves round-trips
// bounded only by the caller's context.
func New(client Service, timeout time.Duration, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		client:  client,
		timeout: timeout,
		logger:  logger.Named("detail"),
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Open loads the movie and its rating concurrently and settles once both have
// returned. Any failure moves the view to OpeningFailed. If the view is closed
// or reopened meanwhile, the results are discarded. A mutation still pending
// from an earlier open is cancelled, and the rating is read only after it has
// settled.
func (c *Controller) Open(ctx context.Context, id int) State {
	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	c.mu.Lock()
	c.cancelPendingLocked()
	c.epoch++
	epoch := c.epoch
	c.cancelOpen = cancel
	c.state = reduce(c.state, opened{movieID: id, epoch: epoch})
	c.mu.Unlock()

	// The phase is Opening now, so no new mutation can start; wait out the
	// one that may still be running.
	c.mutate.Lock()
	c.mutate.Unlock()

	var (
		movie  domain.MovieDetail
		rating *domain.Rating
	)
	g, gctx := errgroup.WithContext(reqCtx)
	g.Go(func() error {
		m, err := c.client.GetDetails(gctx, id)
		if err != nil {
			return fmt.Errorf("get details: %w", err)
		}
		movie = m
		return nil
	})
	g.Go(func() error {
		r, err := c.client.GetRating(gctx, id)
		if err != nil {
			return fmt.Errorf("get rating: %w", err)
		}
		rating = r
		return nil
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch == c.epoch {
		c.cancelOpen = nil
	}
	if err != nil {
		if epoch == c.epoch {
			c.logger.Error("open movie failed", zap.Int("movie_id", id), zap.Error(err))
		}
		c.state = reduce(c.state, loadFailed{epoch: epoch})
		return c.snapshotLocked()
	}

	value := 0
	if rating != nil {
		value = rating.Value
	}
	c.state = reduce(c.state, loaded{epoch: epoch, movie: movie, rating: value})
	return c.snapshotLocked()
}

// Close discards the open movie. A pending open or mutation is cancelled and
// its result ignored; the next Open fetches everything again.
func (c *Controller) Close() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
	c.epoch++
	c.state = reduce(c.state, closed{epoch: c.epoch})
	return c.snapshotLocked()
}

func (c *Controller) cancelPendingLocked() {
	if c.cancelOpen != nil {
		c.cancelOpen()
		c.cancelOpen = nil
	}
	if c.cancelMutation != nil {
		c.cancelMutation()
		c.cancelMutation = nil
	}
}

// SetRating applies a star click. Clicking the current value removes the
// rating; any other value is saved. The displayed rating only changes once
// the store acknowledges the change.
func (c *Controller) SetRating(ctx context.Context, value int) (State, error) {
	if !domain.ValidRating(value) {
		return c.Snapshot(), ErrInvalidRating
	}

	c.mutate.Lock()
	defer c.mutate.Unlock()

	c.mu.Lock()
	if c.state.Phase != Open || c.state.Movie == nil {
		s := c.snapshotLocked()
		c.mu.Unlock()
		return s, ErrNotOpen
	}
	epoch := c.epoch
	id := c.state.MovieID
	title := c.state.Movie.Title
	current := c.state.Rating
	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	c.cancelMutation = cancel
	c.state = reduce(c.state, mutationStarted{epoch: epoch})
	c.mu.Unlock()

	next := value
	var err error
	if value == current {
		next = 0
		err = c.client.DeleteRating(reqCtx, id)
		if err != nil {
			err = fmt.Errorf("delete rating: %w", err)
		}
	} else {
		_, err = c.client.SaveRating(reqCtx, id, title, value)
		if err != nil {
			err = fmt.Errorf("save rating: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch == c.epoch {
		c.cancelMutation = nil
	}
	if err != nil {
		c.logger.Error("rating mutation failed",
			zap.Int("movie_id", id),
			zap.Int("value", value),
			zap.Int("current", current),
			zap.Error(err),
		)
		c.state = reduce(c.state, mutationFailed{epoch: epoch})
		return c.snapshotLocked(), err
	}
	c.state = reduce(c.state, ratingCommitted{epoch: epoch, value: next})
	return c.snapshotLocked(), nil
}

// Hover sets the previewed star. Values outside 1-5 clear the preview.
func (c *Controller) Hover(value int) State {
	if !domain.ValidRating(value) {
		value = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = reduce(c.state, hovered{value: value})
	return c.snapshotLocked()
}

// ClearHover removes the star preview.
func (c *Controller) ClearHover() State {
	return c.Hover(0)
}

func (c *Controller) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Controller) snapshotLocked() State {
	s := c.state
	if s.Movie != nil {
		movie := *s.Movie
		s.Movie = &movie
	}
	return s
}
