package detail

import "github.com/Clark-Hu/movie-ratings/internal/domain"

const (
	// LoadFailureMessage is shown when either half of an open fails.
	LoadFailureMessage = "Failed to load movie details"
	// RatingFailureMessage is shown when a save or delete is not acknowledged.
	RatingFailureMessage = "Failed to save rating"
)

// Phase is the position of the detail state machine.
type Phase int

const (
	Closed Phase = iota
	Opening
	Open
	OpeningFailed
)

func (p Phase) String() string {
	switch p {
	case Closed:
		return "closed"
	case Opening:
		return "opening"
	case Open:
		return "open"
	case OpeningFailed:
		return "opening_failed"
	default:
		return "unknown"
	}
}

// State is the detail view as the presentation layer sees it.
type State struct {
	Phase   Phase
	MovieID int
	Movie   *domain.MovieDetail
	// Rating is the last value acknowledged by the rating store; 0 means unrated.
	Rating       int
	ErrorMessage string
	RatingError  string
	// Mutating is set while a save or delete is pending.
	Mutating bool
	// Hover is the star under the pointer. It only affects DisplayStars.
	Hover int

	epoch uint64
}

// DisplayStars is the number of filled stars to draw.
func (s State) DisplayStars() int {
	if s.Hover > 0 {
		return s.Hover
	}
	return s.Rating
}

type event interface {
	isEvent()
}

type (
	opened struct {
		movieID int
		epoch   uint64
	}
	loaded struct {
		epoch  uint64
		movie  domain.MovieDetail
		rating int
	}
	loadFailed struct {
		epoch uint64
	}
	closed struct {
		epoch uint64
	}
	mutationStarted struct {
		epoch uint64
	}
	ratingCommitted struct {
		epoch uint64
		value int
	}
	mutationFailed struct {
		epoch uint64
	}
	hovered struct {
		value int
	}
)

func (opened) isEvent()          {}
func (loaded) isEvent()          {}
func (loadFailed) isEvent()      {}
func (closed) isEvent()          {}
func (mutationStarted) isEvent() {}
func (ratingCommitted) isEvent() {}
func (mutationFailed) isEvent()  {}
func (hovered) isEvent()         {}

// reduce applies one event. Every completion carries the epoch it was issued
// under and is dropped unless that epoch is still current.
func reduce(s State, ev event) State {
	switch e := ev.(type) {
	case opened:
		return State{Phase: Opening, MovieID: e.movieID, epoch: e.epoch}
	case closed:
		return State{Phase: Closed, epoch: e.epoch}
	case loaded:
		if s.Phase != Opening || e.epoch != s.epoch {
			return s
		}
		movie := e.movie
		s.Phase = Open
		s.Movie = &movie
		s.Rating = e.rating
		return s
	case loadFailed:
		if s.Phase != Opening || e.epoch != s.epoch {
			return s
		}
		s.Phase = OpeningFailed
		s.ErrorMessage = LoadFailureMessage
		return s
	case mutationStarted:
		if s.Phase != Open || e.epoch != s.epoch {
			return s
		}
		s.Mutating = true
		s.RatingError = ""
		return s
	case ratingCommitted:
		if s.Phase != Open || e.epoch != s.epoch {
			return s
		}
		s.Mutating = false
		s.Rating = e.value
		return s
	case mutationFailed:
		if s.Phase != Open || e.epoch != s.epoch {
			return s
		}
		s.Mutating = false
		s.RatingError = RatingFailureMessage
		return s
	case hovered:
		if s.Phase != Open {
			return s
		}
		s.Hover = e.value
		return s
	}
	return s
}
