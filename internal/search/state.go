package search

import "github.com/Clark-Hu/movie-ratings/internal/domain"

// FailureMessage is the only text shown to the user when a search fails.
const FailureMessage = "Failed to search movies. Please try again."

// Phase is the position of the search state machine.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is everything the presentation layer reads from a search.
type State struct {
	Phase        Phase
	Query        string
	Results      []domain.MovieSummary
	ErrorMessage string
	// Submitted is set once the first non-blank query has been sent.
	Submitted bool

	generation uint64
}

// IsLoading reports whether a round-trip is pending.
func (s State) IsLoading() bool {
	return s.Phase == Loading
}

// Empty is the "no movies found" condition: nothing pending, nothing to show,
// and at least one query already submitted.
func (s State) Empty() bool {
	return !s.IsLoading() && len(s.Results) == 0 && s.Submitted
}

type event interface {
	isEvent()
}

type submitted struct {
	query      string
	generation uint64
}

type succeeded struct {
	generation uint64
	results    []domain.MovieSummary
}

type failed struct {
	generation uint64
}

func (submitted) isEvent() {}
func (succeeded) isEvent() {}
func (failed) isEvent()    {}

// reduce applies one event. Completions carrying a generation other than the
// current one are ignored, so only the latest submission can settle the state.
func reduce(s State, ev event) State {
	switch e := ev.(type) {
	case submitted:
		return State{
			Phase:      Loading,
			Query:      e.query,
			Results:    []domain.MovieSummary{},
			Submitted:  true,
			generation: e.generation,
		}
	case succeeded:
		if s.Phase != Loading || e.generation != s.generation {
			return s
		}
		results := e.results
		if results == nil {
			results = []domain.MovieSummary{}
		}
		s.Phase = Loaded
		s.Results = results
		s.ErrorMessage = ""
		return s
	case failed:
		if s.Phase != Loading || e.generation != s.generation {
			return s
		}
		s.Phase = Failed
		s.Results = []domain.MovieSummary{}
		s.ErrorMessage = FailureMessage
		return s
	}
	return s
}
