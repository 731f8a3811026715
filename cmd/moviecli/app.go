package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Clark-Hu/movie-ratings/internal/apiclient"
	"github.com/Clark-Hu/movie-ratings/internal/detail"
	"github.com/Clark-Hu/movie-ratings/internal/search"
	"github.com/Clark-Hu/movie-ratings/internal/view"
)

const helpText = `commands:
  search <query>   search movies by title
  pick <n>         open the n-th search result
  open <id>        open a movie by TMDB id
  rate <1-5>       rate the open movie; the same value again removes it
  hover <0-5>      preview stars without saving (0 clears)
  close            close the detail view
  ratings          list stored ratings
  help             show this text
  quit             exit
`

type app struct {
	client  apiclient.Client
	search  *search.Controller
	detail  *detail.Controller
	timeout time.Duration
	logger  *zap.Logger
}

func newApp(client apiclient.Client, timeout time.Duration, logger *zap.Logger) *app {
	return &app{
		client:  client,
		search:  search.New(client, timeout, logger),
		detail:  detail.New(client, timeout, logger),
		timeout: timeout,
		logger:  logger,
	}
}

var errQuit = errors.New("quit")

func (a *app) run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, helpText)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		err := a.exec(ctx, scanner.Text(), out)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(out, err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (a *app) exec(ctx context.Context, line string, out io.Writer) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "help":
		fmt.Fprint(out, helpText)
	case "quit", "exit":
		return errQuit
	case "search":
		fmt.Fprint(out, view.RenderSearch(a.search.Submit(ctx, arg)))
	case "pick":
		n, err := strconv.Atoi(arg)
		results := a.search.Snapshot().Results
		if err != nil || n < 1 || n > len(results) {
			return fmt.Errorf("pick needs a result number between 1 and %d", len(results))
		}
		fmt.Fprint(out, view.RenderDetail(a.detail.Open(ctx, results[n-1].ID)))
	case "open":
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return fmt.Errorf("open needs a positive movie id")
		}
		fmt.Fprint(out, view.RenderDetail(a.detail.Open(ctx, id)))
	case "rate":
		value, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("rate needs a number between 1 and 5")
		}
		st, err := a.detail.SetRating(ctx, value)
		if errors.Is(err, detail.ErrNotOpen) || errors.Is(err, detail.ErrInvalidRating) {
			return err
		}
		// other failures are already in st.RatingError
		fmt.Fprint(out, view.RenderDetail(st))
	case "hover":
		value, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("hover needs a number between 0 and 5")
		}
		fmt.Fprint(out, view.RenderDetail(a.detail.Hover(value)))
	case "close":
		a.detail.Close()
		fmt.Fprint(out, view.RenderSearch(a.search.Snapshot()))
	case "ratings":
		listCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		ratings, err := a.client.ListRatings(listCtx)
		if err != nil {
			a.logger.Warn("list ratings failed", zap.Error(err))
			return fmt.Errorf("failed to load ratings")
		}
		fmt.Fprint(out, view.RenderRatings(ratings))
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}
