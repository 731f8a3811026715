package httpserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Clark-Hu/movie-ratings/internal/apiclient"
	"github.com/Clark-Hu/movie-ratings/internal/detail"
	"github.com/Clark-Hu/movie-ratings/internal/search"
	"github.com/Clark-Hu/movie-ratings/internal/view"
)

// TestClientAgainstService drives both controllers through the real HTTP
// client against the routed handler.
func TestClientAgainstService(t *testing.T) {
	catalog := newFakeCatalog()
	srv, ratings := buildTestServer(t, catalog, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	logger := zaptest.NewLogger(t)
	client, err := apiclient.NewHTTPClient(ts.URL+"/api", 2*time.Second, logger)
	require.NoError(t, err)

	ctx := context.Background()

	searches := search.New(client, 2*time.Second, logger)
	st := searches.Submit(ctx, "Inception")
	require.Equal(t, search.Loaded, st.Phase)
	require.Len(t, st.Results, 1)
	assert.Equal(t, "Inception (2010)", view.CardLabel(st.Results[0]))

	st = searches.Submit(ctx, "zzz-nothing")
	assert.True(t, st.Empty())
	assert.Contains(t, view.RenderSearch(st), view.EmptyResultText)

	details := detail.New(client, 2*time.Second, logger)

	ds := details.Open(ctx, 27205)
	require.Equal(t, detail.Open, ds.Phase)
	assert.Equal(t, 0, ds.Rating)
	assert.Equal(t, "☆☆☆☆☆", view.Stars(ds.DisplayStars()))

	ds, err = details.SetRating(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Rating)
	assert.Empty(t, ds.RatingError)

	stored, err := ratings.Get(ctx, 27205)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Value)
	assert.Equal(t, "Inception", stored.MovieTitle)

	ds, err = details.SetRating(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Rating)

	// same star again removes it
	ds, err = details.SetRating(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Rating)
	list, err := client.ListRatings(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = details.SetRating(ctx, 5)
	require.NoError(t, err)

	details.Close()
	before := catalog.fetchCount(27205)
	ds = details.Open(ctx, 27205)
	require.Equal(t, detail.Open, ds.Phase)
	assert.Equal(t, 5, ds.Rating)
	assert.Equal(t, before+1, catalog.fetchCount(27205))
	assert.Contains(t, view.RenderDetail(ds), view.RemoveHintText)

	ds = details.Open(ctx, 999)
	assert.Equal(t, detail.OpeningFailed, ds.Phase)
	assert.Equal(t, detail.LoadFailureMessage, ds.ErrorMessage)
}

func TestClientSearchFailureMessage(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.fail = true
	srv, _ := buildTestServer(t, catalog, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := apiclient.NewHTTPClient(ts.URL+"/api", time.Second, zaptest.NewLogger(t))
	require.NoError(t, err)

	st := search.New(client, time.Second, nil).Submit(context.Background(), "Inception")
	assert.Equal(t, search.Failed, st.Phase)
	assert.Equal(t, search.FailureMessage, st.ErrorMessage)
	assert.Empty(t, st.Results)
}
