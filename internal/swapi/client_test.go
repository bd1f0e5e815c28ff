package swapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubClient(t *testing.T) *Client {
	t.Helper()
	ts := httptest.NewServer(StubHandler())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, 5*time.Second)
}

func TestFilms(t *testing.T) {
	c := stubClient(t)

	films, err := c.Films(context.Background())
	require.NoError(t, err)
	require.Len(t, films, 3)
	assert.Equal(t, "A New Hope", films[0].Title)
	assert.Equal(t, 4, films[0].EpisodeID)
}

func TestFilmByID(t *testing.T) {
	c := stubClient(t)

	film, err := c.Film(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "The Empire Strikes Back", film.Title)
	assert.Equal(t, "Irvin Kershner", film.Director)
}

func TestFilmUnknownIDIsAnError(t *testing.T) {
	c := stubClient(t)

	_, err := c.Film(context.Background(), "999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestFilmIDPassedThroughUnvalidated(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		http.NotFound(w, r)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 5*time.Second)
	_, err := c.Film(context.Background(), "not-a-number")
	require.Error(t, err)
	assert.Equal(t, "/films/not-a-number/", gotPath)
}

func TestGetDecodeFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 5*time.Second)
	_, err := c.Films(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestRequestContextCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(ts.URL, 5*time.Second)
	_, err := c.Films(ctx)
	assert.Error(t, err)
}
