package hackernews_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hacker-feed/infrastructure/clients/hackernews"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*httptest.Server, *http.ServeMux) {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, mux
}

func TestStoryIDs_DeduplicatesPreservingOrder(t *testing.T) {
	srv, mux := newServer(t)
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[30, 10, 20, 10, 30, 40]`)
	})

	client := hackernews.NewClient(srv.URL, 2*time.Second)
	ids, err := client.StoryIDs(context.Background(), "topstories")
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 10, 20, 40}, ids)
}

func TestStoryIDs_UpstreamError(t *testing.T) {
	srv, mux := newServer(t)
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client := hackernews.NewClient(srv.URL, 2*time.Second)
	ids, err := client.StoryIDs(context.Background(), "topstories")
	assert.Error(t, err)
	assert.Nil(t, ids)
}

func TestItem_DecodesRecord(t *testing.T) {
	srv, mux := newServer(t)
	mux.HandleFunc("/item/8863.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"by":"dhouston","descendants":71,"id":8863,"score":111,"time":1175714200,"title":"My YC app: Dropbox","type":"story","url":"http://www.getdropbox.com/u/2/screencast.html"}`)
	})

	client := hackernews.NewClient(srv.URL, 2*time.Second)
	item, err := client.Item(context.Background(), 8863)
	require.NoError(t, err)
	assert.Equal(t, int64(8863), item.ID)
	assert.Equal(t, "My YC app: Dropbox", item.Title)
	assert.Equal(t, "http://www.getdropbox.com/u/2/screencast.html", item.URL)
	assert.Equal(t, 111, item.Score)
	assert.Equal(t, "dhouston", item.By)
	assert.Equal(t, 71, item.Descendants)
}

func TestItem_NullBodyIsNotFound(t *testing.T) {
	srv, mux := newServer(t)
	mux.HandleFunc("/item/999.json", func(w http.ResponseWriter, r *http.Request) {
		// Unknown ids come back as the JSON null literal, status 200.
		fmt.Fprint(w, `null`)
	})

	client := hackernews.NewClient(srv.URL, 2*time.Second)
	item, err := client.Item(context.Background(), 999)
	assert.Nil(t, item)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestItem_RequestIDOverridesBody(t *testing.T) {
	srv, mux := newServer(t)
	mux.HandleFunc("/item/5.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title":"No id field"}`)
	})

	client := hackernews.NewClient(srv.URL, 2*time.Second)
	item, err := client.Item(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.ID)
}

func TestItem_ContextCancellation(t *testing.T) {
	srv, mux := newServer(t)
	mux.HandleFunc("/item/1.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":1}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := hackernews.NewClient(srv.URL, 2*time.Second)
	_, err := client.Item(ctx, 1)
	assert.Error(t, err)
}
