package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furiganalyrics/model"
)

func newBackend(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

func TestFetch(t *testing.T) {
	var got model.Request
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, FuriganaPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[{"surface":"今日","reading":"きょう","alternatives":["きょう","こんにち"],"has_alternatives":true}],[]]`))
	})

	lines, err := c.Fetch(context.Background(), model.Request{Lyrics: "今日\n", Katakana: true})
	require.NoError(t, err)
	assert.Equal(t, model.Request{Lyrics: "今日\n", Katakana: true}, got)
	require.Len(t, lines, 2)
	assert.Equal(t, "きょう", lines[0][0].Reading)
	assert.Empty(t, lines[1])
}

func TestFetchStatusError(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"lyrics too long"}`))
	})
	_, err := c.Fetch(context.Background(), model.Request{Lyrics: "x"})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, "lyrics too long", se.Message)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	c := New(Options{BaseURL: srv.URL, Retries: 2})

	lines, err := c.Fetch(context.Background(), model.Request{Lyrics: "x"})
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchProtocolError(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"lines":[]}`))
	})
	_, err := c.Fetch(context.Background(), model.Request{Lyrics: "x"})
	assert.ErrorIs(t, err, model.ErrProtocol)
}

func TestFetchCancelled(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Fetch(ctx, model.Request{Lyrics: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
