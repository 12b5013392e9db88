package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellavista/carehome-cms/internal/pkg/retry"
)

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 1}
}

func newTestClient(url string) *Client {
	return NewClient("key-123", zerolog.Nop()).WithBaseURL(url).WithRetry(fastRetry())
}

func TestFetchReviews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "place-1", r.URL.Query().Get("place_id"))
		assert.Equal(t, "reviews", r.URL.Query().Get("fields"))
		assert.Equal(t, "key-123", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"status":"OK","result":{"reviews":[
			{"author_name":"Jo","rating":5,"text":"Wonderful","time":1767225600},
			{"author_name":"Al","rating":4,"text":"Kind staff"}
		]}}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).FetchReviews(context.Background(), "place-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Jo", got[0].AuthorName)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), got[0].Time)
	assert.True(t, got[1].Time.IsZero())
}

func TestFetchReviews_StatusNotOKIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchReviews(context.Background(), "place-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetchReviews_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK","result":{"reviews":[]}}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).FetchReviews(context.Background(), "place-1")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.EqualValues(t, 2, calls.Load())
}

func TestFetchReviews_NoKey(t *testing.T) {
	_, err := NewClient("", zerolog.Nop()).FetchReviews(context.Background(), "place-1")
	assert.Error(t, err)
}
