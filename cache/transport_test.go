package cache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, calls *int, status int, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))

	t.Cleanup(server.Close)
	return server
}

// TestTransportServesFromCache checks that a second GET for the same URL
// within the TTL window never re-hits the network
func TestTransportServesFromCache(t *testing.T) {
	calls := 0
	server := newBackend(t, &calls, http.StatusOK, `{"Go":1000}`)

	client := &http.Client{Transport: NewTransport(NewStore(time.Hour), nil)}

	for i := 0; i < 3; i++ {
		resp, err := client.Get(server.URL + "/repos/octocat/hello-go/languages")
		require.NoError(t, err)

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, `{"Go":1000}`, string(body))
	}

	assert.Equal(t, 1, calls)
}

// TestTransportDistinctURLs checks that the cache key is the exact URL
func TestTransportDistinctURLs(t *testing.T) {
	calls := 0
	server := newBackend(t, &calls, http.StatusOK, `{}`)

	client := &http.Client{Transport: NewTransport(NewStore(time.Hour), nil)}

	_, err := client.Get(server.URL + "/users/octocat")
	require.NoError(t, err)

	_, err = client.Get(server.URL + "/users/octocat/repos")
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

// TestTransportDoesNotCacheErrors checks that non-2xx responses are
// classified fresh on every call
func TestTransportDoesNotCacheErrors(t *testing.T) {
	calls := 0
	server := newBackend(t, &calls, http.StatusNotFound, `{"message":"Not Found"}`)

	client := &http.Client{Transport: NewTransport(NewStore(time.Hour), nil)}

	for i := 0; i < 2; i++ {
		resp, err := client.Get(server.URL + "/users/ghost")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}

	assert.Equal(t, 2, calls)
}

// TestTransportNoop checks that the Noop cache disables caching entirely
func TestTransportNoop(t *testing.T) {
	calls := 0
	server := newBackend(t, &calls, http.StatusOK, `{}`)

	client := &http.Client{Transport: NewTransport(Noop{}, nil)}

	for i := 0; i < 2; i++ {
		resp, err := client.Get(server.URL + "/users/octocat")
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, 2, calls)
}

// TestStoreExpiry checks that entries vanish after the TTL
func TestStoreExpiry(t *testing.T) {
	store := NewStore(20 * time.Millisecond)
	store.Set("key", []byte("value"))

	body, found := store.Get("key")
	require.True(t, found)
	assert.Equal(t, []byte("value"), body)

	time.Sleep(40 * time.Millisecond)

	_, found = store.Get("key")
	assert.False(t, found)
}
