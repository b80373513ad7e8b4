package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, staticToken(token), nil)
}

func TestTokenAndRequestIDHeaders(t *testing.T) {
	t.Parallel()

	var gotToken, gotRequestID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("x-auth-token")
		gotRequestID = r.Header.Get("X-Request-Id")
		w.Write([]byte(`{}`))
	}, "tok-123")

	var out map[string]any
	require.NoError(t, client.do(context.Background(), http.MethodGet, "/ping", nil, &out))
	assert.Equal(t, "tok-123", gotToken)
	assert.NotEmpty(t, gotRequestID)
}

func TestEmptyTokenNotSent(t *testing.T) {
	t.Parallel()

	var hasHeader bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasHeader = r.Header["X-Auth-Token"]
		w.Write([]byte(`{}`))
	}, "")

	require.NoError(t, client.do(context.Background(), http.MethodGet, "/ping", nil, nil))
	assert.False(t, hasHeader)
}

func TestUnauthorizedTriggersGlobalHook(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"message":"token expired"}`))
		}, "stale")

		fired := 0
		client.OnUnauthorized(func() { fired++ })

		err := client.do(context.Background(), http.MethodGet, "/orders", nil, nil)
		require.Error(t, err)
		assert.True(t, IsUnauthorized(err))
		assert.Equal(t, 1, fired)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "token expired", apiErr.Message)
	}
}

func TestServerMessageSurfaced(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"table is not free"}`))
	}, "tok")

	err := client.do(context.Background(), http.MethodPost, "/tables", map[string]int{"number": 1}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "table is not free")
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, "tok")

	err := client.do(context.Background(), http.MethodGet, "/orders/gone", nil, nil)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(nil))
}

func TestDecodesResponseBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"_id":"t1","number":5}`))
	}, "tok")

	var out struct {
		ID     string `json:"_id"`
		Number int    `json:"number"`
	}
	require.NoError(t, client.do(context.Background(), http.MethodGet, "/tables/t1", nil, &out))
	assert.Equal(t, "t1", out.ID)
	assert.Equal(t, 5, out.Number)
}
