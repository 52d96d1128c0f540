package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-push-inbox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSigner struct{ scope string }

func (s *stubSigner) Sign(sender, scope string) (string, error) {
	s.scope = scope
	return "signed-" + sender, nil
}

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/notifications", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"a","title":"A","body":"","timestamp":1,"read":false}]`))
	}))
	defer srv.Close()

	list, err := New(srv.URL + "/").List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)
}

func TestMarkReadDeleteClear(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.MarkRead(ctx, "a")
	require.NoError(t, err)
	_, err = c.Delete(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, c.Clear(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"PUT /v1/notifications/a",
		"DELETE /v1/notifications/a",
		"DELETE /v1/notifications",
	}, calls)
}

func TestToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"","permission":"denied","error":"device token unavailable"}`))
	}))
	defer srv.Close()

	tok, ok, err := New(srv.URL).Token(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, tok)
}

func TestSend_SignsAndPosts(t *testing.T) {
	msg := domain.DeliverMessageRequest{Kind: domain.DeliveryBackground, Message: domain.RemoteMessage{MessageID: "m1"}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer signed-inboxctl", r.Header.Get("Authorization"))
		var got domain.DeliverMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, msg, got)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"message":"accepted","delivered":2}`))
	}))
	defer srv.Close()

	signer := &stubSigner{}
	n, err := New(srv.URL, WithSigner(signer, "inboxctl")).Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "deliver", signer.scope)
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"field 'kind' failed 'oneof'"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Send(context.Background(), domain.DeliverMessageRequest{Kind: "nope"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, apiErr.Message, "kind")
}
