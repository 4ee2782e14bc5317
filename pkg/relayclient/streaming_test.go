package relayclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Stream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/messages/stream", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)

		flusher := w.(http.Flusher)
		fmt.Fprintf(w, "data: {\"id\":\"msg-1\",\"author\":\"alice\",\"content\":\"first\"}\n\n")
		flusher.Flush()
		fmt.Fprintf(w, ": keepalive\n\n")
		fmt.Fprintf(w, "data: {\"id\":\"msg-2\",\"author\":\"bob\",\"content\":\"second\"}\n\n")
		flusher.Flush()
	}))
	defer server.Close()

	client, err := NewClient(Config{ServerURL: server.URL, ClientID: "test-client"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Stream(ctx, StreamConfig{MaxReconnectAttempts: 1})
	require.NoError(t, err)
	defer stream.Close()

	var received []Message
	for len(received) < 2 {
		select {
		case msg := <-stream.Messages():
			received = append(received, msg)
		case <-ctx.Done():
			t.Fatalf("Timed out waiting for messages, got %d", len(received))
		}
	}

	assert.Equal(t, "msg-1", received[0].ID)
	assert.Equal(t, "first", received[0].Content)
	assert.Equal(t, "msg-2", received[1].ID)
	assert.Equal(t, "bob", received[1].Author)
}

func TestClient_Stream_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"kind":"auth-required","reason":"authentication required to read"}`)
	}))
	defer server.Close()

	client, err := NewClient(Config{ServerURL: server.URL, ClientID: "test-client"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Stream(ctx, StreamConfig{
		MaxReconnectAttempts: 1,
		ReconnectDelay:       10 * time.Millisecond,
	})
	require.NoError(t, err)
	defer stream.Close()

	select {
	case err := <-stream.Errors():
		assert.Contains(t, err.Error(), "auth-required")
	case <-ctx.Done():
		t.Fatal("Timed out waiting for stream error")
	}
}
