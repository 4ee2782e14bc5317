package relayclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StreamClient handles Server-Sent Events streaming of messages stored into
// the scope the client's hostname selects.
type StreamClient struct {
	client   *Client
	messages chan Message
	errors   chan error
	done     chan struct{}
	cancel   context.CancelFunc
	response *http.Response
}

// StreamConfig configures the streaming client
type StreamConfig struct {
	// Query narrows the stream (optional)
	Query QueryOptions

	// BufferSize for the message channel
	BufferSize int

	// ReconnectDelay for automatic reconnection
	ReconnectDelay time.Duration

	// MaxReconnectAttempts (0 = infinite)
	MaxReconnectAttempts int
}

// SetDefaults sets reasonable default values for StreamConfig
func (sc *StreamConfig) SetDefaults() {
	if sc.BufferSize == 0 {
		sc.BufferSize = 100
	}
	if sc.ReconnectDelay == 0 {
		sc.ReconnectDelay = 2 * time.Second
	}
}

// Stream opens a live SSE feed of messages arriving in the selected scope
func (c *Client) Stream(ctx context.Context, config StreamConfig) (*StreamClient, error) {
	config.SetDefaults()

	streamCtx, cancel := context.WithCancel(ctx)

	streamClient := &StreamClient{
		client:   c,
		messages: make(chan Message, config.BufferSize),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
		cancel:   cancel,
	}

	go streamClient.startStreaming(streamCtx, config)

	return streamClient, nil
}

// Messages returns the channel for receiving messages
func (sc *StreamClient) Messages() <-chan Message {
	return sc.messages
}

// Errors returns the channel for receiving errors
func (sc *StreamClient) Errors() <-chan error {
	return sc.errors
}

// Done returns a channel that's closed when streaming ends
func (sc *StreamClient) Done() <-chan struct{} {
	return sc.done
}

// Close stops the streaming client and cleans up resources
func (sc *StreamClient) Close() error {
	sc.cancel()

	if sc.response != nil {
		sc.response.Body.Close()
	}

	<-sc.done
	return nil
}

// startStreaming handles the SSE streaming loop with reconnection
func (sc *StreamClient) startStreaming(ctx context.Context, config StreamConfig) {
	defer close(sc.done)
	defer close(sc.messages)
	defer close(sc.errors)

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := sc.connectAndStream(ctx, config)
		if err != nil {
			select {
			case sc.errors <- fmt.Errorf("streaming error: %w", err):
			case <-ctx.Done():
				return
			default:
			}
		}

		if config.MaxReconnectAttempts > 0 && attempts >= config.MaxReconnectAttempts {
			select {
			case sc.errors <- fmt.Errorf("max reconnect attempts (%d) exceeded", config.MaxReconnectAttempts):
			case <-ctx.Done():
			}
			return
		}
		attempts++

		select {
		case <-time.After(config.ReconnectDelay):
		case <-ctx.Done():
			return
		}
	}
}

// connectAndStream establishes the SSE connection and processes messages
func (sc *StreamClient) connectAndStream(ctx context.Context, config StreamConfig) error {
	streamURL := sc.client.baseURL.ResolveReference(&url.URL{Path: "/api/v1/messages/stream"})

	values := streamURL.Query()
	if len(config.Query.Authors) > 0 {
		values.Set("authors", strings.Join(config.Query.Authors, ","))
	}
	if !config.Query.Since.IsZero() {
		values.Set("since", fmt.Sprintf("%d", config.Query.Since.Unix()))
	}
	streamURL.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", streamURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create streaming request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if sc.client.token != "" {
		req.Header.Set("Authorization", "Bearer "+sc.client.token)
	}

	resp, err := sc.client.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	sc.response = resp
	defer func() {
		resp.Body.Close()
		sc.response = nil
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return parseAPIError(resp.StatusCode, resp.Status, bodyBytes)
	}

	return sc.processSSEStream(ctx, resp.Body)
}

// processSSEStream reads and parses Server-Sent Events
func (sc *StreamClient) processSSEStream(ctx context.Context, reader io.Reader) error {
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			// Keepalives, blank separators and other SSE fields are skipped.
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &msg); err != nil {
			select {
			case sc.errors <- fmt.Errorf("failed to parse message: %w", err):
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			continue
		}

		select {
		case sc.messages <- msg:
		case <-ctx.Done():
			return ctx.Err()
		default:
			// Channel full, drop message
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading SSE stream: %w", err)
	}
	return nil
}
