package relayclient

import (
	"fmt"
	"time"
)

// Config holds client configuration
type Config struct {
	// ServerURL is the base URL of the relay HTTP API. The hostname selects
	// the scope: "http://drt2z.relay.example" talks to the drt2z partition,
	// "http://relay.example" to the root partition.
	ServerURL string

	// ClientID is the identifier for this client
	ClientID string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// SetDefaults sets reasonable default values for the config
func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// AuthResponse represents the response from authentication
type AuthResponse struct {
	Token     string    `json:"token"`
	ClientID  string    `json:"clientId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PublishRequest represents a message publishing request
type PublishRequest struct {
	Content string     `json:"content"`
	Tags    [][]string `json:"tags,omitempty"`
}

// PublishResponse represents a message publishing response
type PublishResponse struct {
	MessageID string    `json:"messageId"`
	Scope     string    `json:"scope"`
	Timestamp time.Time `json:"timestamp"`
}

// Message represents a stored message returned by queries and streams
type Message struct {
	ID        string     `json:"id"`
	Author    string     `json:"author"`
	Content   string     `json:"content"`
	Tags      [][]string `json:"tags,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// QueryOptions narrows a message query
type QueryOptions struct {
	Authors []string
	Since   time.Time
	Until   time.Time
	Limit   int
}

// QueryResponse represents a query result set
type QueryResponse struct {
	Scope    string    `json:"scope"`
	Messages []Message `json:"messages"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
	Scope  string `json:"scope"`
}

// ErrorResponse represents a transport-level error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// RejectionError is returned when the relay's admission policy refuses an
// operation. Kind distinguishes the reason; for wrong-scope rejections Hint
// names the scope the message belongs in, so callers can retry against the
// right subdomain.
type RejectionError struct {
	StatusCode int    `json:"-"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason"`
	Hint       string `json:"hint,omitempty"`
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("rejected (%s): %s (try scope %q)", e.Kind, e.Reason, e.Hint)
	}
	return fmt.Sprintf("rejected (%s): %s", e.Kind, e.Reason)
}
