package httpapi

import "time"

// Request/Response types for the HTTP API

// AuthRequest represents a login request
type AuthRequest struct {
	ClientID string `json:"clientId"`
}

// AuthResponse represents a login response
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

// RejectionResponse surfaces an admission rejection to the client. The
// reason is designed to be shown to the remote user directly; the hint
// names the correct endpoint for wrong-scope rejections.
type RejectionResponse struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
	Hint   string `json:"hint,omitempty"`
}

// MessageResponse represents a stored message in query results
type MessageResponse struct {
	ID        string     `json:"id"`
	Author    string     `json:"author"`
	Content   string     `json:"content"`
	Tags      [][]string `json:"tags,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// QueryResponse represents a query result set
type QueryResponse struct {
	Scope    string            `json:"scope"`
	Messages []MessageResponse `json:"messages"`
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
