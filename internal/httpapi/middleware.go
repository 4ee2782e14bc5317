package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
)

// ContextKey type for context keys to avoid collisions
type ContextKey string

const (
	// ClientIDKey is the context key for the authenticated client ID
	ClientIDKey ContextKey = "client_id"
)

// Middleware provides HTTP middleware functions
type Middleware struct {
	jwtAuth *JWTAuth
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(jwtAuth *JWTAuth) *Middleware {
	return &Middleware{jwtAuth: jwtAuth}
}

// Identify attaches the authenticated client ID to the request context when
// a token is presented. A missing token is not an error at this layer -
// whether authentication is required is the admission policy's decision,
// not the transport's. A presented-but-invalid token is rejected outright.
func (m *Middleware) Identify(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			next(w, r)
			return
		}

		claims, err := m.jwtAuth.ValidateToken(token)
		if err != nil {
			m.writeError(w, "Invalid token: "+err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ClientIDKey, claims.ClientID)
		next(w, r.WithContext(ctx))
	}
}

// Recovery middleware recovers from handler panics and returns a 500
func (m *Middleware) Recovery(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic in %s %s: %v", r.Method, r.URL.Path, rec)
				m.writeError(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

// clientID extracts the authenticated client ID from the request context,
// returning the empty string for anonymous requests.
func clientID(r *http.Request) string {
	if id, ok := r.Context().Value(ClientIDKey).(string); ok {
		return id
	}
	return ""
}

// writeError writes a JSON error response
func (m *Middleware) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
