// Package httpapi exposes the relay over HTTP. The transport layer owns
// connection lifecycle, host-based scope resolution, and JWT identity; every
// admission decision itself is delegated to the relay node.
package httpapi

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rmacdonaldsmith/georelay-go/internal/admission"
	"github.com/rmacdonaldsmith/georelay-go/internal/relaynode"
	"github.com/rmacdonaldsmith/georelay-go/internal/resolver"
	"github.com/rmacdonaldsmith/georelay-go/pkg/scope"
)

// Server represents the HTTP API server
type Server struct {
	node       *relaynode.Node
	jwtAuth    *JWTAuth
	handlers   *Handlers
	middleware *Middleware
	server     *http.Server
}

// Config holds server configuration
type Config struct {
	ListenAddress   string
	SecretKey       string
	BaseDomainParts int
}

// NewServer creates a new HTTP API server
func NewServer(node *relaynode.Node, config Config) *Server {
	secretKey := config.SecretKey
	if secretKey == "" {
		secretKey = "georelay-dev-secret-change-in-production"
	}

	jwtAuth := NewJWTAuth(secretKey)
	hostResolver := resolver.NewHostResolver(config.BaseDomainParts)
	handlers := NewHandlers(node, jwtAuth, hostResolver)
	middleware := NewMiddleware(jwtAuth)

	server := &Server{
		node:       node,
		jwtAuth:    jwtAuth,
		handlers:   handlers,
		middleware: middleware,
	}

	mux := server.setupRoutes()
	server.server = &http.Server{
		Addr:           config.ListenAddress,
		Handler:        mux,
		ReadTimeout:    30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	return server
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the configured route tree, mainly for tests that serve it
// from their own listener.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	withMiddleware := func(handler http.HandlerFunc) http.Handler {
		return s.middleware.Recovery(s.middleware.Identify(handler))
	}

	mux.Handle("POST /api/v1/auth/login", s.middleware.Recovery(s.handlers.Login))
	mux.Handle("POST /api/v1/messages", withMiddleware(s.handlers.Publish))
	mux.Handle("GET /api/v1/messages", withMiddleware(s.handlers.Query))
	mux.Handle("GET /api/v1/messages/stream", withMiddleware(s.handlers.Stream))
	mux.Handle("GET /health", withMiddleware(s.handlers.Health))
	mux.Handle("GET /{$}", withMiddleware(s.handlers.InfoPage))

	return mux
}

// connTracker maps logical connections to their admission state. HTTP is
// request-scoped, so the per-connection record the policy requires is keyed
// by (bound scope, identity); anonymous traffic falls back to the remote
// address. State persists across requests of the same logical connection,
// which is what makes the rate window meaningful over HTTP.
type connTracker struct {
	mu    sync.Mutex
	conns map[string]*admission.ConnState
}

func newConnTracker() *connTracker {
	return &connTracker{conns: make(map[string]*admission.ConnState)}
}

// get returns the connection state for the given scope and caller,
// creating it on first contact.
func (t *connTracker) get(bound scope.Scope, identity, remoteAddr string) *admission.ConnState {
	key := bound.String() + "|" + identity
	if identity == "" {
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
			remoteAddr = host
		}
		key = bound.String() + "|addr:" + remoteAddr
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	conn, exists := t.conns[key]
	if !exists {
		conn = admission.NewConnState(bound)
		t.conns[key] = conn
	}
	if identity != "" {
		conn.Authenticate(identity)
	}
	return conn
}
