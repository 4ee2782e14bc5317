package admission

import (
	"sync"

	"github.com/rmacdonaldsmith/georelay-go/pkg/scope"
)

// ConnState is the per-connection mutable record consulted by the admission
// policy: the bound scope, the optional authenticated identity, the rate
// window, and a cumulative events-processed counter for diagnostics.
//
// A ConnState is owned exclusively by its connection and never shared across
// connections. All fields are guarded by a single lock which the policy
// holds for the duration of one message's evaluation; the policy releases it
// before any network I/O happens in the surrounding layers.
type ConnState struct {
	mu sync.Mutex

	// bound is set once at connect time from routing context and is
	// immutable for the connection's lifetime
	bound scope.Scope

	// authID is the authenticated identity, empty while unauthenticated
	authID string

	window          rateWindow
	eventsProcessed uint64
}

// NewConnState creates connection state bound to the given scope.
func NewConnState(bound scope.Scope) *ConnState {
	return &ConnState{bound: bound}
}

// Scope returns the connection's bound scope.
func (s *ConnState) Scope() scope.Scope {
	// The binding is immutable; no lock needed.
	return s.bound
}

// Authenticate records the connection's authenticated identity.
func (s *ConnState) Authenticate(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authID = identity
}

// Authenticated reports whether an authenticated identity is bound.
func (s *ConnState) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authID != ""
}

// Identity returns the authenticated identity, or the empty string.
func (s *ConnState) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authID
}

// EventsProcessed returns the cumulative count of messages that passed the
// connection's scope-independent gates.
func (s *ConnState) EventsProcessed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventsProcessed
}
