// Package scopestore provides the scope-partitioned message store consumed
// by the admission policy's store directives.
//
// Each scope holds an independent, append-ordered message sequence. The
// store guarantees the physical isolation the visibility policy relies on:
// a read in one scope can never return a message stored in another, and
// there is no parent/child propagation between scopes of different geohash
// precision.
package scopestore

import (
	"context"
	"errors"
	"sync"

	"github.com/rmacdonaldsmith/georelay-go/pkg/relay"
	"github.com/rmacdonaldsmith/georelay-go/pkg/scope"
)

var (
	// ErrNilMessage is returned when a directive carries no message
	ErrNilMessage = errors.New("directive message cannot be nil")
	// ErrClosed is returned when operating on a closed store
	ErrClosed = errors.New("store is closed")
	// ErrNegativeLimit is returned when a negative result limit is provided
	ErrNegativeLimit = errors.New("limit cannot be negative")
)

// InMemoryStore implements relay.DirectiveSink using in-memory
// scope-partitioned storage. It is safe for concurrent use.
type InMemoryStore struct {
	mu              sync.RWMutex
	messagesByScope map[scope.Scope][]*relay.Message
	closed          bool
}

// NewInMemoryStore creates a new in-memory scope-partitioned store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		messagesByScope: make(map[scope.Scope][]*relay.Message),
	}
}

// Apply persists one store directive into its target scope.
// The stored message is a copy; callers cannot mutate it afterwards.
func (s *InMemoryStore) Apply(ctx context.Context, directive relay.StoreDirective) error {
	if directive.Message == nil {
		return ErrNilMessage
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.messagesByScope[directive.Target] = append(
		s.messagesByScope[directive.Target], directive.Message.Copy())
	return nil
}

// Query returns stored messages from exactly one scope, in storage order,
// matching the filter's author and time constraints. A positive limit keeps
// the most recent matches. Scopes other than the requested one are never
// consulted.
func (s *InMemoryStore) Query(ctx context.Context, target scope.Scope, filter relay.Filter) ([]*relay.Message, error) {
	if filter.Limit < 0 {
		return nil, ErrNegativeLimit
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	stored := s.messagesByScope[target]
	results := make([]*relay.Message, 0, len(stored))
	for _, msg := range stored {
		if filter.MatchesMessage(msg) {
			results = append(results, msg)
		}
	}

	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[len(results)-filter.Limit:]
	}
	return results, nil
}

// Count returns the number of messages stored in the given scope.
func (s *InMemoryStore) Count(ctx context.Context, target scope.Scope) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}
	return len(s.messagesByScope[target]), nil
}

// Close releases the store. Further operations return ErrClosed.
func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil // Already closed, idempotent
	}
	s.closed = true
	s.messagesByScope = nil
	return nil
}
