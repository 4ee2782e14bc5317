// Package relaynode orchestrates the relay core: it wires the admission
// policy, the scope-partitioned store, and the subscriber registry into the
// publish and query paths used by the transport layer.
package relaynode

import (
	"context"
	"fmt"
	"sync"

	"github.com/rmacdonaldsmith/georelay-go/internal/admission"
	"github.com/rmacdonaldsmith/georelay-go/internal/scopestore"
	"github.com/rmacdonaldsmith/georelay-go/pkg/relay"
	"github.com/rmacdonaldsmith/georelay-go/pkg/scope"
)

// Node is the relay's orchestration layer. Transport handlers hand it
// inbound messages together with the originating connection's state; the
// node runs admission, applies the resulting store directives, and fans
// stored messages out to same-scope subscribers that pass the visibility
// policy.
type Node struct {
	mu sync.RWMutex

	policy *admission.Policy
	store  *scopestore.InMemoryStore

	// subscribers is keyed by scope; fan-out never crosses partitions
	subscribers map[scope.Scope]map[string]*subscriberEntry

	started bool
	closed  bool
}

type subscriberEntry struct {
	subscriber relay.Subscriber
	conn       *admission.ConnState
}

// NewNode creates a relay node from an admission configuration.
func NewNode(config *admission.Config) (*Node, error) {
	policy, err := admission.NewPolicy(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create admission policy: %w", err)
	}

	return &Node{
		policy:      policy,
		store:       scopestore.NewInMemoryStore(),
		subscribers: make(map[scope.Scope]map[string]*subscriberEntry),
	}, nil
}

// Start marks the node ready to serve traffic. Idempotent.
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return fmt.Errorf("cannot start closed relay node")
	}
	n.started = true
	return nil
}

// Stop stops serving traffic without releasing resources. Idempotent.
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.started = false
	return nil
}

// Close permanently shuts the node down and releases the store. Idempotent.
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	if err := n.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	n.started = false
	n.closed = true
	n.subscribers = nil
	return nil
}

// Publish runs one message through the admission policy and, when accepted,
// persists the resulting directives and delivers the message to same-scope
// subscribers. The returned outcome always states what happened: rejected
// messages carry their reason and are never persisted.
func (n *Node) Publish(ctx context.Context, conn *admission.ConnState, msg *relay.Message) (relay.Outcome, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return relay.Outcome{}, fmt.Errorf("cannot publish to closed relay node")
	}
	if !n.started {
		return relay.Outcome{}, fmt.Errorf("cannot publish to stopped relay node")
	}
	if conn == nil {
		return relay.Outcome{}, fmt.Errorf("connection state cannot be nil")
	}
	if msg == nil {
		return relay.Outcome{}, fmt.Errorf("message cannot be nil")
	}

	outcome := n.policy.Admit(msg, conn)
	if !outcome.Accepted() {
		return outcome, nil
	}

	for _, directive := range outcome.Directives {
		if err := n.store.Apply(ctx, directive); err != nil {
			return relay.Outcome{}, fmt.Errorf("failed to apply store directive: %w", err)
		}
		n.deliverLocked(directive)
	}
	return outcome, nil
}

// deliverLocked fans a stored message out to subscribers attached to the
// directive's target scope. Caller holds at least the read lock.
func (n *Node) deliverLocked(directive relay.StoreDirective) {
	for _, entry := range n.subscribers[directive.Target] {
		if n.policy.CanSee(directive.Message, entry.conn) {
			entry.subscriber.Deliver(directive.Message)
		}
	}
}

// Query validates the reader's filter against the visibility policy and, if
// allowed, executes it in the reader's bound scope only.
func (n *Node) Query(ctx context.Context, conn *admission.ConnState, filter relay.Filter) ([]*relay.Message, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return nil, fmt.Errorf("cannot query closed relay node")
	}
	if conn == nil {
		return nil, fmt.Errorf("connection state cannot be nil")
	}

	if err := n.policy.VerifyQuery([]relay.Filter{filter}, conn); err != nil {
		return nil, err
	}
	return n.store.Query(ctx, conn.Scope(), filter)
}

// Subscribe registers a subscriber in the connection's bound scope after the
// visibility policy clears the subscription's filter. Stored messages are
// delivered as they arrive; delivery never crosses scope boundaries.
func (n *Node) Subscribe(ctx context.Context, conn *admission.ConnState, filter relay.Filter, subscriber relay.Subscriber) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return fmt.Errorf("cannot subscribe to closed relay node")
	}
	if conn == nil {
		return fmt.Errorf("connection state cannot be nil")
	}
	if subscriber == nil {
		return fmt.Errorf("subscriber cannot be nil")
	}

	if err := n.policy.VerifyQuery([]relay.Filter{filter}, conn); err != nil {
		return err
	}

	bound := conn.Scope()
	if n.subscribers[bound] == nil {
		n.subscribers[bound] = make(map[string]*subscriberEntry)
	}
	n.subscribers[bound][subscriber.ID()] = &subscriberEntry{
		subscriber: subscriber,
		conn:       conn,
	}
	return nil
}

// Unsubscribe removes a subscriber from the connection's bound scope.
func (n *Node) Unsubscribe(ctx context.Context, conn *admission.ConnState, subscriberID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return fmt.Errorf("cannot unsubscribe from closed relay node")
	}
	if conn == nil {
		return fmt.Errorf("connection state cannot be nil")
	}

	bound := conn.Scope()
	if _, exists := n.subscribers[bound][subscriberID]; !exists {
		return fmt.Errorf("subscriber %s not found in scope %s", subscriberID, bound)
	}
	delete(n.subscribers[bound], subscriberID)
	return nil
}

// Store exposes the underlying store to the transport layer for diagnostics.
func (n *Node) Store() *scopestore.InMemoryStore {
	return n.store
}
