package relay

import (
	"context"

	"github.com/rmacdonaldsmith/georelay-go/pkg/scope"
)

// ScopeResolver derives a connection's bound scope from transport-level
// routing metadata (e.g., the virtual host) at connect time. The resolved
// scope is immutable for the connection's lifetime.
type ScopeResolver interface {
	// Resolve returns the scope for the given host value
	Resolve(host string) scope.Scope
}

// DirectiveSink consumes the policy's store directives. Implementations own
// all storage I/O; the admission core never touches storage itself.
type DirectiveSink interface {
	// Apply persists one store directive
	Apply(ctx context.Context, directive StoreDirective) error
}

// Subscriber receives messages stored in the scope it is attached to.
type Subscriber interface {
	// ID returns the unique identifier for this subscriber
	ID() string

	// Deliver hands a stored message to the subscriber. Implementations
	// must not block; slow consumers drop rather than stall the relay.
	Deliver(msg *Message)
}
