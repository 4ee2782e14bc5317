// Package admission implements the per-message admission state machine and
// the read-side visibility policy for the relay.
//
// The policy is evaluated fresh per inbound message as a pure function of
// (message, connection state, static configuration); its single side effect
// is advancing the connection's rate-limit counters. The entire decision is
// synchronous, in-memory and CPU-only. For a single connection, messages are
// evaluated strictly in arrival order.
package admission

import (
	"fmt"
	"time"

	"github.com/rmacdonaldsmith/georelay-go/pkg/geohash"
	"github.com/rmacdonaldsmith/georelay-go/pkg/relay"
	"github.com/rmacdonaldsmith/georelay-go/pkg/scope"
)

// Policy decides, for every inbound message, whether it may be stored and
// into which scope. Policy is immutable after construction and safe for
// concurrent use across connections.
type Policy struct {
	config *Config

	// now is the policy's clock; overridable in tests
	now func() time.Time
}

// NewPolicy creates an admission policy from the given configuration.
func NewPolicy(config *Config) (*Policy, error) {
	if config == nil {
		return nil, ErrNilConfig
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid admission config: %w", err)
	}
	return &Policy{config: config, now: time.Now}, nil
}

// tenantAllowed applies the allow-list rule. Root is always allowed.
// Geohash scopes bypass the allow-list when configured as self-authorizing.
// An empty allow-list admits every tenant.
func (p *Policy) tenantAllowed(s scope.Scope) bool {
	if s.IsRoot() {
		return true
	}
	if p.config.GeoTenantsBypassAllowList && s.IsGeohash() {
		return true
	}
	if len(p.config.AllowedTenants) == 0 {
		return true
	}
	return p.config.AllowedTenants[s.Name()]
}

// Admit runs the write-path admission algorithm for one message, in order,
// short-circuiting on the first applicable outcome:
//
//  1. tenant allow-list
//  2. write authentication
//  3. rate limit (always advances the window)
//  4. strict geographic tenant mode
//  5. no location tag: store into the bound scope
//  6. location tag: confirm against the bound scope or reject with a
//     redirect hint naming the correct destination
//
// Admit holds the connection's lock for the duration of the evaluation.
func (p *Policy) Admit(msg *relay.Message, conn *ConnState) relay.Outcome {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	bound := conn.bound

	if !p.tenantAllowed(bound) {
		return relay.Reject(relay.TenantNotAllowed,
			fmt.Sprintf("tenant %q is not allowed on this relay", bound.Name()))
	}

	if p.config.RequireAuthForWrite && conn.authID == "" {
		return relay.Reject(relay.AuthRequired, "authentication required for writing")
	}

	count, exceeded := conn.window.advance(p.now(), p.config.EventsPerMinute)
	if exceeded {
		return relay.Reject(relay.RateLimited,
			fmt.Sprintf("rate limit exceeded: %d events in window (limit: %d per minute)",
				count, p.config.EventsPerMinute))
	}

	if p.config.StrictGeoTenants && !bound.IsRoot() && !bound.IsGeohash() {
		return relay.Reject(relay.InvalidTenantScope,
			fmt.Sprintf("tenant %q accepts geographic traffic only", bound.Name()))
	}

	conn.eventsProcessed++

	// Malformed location tags were dropped during extraction and are
	// treated as absent. The first valid tag wins; later tags are never
	// consulted.
	tags := geohash.ExtractTags(msg.Tags)
	if len(tags) == 0 {
		// Untagged writes collapse into whatever partition the connection
		// is attached to: the operator's choice of endpoint signals the
		// implicit location of untagged content.
		return relay.Accept(relay.StoreDirective{Message: msg, Target: bound})
	}

	tag := tags[0]
	if bound.IsRoot() {
		// Root never stores geo-tagged content; it is reserved for
		// ambient, non-geographic traffic.
		return relay.RejectWithHint(relay.WrongScope,
			fmt.Sprintf("geo-tagged messages belong on the %q endpoint", tag), tag)
	}
	if bound.Name() == tag {
		// Confirmation, not redirection: the write lands where the
		// connection is attached.
		return relay.Accept(relay.StoreDirective{Message: msg, Target: bound})
	}
	return relay.RejectWithHint(relay.WrongScope,
		fmt.Sprintf("message is tagged for %q but was published to %q", tag, bound.Name()), tag)
}
