package admission

import (
	"fmt"

	"github.com/rmacdonaldsmith/georelay-go/pkg/relay"
)

// CanSee reports whether a stored message may be delivered to the reader.
//
// Visibility is gated entirely by the reader's scope and auth state: the
// storage layer already guarantees a reader only ever receives messages
// physically stored in the reader's own scope, so no cross-scope relation
// of the message itself is inspected here.
func (p *Policy) CanSee(msg *relay.Message, conn *ConnState) bool {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if !p.tenantAllowed(conn.bound) {
		return false
	}
	if p.config.RequireAuthForRead && conn.authID == "" {
		return false
	}
	return true
}

// VerifyQuery gates a subscription query before it executes in the reader's
// scope, applying the same allow-list and auth rules as the write path.
// Structural filter validation (time-range bounds, result-set ceilings) is
// owned by the storage/query layer.
//
// On refusal the returned error is a *relay.Rejection.
func (p *Policy) VerifyQuery(filters []relay.Filter, conn *ConnState) error {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if !p.tenantAllowed(conn.bound) {
		return &relay.Rejection{
			Kind:   relay.TenantNotAllowed,
			Reason: fmt.Sprintf("tenant %q is not allowed on this relay", conn.bound.Name()),
		}
	}
	if p.config.RequireAuthForRead && conn.authID == "" {
		return &relay.Rejection{
			Kind:   relay.AuthRequired,
			Reason: "authentication required for reading",
		}
	}
	return nil
}
