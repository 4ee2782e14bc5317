package relay

import (
	"fmt"

	"github.com/rmacdonaldsmith/georelay-go/pkg/scope"
)

// RejectKind distinguishes the admission policy's rejection reasons.
type RejectKind string

const (
	// TenantNotAllowed means the connection's bound scope is excluded by
	// the tenant allow-list.
	TenantNotAllowed RejectKind = "tenant-not-allowed"

	// AuthRequired means the operation requires an authenticated identity
	// that is absent.
	AuthRequired RejectKind = "auth-required"

	// RateLimited means the connection exceeded its sliding-window quota.
	RateLimited RejectKind = "rate-limited"

	// InvalidTenantScope means strict mode is on and the bound scope is a
	// non-geohash named partition, which accepts no writes at all.
	InvalidTenantScope RejectKind = "invalid-tenant-scope"

	// WrongScope means the message declares a location tag that does not
	// match the bound scope. The rejection carries a redirect hint naming
	// the correct scope wherever determinable.
	WrongScope RejectKind = "wrong-scope"
)

// Rejection is a typed admission refusal. It is returned to the caller, never
// treated as fatal: a rejected message never closes the connection, and no
// message the policy rejects is ever persisted.
type Rejection struct {
	// Kind is the machine-distinguishable rejection reason
	Kind RejectKind

	// Reason is human-readable text suitable for surfacing to the remote
	// client directly
	Reason string

	// Hint names the correct scope for WrongScope rejections, empty otherwise
	Hint string
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Kind, r.Reason)
}

// StoreDirective instructs the persistence layer to store a message into a
// target scope. Metadata is optional and opaque to the policy.
type StoreDirective struct {
	Message  *Message
	Target   scope.Scope
	Metadata map[string]string
}

// Outcome is the result of one admission decision: either an ordered list of
// store directives, or a rejection. Exactly one of the two is set.
type Outcome struct {
	Directives []StoreDirective
	Rejection  *Rejection
}

// Accept builds an accepting outcome from store directives.
func Accept(directives ...StoreDirective) Outcome {
	return Outcome{Directives: directives}
}

// Reject builds a rejecting outcome.
func Reject(kind RejectKind, reason string) Outcome {
	return Outcome{Rejection: &Rejection{Kind: kind, Reason: reason}}
}

// RejectWithHint builds a rejecting outcome carrying a redirect hint naming
// the correct destination scope.
func RejectWithHint(kind RejectKind, reason, hint string) Outcome {
	return Outcome{Rejection: &Rejection{Kind: kind, Reason: reason, Hint: hint}}
}

// Accepted reports whether the outcome admits the message.
func (o Outcome) Accepted() bool {
	return o.Rejection == nil
}
