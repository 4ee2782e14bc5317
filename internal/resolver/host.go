// Package resolver derives a connection's bound scope from transport-level
// routing metadata. The only implementation resolves virtual-host subdomains
// from the HTTP Host header: traffic to drt2z.relay.example lands in the
// named scope "drt2z", traffic to relay.example lands in the root scope.
package resolver

import (
	"net"
	"strings"

	"github.com/rmacdonaldsmith/georelay-go/pkg/scope"
)

// DefaultBaseDomainParts matches a base domain of the form "example.com".
const DefaultBaseDomainParts = 2

// HostResolver implements relay.ScopeResolver against HTTP Host header
// values. Labels left of the configured base-domain part count form the
// tenant name; a bare base domain resolves to the root scope.
type HostResolver struct {
	baseDomainParts int
}

// NewHostResolver creates a resolver for a base domain with the given number
// of dot-separated parts. Non-positive values fall back to the default.
func NewHostResolver(baseDomainParts int) *HostResolver {
	if baseDomainParts <= 0 {
		baseDomainParts = DefaultBaseDomainParts
	}
	return &HostResolver{baseDomainParts: baseDomainParts}
}

// Resolve returns the scope for the given host value. Ports and trailing
// dots are stripped and hostnames are case-folded before matching. Hosts
// without a subdomain, and hosts that cannot yield a scope name, resolve to
// the root scope.
func (r *HostResolver) Resolve(host string) scope.Scope {
	if stripped, _, err := net.SplitHostPort(host); err == nil {
		host = stripped
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return scope.Root()
	}

	parts := strings.Split(host, ".")
	if len(parts) <= r.baseDomainParts {
		return scope.Root()
	}

	name := strings.Join(parts[:len(parts)-r.baseDomainParts], ".")
	s, err := scope.Named(name)
	if err != nil {
		return scope.Root()
	}
	return s
}
