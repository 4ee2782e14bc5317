package scope

import (
	"errors"

	"github.com/rmacdonaldsmith/georelay-go/pkg/geohash"
)

// ErrEmptyName is returned when a named scope is constructed with an empty name.
var ErrEmptyName = errors.New("scope name cannot be empty")

// Scope identifies a tenant storage/visibility partition.
// The zero value is the root (unscoped) partition.
type Scope struct {
	named bool
	name  string
}

// Root returns the unscoped root partition.
func Root() Scope {
	return Scope{}
}

// Named constructs a named partition. The name need not be a valid geohash;
// arbitrary tenant names are supported, with geohash tenants recognized via
// IsGeohash. Fails with ErrEmptyName if name is empty.
func Named(name string) (Scope, error) {
	if name == "" {
		return Scope{}, ErrEmptyName
	}
	return Scope{named: true, name: name}, nil
}

// IsRoot reports whether s is the root partition.
func (s Scope) IsRoot() bool {
	return !s.named
}

// Name returns the partition name, or the empty string for the root scope.
func (s Scope) Name() string {
	return s.name
}

// Equal reports whether two scopes identify the same partition.
// Scopes are equal iff both are root, or both are named with identical name.
// There is no prefix or parent relation between scopes.
func (s Scope) Equal(other Scope) bool {
	return s == other
}

// IsGeohash reports whether s is a named partition whose name is a valid
// geographic grid cell under strict geohash validation.
func (s Scope) IsGeohash() bool {
	return s.named && geohash.IsTenantName(s.name)
}

// String renders the scope for logs and client-facing hints.
func (s Scope) String() string {
	if !s.named {
		return "root"
	}
	return s.name
}
