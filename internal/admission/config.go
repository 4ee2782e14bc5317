package admission

import (
	"errors"
)

var (
	// ErrNilConfig is returned when a policy is built without a configuration
	ErrNilConfig = errors.New("config cannot be nil")
	// ErrInvalidRateLimit is returned when the per-minute quota is not positive
	ErrInvalidRateLimit = errors.New("events per minute must be positive")
)

// Config holds the static admission policy configuration. It is shared by
// immutable reference across all connections; every knob is independently
// toggle-able.
type Config struct {
	// AllowedTenants is the tenant allow-list. When non-empty, a connection
	// bound to a named, non-geographic scope must appear here to be
	// reachable at all. Empty means all tenants are allowed.
	AllowedTenants map[string]bool

	// RequireAuthForWrite rejects writes from unauthenticated connections
	// outright, independent of scope checks.
	RequireAuthForWrite bool

	// RequireAuthForRead makes stored messages invisible to, and queries
	// unexecutable by, unauthenticated connections.
	RequireAuthForRead bool

	// EventsPerMinute is the write-side sliding-window quota, uniform
	// across all scopes.
	EventsPerMinute int

	// StrictGeoTenants reserves named tenant partitions for geographic
	// traffic: a connection bound to a named scope that is not a valid
	// geohash rejects every write unconditionally. When off, named scopes
	// behave as generic tenants regardless of geohash validity.
	StrictGeoTenants bool

	// GeoTenantsBypassAllowList makes syntactically valid geohash scopes
	// self-authorizing: they are admitted even when absent from
	// AllowedTenants. This is an explicit trust decision; disable it to
	// subject geographic tenants to the allow-list like any other tenant.
	GeoTenantsBypassAllowList bool
}

// NewConfig creates an admission configuration with safe defaults:
// no allow-list, no auth requirements, 30 events per minute, geohash
// tenants self-authorizing.
func NewConfig() *Config {
	return &Config{
		AllowedTenants:            make(map[string]bool),
		EventsPerMinute:           30,
		GeoTenantsBypassAllowList: true,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.EventsPerMinute <= 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

// WithAllowedTenants sets the tenant allow-list from a slice of names.
func (c *Config) WithAllowedTenants(names []string) *Config {
	c.AllowedTenants = make(map[string]bool, len(names))
	for _, name := range names {
		c.AllowedTenants[name] = true
	}
	return c
}

// WithRateLimit sets the per-connection events-per-minute quota.
func (c *Config) WithRateLimit(eventsPerMinute int) *Config {
	c.EventsPerMinute = eventsPerMinute
	return c
}

// WithAuthRequired sets the write and read authentication requirements.
func (c *Config) WithAuthRequired(write, read bool) *Config {
	c.RequireAuthForWrite = write
	c.RequireAuthForRead = read
	return c
}

// WithStrictGeoTenants toggles strict geographic tenant mode.
func (c *Config) WithStrictGeoTenants(strict bool) *Config {
	c.StrictGeoTenants = strict
	return c
}
