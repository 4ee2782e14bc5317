// Package config loads the relay's process configuration. Values resolve in
// three layers: built-in defaults, then an optional YAML file, then
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyListenAddress is returned when no listen address is configured
	ErrEmptyListenAddress = errors.New("listen address cannot be empty")
	// ErrInvalidEventsPerMinute is returned when the quota is not positive
	ErrInvalidEventsPerMinute = errors.New("events per minute must be positive")
	// ErrInvalidBaseDomainParts is returned when the base domain part count is not positive
	ErrInvalidBaseDomainParts = errors.New("base domain parts must be positive")
)

// Config holds the relay server's process configuration.
type Config struct {
	// ListenAddress is the address the HTTP API listens on
	ListenAddress string `yaml:"listen_address"`

	// BaseDomainParts is the number of dot-separated labels in the base
	// domain; labels left of these form the tenant subdomain
	BaseDomainParts int `yaml:"base_domain_parts"`

	// JWTSecret signs authentication tokens
	JWTSecret string `yaml:"jwt_secret"`

	// AllowedTenants is the tenant allow-list (empty = all tenants allowed)
	AllowedTenants []string `yaml:"allowed_tenants"`

	// EventsPerMinute is the per-connection write quota
	EventsPerMinute int `yaml:"events_per_minute"`

	// RequireAuthForWrite rejects unauthenticated writes
	RequireAuthForWrite bool `yaml:"require_auth_for_write"`

	// RequireAuthForRead hides stored messages from unauthenticated readers
	RequireAuthForRead bool `yaml:"require_auth_for_read"`

	// StrictGeoTenants reserves named tenants for geographic traffic
	StrictGeoTenants bool `yaml:"strict_geo_tenants"`

	// GeoTenantsBypassAllowList makes valid geohash tenants self-authorizing
	GeoTenantsBypassAllowList bool `yaml:"geo_tenants_bypass_allow_list"`
}

// Default returns the built-in defaults: localhost listener, two-part base
// domain, 30 events per minute, open access, geohash tenants
// self-authorizing.
func Default() *Config {
	return &Config{
		ListenAddress:             ":8080",
		BaseDomainParts:           2,
		JWTSecret:                 "georelay-dev-secret-change-in-production",
		EventsPerMinute:           30,
		GeoTenantsBypassAllowList: true,
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment overrides, in that order. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays GEORELAY_* environment variables onto the config.
func (c *Config) applyEnv() error {
	if v := os.Getenv("GEORELAY_LISTEN"); v != "" {
		c.ListenAddress = v
	}
	if v := os.Getenv("GEORELAY_BASE_DOMAIN_PARTS"); v != "" {
		parts, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GEORELAY_BASE_DOMAIN_PARTS: %w", err)
		}
		c.BaseDomainParts = parts
	}
	if v := os.Getenv("GEORELAY_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("GEORELAY_ALLOWED_TENANTS"); v != "" {
		names := strings.Split(v, ",")
		c.AllowedTenants = c.AllowedTenants[:0]
		for _, name := range names {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				c.AllowedTenants = append(c.AllowedTenants, trimmed)
			}
		}
	}
	if v := os.Getenv("GEORELAY_EVENTS_PER_MINUTE"); v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GEORELAY_EVENTS_PER_MINUTE: %w", err)
		}
		c.EventsPerMinute = rate
	}

	boolVars := []struct {
		name   string
		target *bool
	}{
		{"GEORELAY_REQUIRE_AUTH_FOR_WRITE", &c.RequireAuthForWrite},
		{"GEORELAY_REQUIRE_AUTH_FOR_READ", &c.RequireAuthForRead},
		{"GEORELAY_STRICT_GEO_TENANTS", &c.StrictGeoTenants},
		{"GEORELAY_GEO_BYPASS_ALLOW_LIST", &c.GeoTenantsBypassAllowList},
	}
	for _, bv := range boolVars {
		if v := os.Getenv(bv.name); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", bv.name, err)
			}
			*bv.target = parsed
		}
	}
	return nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return ErrEmptyListenAddress
	}
	if c.EventsPerMinute <= 0 {
		return ErrInvalidEventsPerMinute
	}
	if c.BaseDomainParts <= 0 {
		return ErrInvalidBaseDomainParts
	}
	return nil
}
