package admission

import "testing"

func TestNewConfig_Defaults(t *testing.T) {
	config := NewConfig()

	if config.EventsPerMinute != 30 {
		t.Errorf("Expected default rate limit 30, got %d", config.EventsPerMinute)
	}
	if len(config.AllowedTenants) != 0 {
		t.Error("Expected empty allow-list by default")
	}
	if config.RequireAuthForWrite || config.RequireAuthForRead {
		t.Error("Expected auth requirements off by default")
	}
	if config.StrictGeoTenants {
		t.Error("Expected strict geo-tenant mode off by default")
	}
	if !config.GeoTenantsBypassAllowList {
		t.Error("Expected geohash tenants to be self-authorizing by default")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := NewConfig().WithRateLimit(0).Validate(); err != ErrInvalidRateLimit {
		t.Errorf("Expected ErrInvalidRateLimit for zero quota, got %v", err)
	}
	if err := NewConfig().WithRateLimit(-5).Validate(); err != ErrInvalidRateLimit {
		t.Errorf("Expected ErrInvalidRateLimit for negative quota, got %v", err)
	}
}

func TestConfig_WithAllowedTenants(t *testing.T) {
	config := NewConfig().WithAllowedTenants([]string{"team1", "team2"})

	if !config.AllowedTenants["team1"] || !config.AllowedTenants["team2"] {
		t.Error("Expected both tenants in the allow-list")
	}
	if config.AllowedTenants["team3"] {
		t.Error("Expected team3 to be absent from the allow-list")
	}
}
