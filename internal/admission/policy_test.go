package admission

import (
	"testing"
	"time"

	"github.com/rmacdonaldsmith/georelay-go/pkg/relay"
	"github.com/rmacdonaldsmith/georelay-go/pkg/scope"
)

func newTestPolicy(t *testing.T, config *Config) *Policy {
	t.Helper()
	policy, err := NewPolicy(config)
	if err != nil {
		t.Fatalf("Expected no error creating policy, got %v", err)
	}
	return policy
}

func namedScope(t *testing.T, name string) scope.Scope {
	t.Helper()
	s, err := scope.Named(name)
	if err != nil {
		t.Fatalf("Expected no error creating scope %q, got %v", name, err)
	}
	return s
}

func TestNewPolicy_NilConfig(t *testing.T) {
	if _, err := NewPolicy(nil); err != ErrNilConfig {
		t.Errorf("Expected ErrNilConfig, got %v", err)
	}
}

func TestNewPolicy_InvalidConfig(t *testing.T) {
	config := NewConfig().WithRateLimit(0)
	if _, err := NewPolicy(config); err == nil {
		t.Error("Expected error for zero rate limit")
	}
}

// TestAdmit_RootNoTag: a message with no location tag on the root connection
// is accepted into the root scope.
func TestAdmit_RootNoTag(t *testing.T) {
	policy := newTestPolicy(t, NewConfig())
	conn := NewConnState(scope.Root())

	msg := relay.NewMessage("author1", []byte("ambient"), nil)
	outcome := policy.Admit(msg, conn)

	if !outcome.Accepted() {
		t.Fatalf("Expected acceptance, got rejection: %v", outcome.Rejection)
	}
	if len(outcome.Directives) != 1 {
		t.Fatalf("Expected 1 directive, got %d", len(outcome.Directives))
	}
	if !outcome.Directives[0].Target.IsRoot() {
		t.Errorf("Expected root target scope, got %v", outcome.Directives[0].Target)
	}
}

// TestAdmit_RootTagged: root never stores geo-tagged content; the rejection
// names the tagged cell as the correct destination.
func TestAdmit_RootTagged(t *testing.T) {
	policy := newTestPolicy(t, NewConfig())
	conn := NewConnState(scope.Root())

	msg := relay.NewMessage("author1", []byte("sf meetup"), [][]string{{"g", "drt2z"}})
	outcome := policy.Admit(msg, conn)

	if outcome.Accepted() {
		t.Fatal("Expected rejection for geo-tagged message on root")
	}
	if outcome.Rejection.Kind != relay.WrongScope {
		t.Errorf("Expected kind %q, got %q", relay.WrongScope, outcome.Rejection.Kind)
	}
	if outcome.Rejection.Hint != "drt2z" {
		t.Errorf("Expected redirect hint 'drt2z', got %q", outcome.Rejection.Hint)
	}
}

// TestAdmit_MatchingTenant: tag matches the bound scope; the write lands
// where the connection is attached.
func TestAdmit_MatchingTenant(t *testing.T) {
	policy := newTestPolicy(t, NewConfig())
	conn := NewConnState(namedScope(t, "drt2z"))

	msg := relay.NewMessage("author1", []byte("hello"), [][]string{{"g", "drt2z"}})
	outcome := policy.Admit(msg, conn)

	if !outcome.Accepted() {
		t.Fatalf("Expected acceptance, got rejection: %v", outcome.Rejection)
	}
	if outcome.Directives[0].Target.Name() != "drt2z" {
		t.Errorf("Expected target scope drt2z, got %v", outcome.Directives[0].Target)
	}
}

// TestAdmit_MatchingTenant_CaseNormalized: an uppercase tag still matches
// its lowercase scope.
func TestAdmit_MatchingTenant_CaseNormalized(t *testing.T) {
	policy := newTestPolicy(t, NewConfig())
	conn := NewConnState(namedScope(t, "drt2z"))

	msg := relay.NewMessage("author1", []byte("hello"), [][]string{{"g", "DRT2Z"}})
	outcome := policy.Admit(msg, conn)

	if !outcome.Accepted() {
		t.Fatalf("Expected acceptance for case-folded tag, got %v", outcome.Rejection)
	}
}

// TestAdmit_MismatchedTenant: the rejection hint names the tag's cell, not
// the bound scope.
func TestAdmit_MismatchedTenant(t *testing.T) {
	policy := newTestPolicy(t, NewConfig())
	conn := NewConnState(namedScope(t, "9q8yy"))

	msg := relay.NewMessage("author1", []byte("hello"), [][]string{{"g", "drt2z"}})
	outcome := policy.Admit(msg, conn)

	if outcome.Accepted() {
		t.Fatal("Expected rejection for mismatched tag")
	}
	if outcome.Rejection.Kind != relay.WrongScope {
		t.Errorf("Expected kind %q, got %q", relay.WrongScope, outcome.Rejection.Kind)
	}
	if outcome.Rejection.Hint != "drt2z" {
		t.Errorf("Expected redirect hint 'drt2z', got %q", outcome.Rejection.Hint)
	}
}

// TestAdmit_FirstTagWins: only the first valid location tag is consulted;
// later tags never influence the decision.
func TestAdmit_FirstTagWins(t *testing.T) {
	tags := [][]string{{"g", "drt2z"}, {"g", "9q8yy"}}

	t.Run("matches_first", func(t *testing.T) {
		policy := newTestPolicy(t, NewConfig())
		conn := NewConnState(namedScope(t, "drt2z"))
		outcome := policy.Admit(relay.NewMessage("author1", nil, tags), conn)
		if !outcome.Accepted() {
			t.Fatalf("Expected acceptance on first tag, got %v", outcome.Rejection)
		}
	})

	t.Run("second_tag_never_consulted", func(t *testing.T) {
		policy := newTestPolicy(t, NewConfig())
		conn := NewConnState(namedScope(t, "9q8yy"))
		outcome := policy.Admit(relay.NewMessage("author1", nil, tags), conn)
		if outcome.Accepted() {
			t.Fatal("Expected rejection: bound scope matches only the second tag")
		}
		if outcome.Rejection.Hint != "drt2z" {
			t.Errorf("Expected hint from first tag 'drt2z', got %q", outcome.Rejection.Hint)
		}
	})
}

// TestAdmit_MalformedTagsIgnored: malformed location tags are treated as
// absent, so a message carrying only malformed tags stores into the bound
// scope like an untagged one.
func TestAdmit_MalformedTagsIgnored(t *testing.T) {
	policy := newTestPolicy(t, NewConfig())
	conn := NewConnState(namedScope(t, "drt2z"))

	msg := relay.NewMessage("author1", nil, [][]string{{"g", "invalid!"}, {"g"}})
	outcome := policy.Admit(msg, conn)

	if !outcome.Accepted() {
		t.Fatalf("Expected acceptance, got %v", outcome.Rejection)
	}
	if outcome.Directives[0].Target.Name() != "drt2z" {
		t.Errorf("Expected bound scope target, got %v", outcome.Directives[0].Target)
	}
}

func TestAdmit_TenantAllowList(t *testing.T) {
	config := NewConfig().WithAllowedTenants([]string{"team1"})
	policy := newTestPolicy(t, config)

	t.Run("listed_tenant_allowed", func(t *testing.T) {
		conn := NewConnState(namedScope(t, "team1"))
		outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
		if !outcome.Accepted() {
			t.Fatalf("Expected acceptance for listed tenant, got %v", outcome.Rejection)
		}
	})

	t.Run("unlisted_tenant_rejected", func(t *testing.T) {
		conn := NewConnState(namedScope(t, "team2"))
		outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
		if outcome.Accepted() {
			t.Fatal("Expected rejection for unlisted tenant")
		}
		if outcome.Rejection.Kind != relay.TenantNotAllowed {
			t.Errorf("Expected kind %q, got %q", relay.TenantNotAllowed, outcome.Rejection.Kind)
		}
	})

	t.Run("geohash_tenant_bypasses_list", func(t *testing.T) {
		conn := NewConnState(namedScope(t, "drt2z"))
		outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
		if !outcome.Accepted() {
			t.Fatalf("Expected geohash tenant to bypass allow-list, got %v", outcome.Rejection)
		}
	})

	t.Run("root_always_allowed", func(t *testing.T) {
		conn := NewConnState(scope.Root())
		outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
		if !outcome.Accepted() {
			t.Fatalf("Expected root to be allowed, got %v", outcome.Rejection)
		}
	})
}

// TestAdmit_GeoBypassDisabled: with the self-authorizing flag off, geohash
// scopes are subject to the allow-list like any other tenant.
func TestAdmit_GeoBypassDisabled(t *testing.T) {
	config := NewConfig().WithAllowedTenants([]string{"team1"})
	config.GeoTenantsBypassAllowList = false
	policy := newTestPolicy(t, config)

	conn := NewConnState(namedScope(t, "drt2z"))
	outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
	if outcome.Accepted() {
		t.Fatal("Expected unlisted geohash tenant to be rejected when bypass is off")
	}
	if outcome.Rejection.Kind != relay.TenantNotAllowed {
		t.Errorf("Expected kind %q, got %q", relay.TenantNotAllowed, outcome.Rejection.Kind)
	}
}

// TestAdmit_EmptyAllowListAdmitsAll: no allow-list means all tenants reachable.
func TestAdmit_EmptyAllowListAdmitsAll(t *testing.T) {
	policy := newTestPolicy(t, NewConfig())
	conn := NewConnState(namedScope(t, "anyteam"))
	outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
	if !outcome.Accepted() {
		t.Fatalf("Expected acceptance with empty allow-list, got %v", outcome.Rejection)
	}
}

func TestAdmit_AuthRequiredForWrite(t *testing.T) {
	config := NewConfig().WithAuthRequired(true, false)
	policy := newTestPolicy(t, config)

	conn := NewConnState(scope.Root())
	outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
	if outcome.Accepted() {
		t.Fatal("Expected rejection for unauthenticated write")
	}
	if outcome.Rejection.Kind != relay.AuthRequired {
		t.Errorf("Expected kind %q, got %q", relay.AuthRequired, outcome.Rejection.Kind)
	}

	conn.Authenticate("client-1")
	outcome = policy.Admit(relay.NewMessage("author1", nil, nil), conn)
	if !outcome.Accepted() {
		t.Fatalf("Expected acceptance after authentication, got %v", outcome.Rejection)
	}
}

// TestAdmit_StrictGeoTenants: in strict mode a non-geohash named tenant
// accepts nothing; geohash tenants and root are unaffected.
func TestAdmit_StrictGeoTenants(t *testing.T) {
	config := NewConfig().WithStrictGeoTenants(true)
	policy := newTestPolicy(t, config)

	t.Run("regular_tenant_rejects_everything", func(t *testing.T) {
		conn := NewConnState(namedScope(t, "team1"))
		outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
		if outcome.Accepted() {
			t.Fatal("Expected rejection in strict mode for non-geohash tenant")
		}
		if outcome.Rejection.Kind != relay.InvalidTenantScope {
			t.Errorf("Expected kind %q, got %q", relay.InvalidTenantScope, outcome.Rejection.Kind)
		}
	})

	t.Run("geohash_tenant_unaffected", func(t *testing.T) {
		conn := NewConnState(namedScope(t, "drt2z"))
		outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
		if !outcome.Accepted() {
			t.Fatalf("Expected acceptance for geohash tenant, got %v", outcome.Rejection)
		}
	})

	t.Run("root_unaffected", func(t *testing.T) {
		conn := NewConnState(scope.Root())
		outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
		if !outcome.Accepted() {
			t.Fatalf("Expected acceptance for root, got %v", outcome.Rejection)
		}
	})
}

// TestAdmit_RateLimit: quota 3/minute; the 4th message in the window is
// rejected and a message after window expiry is accepted again.
func TestAdmit_RateLimit(t *testing.T) {
	config := NewConfig().WithRateLimit(3)
	policy := newTestPolicy(t, config)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	policy.now = func() time.Time { return current }

	conn := NewConnState(scope.Root())

	for i := 0; i < 3; i++ {
		outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
		if !outcome.Accepted() {
			t.Fatalf("Expected message %d to be accepted, got %v", i+1, outcome.Rejection)
		}
	}

	outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
	if outcome.Accepted() {
		t.Fatal("Expected 4th message in window to be rejected")
	}
	if outcome.Rejection.Kind != relay.RateLimited {
		t.Errorf("Expected kind %q, got %q", relay.RateLimited, outcome.Rejection.Kind)
	}

	// Advance past the window: the counter resets and traffic resumes.
	current = current.Add(61 * time.Second)
	outcome = policy.Admit(relay.NewMessage("author1", nil, nil), conn)
	if !outcome.Accepted() {
		t.Fatalf("Expected acceptance after window reset, got %v", outcome.Rejection)
	}
}

// TestAdmit_RateLimitPerConnection: connections do not share rate windows.
func TestAdmit_RateLimitPerConnection(t *testing.T) {
	config := NewConfig().WithRateLimit(1)
	policy := newTestPolicy(t, config)

	connA := NewConnState(scope.Root())
	connB := NewConnState(scope.Root())

	if outcome := policy.Admit(relay.NewMessage("a", nil, nil), connA); !outcome.Accepted() {
		t.Fatalf("Expected first message on connA to pass, got %v", outcome.Rejection)
	}
	if outcome := policy.Admit(relay.NewMessage("a", nil, nil), connA); outcome.Accepted() {
		t.Fatal("Expected second message on connA to be rate limited")
	}
	if outcome := policy.Admit(relay.NewMessage("b", nil, nil), connB); !outcome.Accepted() {
		t.Fatalf("Expected connB to have its own window, got %v", outcome.Rejection)
	}
}

// TestAdmit_EvaluationOrder: earlier gates short-circuit later ones. An
// unlisted tenant is rejected as TenantNotAllowed even when auth is also
// missing, and a rate-limited connection is reported as RateLimited even
// when the message also carries a mismatched tag.
func TestAdmit_EvaluationOrder(t *testing.T) {
	t.Run("allow_list_before_auth", func(t *testing.T) {
		config := NewConfig().WithAllowedTenants([]string{"team1"}).WithAuthRequired(true, false)
		policy := newTestPolicy(t, config)
		conn := NewConnState(namedScope(t, "team2"))
		outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
		if outcome.Rejection == nil || outcome.Rejection.Kind != relay.TenantNotAllowed {
			t.Errorf("Expected TenantNotAllowed first, got %v", outcome.Rejection)
		}
	})

	t.Run("rate_limit_before_scope_check", func(t *testing.T) {
		config := NewConfig().WithRateLimit(1)
		policy := newTestPolicy(t, config)
		conn := NewConnState(scope.Root())
		policy.Admit(relay.NewMessage("author1", nil, nil), conn)

		msg := relay.NewMessage("author1", nil, [][]string{{"g", "drt2z"}})
		outcome := policy.Admit(msg, conn)
		if outcome.Rejection == nil || outcome.Rejection.Kind != relay.RateLimited {
			t.Errorf("Expected RateLimited before WrongScope, got %v", outcome.Rejection)
		}
	})
}

// TestAdmit_RejectedTagStillCountsTowardQuota: mismatched-tag messages reach
// the rate limiter before the scope check, so they consume quota.
func TestAdmit_RejectedTagStillCountsTowardQuota(t *testing.T) {
	config := NewConfig().WithRateLimit(2)
	policy := newTestPolicy(t, config)
	conn := NewConnState(scope.Root())

	tagged := [][]string{{"g", "drt2z"}}
	for i := 0; i < 2; i++ {
		outcome := policy.Admit(relay.NewMessage("author1", nil, tagged), conn)
		if outcome.Rejection == nil || outcome.Rejection.Kind != relay.WrongScope {
			t.Fatalf("Expected WrongScope, got %v", outcome.Rejection)
		}
	}

	outcome := policy.Admit(relay.NewMessage("author1", nil, nil), conn)
	if outcome.Rejection == nil || outcome.Rejection.Kind != relay.RateLimited {
		t.Errorf("Expected quota consumed by rejected messages, got %v", outcome.Rejection)
	}
}

func TestConnState_EventsProcessed(t *testing.T) {
	policy := newTestPolicy(t, NewConfig())
	conn := NewConnState(scope.Root())

	policy.Admit(relay.NewMessage("author1", nil, nil), conn)
	policy.Admit(relay.NewMessage("author1", nil, nil), conn)

	if got := conn.EventsProcessed(); got != 2 {
		t.Errorf("Expected 2 events processed, got %d", got)
	}
}
