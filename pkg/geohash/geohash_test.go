package geohash

import "testing"

// TestValidate_Precisions checks validation across all allowed precisions
func TestValidate_Precisions(t *testing.T) {
	valid := []string{"d", "dr", "drt", "drt2", "drt2z", "drt2zb", "drt2zby"}
	for _, s := range valid {
		if !Validate(s) {
			t.Errorf("Expected %q to be valid", s)
		}
	}
}

func TestValidate_CaseInsensitive(t *testing.T) {
	for _, s := range []string{"drt2zby", "DRT2ZBY", "DrT2zBy", "9Q8YYK9", "gbsuv7z"} {
		if !Validate(s) {
			t.Errorf("Expected %q to be valid regardless of case", s)
		}
	}
}

func TestValidate_Empty(t *testing.T) {
	if Validate("") {
		t.Error("Expected empty string to be invalid")
	}
}

func TestValidate_TooLong(t *testing.T) {
	for _, s := range []string{"drt2zby8", "9q8yyk9t", "gbsuv7zt4m"} {
		if Validate(s) {
			t.Errorf("Expected %q to be invalid (exceeds max length)", s)
		}
	}
}

func TestValidate_BadCharacters(t *testing.T) {
	// a, i, l, o are excluded from the geohash alphabet
	for _, s := range []string{"art2z", "dri2z", "drl2z", "dro2z", "dr!2z", "dr 2z"} {
		if Validate(s) {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}

func TestValidate_AllAlphabetCharacters(t *testing.T) {
	for _, c := range alphabet {
		s := string(c)
		if !Validate(s) {
			t.Errorf("Expected single character %q to be valid", s)
		}
		norm, ok := Normalize(s)
		if !ok || norm != s {
			t.Errorf("Expected Normalize(%q) = (%q, true), got (%q, %v)", s, s, norm, ok)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"DRT2Z", "drt2z", true},
		{"drt2z", "drt2z", true},
		{"9Q8YYK9", "9q8yyk9", true},
		{"DrT2zBy", "drt2zby", true},
		{"", "", false},
		{"drt2zby8", "", false}, // too long
		{"dr!2z", "", false},    // invalid character
	}
	for _, c := range cases {
		got, ok := Normalize(c.input)
		if ok != c.ok || got != c.want {
			t.Errorf("Normalize(%q) = (%q, %v), want (%q, %v)", c.input, got, ok, c.want, c.ok)
		}
	}
}

// TestNormalize_Idempotent verifies normalizing an already normalized
// geohash yields the same value.
func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{"DRT2Z", "9q8yy", "GbSuV7z", "u"} {
		first, ok := Normalize(s)
		if !ok {
			t.Fatalf("Expected %q to normalize", s)
		}
		second, ok := Normalize(first)
		if !ok || second != first {
			t.Errorf("Normalize not idempotent for %q: %q != %q", s, second, first)
		}
	}
}

func TestValidateStrict(t *testing.T) {
	// Real-world cells at various precisions
	for _, s := range []string{"drt2z", "9q8yy", "gbsuv", "u", "u0", "u09", "u09t", "u09tu", "u09tun", "u09tunq"} {
		if !ValidateStrict(s) {
			t.Errorf("Expected %q to pass strict validation", s)
		}
	}

	if ValidateStrict("") {
		t.Error("Expected empty string to fail strict validation")
	}
	if ValidateStrict("drt2zby8") {
		t.Error("Expected over-length string to fail strict validation")
	}
	if ValidateStrict("alice") {
		t.Error("Expected non-geohash name to fail strict validation")
	}
}

func TestMaxLengthBoundary(t *testing.T) {
	if !Validate("1234567") {
		t.Error("Expected 7-character geohash to be valid")
	}
	if norm, ok := Normalize("1234567"); !ok || norm != "1234567" {
		t.Errorf("Expected Normalize to accept 7-character geohash, got (%q, %v)", norm, ok)
	}
	if Validate("12345678") {
		t.Error("Expected 8-character geohash to be invalid")
	}
	if _, ok := Normalize("12345678"); ok {
		t.Error("Expected Normalize to reject 8-character geohash")
	}
}

func TestIsTenantName(t *testing.T) {
	// Geographic tenant names
	for _, s := range []string{"drt2z", "9q8yy", "u", "d"} {
		if !IsTenantName(s) {
			t.Errorf("Expected %q to be a geographic tenant name", s)
		}
	}

	// Regular tenant names: invalid characters, empty, or over-length
	for _, s := range []string{"team1", "alice", "", "12345678"} {
		if IsTenantName(s) {
			t.Errorf("Expected %q not to be a geographic tenant name", s)
		}
	}
}
