package geohash

import (
	"strings"

	gh "github.com/mmcloughlin/geohash"
)

// MaxLength is the maximum allowed geohash precision.
// Seven characters resolve to roughly a 152m cell.
const MaxLength = 7

// alphabet is the set of valid geohash characters. Note that a, i, l and o
// are deliberately absent from the geohash base-32 encoding.
const alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// Validate reports whether s is a syntactically valid geohash.
//
// A valid geohash is non-empty, at most MaxLength characters long, and
// composed only of alphabet characters. Validation is case-insensitive;
// use Normalize to obtain the canonical lowercase form.
func Validate(s string) bool {
	if len(s) == 0 || len(s) > MaxLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if !strings.ContainsRune(alphabet, rune(c)) {
			return false
		}
	}
	return true
}

// Normalize returns the canonical lowercase form of s.
// The second return value is false if s is not a valid geohash.
func Normalize(s string) (string, bool) {
	if !Validate(s) {
		return "", false
	}
	return strings.ToLower(s), true
}

// ValidateStrict reports whether s is a valid geohash that also decodes to a
// real latitude/longitude pair and bounding box. This rejects strings that
// pass the character check but do not represent a geographic location.
func ValidateStrict(s string) bool {
	norm, ok := Normalize(s)
	if !ok {
		return false
	}
	if err := gh.Validate(norm); err != nil {
		return false
	}
	box := gh.BoundingBox(norm)
	return box.MaxLat >= box.MinLat && box.MaxLng >= box.MinLng
}

// IsTenantName reports whether name should be treated as a geographic tenant
// partition rather than a regular named tenant. Geographic tenants must pass
// strict validation so that only real grid cells are self-authorizing.
func IsTenantName(name string) bool {
	return ValidateStrict(name)
}
