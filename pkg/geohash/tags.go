package geohash

// TagMarker is the reserved first field of a location tag.
const TagMarker = "g"

// ExtractTags returns the normalized geohashes declared by a message's tag
// list, in declaration order.
//
// A tag is a location tag if its first field is TagMarker and a second field
// is present. Tags that are malformed or whose value fails validation are
// silently skipped: a bad location tag is treated as absent, not as a
// protocol violation. Which extracted value is semantically significant is
// the caller's concern; this function does not special-case the first entry.
func ExtractTags(tags [][]string) []string {
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		if len(tag) < 2 || tag[0] != TagMarker {
			continue
		}
		if norm, ok := Normalize(tag[1]); ok {
			result = append(result, norm)
		}
	}
	return result
}
