package relay

import "time"

// Filter describes a subscription query over stored messages. Structural
// validation of bounds (time ranges, result-set ceilings) is owned by the
// storage/query layer; the admission core only gates whether the query may
// execute in the reader's scope at all.
type Filter struct {
	// Authors restricts results to the given author identities (empty = all)
	Authors []string

	// Since restricts results to messages created at or after this time
	Since time.Time

	// Until restricts results to messages created before this time
	Until time.Time

	// Limit caps the number of results (0 = store default)
	Limit int
}

// MatchesMessage reports whether a stored message satisfies the filter's
// author and time constraints. Limit is a result-set concern, not a
// per-message one, and is ignored here.
func (f Filter) MatchesMessage(msg *Message) bool {
	if len(f.Authors) > 0 {
		found := false
		for _, a := range f.Authors {
			if a == msg.Author {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.Since.IsZero() && msg.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !msg.CreatedAt.Before(f.Until) {
		return false
	}
	return true
}
