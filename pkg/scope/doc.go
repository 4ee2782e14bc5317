// Package scope models isolated tenant partitions for the relay.
//
// A Scope is either the root (unscoped) partition or a named partition.
// Named scopes are commonly geohash grid cells but arbitrary tenant names
// are supported for non-geographic multi-tenancy.
//
// Scopes have no ordering or hierarchy: Named("abc") and Named("abcd") are
// unrelated partitions even though one name is a lexical extension of the
// other. A scope is attached to a connection at routing time and to a stored
// message at write time, and is immutable in both cases.
package scope
