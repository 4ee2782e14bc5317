// Package relay defines the public types shared across the GeoRelay core:
//   - Message: a generic relayed message with identity, author, and tags
//   - StoreDirective: an instruction to persist a message into a scope
//   - Outcome / Rejection: the result of an admission decision
//   - ScopeResolver, DirectiveSink, Subscriber: interface boundaries to the
//     surrounding transport and storage collaborators
//
// The admission core never performs storage or network I/O itself; its sole
// write-path output is a sequence of store directives handed to an external
// persistence component through the DirectiveSink interface.
package relay
