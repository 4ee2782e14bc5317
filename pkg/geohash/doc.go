// Package geohash provides validation and normalization for geohash strings
// used in location-based message routing.
//
// A geohash names a rectangular geographic grid cell using a 32-character
// base-32 subset alphabet. GeoRelay routes messages to exact geohash scopes
// only - there is no hierarchical propagation between cells of different
// precision.
//
// The package exposes:
//   - Validate / Normalize: syntactic checks plus lowercase canonicalization
//   - ValidateStrict: syntactic checks plus a real geographic decode
//   - IsTenantName: whether a tenant name should be treated as a geographic
//     scope rather than a regular named tenant
//   - ExtractTags: pulls normalized geohashes out of a message's tag list
//
// All functions are pure and safe for concurrent use.
package geohash
