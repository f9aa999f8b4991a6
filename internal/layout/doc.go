// Package layout defines the durable floor-plan layout record and its
// on-disk persistence.
//
// A Layout is the atomic unit of persistence: the image metadata plus the
// ordered zone sequence. Saving fully replaces the single active record
// (no versioning, no partial merge), which matches the one-floor-plan-at-
// a-time usage of the control surface. The JSON field names and two-decimal
// percentage rounding are a compatibility contract with the rendering UI
// and must not change.
package layout
