// Package rules implements the classification layer: given a file and a
// sorting mode, decide which destination category it belongs to.
//
// Each sorting mode is one Mode implementation carrying only the
// parameters it needs. Rules inside a mode are ordered and first match
// wins; a file nothing matches lands in the mode's fallback bucket, so
// classification never fails a batch.
package rules
