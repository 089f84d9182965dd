// Package executor orchestrates every user-level operation: moves,
// copies, deletions, rule-driven sorting, duplicate handling, cleanups
// and archive operations.
//
// Each request runs through the same phases: validate inputs, build a
// plan, then either report the plan (dry run) or apply it. Both paths
// append a record to the operation log before the result is returned.
// Failures during apply are per-file: the batch continues and the
// result carries the failure list. Only validation failures abort an
// operation outright, and those happen before any mutation.
//
// This is the only package that mutates the filesystem, and mutations
// within one request are strictly sequential.
package executor
