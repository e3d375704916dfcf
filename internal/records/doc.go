// Package records persists image upload records in an append-only JSON Lines
// file.
//
// Each line maps a local image identity to the remote URL returned by the
// upload helper. Lookups are last-write-wins and records are never rewritten.
// Appends are serialized in-process by a mutex and across processes by an
// exclusive flock on "<path>.lock"; before writing, a store ingests lines other
// processes appended so its index never goes stale while it holds the lock.
package records
