// Package repositories implements SQLite persistence for domain entities.
//
// Key Implementations:
//   - [AttemptRepository] : journal of authorization redirect captures
//
// Sequence numbers provide stable, human-readable ordering (e.g., attempt #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
