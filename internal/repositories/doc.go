// Package repositories implements SQLite persistence for curate run history.
//
// Key Implementations:
//   - [RunRepository] : Run records with their per-section outcomes
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
