// Package repositories implements SQLite persistence for the render history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [RenderRepository] : Render history with backend render ID lookups and status/job filtering
//
// Sequence numbers provide stable, human-readable ordering (e.g., render #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
