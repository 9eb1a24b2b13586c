// Package store provides SQLite-backed durable storage for cohort
// checkpoints.
//
// A checkpoint is one exported group store (group.Snapshot) plus the
// simulation time it was taken at. Each checkpoint is written in a single
// transaction across these tables:
//   - checkpoints: id (UUIDv7), label, sim_time, next_group_id, digest
//   - group_types, property_definitions: the schema in registration order
//   - groups, property_values: live groups and their explicit values
//   - memberships: membership edges in join order
//
// # Critical Patterns
//
// Deterministic Reads:
//   - Every query orders by ordinal or id, so a read rebuilds the exact
//     snapshot that was written
//
// Content Digest:
//   - The digest is ir.CheckpointDigest over the canonical JSON encoding
//   - ReadCheckpoint recomputes it and fails with ErrDigestMismatch if the
//     rows no longer encode to the same bytes
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity and cascading deletes
package store
