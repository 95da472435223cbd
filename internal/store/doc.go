// Package store archives published graph generations in SQLite.
//
// Every successful publish can be recorded as a generation: the active graph
// in the binary file format (zstd-compressed) together with a msgpack summary
// of its evaluation plan. Generations are keyed by (session_id, version), so
// re-archiving the same publish is a no-op.
//
// # Ordering
//
// Listings order by the autoincrement id, never by created_at. The timestamp
// is for display only.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Restoring a generation decodes through graphio.Deserialize, so archived
// graphs receive the same sanitization as files loaded from disk.
package store
