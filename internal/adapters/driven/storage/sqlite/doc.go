// Package sqlite provides a durable vector index backed by SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database file holds any number of
// named collections; a VectorIndex is bound to one of them.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// Vectors are stored as little-endian float32 BLOBs. Search is an exact cosine
// scan over the collection, ordered by score and then by insertion sequence.
//
// # Data Location
//
// By default, the database is stored at ~/.docchatter/index/index.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Writes run in a single transaction,
// so readers never observe a partially written batch (SQLite WAL mode).
package sqlite
