// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - FileStore: Tracked resource file persistence
//   - MessageStore: Message and alias persistence, keyword search
//   - TranslationStore: Per-language translation persistence
//   - ProgressStore: Build-progress record and processed-file log
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, each project's index is stored under ~/.lingua/data/, one
// database file per project root.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode, which is what makes the shared build-progress record
// readable from concurrent processes.
package sqlite
