// Package driving defines the interfaces external actors call INTO core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// CLI, MCP and editor-integration adapters depend on these interfaces,
// and core services implement them.
//
//   - QueryService: name/hash/keyword resolution over the index
//   - IndexCoordinator: full and incremental builds, file-change ingestion
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driving
