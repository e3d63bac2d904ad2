// Package domain defines the core business entities for Lingua.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Node: A tagged-variant AST node of a parsed message body
//   - Message: An indexed message keyed by its content hash
//   - Translation: A per-language translation of a message
//   - File: A tracked resource file (master, fragment or bundle)
//   - BuildProgress: Shared build state used for cross-process arbitration
//   - Workspace: Project-root-relative path resolution
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
