// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - IndexStore: unified access to the per-project persistent index
//   - FileStore / MessageStore / TranslationStore / ProgressStore: the
//     per-concern slices of the index store
//   - DocumentParser: master/fragment file parsing
//   - BundleParser: translation bundle parsing
//   - SettingsStore: persisted tool settings
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or parser package
package driven
