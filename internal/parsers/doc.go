// Package parsers provides implementations of the DocumentParser and
// BundleParser interfaces for the localization resource formats, plus the
// mixed-content decoding shared between them.
//
// Parsers are injected into the index coordinator at startup.
package parsers
