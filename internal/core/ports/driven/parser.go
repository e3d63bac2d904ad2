package driven

import "github.com/custodia-labs/lingua-cli/internal/core/domain"

// ParsedMessage is one message element lifted out of a master or
// fragment file.
type ParsedMessage struct {
	// Name is the symbolic identifier. Elements without one are skipped
	// by the parser and never reach this type.
	Name string

	// Description is the translator-facing description, if any.
	Description string

	// Meaning is the disambiguating meaning, if any.
	Meaning string

	// Nodes is the parsed body.
	Nodes []domain.Node

	// StartLine and EndLine are the 1-based line span of the element,
	// located by an independent pass over the raw text.
	StartLine int
	EndLine   int
}

// ParseResult is everything a single master or fragment file yields.
type ParseResult struct {
	// Messages in document order.
	Messages []ParsedMessage

	// Fragments are <part> include references.
	Fragments []domain.FragmentRef

	// Bundles are per-language translation bundle declarations.
	Bundles []domain.BundleRef
}

// DocumentParser parses master and fragment files. The same parse handles
// both; attribution of fragment messages to a master file is the
// coordinator's concern.
type DocumentParser interface {
	// Parse parses file content. path is used for error reporting only.
	Parse(path string, content []byte) (*ParseResult, error)
}

// BundleTranslation is one hash-to-text record from a translation bundle,
// rendered with the placeholder-preserving projection.
type BundleTranslation struct {
	// ID is the content-hash identifier, verbatim from the bundle.
	ID string

	// Text is the translated text, placeholders preserved.
	Text string
}

// BundleResult is everything a translation bundle yields.
type BundleResult struct {
	// Lang is the bundle's declared language code.
	Lang string

	Translations []BundleTranslation
}

// BundleParser parses per-language translation bundles.
type BundleParser interface {
	// ParseBundle parses bundle content. path is for error reporting.
	ParseBundle(path string, content []byte) (*BundleResult, error)
}
