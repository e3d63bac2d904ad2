package domain

import "time"

// Message represents one unique unit of translatable content.
// It is keyed by its content hash rather than its symbolic name:
// two differently named messages with identical translatable content
// legitimately share one row. The hash is a pure function of the
// presentable text and the meaning; it never depends on the name.
type Message struct {
	// IDHash is the content-hash identifier (decimal string).
	IDHash string

	// Name is the symbolic identifier as last observed in source.
	Name string

	// Presentable is the canonical hashable text.
	Presentable string

	// Translatable is the placeholder-preserving text projection.
	Translatable string

	// Description is the optional translator-facing description.
	Description string

	// Meaning is the optional disambiguating meaning.
	Meaning string

	// FilePath is the project-relative path of the master or fragment
	// file defining this message.
	FilePath string

	// StartLine and EndLine are the 1-based line span of the defining
	// element, for editor navigation.
	StartLine int
	EndLine   int

	// UpdatedAt is when the row was last written.
	UpdatedAt time.Time
}

// Alias maps a symbolic name to the content hash currently backing it.
// Multiple names may point at the same hash; every message has at least
// one alias.
type Alias struct {
	// Name is the symbolic identifier (primary key).
	Name string

	// IDHash is the content hash the name resolves to.
	IDHash string
}

// Translation is one translated rendering of a message in one language.
type Translation struct {
	// IDHash is the content hash of the translated message.
	IDHash string

	// Lang is the language code (e.g. "fr", "pt-BR").
	Lang string

	// Text is the translated text, placeholders preserved.
	Text string

	// BundlePath is the project-relative path of the defining bundle.
	BundlePath string
}

// MessageWithTranslations is a message hydrated with every available
// translation, as returned by the query surface.
type MessageWithTranslations struct {
	Message Message

	// Translations is keyed by language code.
	Translations map[string]Translation
}

// SearchResult is a single ranked hit from a keyword search.
type SearchResult struct {
	Message Message

	// Rank orders results: 0 exact name, 1 name prefix,
	// 2 body substring, 3 translation substring.
	Rank int

	// MatchedLang is set when the hit came from a translation.
	MatchedLang string
}

// SearchPage is one page of search results with the total match count.
type SearchPage struct {
	Results []SearchResult
	Total   int
}

// CoverageStats summarises translation coverage for one language.
type CoverageStats struct {
	Lang       string
	Translated int
	Missing    int
}

// IndexStats holds whole-store counts for the stats surface.
type IndexStats struct {
	Files        int
	Masters      int
	Fragments    int
	Bundles      int
	Messages     int
	Aliases      int
	Translations int
	Languages    int
}
