package domain

import "time"

// FileKind classifies a tracked resource file.
type FileKind string

const (
	// FileMaster is a top-level resource file declaring messages and
	// referencing fragments and bundles.
	FileMaster FileKind = "master"

	// FileFragment is a file included by reference from a master file.
	FileFragment FileKind = "fragment"

	// FileBundle is a per-language translation bundle.
	FileBundle FileKind = "bundle"
)

// File is one tracked resource file. Paths are always stored
// project-relative so the index survives a checkout moving between
// machines or directories.
type File struct {
	// Path is the project-relative path (primary key).
	Path string

	// Kind classifies the file.
	Kind FileKind

	// Lang is set for bundles only.
	Lang string

	// ParentPath points a fragment at its defining master file.
	// Empty for masters and bundles.
	ParentPath string

	// ModTime is the file's modification time at indexing.
	ModTime time.Time

	// IndexedAt is when the file was last (re)indexed.
	IndexedAt time.Time
}

// FragmentRef is a forward reference from a master or fragment file to an
// included fragment, as written in source (a relative path).
type FragmentRef struct {
	// Path is the reference verbatim, relative to the referencing file.
	Path string
}

// BundleRef is a forward reference declaring a per-language translation
// bundle.
type BundleRef struct {
	// Lang is the declared language code.
	Lang string

	// Path is the reference verbatim, relative to the referencing file.
	Path string
}
