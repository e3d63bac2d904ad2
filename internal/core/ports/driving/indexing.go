package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
)

// ConflictPolicy decides what a build does when another process's build
// is active against the same store. Conflicts are never resolved
// silently; the default surfaces the decision to the caller.
type ConflictPolicy int

const (
	// ConflictAbort returns domain.ErrBuildConflict to the caller.
	ConflictAbort ConflictPolicy = iota

	// ConflictWait polls until the other build finishes, then builds.
	ConflictWait

	// ConflictTakeover resets progress and the processed-file log, then
	// proceeds.
	ConflictTakeover
)

// StalePolicy decides what a build does when the store records an
// interrupted run (a stale heartbeat).
type StalePolicy int

const (
	// StaleAbort returns domain.ErrBuildInterrupted to the caller.
	StaleAbort StalePolicy = iota

	// StaleResume continues from the processed-file log, after purging
	// fragment data of masters the interrupted run never completed.
	StaleResume

	// StaleRestart discards the interrupted run's progress and rebuilds
	// from scratch.
	StaleRestart
)

// BuildOptions configures a full build.
type BuildOptions struct {
	OnConflict ConflictPolicy
	OnStale    StalePolicy

	// HeartbeatTimeout overrides the staleness window. Zero keeps the
	// default.
	HeartbeatTimeout time.Duration
}

// BuildSummary aggregates a full build's outcome. Per-file failures are
// collected here instead of aborting the build.
type BuildSummary struct {
	MastersIndexed   int
	FragmentsIndexed int
	BundlesIndexed   int
	MessagesIndexed  int
	SkippedResumed   int

	// Failures holds one entry per file that could not be indexed.
	Failures []BuildFailure

	Duration time.Duration
}

// BuildFailure is one non-fatal per-file failure.
type BuildFailure struct {
	Path string
	Err  error
}

// FileKindHint tells the ingestion surface what kind of file changed,
// when the watch layer knows; KindUnknown lets the coordinator decide by
// extension.
type FileKindHint int

const (
	KindUnknown FileKindHint = iota
	KindMaster
	KindFragment
	KindBundle
)

// IndexCoordinator orchestrates builds and ingests file-change events.
type IndexCoordinator interface {
	// FullBuild indexes the whole project tree. Returns a summary even
	// when some files failed; returns an error only for fatal
	// preconditions (store not open, unresolved conflict, cancellation).
	FullBuild(ctx context.Context, opts BuildOptions) (*BuildSummary, error)

	// IndexFile incrementally (re)indexes one file, diffing its message
	// hash set minimally so translations of unchanged messages are never
	// disturbed.
	IndexFile(ctx context.Context, path string) error

	// OnFileCreated, OnFileChanged and OnFileDeleted ingest events from
	// an external file-watch layer.
	OnFileCreated(ctx context.Context, path string, kind FileKindHint) error
	OnFileChanged(ctx context.Context, path string, kind FileKindHint) error
	OnFileDeleted(ctx context.Context, path string, kind FileKindHint) error

	// Cancel requests cooperative cancellation of a running build. The
	// in-flight file always finishes; the loop stops at its next check.
	Cancel(ctx context.Context) error

	// Progress reads the shared build-progress record.
	Progress(ctx context.Context) (*domain.BuildProgress, error)
}
