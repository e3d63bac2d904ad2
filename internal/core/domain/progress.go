package domain

import "time"

// BuildStatus is the lifecycle state of an index build.
type BuildStatus string

const (
	// BuildIdle means no build has run or the last state was cleared.
	BuildIdle BuildStatus = "idle"

	// BuildIndexing means a build is (or was) in flight.
	BuildIndexing BuildStatus = "indexing"

	// BuildCompleted means the last build finished successfully.
	BuildCompleted BuildStatus = "completed"

	// BuildCancelled means the last build was cancelled cooperatively.
	BuildCancelled BuildStatus = "cancelled"
)

// DefaultHeartbeatTimeout is how long a heartbeat may be silent before a
// run in the indexing state is treated as crashed rather than active.
const DefaultHeartbeatTimeout = 30 * time.Second

// BuildProgress is the singleton shared-build record. Any process pointed
// at the same store reads it to detect a concurrent or interrupted build;
// the owning process refreshes the heartbeat on every processed file.
type BuildProgress struct {
	Status BuildStatus

	// Owner identifies the process that started the run.
	Owner string

	TotalFiles     int
	ProcessedCount int

	StartTime     time.Time
	LastHeartbeat time.Time
}

// Stale reports whether the heartbeat is older than the timeout, i.e.
// the recorded run crashed or was interrupted without cleaning up.
func (p BuildProgress) Stale(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultHeartbeatTimeout
	}
	return now.Sub(p.LastHeartbeat) > timeout
}

// ActiveElsewhere reports whether another process is building right now:
// the record is in the indexing state, owned by someone else, and the
// heartbeat is fresh.
func (p BuildProgress) ActiveElsewhere(owner string, now time.Time, timeout time.Duration) bool {
	return p.Status == BuildIndexing && p.Owner != owner && !p.Stale(now, timeout)
}
