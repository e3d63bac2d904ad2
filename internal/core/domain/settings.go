package domain

import "time"

// DefaultSearchLimit is the search page size when none is configured.
const DefaultSearchLimit = 20

// Settings holds tool-level configuration. Project content never lives
// here; everything in Settings applies to whichever project the tool is
// pointed at.
type Settings struct {
	// DataDir is where per-project index databases are kept. Empty means
	// the default under the user's home directory.
	DataDir string

	// IgnoreDirs supplements the built-in directory skip list.
	IgnoreDirs []string

	// HeartbeatTimeout is the staleness window for shared builds.
	HeartbeatTimeout time.Duration

	// SearchLimit is the default search page size.
	SearchLimit int
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		HeartbeatTimeout: DefaultHeartbeatTimeout,
		SearchLimit:      DefaultSearchLimit,
	}
}
