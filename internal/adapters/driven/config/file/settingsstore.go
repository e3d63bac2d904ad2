package file

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// document is the on-disk TOML shape. Durations are stored as integer
// seconds so the file stays hand-editable.
type document struct {
	Data struct {
		Dir string `toml:"dir,omitempty"`
	} `toml:"data,omitempty"`
	Index struct {
		IgnoreDirs              []string `toml:"ignore_dirs,omitempty"`
		HeartbeatTimeoutSeconds int64    `toml:"heartbeat_timeout_seconds,omitempty"`
	} `toml:"index,omitempty"`
	Search struct {
		Limit int64 `toml:"limit,omitempty"`
	} `toml:"search,omitempty"`
}

// SettingsStore persists tool settings to a TOML file in the lingua
// config directory.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
}

// NewSettingsStore creates a TOML-backed settings store.
// If configDir is empty, defaults to ~/.lingua/config.toml.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".lingua")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads settings from the TOML file. A missing file yields zero
// settings, not an error.
func (s *SettingsStore) Load() (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings domain.Settings

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &settings, nil
		}
		return nil, err
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	settings.DataDir = doc.Data.Dir
	settings.IgnoreDirs = doc.Index.IgnoreDirs
	if doc.Index.HeartbeatTimeoutSeconds > 0 {
		settings.HeartbeatTimeout = time.Duration(doc.Index.HeartbeatTimeoutSeconds) * time.Second
	}
	settings.SearchLimit = int(doc.Search.Limit)

	return &settings, nil
}

// Save persists settings to the TOML file.
func (s *SettingsStore) Save(settings *domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc document
	doc.Data.Dir = settings.DataDir
	doc.Index.IgnoreDirs = settings.IgnoreDirs
	doc.Index.HeartbeatTimeoutSeconds = int64(settings.HeartbeatTimeout / time.Second)
	doc.Search.Limit = int64(settings.SearchLimit)

	data, err := toml.Marshal(doc)
	if err != nil {
		return err
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}
