package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Environment overrides, highest precedence. A .env file in the working
// directory is honoured when present.
const (
	envDataDir          = "LINGUA_DATA_DIR"
	envHeartbeatSeconds = "LINGUA_HEARTBEAT_TIMEOUT_SECONDS"
	envSearchLimit      = "LINGUA_SEARCH_LIMIT"
)

// SettingsService manages tool-level settings on top of the settings store.
type SettingsService struct {
	store driven.SettingsStore
}

// NewSettingsService creates a new settings service. Environment
// variables from a local .env file are loaded once here; absence of the
// file is not an error.
func NewSettingsService(store driven.SettingsStore) *SettingsService {
	_ = godotenv.Load()
	return &SettingsService{store: store}
}

// Get retrieves current settings: defaults, overlaid by the stored
// values, overlaid by environment variables.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()

	stored, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading stored settings: %w", err)
	}
	if stored.DataDir != "" {
		settings.DataDir = stored.DataDir
	}
	if len(stored.IgnoreDirs) > 0 {
		settings.IgnoreDirs = stored.IgnoreDirs
	}
	if stored.HeartbeatTimeout > 0 {
		settings.HeartbeatTimeout = stored.HeartbeatTimeout
	}
	if stored.SearchLimit > 0 {
		settings.SearchLimit = stored.SearchLimit
	}

	if dir := os.Getenv(envDataDir); dir != "" {
		settings.DataDir = dir
	}
	if raw := os.Getenv(envHeartbeatSeconds); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("%w: %s=%q", domain.ErrInvalidInput, envHeartbeatSeconds, raw)
		}
		settings.HeartbeatTimeout = time.Duration(secs) * time.Second
	}
	if raw := os.Getenv(envSearchLimit); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("%w: %s=%q", domain.ErrInvalidInput, envSearchLimit, raw)
		}
		settings.SearchLimit = limit
	}

	return &settings, nil
}

// Save persists settings to the settings store.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := s.store.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// Path returns the backing configuration file path.
func (s *SettingsService) Path() string {
	return s.store.Path()
}
