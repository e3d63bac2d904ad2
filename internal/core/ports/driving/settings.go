package driving

import "github.com/custodia-labs/lingua-cli/internal/core/domain"

// SettingsService manages tool-level settings.
type SettingsService interface {
	// Get retrieves current settings, with defaults and environment
	// overrides applied.
	Get() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// Path returns the backing configuration file path.
	Path() string
}
