package driven

import "github.com/custodia-labs/lingua-cli/internal/core/domain"

// SettingsStore persists tool-level settings (data directory, ignored
// directories, timeouts, search page size). Project content never lives
// here.
type SettingsStore interface {
	// Load reads the stored settings. Fields with no stored value come
	// back zero; a store that does not exist yet is not an error.
	Load() (*domain.Settings, error)

	// Save persists the settings.
	Save(settings *domain.Settings) error

	// Path returns the backing file path.
	Path() string
}
