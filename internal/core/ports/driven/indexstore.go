package driven

import (
	"context"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
)

// IndexStore is unified access to the per-project persistent index.
// One store exists per project root; all paths crossing this boundary are
// project-relative. Backed by SQLite.
type IndexStore interface {
	FileStore() FileStore
	MessageStore() MessageStore
	TranslationStore() TranslationStore
	ProgressStore() ProgressStore

	// Stats returns whole-store counts.
	Stats(ctx context.Context) (domain.IndexStats, error)

	// Close releases the underlying database.
	Close() error
}

// FileStore persists tracked resource files.
type FileStore interface {
	// Save stores or updates a file record.
	Save(ctx context.Context, file domain.File) error

	// Get retrieves a file by project-relative path.
	Get(ctx context.Context, path string) (*domain.File, error)

	// List returns files of one kind, or all files when kind is empty.
	List(ctx context.Context, kind domain.FileKind) ([]domain.File, error)

	// SetParent records a fragment's defining master file.
	SetParent(ctx context.Context, path, parentPath string) error

	// Delete removes a file record. Message and translation rows
	// contributed by the file are the caller's concern.
	Delete(ctx context.Context, path string) error
}

// MessageStore persists messages and their name aliases.
type MessageStore interface {
	// Upsert stores or updates a message and ensures an alias row for
	// its name points at its hash. An existing alias for the name is
	// never re-pointed at a different hash; first writer wins.
	Upsert(ctx context.Context, msg domain.Message) error

	// Get retrieves a message by content hash.
	Get(ctx context.Context, idHash string) (*domain.Message, error)

	// GetByName resolves a symbolic name through the alias table.
	GetByName(ctx context.Context, name string) (*domain.Message, error)

	// GetByNameAndFile disambiguates when multiple files define the same
	// name with different content.
	GetByNameAndFile(ctx context.Context, name, filePath string) (*domain.Message, error)

	// ListByFile returns the messages defined by one file.
	ListByFile(ctx context.Context, filePath string) ([]domain.Message, error)

	// HashesByFile returns the stored content-hash set for one file.
	HashesByFile(ctx context.Context, filePath string) ([]string, error)

	// Delete removes messages by hash, cascading their aliases and
	// translations.
	Delete(ctx context.Context, idHashes []string) error

	// DeleteByFile removes every message a file contributed, cascading
	// aliases and translations.
	DeleteByFile(ctx context.Context, filePath string) error

	// Search matches alias names (exact and prefix ranked first),
	// presentable text and translation text, case-insensitively, and
	// returns one total-counted page.
	Search(ctx context.Context, keyword string, limit, offset int) (domain.SearchPage, error)
}

// TranslationStore persists per-language translations.
type TranslationStore interface {
	// Upsert stores or updates a translation. A translation whose hash
	// has no matching message is dropped, not an error; ok reports
	// whether the row was written. skipCheck bypasses the message
	// existence check for trusted bulk imports.
	Upsert(ctx context.Context, tr domain.Translation, skipCheck bool) (ok bool, err error)

	// ForMessage returns every translation of one message, keyed by
	// language.
	ForMessage(ctx context.Context, idHash string) (map[string]domain.Translation, error)

	// BatchGet returns translations for many hashes in one language with
	// a single query.
	BatchGet(ctx context.Context, idHashes []string, lang string) (map[string]domain.Translation, error)

	// DeleteByBundle removes every translation a bundle contributed.
	DeleteByBundle(ctx context.Context, bundlePath string) error

	// Languages lists every language with at least one translation.
	Languages(ctx context.Context) ([]string, error)

	// Missing returns messages with no translation in the language.
	Missing(ctx context.Context, lang string) ([]domain.Message, error)

	// Coverage returns per-language translated/missing counts.
	Coverage(ctx context.Context) ([]domain.CoverageStats, error)
}

// ProgressStore persists the singleton build-progress record and the
// processed-file log that makes interrupted builds resumable.
type ProgressStore interface {
	// Get retrieves the progress record. Returns domain.ErrNotFound
	// before the first build.
	Get(ctx context.Context) (*domain.BuildProgress, error)

	// Save writes the progress record.
	Save(ctx context.Context, p domain.BuildProgress) error

	// Reset returns the record to idle and clears the processed log.
	Reset(ctx context.Context) error

	// MarkProcessed appends a master file to the processed log.
	MarkProcessed(ctx context.Context, path string) error

	// Processed returns the processed-file log.
	Processed(ctx context.Context) ([]string, error)

	// ClearProcessed empties the processed-file log.
	ClearProcessed(ctx context.Context) error
}
