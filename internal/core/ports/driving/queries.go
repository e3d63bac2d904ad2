package driving

import (
	"context"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
)

// UpsertTranslationOptions configures a translation write from a consumer.
type UpsertTranslationOptions struct {
	// SkipCheck bypasses the message-existence check. Only for trusted
	// bulk imports; everything else keeps foreign-key discipline.
	SkipCheck bool
}

// QueryService is the query surface consumed by editors, dashboards and
// AI-assisted translation workflows.
type QueryService interface {
	// ResolveByName resolves a symbolic name to its message and every
	// available translation. Returns domain.ErrNotFound when unknown.
	ResolveByName(ctx context.Context, name string) (*domain.MessageWithTranslations, error)

	// ResolveByNameAndFile disambiguates when multiple files define the
	// same name with different content.
	ResolveByNameAndFile(ctx context.Context, name, filePath string) (*domain.MessageWithTranslations, error)

	// ResolveByHash resolves a content hash directly.
	ResolveByHash(ctx context.Context, idHash string) (*domain.MessageWithTranslations, error)

	// Search performs a ranked, paginated keyword search.
	Search(ctx context.Context, keyword string, limit, offset int) (domain.SearchPage, error)

	// ListLanguages lists every language with translations.
	ListLanguages(ctx context.Context) ([]string, error)

	// ListMasterFiles lists the indexed master files.
	ListMasterFiles(ctx context.Context) ([]string, error)

	// Stats returns whole-store counts.
	Stats(ctx context.Context) (domain.IndexStats, error)

	// Coverage returns per-language translation coverage.
	Coverage(ctx context.Context) ([]domain.CoverageStats, error)

	// MissingTranslations lists messages untranslated in one language.
	MissingTranslations(ctx context.Context, lang string) ([]domain.Message, error)

	// UpsertTranslation writes consumer-supplied translation text through
	// the same store discipline as a bundle parse.
	UpsertTranslation(ctx context.Context, idHash, lang, text string, opts UpsertTranslationOptions) error
}
