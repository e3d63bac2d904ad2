package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driving"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers lookups against the index store. It never writes
// messages; its only write path is consumer-supplied translation text.
type QueryService struct {
	store       driven.IndexStore
	searchLimit int
}

// NewQueryService creates a query service. searchLimit is the page size
// used when a caller passes none; zero keeps the store default.
func NewQueryService(store driven.IndexStore, searchLimit int) *QueryService {
	return &QueryService{store: store, searchLimit: searchLimit}
}

// ResolveByName resolves a symbolic name to its message and every
// available translation.
func (s *QueryService) ResolveByName(ctx context.Context, name string) (*domain.MessageWithTranslations, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty name", domain.ErrInvalidInput)
	}

	msg, err := s.store.MessageStore().GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, msg)
}

// ResolveByNameAndFile disambiguates when multiple files define the same
// name with different content.
func (s *QueryService) ResolveByNameAndFile(ctx context.Context, name, filePath string) (*domain.MessageWithTranslations, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(filePath) == "" {
		return nil, fmt.Errorf("%w: empty name or file path", domain.ErrInvalidInput)
	}

	msg, err := s.store.MessageStore().GetByNameAndFile(ctx, name, filePath)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, msg)
}

// ResolveByHash resolves a content hash directly.
func (s *QueryService) ResolveByHash(ctx context.Context, idHash string) (*domain.MessageWithTranslations, error) {
	if strings.TrimSpace(idHash) == "" {
		return nil, fmt.Errorf("%w: empty hash", domain.ErrInvalidInput)
	}

	msg, err := s.store.MessageStore().Get(ctx, idHash)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, msg)
}

// Search performs a ranked, paginated keyword search.
func (s *QueryService) Search(ctx context.Context, keyword string, limit, offset int) (domain.SearchPage, error) {
	if strings.TrimSpace(keyword) == "" {
		return domain.SearchPage{}, fmt.Errorf("%w: empty keyword", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = s.searchLimit
	}
	return s.store.MessageStore().Search(ctx, keyword, limit, offset)
}

// ListLanguages lists every language with translations.
func (s *QueryService) ListLanguages(ctx context.Context) ([]string, error) {
	return s.store.TranslationStore().Languages(ctx)
}

// ListMasterFiles lists the indexed master files.
func (s *QueryService) ListMasterFiles(ctx context.Context) ([]string, error) {
	files, err := s.store.FileStore().List(ctx, domain.FileMaster)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths, nil
}

// Stats returns whole-store counts.
func (s *QueryService) Stats(ctx context.Context) (domain.IndexStats, error) {
	return s.store.Stats(ctx)
}

// Coverage returns per-language translation coverage.
func (s *QueryService) Coverage(ctx context.Context) ([]domain.CoverageStats, error) {
	return s.store.TranslationStore().Coverage(ctx)
}

// MissingTranslations lists messages untranslated in one language.
func (s *QueryService) MissingTranslations(ctx context.Context, lang string) ([]domain.Message, error) {
	if strings.TrimSpace(lang) == "" {
		return nil, fmt.Errorf("%w: empty language", domain.ErrInvalidInput)
	}
	return s.store.TranslationStore().Missing(ctx, lang)
}

// UpsertTranslation writes consumer-supplied translation text. Unlike the
// bulk bundle pass, an unknown hash surfaces as ErrOrphanTranslation here.
func (s *QueryService) UpsertTranslation(ctx context.Context, idHash, lang, text string, opts driving.UpsertTranslationOptions) error {
	if strings.TrimSpace(idHash) == "" || strings.TrimSpace(lang) == "" {
		return fmt.Errorf("%w: empty hash or language", domain.ErrInvalidInput)
	}

	ok, err := s.store.TranslationStore().Upsert(ctx, domain.Translation{
		IDHash: idHash,
		Lang:   lang,
		Text:   text,
	}, opts.SkipCheck)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", idHash, domain.ErrOrphanTranslation)
	}
	return nil
}

// hydrate attaches every stored translation to a message.
func (s *QueryService) hydrate(ctx context.Context, msg *domain.Message) (*domain.MessageWithTranslations, error) {
	translations, err := s.store.TranslationStore().ForMessage(ctx, msg.IDHash)
	if err != nil {
		return nil, err
	}
	return &domain.MessageWithTranslations{
		Message:      *msg,
		Translations: translations,
	}, nil
}
