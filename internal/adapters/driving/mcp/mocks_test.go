package mcp

import (
	"context"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driving"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	message   *domain.MessageWithTranslations
	page      domain.SearchPage
	languages []string
	files     []string
	stats     domain.IndexStats
	coverage  []domain.CoverageStats
	missing   []domain.Message
	err       error

	lastKeyword string
	lastLimit   int
	lastOffset  int
	lastLang    string
}

func (m *mockQueryService) ResolveByName(_ context.Context, _ string) (*domain.MessageWithTranslations, error) {
	return m.message, m.err
}

func (m *mockQueryService) ResolveByNameAndFile(_ context.Context, _, _ string) (*domain.MessageWithTranslations, error) {
	return m.message, m.err
}

func (m *mockQueryService) ResolveByHash(_ context.Context, _ string) (*domain.MessageWithTranslations, error) {
	return m.message, m.err
}

func (m *mockQueryService) Search(_ context.Context, keyword string, limit, offset int) (domain.SearchPage, error) {
	m.lastKeyword = keyword
	m.lastLimit = limit
	m.lastOffset = offset
	return m.page, m.err
}

func (m *mockQueryService) ListLanguages(_ context.Context) ([]string, error) {
	return m.languages, m.err
}

func (m *mockQueryService) ListMasterFiles(_ context.Context) ([]string, error) {
	return m.files, m.err
}

func (m *mockQueryService) Stats(_ context.Context) (domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockQueryService) Coverage(_ context.Context) ([]domain.CoverageStats, error) {
	return m.coverage, m.err
}

func (m *mockQueryService) MissingTranslations(_ context.Context, lang string) ([]domain.Message, error) {
	m.lastLang = lang
	return m.missing, m.err
}

func (m *mockQueryService) UpsertTranslation(_ context.Context, _, _, _ string, _ driving.UpsertTranslationOptions) error {
	return m.err
}
