package cli

import (
	"context"
	"testing"

	"github.com/custodia-labs/lingua-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/services"
	"github.com/custodia-labs/lingua-cli/internal/parsers/grd"
	"github.com/custodia-labs/lingua-cli/internal/parsers/xtb"
)

// setupTestServices wires the command tree to an in-memory store seeded
// with a couple of messages. The returned cleanup restores the previous
// wiring.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	store := memory.NewStore()
	ctx := context.Background()

	messages := []domain.Message{
		{
			IDHash:      "6965382102122355670",
			Name:        "IDS_OK",
			Presentable: "OK",
			FilePath:    "app/strings.grd",
			StartLine:   4,
			EndLine:     6,
		},
		{
			IDHash:      "7658239707568436148",
			Name:        "IDS_CANCEL",
			Presentable: "Cancel",
			FilePath:    "app/strings.grd",
			StartLine:   7,
			EndLine:     9,
		},
	}
	for _, m := range messages {
		if err := store.MessageStore().Upsert(ctx, m); err != nil {
			t.Fatalf("seeding message: %v", err)
		}
	}

	if _, err := store.TranslationStore().Upsert(ctx, domain.Translation{
		IDHash: "6965382102122355670",
		Lang:   "fr",
		Text:   "OK",
	}, false); err != nil {
		t.Fatalf("seeding translation: %v", err)
	}

	if err := store.FileStore().Save(ctx, domain.File{
		Path: "app/strings.grd",
		Kind: domain.FileMaster,
	}); err != nil {
		t.Fatalf("seeding file: %v", err)
	}

	ws, err := domain.NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("creating workspace: %v", err)
	}

	oldWire := wireServices
	oldWorkspace := workspace
	oldStore := indexStore
	oldQuery := queryService
	oldCoordinator := coordinator
	oldSettings := settingsService

	wireServices = false
	workspace = ws
	indexStore = nil
	queryService = services.NewQueryService(store, domain.DefaultSearchLimit)
	coordinator = services.NewIndexCoordinator(ws, store, grd.New(), xtb.New(), nil)
	settingsService = &mockSettingsService{settings: domain.DefaultSettings()}

	return func() {
		wireServices = oldWire
		workspace = oldWorkspace
		indexStore = oldStore
		queryService = oldQuery
		coordinator = oldCoordinator
		settingsService = oldSettings
	}
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.Settings
	err      error
	saved    *domain.Settings
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.Settings) error {
	if m.err != nil {
		return m.err
	}
	m.saved = settings
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Path() string {
	return "/tmp/lingua-test/config.toml"
}
