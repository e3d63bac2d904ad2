package sqlite

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create a temporary directory for the test database
	tempDir, err := os.MkdirTemp("", "lingua-test-*")
	require.NoError(t, err)

	// Create store in temp directory
	store, err := NewStore(tempDir, "index-test.db")
	require.NoError(t, err)
	require.NotNil(t, store)

	// Return cleanup function
	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// createTestMessage stores a message with defaults suitable for most tests.
func createTestMessage(t *testing.T, store *Store, idHash, name, presentable, filePath string) {
	t.Helper()
	err := store.MessageStore().Upsert(context.Background(), domain.Message{
		IDHash:       idHash,
		Name:         name,
		Presentable:  presentable,
		Translatable: presentable,
		FilePath:     filePath,
		StartLine:    1,
		EndLine:      1,
	})
	require.NoError(t, err)
}

func TestNewStore(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.NotEmpty(t, store.Path())
}

func TestStoreExists(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "lingua-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	assert.False(t, StoreExists(tempDir, "index-test.db"))

	store, err := NewStore(tempDir, "index-test.db")
	require.NoError(t, err)
	defer store.Close()

	assert.True(t, StoreExists(tempDir, "index-test.db"))
}

func TestFileStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	files := store.FileStore()

	modTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := files.Save(ctx, domain.File{
		Path:    "app/strings.grd",
		Kind:    domain.FileMaster,
		ModTime: modTime,
	})
	require.NoError(t, err)

	got, err := files.Get(ctx, "app/strings.grd")
	require.NoError(t, err)
	assert.Equal(t, domain.FileMaster, got.Kind)
	assert.True(t, got.ModTime.Equal(modTime))
	assert.False(t, got.IndexedAt.IsZero(), "IndexedAt defaults to now")
}

func TestFileStore_GetNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.FileStore().Get(context.Background(), "missing.grd")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileStore_ListByKind(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	files := store.FileStore()

	require.NoError(t, files.Save(ctx, domain.File{Path: "a.grd", Kind: domain.FileMaster}))
	require.NoError(t, files.Save(ctx, domain.File{Path: "b.grdp", Kind: domain.FileFragment}))
	require.NoError(t, files.Save(ctx, domain.File{Path: "fr.xtb", Kind: domain.FileBundle, Lang: "fr"}))

	masters, err := files.List(ctx, domain.FileMaster)
	require.NoError(t, err)
	require.Len(t, masters, 1)
	assert.Equal(t, "a.grd", masters[0].Path)

	all, err := files.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFileStore_SetParent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	files := store.FileStore()

	require.NoError(t, files.Save(ctx, domain.File{Path: "b.grdp", Kind: domain.FileFragment}))
	require.NoError(t, files.SetParent(ctx, "b.grdp", "a.grd"))

	got, err := files.Get(ctx, "b.grdp")
	require.NoError(t, err)
	assert.Equal(t, "a.grd", got.ParentPath)
}

func TestMessageStore_UpsertAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	messages := store.MessageStore()

	createTestMessage(t, store, "111", "IDS_OK", "OK", "a.grd")

	got, err := messages.Get(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, "IDS_OK", got.Name)
	assert.Equal(t, "OK", got.Presentable)
	assert.False(t, got.UpdatedAt.IsZero())

	byName, err := messages.GetByName(ctx, "IDS_OK")
	require.NoError(t, err)
	assert.Equal(t, "111", byName.IDHash)
}

func TestMessageStore_AliasFirstWriterWins(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	messages := store.MessageStore()

	// Two files bind the same name to different content. The alias keeps
	// pointing at the first hash; the second message still exists and is
	// reachable by name plus file.
	createTestMessage(t, store, "111", "IDS_TITLE", "Settings", "a.grd")
	createTestMessage(t, store, "222", "IDS_TITLE", "Preferences", "b.grd")

	byName, err := messages.GetByName(ctx, "IDS_TITLE")
	require.NoError(t, err)
	assert.Equal(t, "111", byName.IDHash)

	byFile, err := messages.GetByNameAndFile(ctx, "IDS_TITLE", "b.grd")
	require.NoError(t, err)
	assert.Equal(t, "222", byFile.IDHash)
}

func TestMessageStore_HashesByFile(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestMessage(t, store, "111", "IDS_A", "A", "a.grd")
	createTestMessage(t, store, "222", "IDS_B", "B", "a.grd")
	createTestMessage(t, store, "333", "IDS_C", "C", "b.grd")

	hashes, err := store.MessageStore().HashesByFile(ctx, "a.grd")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"111", "222"}, hashes)
}

func TestMessageStore_DeleteCascades(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	messages := store.MessageStore()

	createTestMessage(t, store, "111", "IDS_A", "A", "a.grd")
	ok, err := store.TranslationStore().Upsert(ctx, domain.Translation{
		IDHash: "111", Lang: "fr", Text: "A fr", BundlePath: "fr.xtb",
	}, false)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, messages.Delete(ctx, []string{"111"}))

	_, err = messages.Get(ctx, "111")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = messages.GetByName(ctx, "IDS_A")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	trs, err := store.TranslationStore().ForMessage(ctx, "111")
	require.NoError(t, err)
	assert.Empty(t, trs)
}

// Alias cascades rely on foreign_keys being on for the connection that
// runs the delete, not just the first one the pool opened. Pin one
// connection so the delete is forced onto another, then check the alias
// is gone and a fresh connection reports the pragma enabled.
func TestMessageStore_AliasCascadeOnEveryConnection(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestMessage(t, store, "111", "IDS_A", "A", "a.grd")

	pinned, err := store.db.Conn(ctx)
	require.NoError(t, err)
	defer pinned.Close()

	require.NoError(t, store.MessageStore().Delete(ctx, []string{"111"}))

	var aliases int
	err = store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM aliases WHERE id_hash = ?", "111").Scan(&aliases)
	require.NoError(t, err)
	assert.Zero(t, aliases, "alias row should cascade away with its message")

	second, err := store.db.Conn(ctx)
	require.NoError(t, err)
	defer second.Close()

	var fk int
	require.NoError(t, second.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMessageStore_DeleteByFile(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	messages := store.MessageStore()

	createTestMessage(t, store, "111", "IDS_A", "A", "a.grd")
	createTestMessage(t, store, "222", "IDS_B", "B", "b.grd")

	require.NoError(t, messages.DeleteByFile(ctx, "a.grd"))

	_, err := messages.Get(ctx, "111")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = messages.Get(ctx, "222")
	assert.NoError(t, err)
}

func TestMessageStore_Search(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	messages := store.MessageStore()

	createTestMessage(t, store, "111", "IDS_SAVE", "Save", "a.grd")
	createTestMessage(t, store, "222", "IDS_SAVE_AS", "Save as", "a.grd")
	createTestMessage(t, store, "333", "IDS_KEEP", "Save your work", "a.grd")
	createTestMessage(t, store, "444", "IDS_STORE", "Store", "a.grd")
	ok, err := store.TranslationStore().Upsert(ctx, domain.Translation{
		IDHash: "444", Lang: "de", Text: "Save im Deutschen", BundlePath: "de.xtb",
	}, false)
	require.NoError(t, err)
	require.True(t, ok)

	page, err := messages.Search(ctx, "ids_save", 10, 0)
	require.NoError(t, err)
	// Exact alias match first, then the prefix match.
	require.GreaterOrEqual(t, len(page.Results), 2)
	assert.Equal(t, "IDS_SAVE", page.Results[0].Message.Name)
	assert.Equal(t, 0, page.Results[0].Rank)
	assert.Equal(t, "IDS_SAVE_AS", page.Results[1].Message.Name)
	assert.Equal(t, 1, page.Results[1].Rank)

	page, err = messages.Search(ctx, "save", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	// The translation-only hit ranks last and carries its language.
	last := page.Results[len(page.Results)-1]
	assert.Equal(t, "IDS_STORE", last.Message.Name)
	assert.Equal(t, 3, last.Rank)
	assert.Equal(t, "de", last.MatchedLang)
}

func TestMessageStore_SearchPagination(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	messages := store.MessageStore()

	createTestMessage(t, store, "111", "IDS_A", "common word", "a.grd")
	createTestMessage(t, store, "222", "IDS_B", "common word", "b.grd")

	page, err := messages.Search(ctx, "common", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Results, 1)

	next, err := messages.Search(ctx, "common", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, next.Total)
	require.Len(t, next.Results, 1)
	assert.NotEqual(t, page.Results[0].Message.IDHash, next.Results[0].Message.IDHash)
}

func TestMessageStore_SearchEscapesLikeMetacharacters(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestMessage(t, store, "111", "IDS_PERCENT", "100% done", "a.grd")
	createTestMessage(t, store, "222", "IDS_OTHER", "100 percent done", "a.grd")

	page, err := store.MessageStore().Search(ctx, "100%", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "IDS_PERCENT", page.Results[0].Message.Name)
}

func TestTranslationStore_OrphanDropped(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	translations := store.TranslationStore()

	// No message with this hash exists; the write is skipped, not an error.
	ok, err := translations.Upsert(ctx, domain.Translation{
		IDHash: "999", Lang: "fr", Text: "orphelin", BundlePath: "fr.xtb",
	}, false)
	require.NoError(t, err)
	assert.False(t, ok)

	trs, err := translations.ForMessage(ctx, "999")
	require.NoError(t, err)
	assert.Empty(t, trs)

	// A trusted import bypasses the check.
	ok, err = translations.Upsert(ctx, domain.Translation{
		IDHash: "999", Lang: "fr", Text: "orphelin", BundlePath: "fr.xtb",
	}, true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTranslationStore_UpsertReplaces(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	translations := store.TranslationStore()

	createTestMessage(t, store, "111", "IDS_OK", "OK", "a.grd")

	for _, text := range []string{"D'accord", "OK"} {
		ok, err := translations.Upsert(ctx, domain.Translation{
			IDHash: "111", Lang: "fr", Text: text, BundlePath: "fr.xtb",
		}, false)
		require.NoError(t, err)
		require.True(t, ok)
	}

	trs, err := translations.ForMessage(ctx, "111")
	require.NoError(t, err)
	require.Len(t, trs, 1)
	assert.Equal(t, "OK", trs["fr"].Text)
}

func TestTranslationStore_BatchGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	translations := store.TranslationStore()

	createTestMessage(t, store, "111", "IDS_A", "A", "a.grd")
	createTestMessage(t, store, "222", "IDS_B", "B", "a.grd")

	for _, tr := range []domain.Translation{
		{IDHash: "111", Lang: "fr", Text: "A fr", BundlePath: "fr.xtb"},
		{IDHash: "111", Lang: "de", Text: "A de", BundlePath: "de.xtb"},
		{IDHash: "222", Lang: "fr", Text: "B fr", BundlePath: "fr.xtb"},
	} {
		ok, err := translations.Upsert(ctx, tr, false)
		require.NoError(t, err)
		require.True(t, ok)
	}

	got, err := translations.BatchGet(ctx, []string{"111", "222", "333"}, "fr")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A fr", got["111"].Text)
	assert.Equal(t, "B fr", got["222"].Text)

	empty, err := translations.BatchGet(ctx, nil, "fr")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTranslationStore_DeleteByBundle(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	translations := store.TranslationStore()

	createTestMessage(t, store, "111", "IDS_A", "A", "a.grd")
	for _, tr := range []domain.Translation{
		{IDHash: "111", Lang: "fr", Text: "A fr", BundlePath: "fr.xtb"},
		{IDHash: "111", Lang: "de", Text: "A de", BundlePath: "de.xtb"},
	} {
		ok, err := translations.Upsert(ctx, tr, false)
		require.NoError(t, err)
		require.True(t, ok)
	}

	require.NoError(t, translations.DeleteByBundle(ctx, "fr.xtb"))

	trs, err := translations.ForMessage(ctx, "111")
	require.NoError(t, err)
	require.Len(t, trs, 1)
	assert.Contains(t, trs, "de")
}

func TestTranslationStore_LanguagesAndCoverage(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	translations := store.TranslationStore()

	createTestMessage(t, store, "111", "IDS_A", "A", "a.grd")
	createTestMessage(t, store, "222", "IDS_B", "B", "a.grd")

	ok, err := translations.Upsert(ctx, domain.Translation{
		IDHash: "111", Lang: "fr", Text: "A fr", BundlePath: "fr.xtb",
	}, false)
	require.NoError(t, err)
	require.True(t, ok)

	langs, err := translations.Languages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fr"}, langs)

	missing, err := translations.Missing(ctx, "fr")
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "IDS_B", missing[0].Name)

	coverage, err := translations.Coverage(ctx)
	require.NoError(t, err)
	require.Len(t, coverage, 1)
	assert.Equal(t, "fr", coverage[0].Lang)
	assert.Equal(t, 1, coverage[0].Translated)
	assert.Equal(t, 1, coverage[0].Missing)
}

func TestProgressStore_Lifecycle(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	progress := store.ProgressStore()

	_, err := progress.Get(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	now := time.Now().UTC().Truncate(time.Second)
	err = progress.Save(ctx, domain.BuildProgress{
		Status:         domain.BuildIndexing,
		Owner:          "owner-1",
		TotalFiles:     10,
		ProcessedCount: 3,
		StartTime:      now,
		LastHeartbeat:  now,
	})
	require.NoError(t, err)

	got, err := progress.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.BuildIndexing, got.Status)
	assert.Equal(t, "owner-1", got.Owner)
	assert.Equal(t, 3, got.ProcessedCount)
	assert.True(t, got.LastHeartbeat.Equal(now))

	require.NoError(t, progress.MarkProcessed(ctx, "a.grd"))
	require.NoError(t, progress.MarkProcessed(ctx, "b.grd"))
	require.NoError(t, progress.MarkProcessed(ctx, "a.grd"))

	processed, err := progress.Processed(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.grd", "b.grd"}, processed)

	require.NoError(t, progress.Reset(ctx))

	got, err = progress.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.BuildIdle, got.Status)
	assert.Empty(t, got.Owner)

	processed, err = progress.Processed(ctx)
	require.NoError(t, err)
	assert.Empty(t, processed)
}

func TestStore_Stats(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.FileStore().Save(ctx, domain.File{Path: "a.grd", Kind: domain.FileMaster}))
	require.NoError(t, store.FileStore().Save(ctx, domain.File{Path: "b.grdp", Kind: domain.FileFragment}))
	require.NoError(t, store.FileStore().Save(ctx, domain.File{Path: "fr.xtb", Kind: domain.FileBundle, Lang: "fr"}))
	createTestMessage(t, store, "111", "IDS_A", "A", "a.grd")
	ok, err := store.TranslationStore().Upsert(ctx, domain.Translation{
		IDHash: "111", Lang: "fr", Text: "A fr", BundlePath: "fr.xtb",
	}, false)
	require.NoError(t, err)
	require.True(t, ok)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, 1, stats.Masters)
	assert.Equal(t, 1, stats.Fragments)
	assert.Equal(t, 1, stats.Bundles)
	assert.Equal(t, 1, stats.Messages)
	assert.Equal(t, 1, stats.Aliases)
	assert.Equal(t, 1, stats.Translations)
	assert.Equal(t, 1, stats.Languages)
}
