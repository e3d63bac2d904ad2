package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lingua-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lingua-cli/internal/parsers/grd"
	"github.com/custodia-labs/lingua-cli/internal/parsers/xtb"
)

const testMaster = `<?xml version="1.0" encoding="UTF-8"?>
<grit latest_public_release="0" current_release="1">
  <translations>
    <file path="fr.xtb" lang="fr" />
  </translations>
  <release seq="1">
    <messages>
      <part file="more_strings.grdp" />
      <message name="IDS_OK" desc="Button label">
        OK
      </message>
    </messages>
  </release>
</grit>
`

const testFragment = `<?xml version="1.0" encoding="UTF-8"?>
<grit-part>
  <message name="IDS_CANCEL">
    Cancel
  </message>
</grit-part>
`

const testBundle = `<?xml version="1.0" ?>
<translationbundle lang="fr">
  <translation id="6965382102122355670">OK</translation>
  <translation id="7658239707568436148">Annuler</translation>
  <translation id="140000000000000000">Sans message</translation>
</translationbundle>
`

// setupCoordinator writes project files into a temp root and wires a
// coordinator over an in-memory store.
func setupCoordinator(t *testing.T, files map[string]string) (*IndexCoordinator, *memory.Store, *domain.Workspace) {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	ws, err := domain.NewWorkspace(root)
	require.NoError(t, err)

	store := memory.NewStore()
	coordinator := NewIndexCoordinator(ws, store, grd.New(), xtb.New(), nil)
	return coordinator, store, ws
}

func TestFullBuild(t *testing.T) {
	coordinator, store, _ := setupCoordinator(t, map[string]string{
		"app/strings.grd":      testMaster,
		"app/more_strings.grdp": testFragment,
		"app/fr.xtb":           testBundle,
	})
	ctx := context.Background()

	summary, err := coordinator.FullBuild(ctx, driving.BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.MastersIndexed)
	assert.Equal(t, 1, summary.FragmentsIndexed)
	assert.Equal(t, 1, summary.BundlesIndexed)
	assert.Equal(t, 2, summary.MessagesIndexed)
	assert.Empty(t, summary.Failures)

	ok, err := store.MessageStore().GetByName(ctx, "IDS_OK")
	require.NoError(t, err)
	assert.Equal(t, domain.MessageID("OK", ""), ok.IDHash)
	assert.Equal(t, "app/strings.grd", ok.FilePath)

	cancel, err := store.MessageStore().GetByName(ctx, "IDS_CANCEL")
	require.NoError(t, err)
	assert.Equal(t, "app/more_strings.grdp", cancel.FilePath)

	trs, err := store.TranslationStore().ForMessage(ctx, ok.IDHash)
	require.NoError(t, err)
	assert.Equal(t, "OK", trs["fr"].Text)

	// The bundle's unknown hash was dropped, not stored.
	orphans, err := store.TranslationStore().ForMessage(ctx, "140000000000000000")
	require.NoError(t, err)
	assert.Empty(t, orphans)

	frag, err := store.FileStore().Get(ctx, "app/more_strings.grdp")
	require.NoError(t, err)
	assert.Equal(t, domain.FileFragment, frag.Kind)
	assert.Equal(t, "app/strings.grd", frag.ParentPath)

	progress, err := coordinator.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.BuildCompleted, progress.Status)
	assert.Equal(t, coordinator.Owner(), progress.Owner)

	processed, err := store.ProgressStore().Processed(ctx)
	require.NoError(t, err)
	assert.Empty(t, processed, "log cleared after completion")
}

func TestFullBuild_MissingFragmentIsNotFatal(t *testing.T) {
	coordinator, store, _ := setupCoordinator(t, map[string]string{
		"app/strings.grd": testMaster, // references more_strings.grdp and fr.xtb, neither present
	})
	ctx := context.Background()

	summary, err := coordinator.FullBuild(ctx, driving.BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.MastersIndexed)
	assert.Len(t, summary.Failures, 2)

	_, err = store.MessageStore().GetByName(ctx, "IDS_OK")
	assert.NoError(t, err, "the master's own messages still indexed")
}

func TestFullBuild_ConflictAbort(t *testing.T) {
	coordinator, store, _ := setupCoordinator(t, map[string]string{
		"app/strings.grd": testMaster,
	})
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, store.ProgressStore().Save(ctx, domain.BuildProgress{
		Status:        domain.BuildIndexing,
		Owner:         "other-process",
		StartTime:     now,
		LastHeartbeat: now,
	}))

	_, err := coordinator.FullBuild(ctx, driving.BuildOptions{OnConflict: driving.ConflictAbort})
	assert.ErrorIs(t, err, domain.ErrBuildConflict)
}

func TestFullBuild_ConflictTakeover(t *testing.T) {
	coordinator, store, _ := setupCoordinator(t, map[string]string{
		"app/strings.grd": testMaster,
	})
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, store.ProgressStore().Save(ctx, domain.BuildProgress{
		Status:        domain.BuildIndexing,
		Owner:         "other-process",
		StartTime:     now,
		LastHeartbeat: now,
	}))

	summary, err := coordinator.FullBuild(ctx, driving.BuildOptions{OnConflict: driving.ConflictTakeover})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.MastersIndexed)

	progress, err := coordinator.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.BuildCompleted, progress.Status)
	assert.Equal(t, coordinator.Owner(), progress.Owner)
}

func TestFullBuild_StaleAbort(t *testing.T) {
	coordinator, store, _ := setupCoordinator(t, map[string]string{
		"app/strings.grd": testMaster,
	})
	ctx := context.Background()

	require.NoError(t, store.ProgressStore().Save(ctx, domain.BuildProgress{
		Status:        domain.BuildIndexing,
		Owner:         "crashed-process",
		LastHeartbeat: time.Now().UTC().Add(-time.Hour),
	}))

	_, err := coordinator.FullBuild(ctx, driving.BuildOptions{OnStale: driving.StaleAbort})
	assert.ErrorIs(t, err, domain.ErrBuildInterrupted)
}

func TestFullBuild_StaleResume(t *testing.T) {
	coordinator, store, _ := setupCoordinator(t, map[string]string{
		"a/one.grd": testMasterNamed("IDS_ONE", "First"),
		"b/two.grd": testMasterNamed("IDS_TWO", "Second"),
	})
	ctx := context.Background()

	// The crashed run finished a/one.grd and died inside b/two.grd,
	// leaving a half-written message behind.
	require.NoError(t, store.MessageStore().Upsert(ctx, domain.Message{
		IDHash: "12345", Name: "IDS_STALE", Presentable: "stale", FilePath: "b/two.grd",
	}))
	require.NoError(t, store.ProgressStore().MarkProcessed(ctx, "a/one.grd"))
	require.NoError(t, store.ProgressStore().Save(ctx, domain.BuildProgress{
		Status:        domain.BuildIndexing,
		Owner:         "crashed-process",
		LastHeartbeat: time.Now().UTC().Add(-time.Hour),
	}))

	summary, err := coordinator.FullBuild(ctx, driving.BuildOptions{OnStale: driving.StaleResume})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SkippedResumed)
	assert.Equal(t, 1, summary.MastersIndexed)

	// The interrupted master's half-written data was purged first.
	_, err = store.MessageStore().Get(ctx, "12345")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.MessageStore().GetByName(ctx, "IDS_TWO")
	assert.NoError(t, err)
}

func TestFullBuild_StaleRestart(t *testing.T) {
	coordinator, store, _ := setupCoordinator(t, map[string]string{
		"a/one.grd": testMasterNamed("IDS_ONE", "First"),
	})
	ctx := context.Background()

	require.NoError(t, store.ProgressStore().MarkProcessed(ctx, "a/one.grd"))
	require.NoError(t, store.ProgressStore().Save(ctx, domain.BuildProgress{
		Status:        domain.BuildIndexing,
		Owner:         "crashed-process",
		LastHeartbeat: time.Now().UTC().Add(-time.Hour),
	}))

	summary, err := coordinator.FullBuild(ctx, driving.BuildOptions{OnStale: driving.StaleRestart})
	require.NoError(t, err)

	assert.Zero(t, summary.SkippedResumed, "restart ignores the processed log")
	assert.Equal(t, 1, summary.MastersIndexed)
}

func TestIndexFile_MinimalDiff(t *testing.T) {
	coordinator, store, ws := setupCoordinator(t, map[string]string{
		"app/strings.grd":      testMaster,
		"app/more_strings.grdp": testFragment,
		"app/fr.xtb":           testBundle,
	})
	ctx := context.Background()

	_, err := coordinator.FullBuild(ctx, driving.BuildOptions{})
	require.NoError(t, err)

	okHash := domain.MessageID("OK", "")
	oldCancelHash := domain.MessageID("Cancel", "")

	// Reword the fragment's message; the master's message is untouched.
	changed := `<?xml version="1.0" encoding="UTF-8"?>
<grit-part>
  <message name="IDS_CANCEL">
    Dismiss
  </message>
</grit-part>
`
	fragPath := filepath.Join(ws.Root(), "app", "more_strings.grdp")
	require.NoError(t, os.WriteFile(fragPath, []byte(changed), 0o644))
	require.NoError(t, coordinator.IndexFile(ctx, fragPath))

	// The unchanged message and its translation survive untouched.
	trs, err := store.TranslationStore().ForMessage(ctx, okHash)
	require.NoError(t, err)
	assert.Equal(t, "OK", trs["fr"].Text)

	// The reworded message got a new hash; the old row is gone.
	_, err = store.MessageStore().Get(ctx, oldCancelHash)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cancel, err := store.MessageStore().GetByName(ctx, "IDS_CANCEL")
	require.NoError(t, err)
	assert.Equal(t, "Dismiss", cancel.Presentable)
	assert.Equal(t, domain.MessageID("Dismiss", ""), cancel.IDHash)
}

func TestIndexFile_FragmentWithoutPriorIndex(t *testing.T) {
	coordinator, store, ws := setupCoordinator(t, map[string]string{
		"app/strings.grd":      testMaster,
		"app/more_strings.grdp": testFragment,
	})
	ctx := context.Background()

	// No build has run; master resolution falls back to scanning the
	// tree for an include of this fragment.
	fragPath := filepath.Join(ws.Root(), "app", "more_strings.grdp")
	require.NoError(t, coordinator.IndexFile(ctx, fragPath))

	frag, err := store.FileStore().Get(ctx, "app/more_strings.grdp")
	require.NoError(t, err)
	assert.Equal(t, "app/strings.grd", frag.ParentPath)

	_, err = store.MessageStore().GetByName(ctx, "IDS_CANCEL")
	assert.NoError(t, err)
}

func TestOnFileDeleted(t *testing.T) {
	coordinator, store, ws := setupCoordinator(t, map[string]string{
		"app/strings.grd":      testMaster,
		"app/more_strings.grdp": testFragment,
		"app/fr.xtb":           testBundle,
	})
	ctx := context.Background()

	_, err := coordinator.FullBuild(ctx, driving.BuildOptions{})
	require.NoError(t, err)

	okHash := domain.MessageID("OK", "")

	require.NoError(t, coordinator.OnFileDeleted(ctx,
		filepath.Join(ws.Root(), "app", "fr.xtb"), driving.KindUnknown))

	trs, err := store.TranslationStore().ForMessage(ctx, okHash)
	require.NoError(t, err)
	assert.Empty(t, trs, "bundle deletion removes its translations")

	_, err = store.MessageStore().Get(ctx, okHash)
	assert.NoError(t, err, "messages survive a bundle deletion")

	require.NoError(t, coordinator.OnFileDeleted(ctx,
		filepath.Join(ws.Root(), "app", "strings.grd"), driving.KindUnknown))

	_, err = store.MessageStore().Get(ctx, okHash)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancel_MarksSharedRecord(t *testing.T) {
	coordinator, store, _ := setupCoordinator(t, map[string]string{
		"app/strings.grd": testMaster,
	})
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, store.ProgressStore().Save(ctx, domain.BuildProgress{
		Status:        domain.BuildIndexing,
		Owner:         "other-process",
		LastHeartbeat: now,
	}))

	require.NoError(t, coordinator.Cancel(ctx))

	progress, err := coordinator.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.BuildCancelled, progress.Status)
}

func TestResolveKind(t *testing.T) {
	tests := []struct {
		path string
		hint driving.FileKindHint
		want domain.FileKind
	}{
		{"app/strings.grd", driving.KindUnknown, domain.FileMaster},
		{"app/strings.grdp", driving.KindUnknown, domain.FileFragment},
		{"app/fr.xtb", driving.KindUnknown, domain.FileBundle},
		{"app/readme.md", driving.KindUnknown, ""},
		{"ambiguous.dat", driving.KindBundle, domain.FileBundle},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveKind(tt.path, tt.hint), tt.path)
	}
}

func TestIsResourcePath(t *testing.T) {
	assert.True(t, isResourcePath("a/strings.grd"))
	assert.True(t, isResourcePath("a/strings.GRDP"))
	assert.True(t, isResourcePath("a/fr.xtb"))
	assert.False(t, isResourcePath("a/strings.xml"))
}

// testMasterNamed builds a minimal master with a single message.
func testMasterNamed(name, text string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<grit latest_public_release="0" current_release="1">
  <release seq="1">
    <messages>
      <message name="` + name + `">
        ` + text + `
      </message>
    </messages>
  </release>
</grit>
`
}
