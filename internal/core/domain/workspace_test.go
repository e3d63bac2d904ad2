package domain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWorkspace_RelAbsRoundTrip tests path conversion both ways
func TestWorkspace_RelAbsRoundTrip(t *testing.T) {
	root := t.TempDir()
	ws, err := NewWorkspace(root)
	require.NoError(t, err)

	abs := filepath.Join(root, "app", "strings.grd")
	rel, err := ws.Rel(abs)
	require.NoError(t, err)
	assert.Equal(t, "app/strings.grd", rel)
	assert.Equal(t, abs, ws.Abs(rel))
}

// TestWorkspace_RelRejectsEscapes tests paths outside the root
func TestWorkspace_RelRejectsEscapes(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	require.NoError(t, err)

	_, err = ws.Rel(filepath.Join(ws.Root(), "..", "elsewhere.grd"))
	assert.Error(t, err)
}

// TestWorkspace_RelPassesRelative tests already-relative input
func TestWorkspace_RelPassesRelative(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	require.NoError(t, err)

	rel, err := ws.Rel("app/strings.grd")
	require.NoError(t, err)
	assert.Equal(t, "app/strings.grd", rel)
}

// TestWorkspace_StoreIDDeterministic tests the store identity derivation
func TestWorkspace_StoreIDDeterministic(t *testing.T) {
	root := t.TempDir()
	ws1, err := NewWorkspace(root)
	require.NoError(t, err)
	ws2, err := NewWorkspace(root)
	require.NoError(t, err)

	assert.Equal(t, ws1.StoreID(), ws2.StoreID())
	assert.Len(t, ws1.StoreID(), 12)
	assert.Equal(t, "index-"+ws1.StoreID()+".db", ws1.StoreFilename())
}

// TestWorkspace_StoreIDDistinctRoots tests two roots do not collide
func TestWorkspace_StoreIDDistinctRoots(t *testing.T) {
	ws1, err := NewWorkspace(t.TempDir())
	require.NoError(t, err)
	ws2, err := NewWorkspace(t.TempDir())
	require.NoError(t, err)

	assert.NotEqual(t, ws1.StoreID(), ws2.StoreID())
}
