package domain

import (
	"crypto/md5" //nolint:gosec // store identity, not security
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// Workspace resolves between absolute paths and the project-root-relative
// form used for all persisted storage. Relative paths are always
// slash-separated regardless of platform, which keeps a store portable
// across machines sharing the same layout.
type Workspace struct {
	root string
}

// NewWorkspace creates a workspace rooted at the given directory.
// The root is absolutised and cleaned once; the same checkout opened from
// a different mount point is deliberately treated as a distinct project.
func NewWorkspace(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	return &Workspace{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute project root.
func (w *Workspace) Root() string {
	return w.root
}

// Rel converts an absolute path to the persisted project-relative form.
// Paths already relative are normalised to slashes and returned as-is.
func (w *Workspace) Rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", fmt.Errorf("relativising %s: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s escapes project root %s", path, w.root)
	}
	return filepath.ToSlash(rel), nil
}

// Abs converts a persisted project-relative path back to a native
// absolute path.
func (w *Workspace) Abs(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// StoreID derives the project-scoped store identifier from the absolute
// root: the first 12 hex characters of its MD5. Two checkouts of the same
// logical project on one machine get distinct stores.
func (w *Workspace) StoreID() string {
	sum := md5.Sum([]byte(w.root)) //nolint:gosec
	return hex.EncodeToString(sum[:])[:12]
}

// StoreFilename is the deterministic store filename for this workspace.
func (w *Workspace) StoreFilename() string {
	return "index-" + w.StoreID() + ".db"
}
