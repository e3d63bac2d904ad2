package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lingua-cli/internal/logger"
)

// Ensure IndexCoordinator implements the interface.
var _ driving.IndexCoordinator = (*IndexCoordinator)(nil)

// conflictPollInterval is how often a waiting build re-reads the shared
// progress record.
const conflictPollInterval = 500 * time.Millisecond

// defaultIgnoreDirs are directory names skipped during tree walks.
var defaultIgnoreDirs = []string{".git", ".svn", ".hg", "node_modules", "out", "build"}

// IndexCoordinator orchestrates full and incremental index builds.
// Every coordinator carries a unique owner token; the token written into
// the shared progress record is what lets concurrent processes tell their
// own build apart from someone else's.
type IndexCoordinator struct {
	ws           *domain.Workspace
	store        driven.IndexStore
	docParser    driven.DocumentParser
	bundleParser driven.BundleParser
	owner        string
	ignoreDirs   map[string]struct{}

	cancelRequested atomic.Bool
}

// NewIndexCoordinator creates a coordinator for one project workspace.
// extraIgnoreDirs supplements the built-in skip list.
func NewIndexCoordinator(
	ws *domain.Workspace,
	store driven.IndexStore,
	docParser driven.DocumentParser,
	bundleParser driven.BundleParser,
	extraIgnoreDirs []string,
) *IndexCoordinator {
	ignore := make(map[string]struct{})
	for _, d := range defaultIgnoreDirs {
		ignore[d] = struct{}{}
	}
	for _, d := range extraIgnoreDirs {
		if d != "" {
			ignore[d] = struct{}{}
		}
	}

	return &IndexCoordinator{
		ws:           ws,
		store:        store,
		docParser:    docParser,
		bundleParser: bundleParser,
		owner:        uuid.NewString(),
		ignoreDirs:   ignore,
	}
}

// Owner returns this coordinator's progress-record owner token.
func (c *IndexCoordinator) Owner() string {
	return c.owner
}

// buildState tracks one build's per-run bookkeeping: the summary under
// construction and the set of already-parsed files, which doubles as the
// fragment duplicate and cycle guard.
type buildState struct {
	summary driving.BuildSummary
	parsed  map[string]bool
}

func newBuildState() *buildState {
	return &buildState{parsed: make(map[string]bool)}
}

func (b *buildState) fail(path string, err error) {
	logger.Warn("skipping %s: %v", path, err)
	b.summary.Failures = append(b.summary.Failures, driving.BuildFailure{Path: path, Err: err})
}

// FullBuild indexes every master file under the project root.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (c *IndexCoordinator) FullBuild(ctx context.Context, opts driving.BuildOptions) (*driving.BuildSummary, error) {
	timeout := opts.HeartbeatTimeout
	if timeout <= 0 {
		timeout = domain.DefaultHeartbeatTimeout
	}
	c.cancelRequested.Store(false)

	progress := c.store.ProgressStore()

	resume, err := c.arbitrate(ctx, opts, timeout)
	if err != nil {
		return nil, err
	}

	masters, err := c.findMasters()
	if err != nil {
		return nil, fmt.Errorf("enumerating master files: %w", err)
	}

	var processedSet map[string]bool
	if resume {
		done, err := progress.Processed(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading processed log: %w", err)
		}
		processedSet = make(map[string]bool, len(done))
		for _, p := range done {
			processedSet[p] = true
		}
		// The interrupted run may have half-written the masters it never
		// logged as done. Purge their contributions so reindexing starts
		// from a clean slate.
		for _, m := range masters {
			if !processedSet[m] {
				if err := c.purgeMaster(ctx, m); err != nil {
					return nil, fmt.Errorf("purging interrupted master %s: %w", m, err)
				}
			}
		}
	} else {
		if err := progress.Reset(ctx); err != nil {
			return nil, fmt.Errorf("resetting build progress: %w", err)
		}
	}

	now := time.Now().UTC()
	record := domain.BuildProgress{
		Status:         domain.BuildIndexing,
		Owner:          c.owner,
		TotalFiles:     len(masters),
		ProcessedCount: len(processedSet),
		StartTime:      now,
		LastHeartbeat:  now,
	}
	if err := progress.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("saving build progress: %w", err)
	}

	state := newBuildState()
	start := time.Now()

	for _, master := range masters {
		if err := c.checkCancelled(ctx); err != nil {
			record.Status = domain.BuildCancelled
			record.LastHeartbeat = time.Now().UTC()
			if saveErr := progress.Save(ctx, record); saveErr != nil {
				logger.Warn("recording cancellation: %v", saveErr)
			}
			return nil, err
		}

		if processedSet[master] {
			state.summary.SkippedResumed++
			continue
		}

		if err := c.indexMaster(ctx, master, state); err != nil {
			state.fail(master, err)
		} else {
			state.summary.MastersIndexed++
		}

		if err := progress.MarkProcessed(ctx, master); err != nil {
			return nil, fmt.Errorf("marking %s processed: %w", master, err)
		}
		record.ProcessedCount++
		record.LastHeartbeat = time.Now().UTC()
		if err := progress.Save(ctx, record); err != nil {
			return nil, fmt.Errorf("refreshing heartbeat: %w", err)
		}
	}

	record.Status = domain.BuildCompleted
	record.LastHeartbeat = time.Now().UTC()
	if err := progress.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("completing build progress: %w", err)
	}
	if err := progress.ClearProcessed(ctx); err != nil {
		return nil, fmt.Errorf("clearing processed log: %w", err)
	}

	state.summary.Duration = time.Since(start)
	logger.Info("indexed %d masters, %d fragments, %d bundles, %d messages (%d failures)",
		state.summary.MastersIndexed, state.summary.FragmentsIndexed,
		state.summary.BundlesIndexed, state.summary.MessagesIndexed,
		len(state.summary.Failures))
	return &state.summary, nil
}

// arbitrate inspects the shared progress record and applies the caller's
// conflict and staleness policies. It reports whether the build should
// resume from the processed log.
func (c *IndexCoordinator) arbitrate(ctx context.Context, opts driving.BuildOptions, timeout time.Duration) (bool, error) {
	progress := c.store.ProgressStore()

	p, err := progress.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading build progress: %w", err)
	}
	if p.Status != domain.BuildIndexing {
		return false, nil
	}

	if p.ActiveElsewhere(c.owner, time.Now().UTC(), timeout) {
		switch opts.OnConflict {
		case driving.ConflictAbort:
			return false, fmt.Errorf("%w (owner %s)", domain.ErrBuildConflict, p.Owner)
		case driving.ConflictWait:
			p, err = c.waitForBuild(ctx, timeout)
			if err != nil {
				return false, err
			}
			if p == nil || p.Status != domain.BuildIndexing {
				return false, nil
			}
			// The other build went stale while we waited; fall through
			// to the staleness policy.
		case driving.ConflictTakeover:
			logger.Warn("taking over build from owner %s", p.Owner)
			if err := progress.Reset(ctx); err != nil {
				return false, fmt.Errorf("taking over build: %w", err)
			}
			return false, nil
		}
	}

	if !p.Stale(time.Now().UTC(), timeout) {
		// Our own fresh record in the indexing state means a reentrant
		// call; treat it like a restart.
		return false, nil
	}

	switch opts.OnStale {
	case driving.StaleAbort:
		return false, domain.ErrBuildInterrupted
	case driving.StaleResume:
		logger.Info("resuming interrupted build from owner %s", p.Owner)
		return true, nil
	case driving.StaleRestart:
		if err := progress.Reset(ctx); err != nil {
			return false, fmt.Errorf("restarting after interrupted build: %w", err)
		}
		return false, nil
	}
	return false, nil
}

// waitForBuild polls the progress record until the active build finishes
// or its heartbeat goes stale.
func (c *IndexCoordinator) waitForBuild(ctx context.Context, timeout time.Duration) (*domain.BuildProgress, error) {
	ticker := time.NewTicker(conflictPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			p, err := c.store.ProgressStore().Get(ctx)
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, fmt.Errorf("polling build progress: %w", err)
			}
			if !p.ActiveElsewhere(c.owner, time.Now().UTC(), timeout) {
				return p, nil
			}
		}
	}
}

// checkCancelled reports cooperative cancellation, requested either in
// this process or by another process writing the shared record.
func (c *IndexCoordinator) checkCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domain.ErrBuildCancelled
	}
	if c.cancelRequested.Load() {
		return domain.ErrBuildCancelled
	}
	p, err := c.store.ProgressStore().Get(ctx)
	if err == nil && p.Status == domain.BuildCancelled {
		return domain.ErrBuildCancelled
	}
	return nil
}

// Cancel requests cooperative cancellation of a running build. The
// in-flight file always finishes; the loop stops at its next check.
func (c *IndexCoordinator) Cancel(ctx context.Context) error {
	c.cancelRequested.Store(true)

	progress := c.store.ProgressStore()
	p, err := progress.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading build progress: %w", err)
	}
	if p.Status != domain.BuildIndexing {
		return nil
	}

	p.Status = domain.BuildCancelled
	if err := progress.Save(ctx, *p); err != nil {
		return fmt.Errorf("recording cancellation: %w", err)
	}
	return nil
}

// Progress reads the shared build-progress record.
func (c *IndexCoordinator) Progress(ctx context.Context) (*domain.BuildProgress, error) {
	return c.store.ProgressStore().Get(ctx)
}

// IndexFile incrementally (re)indexes one file by extension.
func (c *IndexCoordinator) IndexFile(ctx context.Context, path string) error {
	return c.ingest(ctx, path, driving.KindUnknown)
}

// OnFileCreated ingests a creation event from the watch layer.
func (c *IndexCoordinator) OnFileCreated(ctx context.Context, path string, kind driving.FileKindHint) error {
	return c.ingest(ctx, path, kind)
}

// OnFileChanged ingests a modification event from the watch layer.
func (c *IndexCoordinator) OnFileChanged(ctx context.Context, path string, kind driving.FileKindHint) error {
	return c.ingest(ctx, path, kind)
}

// OnFileDeleted removes the rows a deleted file contributed: messages for
// masters and fragments, translations for bundles.
func (c *IndexCoordinator) OnFileDeleted(ctx context.Context, p string, kind driving.FileKindHint) error {
	rel, err := c.ws.Rel(p)
	if err != nil {
		return err
	}

	switch resolveKind(rel, kind) {
	case domain.FileMaster, domain.FileFragment:
		if err := c.store.MessageStore().DeleteByFile(ctx, rel); err != nil {
			return fmt.Errorf("removing messages of %s: %w", rel, err)
		}
	case domain.FileBundle:
		if err := c.store.TranslationStore().DeleteByBundle(ctx, rel); err != nil {
			return fmt.Errorf("removing translations of %s: %w", rel, err)
		}
	default:
		return nil
	}

	if err := c.store.FileStore().Delete(ctx, rel); err != nil {
		return fmt.Errorf("removing file record %s: %w", rel, err)
	}
	logger.Debug("removed index data for deleted file %s", rel)
	return nil
}

// ingest routes a created or changed file to the right incremental path.
func (c *IndexCoordinator) ingest(ctx context.Context, p string, kind driving.FileKindHint) error {
	rel, err := c.ws.Rel(p)
	if err != nil {
		return err
	}

	switch resolveKind(rel, kind) {
	case domain.FileMaster:
		state := newBuildState()
		if err := c.indexMaster(ctx, rel, state); err != nil {
			return err
		}
	case domain.FileFragment:
		if err := c.indexOrphanFragment(ctx, rel); err != nil {
			return err
		}
	case domain.FileBundle:
		if err := c.indexBundle(ctx, rel, "", newBuildState()); err != nil {
			return err
		}
	default:
		logger.Debug("ignoring non-resource file %s", rel)
	}
	return nil
}

// resolveKind maps a path to a file kind, preferring the watch layer's
// hint over the extension.
func resolveKind(rel string, hint driving.FileKindHint) domain.FileKind {
	switch hint {
	case driving.KindMaster:
		return domain.FileMaster
	case driving.KindFragment:
		return domain.FileFragment
	case driving.KindBundle:
		return domain.FileBundle
	}

	switch strings.ToLower(path.Ext(rel)) {
	case ".grd":
		return domain.FileMaster
	case ".grdp":
		return domain.FileFragment
	case ".xtb":
		return domain.FileBundle
	}
	return ""
}

// findMasters walks the project tree collecting master files, skipping
// ignored and hidden directories.
func (c *IndexCoordinator) findMasters() ([]string, error) {
	var masters []string
	root := c.ws.Root()

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == root {
				return nil
			}
			name := d.Name()
			if _, skip := c.ignoreDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(p), ".grd") {
			rel, err := c.ws.Rel(p)
			if err != nil {
				return err
			}
			masters = append(masters, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return masters, nil
}

// indexMaster parses one master file and indexes its messages, fragments
// and bundles. Per-reference failures are logged into the build state.
func (c *IndexCoordinator) indexMaster(ctx context.Context, rel string, state *buildState) error {
	state.parsed[rel] = true

	result, err := c.parseDocument(rel)
	if err != nil {
		return err
	}

	if err := c.syncMessages(ctx, rel, result.Messages, state); err != nil {
		return err
	}
	if err := c.saveFileRecord(ctx, rel, domain.FileMaster, "", ""); err != nil {
		return err
	}

	for _, ref := range result.Fragments {
		fragRel, ok := c.resolveRef(rel, ref.Path)
		if !ok {
			state.fail(rel, &domain.MissingReferenceError{From: rel, Ref: ref.Path})
			continue
		}
		if state.parsed[fragRel] {
			continue
		}
		if err := c.indexFragment(ctx, fragRel, rel, state); err != nil {
			state.fail(fragRel, err)
		}
	}

	for _, ref := range result.Bundles {
		bundleRel, ok := c.resolveRef(rel, ref.Path)
		if !ok {
			state.fail(rel, &domain.MissingReferenceError{From: rel, Ref: ref.Path})
			continue
		}
		if err := c.indexBundle(ctx, bundleRel, ref.Lang, state); err != nil {
			state.fail(bundleRel, err)
		}
	}

	return nil
}

// indexFragment parses one fragment, attributes its messages to the
// fragment path and records the master as its parent. Nested fragment
// references resolve relative to the fragment itself.
func (c *IndexCoordinator) indexFragment(ctx context.Context, rel, masterRel string, state *buildState) error {
	state.parsed[rel] = true

	result, err := c.parseDocument(rel)
	if err != nil {
		return err
	}

	if err := c.syncMessages(ctx, rel, result.Messages, state); err != nil {
		return err
	}
	if err := c.saveFileRecord(ctx, rel, domain.FileFragment, "", masterRel); err != nil {
		return err
	}
	state.summary.FragmentsIndexed++

	for _, ref := range result.Fragments {
		nestedRel, ok := c.resolveRef(rel, ref.Path)
		if !ok {
			state.fail(rel, &domain.MissingReferenceError{From: rel, Ref: ref.Path})
			continue
		}
		if state.parsed[nestedRel] {
			continue
		}
		if err := c.indexFragment(ctx, nestedRel, masterRel, state); err != nil {
			state.fail(nestedRel, err)
		}
	}

	return nil
}

// indexBundle parses one translation bundle and replaces its contributed
// translations. Orphans (hashes with no message) are dropped quietly.
func (c *IndexCoordinator) indexBundle(ctx context.Context, rel, declaredLang string, state *buildState) error {
	content, err := os.ReadFile(c.ws.Abs(rel))
	if err != nil {
		return fmt.Errorf("reading bundle: %w", err)
	}

	result, err := c.bundleParser.ParseBundle(rel, content)
	if err != nil {
		return err
	}

	lang := result.Lang
	if lang == "" {
		lang = declaredLang
	}

	translations := c.store.TranslationStore()
	if err := translations.DeleteByBundle(ctx, rel); err != nil {
		return fmt.Errorf("clearing bundle translations: %w", err)
	}

	orphans := 0
	for _, tr := range result.Translations {
		ok, err := translations.Upsert(ctx, domain.Translation{
			IDHash:     tr.ID,
			Lang:       lang,
			Text:       tr.Text,
			BundlePath: rel,
		}, false)
		if err != nil {
			return fmt.Errorf("saving translation %s: %w", tr.ID, err)
		}
		if !ok {
			orphans++
		}
	}
	if orphans > 0 {
		logger.Debug("%s: dropped %d translations with no matching message", rel, orphans)
	}

	if err := c.saveFileRecord(ctx, rel, domain.FileBundle, lang, ""); err != nil {
		return err
	}
	state.summary.BundlesIndexed++
	return nil
}

// indexOrphanFragment reindexes a fragment changed on its own, resolving
// its defining master first.
func (c *IndexCoordinator) indexOrphanFragment(ctx context.Context, rel string) error {
	masterRel, err := c.resolveMaster(ctx, rel)
	if err != nil {
		return err
	}
	return c.indexFragment(ctx, rel, masterRel, newBuildState())
}

// resolveMaster finds the master file a fragment belongs to: the stored
// parent pointer first, then a raw-text scan of known masters for an
// include of the fragment.
func (c *IndexCoordinator) resolveMaster(ctx context.Context, fragRel string) (string, error) {
	if f, err := c.store.FileStore().Get(ctx, fragRel); err == nil && f.ParentPath != "" {
		return f.ParentPath, nil
	}

	masters, err := c.knownMasters(ctx)
	if err != nil {
		return "", err
	}

	base := path.Base(fragRel)
	for _, m := range masters {
		content, err := os.ReadFile(c.ws.Abs(m))
		if err != nil {
			continue
		}
		if !strings.Contains(string(content), base) {
			continue
		}
		// Candidate include. Confirm the reference actually resolves to
		// this fragment rather than a same-named file elsewhere.
		result, err := c.docParser.Parse(m, content)
		if err != nil {
			continue
		}
		for _, ref := range result.Fragments {
			if resolved, ok := c.resolveRef(m, ref.Path); ok && resolved == fragRel {
				return m, nil
			}
		}
	}

	return "", fmt.Errorf("fragment %s: %w", fragRel, domain.ErrNotFound)
}

// knownMasters prefers the indexed master list and falls back to walking
// the tree before the first build.
func (c *IndexCoordinator) knownMasters(ctx context.Context) ([]string, error) {
	files, err := c.store.FileStore().List(ctx, domain.FileMaster)
	if err != nil {
		return nil, fmt.Errorf("listing master files: %w", err)
	}
	if len(files) > 0 {
		masters := make([]string, len(files))
		for i, f := range files {
			masters[i] = f.Path
		}
		return masters, nil
	}
	return c.findMasters()
}

// purgeMaster removes everything a master and its fragments contributed.
func (c *IndexCoordinator) purgeMaster(ctx context.Context, masterRel string) error {
	messages := c.store.MessageStore()
	files := c.store.FileStore()

	if err := messages.DeleteByFile(ctx, masterRel); err != nil {
		return err
	}

	fragments, err := files.List(ctx, domain.FileFragment)
	if err != nil {
		return err
	}
	for _, f := range fragments {
		if f.ParentPath != masterRel {
			continue
		}
		if err := messages.DeleteByFile(ctx, f.Path); err != nil {
			return err
		}
		if err := files.Delete(ctx, f.Path); err != nil {
			return err
		}
	}

	return files.Delete(ctx, masterRel)
}

// syncMessages writes a file's parsed messages and diffs the stored hash
// set minimally: hashes present before and after are only updated in
// place, so their translations are never disturbed.
func (c *IndexCoordinator) syncMessages(ctx context.Context, rel string, parsed []driven.ParsedMessage, state *buildState) error {
	messages := c.store.MessageStore()

	before, err := messages.HashesByFile(ctx, rel)
	if err != nil {
		return fmt.Errorf("reading stored hashes: %w", err)
	}

	after := make(map[string]bool, len(parsed))
	for _, pm := range parsed {
		presentable := domain.PresentableText(pm.Nodes)
		msg := domain.Message{
			IDHash:       domain.MessageID(presentable, pm.Meaning),
			Name:         pm.Name,
			Presentable:  presentable,
			Translatable: domain.TranslatableText(pm.Nodes),
			Description:  pm.Description,
			Meaning:      pm.Meaning,
			FilePath:     rel,
			StartLine:    pm.StartLine,
			EndLine:      pm.EndLine,
		}
		if err := messages.Upsert(ctx, msg); err != nil {
			return fmt.Errorf("saving message %s: %w", pm.Name, err)
		}
		if !after[msg.IDHash] {
			after[msg.IDHash] = true
			state.summary.MessagesIndexed++
		}
	}

	var removed []string
	for _, h := range before {
		if !after[h] {
			removed = append(removed, h)
		}
	}
	if len(removed) > 0 {
		if err := messages.Delete(ctx, removed); err != nil {
			return fmt.Errorf("removing outdated messages: %w", err)
		}
		logger.Debug("%s: removed %d outdated messages", rel, len(removed))
	}

	return nil
}

// parseDocument reads and parses one master or fragment file.
func (c *IndexCoordinator) parseDocument(rel string) (*driven.ParseResult, error) {
	content, err := os.ReadFile(c.ws.Abs(rel))
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return c.docParser.Parse(rel, content)
}

// saveFileRecord stores the tracking record for one indexed file.
func (c *IndexCoordinator) saveFileRecord(ctx context.Context, rel string, kind domain.FileKind, lang, parent string) error {
	var modTime time.Time
	if info, err := os.Stat(c.ws.Abs(rel)); err == nil {
		modTime = info.ModTime().UTC()
	}

	err := c.store.FileStore().Save(ctx, domain.File{
		Path:       rel,
		Kind:       kind,
		Lang:       lang,
		ParentPath: parent,
		ModTime:    modTime,
		IndexedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("saving file record: %w", err)
	}
	return nil
}

// resolveRef resolves a reference as written in source against the
// referencing file's directory, climbing towards the project root when
// the sibling form does not exist.
func (c *IndexCoordinator) resolveRef(fromRel, ref string) (string, bool) {
	ref = filepath.ToSlash(ref)
	dir := path.Dir(fromRel)
	for {
		candidate := path.Clean(path.Join(dir, ref))
		if strings.HasPrefix(candidate, "../") {
			return "", false
		}
		if info, err := os.Stat(c.ws.Abs(candidate)); err == nil && !info.IsDir() {
			return candidate, true
		}
		if dir == "." {
			return "", false
		}
		dir = path.Dir(dir)
	}
}
