// Package memory provides in-memory implementations of the storage
// driven ports, primarily for tests. Semantics mirror the SQLite
// adapter: first-writer-wins aliases, orphan-tolerant translation
// upserts and a singleton build-progress record.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driven"
)

// Store is an in-memory IndexStore.
type Store struct {
	mu           sync.RWMutex
	files        map[string]domain.File
	messages     map[string]domain.Message
	aliases      map[string]string
	translations map[string]map[string]domain.Translation // hash -> lang
	progress     *domain.BuildProgress
	processed    []string
}

var _ driven.IndexStore = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		files:        make(map[string]domain.File),
		messages:     make(map[string]domain.Message),
		aliases:      make(map[string]string),
		translations: make(map[string]map[string]domain.Translation),
	}
}

// FileStore returns a FileStore interface backed by this store.
func (s *Store) FileStore() driven.FileStore { return &fileStore{s} }

// MessageStore returns a MessageStore interface backed by this store.
func (s *Store) MessageStore() driven.MessageStore { return &messageStore{s} }

// TranslationStore returns a TranslationStore interface backed by this store.
func (s *Store) TranslationStore() driven.TranslationStore { return &translationStore{s} }

// ProgressStore returns a ProgressStore interface backed by this store.
func (s *Store) ProgressStore() driven.ProgressStore { return &progressStore{s} }

// Stats returns whole-store counts.
func (s *Store) Stats(_ context.Context) (domain.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.IndexStats{
		Files:    len(s.files),
		Messages: len(s.messages),
		Aliases:  len(s.aliases),
	}
	for _, f := range s.files {
		switch f.Kind {
		case domain.FileMaster:
			stats.Masters++
		case domain.FileFragment:
			stats.Fragments++
		case domain.FileBundle:
			stats.Bundles++
		}
	}
	langs := make(map[string]bool)
	for _, byLang := range s.translations {
		for lang := range byLang {
			stats.Translations++
			langs[lang] = true
		}
	}
	stats.Languages = len(langs)
	return stats, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// ==================== File Store ====================

type fileStore struct{ s *Store }

var _ driven.FileStore = (*fileStore)(nil)

func (f *fileStore) Save(_ context.Context, file domain.File) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if file.IndexedAt.IsZero() {
		file.IndexedAt = time.Now().UTC()
	}
	f.s.files[file.Path] = file
	return nil
}

func (f *fileStore) Get(_ context.Context, path string) (*domain.File, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()
	file, ok := f.s.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &file, nil
}

func (f *fileStore) List(_ context.Context, kind domain.FileKind) ([]domain.File, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()
	var files []domain.File
	for _, file := range f.s.files {
		if kind == "" || file.Kind == kind {
			files = append(files, file)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (f *fileStore) SetParent(_ context.Context, path, parentPath string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if file, ok := f.s.files[path]; ok {
		file.ParentPath = parentPath
		f.s.files[path] = file
	}
	return nil
}

func (f *fileStore) Delete(_ context.Context, path string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.files, path)
	return nil
}

// ==================== Message Store ====================

type messageStore struct{ s *Store }

var _ driven.MessageStore = (*messageStore)(nil)

func (m *messageStore) Upsert(_ context.Context, msg domain.Message) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	msg.UpdatedAt = time.Now().UTC()
	m.s.messages[msg.IDHash] = msg
	if msg.Name != "" {
		if _, taken := m.s.aliases[msg.Name]; !taken {
			m.s.aliases[msg.Name] = msg.IDHash
		}
	}
	return nil
}

func (m *messageStore) Get(_ context.Context, idHash string) (*domain.Message, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	msg, ok := m.s.messages[idHash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &msg, nil
}

func (m *messageStore) GetByName(ctx context.Context, name string) (*domain.Message, error) {
	m.s.mu.RLock()
	hash, ok := m.s.aliases[name]
	m.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.Get(ctx, hash)
}

func (m *messageStore) GetByNameAndFile(_ context.Context, name, filePath string) (*domain.Message, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, msg := range m.s.messages {
		if msg.Name == name && msg.FilePath == filePath {
			return &msg, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *messageStore) ListByFile(_ context.Context, filePath string) ([]domain.Message, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var msgs []domain.Message
	for _, msg := range m.s.messages {
		if msg.FilePath == filePath {
			msgs = append(msgs, msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].StartLine != msgs[j].StartLine {
			return msgs[i].StartLine < msgs[j].StartLine
		}
		return msgs[i].Name < msgs[j].Name
	})
	return msgs, nil
}

func (m *messageStore) HashesByFile(_ context.Context, filePath string) ([]string, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var hashes []string
	for hash, msg := range m.s.messages {
		if msg.FilePath == filePath {
			hashes = append(hashes, hash)
		}
	}
	sort.Strings(hashes)
	return hashes, nil
}

func (m *messageStore) Delete(_ context.Context, idHashes []string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, hash := range idHashes {
		m.s.deleteMessageLocked(hash)
	}
	return nil
}

func (m *messageStore) DeleteByFile(_ context.Context, filePath string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for hash, msg := range m.s.messages {
		if msg.FilePath == filePath {
			m.s.deleteMessageLocked(hash)
		}
	}
	return nil
}

func (s *Store) deleteMessageLocked(hash string) {
	delete(s.messages, hash)
	delete(s.translations, hash)
	for name, h := range s.aliases {
		if h == hash {
			delete(s.aliases, name)
		}
	}
}

func (m *messageStore) Search(_ context.Context, keyword string, limit, offset int) (domain.SearchPage, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	needle := strings.ToLower(keyword)

	var results []domain.SearchResult
	for hash, msg := range m.s.messages {
		rank := -1
		matchedLang := ""

		for name, h := range m.s.aliases {
			if h != hash {
				continue
			}
			lower := strings.ToLower(name)
			if lower == needle {
				rank = 0
				break
			}
			if strings.HasPrefix(lower, needle) {
				rank = 1
			}
		}
		if rank != 0 && strings.Contains(strings.ToLower(msg.Presentable), needle) {
			if rank < 0 || rank > 2 {
				rank = 2
			}
		}
		if rank < 0 {
			var langs []string
			for lang, tr := range m.s.translations[hash] {
				if strings.Contains(strings.ToLower(tr.Text), needle) {
					langs = append(langs, lang)
				}
			}
			if len(langs) > 0 {
				sort.Strings(langs)
				rank = 3
				matchedLang = langs[0]
			}
		}

		if rank >= 0 {
			results = append(results, domain.SearchResult{Message: msg, Rank: rank, MatchedLang: matchedLang})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Rank != results[j].Rank {
			return results[i].Rank < results[j].Rank
		}
		return results[i].Message.Name < results[j].Message.Name
	})

	page := domain.SearchPage{Total: len(results)}
	if offset < len(results) {
		end := offset + limit
		if end > len(results) {
			end = len(results)
		}
		page.Results = results[offset:end]
	}
	return page, nil
}

// ==================== Translation Store ====================

type translationStore struct{ s *Store }

var _ driven.TranslationStore = (*translationStore)(nil)

func (t *translationStore) Upsert(_ context.Context, tr domain.Translation, skipCheck bool) (bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if !skipCheck {
		if _, ok := t.s.messages[tr.IDHash]; !ok {
			return false, nil
		}
	}
	byLang, ok := t.s.translations[tr.IDHash]
	if !ok {
		byLang = make(map[string]domain.Translation)
		t.s.translations[tr.IDHash] = byLang
	}
	byLang[tr.Lang] = tr
	return true, nil
}

func (t *translationStore) ForMessage(_ context.Context, idHash string) (map[string]domain.Translation, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	result := make(map[string]domain.Translation, len(t.s.translations[idHash]))
	for lang, tr := range t.s.translations[idHash] {
		result[lang] = tr
	}
	return result, nil
}

func (t *translationStore) BatchGet(_ context.Context, idHashes []string, lang string) (map[string]domain.Translation, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	result := make(map[string]domain.Translation)
	for _, hash := range idHashes {
		if tr, ok := t.s.translations[hash][lang]; ok {
			result[hash] = tr
		}
	}
	return result, nil
}

func (t *translationStore) DeleteByBundle(_ context.Context, bundlePath string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for hash, byLang := range t.s.translations {
		for lang, tr := range byLang {
			if tr.BundlePath == bundlePath {
				delete(byLang, lang)
			}
		}
		if len(byLang) == 0 {
			delete(t.s.translations, hash)
		}
	}
	return nil
}

func (t *translationStore) Languages(_ context.Context) ([]string, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	seen := make(map[string]bool)
	for hash, byLang := range t.s.translations {
		if _, ok := t.s.messages[hash]; !ok {
			continue
		}
		for lang := range byLang {
			seen[lang] = true
		}
	}
	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs, nil
}

func (t *translationStore) Missing(_ context.Context, lang string) ([]domain.Message, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	var msgs []domain.Message
	for hash, msg := range t.s.messages {
		if _, ok := t.s.translations[hash][lang]; !ok {
			msgs = append(msgs, msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Name < msgs[j].Name })
	return msgs, nil
}

func (t *translationStore) Coverage(_ context.Context) ([]domain.CoverageStats, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	counts := make(map[string]int)
	for hash, byLang := range t.s.translations {
		if _, ok := t.s.messages[hash]; !ok {
			continue
		}
		for lang := range byLang {
			counts[lang]++
		}
	}
	stats := make([]domain.CoverageStats, 0, len(counts))
	for lang, translated := range counts {
		stats = append(stats, domain.CoverageStats{
			Lang:       lang,
			Translated: translated,
			Missing:    len(t.s.messages) - translated,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Lang < stats[j].Lang })
	return stats, nil
}

// ==================== Progress Store ====================

type progressStore struct{ s *Store }

var _ driven.ProgressStore = (*progressStore)(nil)

func (p *progressStore) Get(_ context.Context) (*domain.BuildProgress, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	if p.s.progress == nil {
		return nil, domain.ErrNotFound
	}
	record := *p.s.progress
	return &record, nil
}

func (p *progressStore) Save(_ context.Context, record domain.BuildProgress) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.progress = &record
	return nil
}

func (p *progressStore) Reset(_ context.Context) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.progress = &domain.BuildProgress{Status: domain.BuildIdle}
	p.s.processed = nil
	return nil
}

func (p *progressStore) MarkProcessed(_ context.Context, path string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for _, existing := range p.s.processed {
		if existing == path {
			return nil
		}
	}
	p.s.processed = append(p.s.processed, path)
	return nil
}

func (p *progressStore) Processed(_ context.Context) ([]string, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	return append([]string(nil), p.s.processed...), nil
}

func (p *progressStore) ClearProcessed(_ context.Context) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.processed = nil
	return nil
}
