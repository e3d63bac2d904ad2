package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/lingua-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driven"
)

// defaultSearchLimit is the page size used when the caller passes none.
const defaultSearchLimit = 20

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.IndexStore = (*Store)(nil)

// NewStore creates or opens a SQLite store for one project index.
// If dataDir is empty, defaults to ~/.lingua/data. filename is the
// per-project database name, derived from the project root.
func NewStore(dataDir, filename string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lingua", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, filename)

	// Open database with WAL mode for better concurrency. Pragmas ride
	// the DSN so every pooled connection gets them; foreign_keys in
	// particular is per-connection state, and alias cascades depend on
	// it being on everywhere.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// StoreExists reports whether a project index database already exists
// without creating one.
func StoreExists(dataDir, filename string) bool {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return false
		}
		dataDir = filepath.Join(home, ".lingua", "data")
	}
	_, err := os.Stat(filepath.Join(dataDir, filename))
	return err == nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// FileStore returns a FileStore interface backed by this store.
func (s *Store) FileStore() driven.FileStore {
	return &fileStore{store: s}
}

// MessageStore returns a MessageStore interface backed by this store.
func (s *Store) MessageStore() driven.MessageStore {
	return &messageStore{store: s}
}

// TranslationStore returns a TranslationStore interface backed by this store.
func (s *Store) TranslationStore() driven.TranslationStore {
	return &translationStore{store: s}
}

// ProgressStore returns a ProgressStore interface backed by this store.
func (s *Store) ProgressStore() driven.ProgressStore {
	return &progressStore{store: s}
}

// Stats returns whole-store counts.
func (s *Store) Stats(ctx context.Context) (domain.IndexStats, error) {
	var stats domain.IndexStats
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM files),
			(SELECT COUNT(*) FROM files WHERE kind = ?),
			(SELECT COUNT(*) FROM files WHERE kind = ?),
			(SELECT COUNT(*) FROM files WHERE kind = ?),
			(SELECT COUNT(*) FROM messages),
			(SELECT COUNT(*) FROM aliases),
			(SELECT COUNT(*) FROM translations),
			(SELECT COUNT(DISTINCT lang) FROM translations)
	`, domain.FileMaster, domain.FileFragment, domain.FileBundle)

	if err := row.Scan(&stats.Files, &stats.Masters, &stats.Fragments, &stats.Bundles,
		&stats.Messages, &stats.Aliases, &stats.Translations, &stats.Languages); err != nil {
		return domain.IndexStats{}, fmt.Errorf("scanning stats: %w", err)
	}
	return stats, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== File Store ====================

// fileStore implements driven.FileStore.
type fileStore struct {
	store *Store
}

var _ driven.FileStore = (*fileStore)(nil)

// Save stores or updates a file record.
func (s *fileStore) Save(ctx context.Context, file domain.File) error {
	if file.IndexedAt.IsZero() {
		file.IndexedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO files (path, kind, lang, parent_path, mod_time, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			kind = excluded.kind,
			lang = excluded.lang,
			parent_path = excluded.parent_path,
			mod_time = excluded.mod_time,
			indexed_at = excluded.indexed_at
	`, file.Path, string(file.Kind), file.Lang, file.ParentPath, file.ModTime, file.IndexedAt)

	if err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	return nil
}

// Get retrieves a file by project-relative path.
func (s *fileStore) Get(ctx context.Context, path string) (*domain.File, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT path, kind, lang, parent_path, mod_time, indexed_at
		FROM files WHERE path = ?
	`, path)

	return scanFile(row)
}

// List returns files of one kind, or all files when kind is empty.
func (s *fileStore) List(ctx context.Context, kind domain.FileKind) ([]domain.File, error) {
	query := `
		SELECT path, kind, lang, parent_path, mod_time, indexed_at
		FROM files
	`
	var args []any
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY path"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var files []domain.File //nolint:prealloc // size unknown from query
	for rows.Next() {
		file, err := scanFileRows(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating files: %w", err)
	}
	return files, nil
}

// SetParent records a fragment's defining master file.
func (s *fileStore) SetParent(ctx context.Context, path, parentPath string) error {
	_, err := s.store.db.ExecContext(ctx,
		"UPDATE files SET parent_path = ? WHERE path = ?", parentPath, path)
	if err != nil {
		return fmt.Errorf("setting file parent: %w", err)
	}
	return nil
}

// Delete removes a file record.
func (s *fileStore) Delete(ctx context.Context, path string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// ==================== Message Store ====================

// messageStore implements driven.MessageStore.
type messageStore struct {
	store *Store
}

var _ driven.MessageStore = (*messageStore)(nil)

// Upsert stores or updates a message and ensures an alias row for its
// name. An existing alias is never re-pointed: the first file to claim a
// name keeps it, even if a later file binds the same name to different
// content.
func (s *messageStore) Upsert(ctx context.Context, msg domain.Message) error {
	msg.UpdatedAt = time.Now().UTC()

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id_hash, name, presentable, translatable, description, meaning,
			file_path, start_line, end_line, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id_hash) DO UPDATE SET
			name = excluded.name,
			presentable = excluded.presentable,
			translatable = excluded.translatable,
			description = excluded.description,
			meaning = excluded.meaning,
			file_path = excluded.file_path,
			start_line = excluded.start_line,
			end_line = excluded.end_line,
			updated_at = excluded.updated_at
	`, msg.IDHash, msg.Name, msg.Presentable, msg.Translatable, msg.Description, msg.Meaning,
		msg.FilePath, msg.StartLine, msg.EndLine, msg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving message: %w", err)
	}

	if msg.Name != "" {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO aliases (name, id_hash) VALUES (?, ?)
			ON CONFLICT(name) DO NOTHING
		`, msg.Name, msg.IDHash)
		if err != nil {
			return fmt.Errorf("saving alias: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves a message by content hash.
func (s *messageStore) Get(ctx context.Context, idHash string) (*domain.Message, error) {
	row := s.store.db.QueryRowContext(ctx, messageColumns+" FROM messages m WHERE m.id_hash = ?", idHash)
	return scanMessage(row)
}

// GetByName resolves a symbolic name through the alias table.
func (s *messageStore) GetByName(ctx context.Context, name string) (*domain.Message, error) {
	row := s.store.db.QueryRowContext(ctx, messageColumns+`
		FROM messages m
		JOIN aliases a ON a.id_hash = m.id_hash
		WHERE a.name = ?
	`, name)
	return scanMessage(row)
}

// GetByNameAndFile disambiguates when multiple files define the same name
// with different content. It matches against the defining file directly,
// bypassing the alias table.
func (s *messageStore) GetByNameAndFile(ctx context.Context, name, filePath string) (*domain.Message, error) {
	row := s.store.db.QueryRowContext(ctx, messageColumns+`
		FROM messages m WHERE m.name = ? AND m.file_path = ?
	`, name, filePath)
	return scanMessage(row)
}

// ListByFile returns the messages defined by one file.
func (s *messageStore) ListByFile(ctx context.Context, filePath string) ([]domain.Message, error) {
	rows, err := s.store.db.QueryContext(ctx, messageColumns+`
		FROM messages m WHERE m.file_path = ? ORDER BY m.start_line, m.name
	`, filePath)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

// HashesByFile returns the stored content-hash set for one file.
func (s *messageStore) HashesByFile(ctx context.Context, filePath string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id_hash FROM messages WHERE file_path = ?", filePath)
	if err != nil {
		return nil, fmt.Errorf("querying message hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scanning hash: %w", err)
		}
		hashes = append(hashes, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hashes: %w", err)
	}
	return hashes, nil
}

// Delete removes messages by hash, cascading their aliases and translations.
func (s *messageStore) Delete(ctx context.Context, idHashes []string) error {
	if len(idHashes) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	in := placeholders(len(idHashes))
	args := stringArgs(idHashes)

	// Translations have no foreign key, so cascade explicitly. Aliases
	// cascade through their constraint.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM translations WHERE id_hash IN ("+in+")", args...); err != nil {
		return fmt.Errorf("deleting translations: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM messages WHERE id_hash IN ("+in+")", args...); err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteByFile removes every message a file contributed, cascading
// aliases and translations.
func (s *messageStore) DeleteByFile(ctx context.Context, filePath string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM translations
		WHERE id_hash IN (SELECT id_hash FROM messages WHERE file_path = ?)
	`, filePath); err != nil {
		return fmt.Errorf("deleting translations: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM messages WHERE file_path = ?", filePath); err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// searchHits collects candidate rows per rank. LIKE is case-insensitive
// for ASCII, which matches how resource names and keywords are written.
const searchHits = `
	WITH hits AS (
		SELECT a.id_hash AS id_hash, 0 AS rank, '' AS matched_lang
		FROM aliases a
		WHERE a.name LIKE ? ESCAPE '\'
		UNION ALL
		SELECT a.id_hash, 1, ''
		FROM aliases a
		WHERE a.name LIKE ? ESCAPE '\' AND a.name NOT LIKE ? ESCAPE '\'
		UNION ALL
		SELECT m.id_hash, 2, ''
		FROM messages m
		WHERE m.presentable LIKE ? ESCAPE '\'
		UNION ALL
		SELECT t.id_hash, 3, t.lang
		FROM translations t
		JOIN messages m ON m.id_hash = t.id_hash
		WHERE t.text LIKE ? ESCAPE '\'
	),
	best AS (
		SELECT id_hash, MIN(rank) AS rank FROM hits GROUP BY id_hash
	)
`

// Search matches alias names, presentable text and translation text,
// case-insensitively, and returns one total-counted page. Each message
// appears once at its best rank.
func (s *messageStore) Search(ctx context.Context, keyword string, limit, offset int) (domain.SearchPage, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if offset < 0 {
		offset = 0
	}

	exact := escapeLike(keyword)
	args := []any{exact, exact + "%", exact, "%" + exact + "%", "%" + exact + "%"}

	var page domain.SearchPage
	row := s.store.db.QueryRowContext(ctx, searchHits+"SELECT COUNT(*) FROM best", args...)
	if err := row.Scan(&page.Total); err != nil {
		return domain.SearchPage{}, fmt.Errorf("counting search results: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, searchHits+`
		SELECT m.id_hash, m.name, m.presentable, m.translatable, m.description, m.meaning,
			m.file_path, m.start_line, m.end_line, m.updated_at,
			b.rank,
			COALESCE((SELECT h.matched_lang FROM hits h
				WHERE h.id_hash = b.id_hash AND h.rank = b.rank LIMIT 1), '')
		FROM best b
		JOIN messages m ON m.id_hash = b.id_hash
		ORDER BY b.rank, m.name
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return domain.SearchPage{}, fmt.Errorf("querying search results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result domain.SearchResult
		var updatedAt sql.NullTime
		if err := rows.Scan(&result.Message.IDHash, &result.Message.Name,
			&result.Message.Presentable, &result.Message.Translatable,
			&result.Message.Description, &result.Message.Meaning,
			&result.Message.FilePath, &result.Message.StartLine, &result.Message.EndLine,
			&updatedAt, &result.Rank, &result.MatchedLang); err != nil {
			return domain.SearchPage{}, fmt.Errorf("scanning search result: %w", err)
		}
		if updatedAt.Valid {
			result.Message.UpdatedAt = updatedAt.Time
		}
		page.Results = append(page.Results, result)
	}

	if err := rows.Err(); err != nil {
		return domain.SearchPage{}, fmt.Errorf("iterating search results: %w", err)
	}
	return page, nil
}

// ==================== Translation Store ====================

// translationStore implements driven.TranslationStore.
type translationStore struct {
	store *Store
}

var _ driven.TranslationStore = (*translationStore)(nil)

// Upsert stores or updates a translation. A translation whose hash has no
// matching message is silently dropped; ok reports whether the row was
// written. skipCheck bypasses the existence check for trusted imports.
func (s *translationStore) Upsert(ctx context.Context, tr domain.Translation, skipCheck bool) (bool, error) {
	if !skipCheck {
		var exists bool
		row := s.store.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM messages WHERE id_hash = ?)", tr.IDHash)
		if err := row.Scan(&exists); err != nil {
			return false, fmt.Errorf("checking message: %w", err)
		}
		if !exists {
			return false, nil
		}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO translations (id_hash, lang, text, bundle_path)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id_hash, lang) DO UPDATE SET
			text = excluded.text,
			bundle_path = excluded.bundle_path
	`, tr.IDHash, tr.Lang, tr.Text, tr.BundlePath)
	if err != nil {
		return false, fmt.Errorf("saving translation: %w", err)
	}
	return true, nil
}

// ForMessage returns every translation of one message, keyed by language.
func (s *translationStore) ForMessage(ctx context.Context, idHash string) (map[string]domain.Translation, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id_hash, lang, text, bundle_path
		FROM translations WHERE id_hash = ?
	`, idHash)
	if err != nil {
		return nil, fmt.Errorf("querying translations: %w", err)
	}
	defer rows.Close()

	return collectTranslations(rows, func(tr domain.Translation) string { return tr.Lang })
}

// BatchGet returns translations for many hashes in one language with a
// single query. The result is keyed by hash.
func (s *translationStore) BatchGet(ctx context.Context, idHashes []string, lang string) (map[string]domain.Translation, error) {
	if len(idHashes) == 0 {
		return map[string]domain.Translation{}, nil
	}

	args := append(stringArgs(idHashes), lang)
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id_hash, lang, text, bundle_path
		FROM translations
		WHERE id_hash IN (`+placeholders(len(idHashes))+`) AND lang = ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying translations: %w", err)
	}
	defer rows.Close()

	return collectTranslations(rows, func(tr domain.Translation) string { return tr.IDHash })
}

// DeleteByBundle removes every translation a bundle contributed.
func (s *translationStore) DeleteByBundle(ctx context.Context, bundlePath string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM translations WHERE bundle_path = ?", bundlePath)
	if err != nil {
		return fmt.Errorf("deleting translations: %w", err)
	}
	return nil
}

// Languages lists every language with at least one translation of an
// indexed message.
func (s *translationStore) Languages(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT DISTINCT t.lang
		FROM translations t
		JOIN messages m ON m.id_hash = t.id_hash
		ORDER BY t.lang
	`)
	if err != nil {
		return nil, fmt.Errorf("querying languages: %w", err)
	}
	defer rows.Close()

	var langs []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, fmt.Errorf("scanning language: %w", err)
		}
		langs = append(langs, lang)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating languages: %w", err)
	}
	return langs, nil
}

// Missing returns messages with no translation in the language.
func (s *translationStore) Missing(ctx context.Context, lang string) ([]domain.Message, error) {
	rows, err := s.store.db.QueryContext(ctx, messageColumns+`
		FROM messages m
		WHERE NOT EXISTS (
			SELECT 1 FROM translations t WHERE t.id_hash = m.id_hash AND t.lang = ?
		)
		ORDER BY m.name
	`, lang)
	if err != nil {
		return nil, fmt.Errorf("querying missing translations: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

// Coverage returns per-language translated/missing counts.
func (s *translationStore) Coverage(ctx context.Context) ([]domain.CoverageStats, error) {
	var total int
	row := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages")
	if err := row.Scan(&total); err != nil {
		return nil, fmt.Errorf("counting messages: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT t.lang, COUNT(DISTINCT t.id_hash)
		FROM translations t
		JOIN messages m ON m.id_hash = t.id_hash
		GROUP BY t.lang
		ORDER BY t.lang
	`)
	if err != nil {
		return nil, fmt.Errorf("querying coverage: %w", err)
	}
	defer rows.Close()

	var stats []domain.CoverageStats //nolint:prealloc // size unknown from query
	for rows.Next() {
		var cs domain.CoverageStats
		if err := rows.Scan(&cs.Lang, &cs.Translated); err != nil {
			return nil, fmt.Errorf("scanning coverage: %w", err)
		}
		cs.Missing = total - cs.Translated
		stats = append(stats, cs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating coverage: %w", err)
	}
	return stats, nil
}

// ==================== Progress Store ====================

// progressStore implements driven.ProgressStore.
type progressStore struct {
	store *Store
}

var _ driven.ProgressStore = (*progressStore)(nil)

// Get retrieves the singleton progress record.
func (s *progressStore) Get(ctx context.Context) (*domain.BuildProgress, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT status, owner, total_files, processed_count, start_time, last_heartbeat
		FROM build_progress WHERE id = 1
	`)

	var p domain.BuildProgress
	var status string
	var startTime, lastHeartbeat sql.NullTime
	if err := row.Scan(&status, &p.Owner, &p.TotalFiles, &p.ProcessedCount,
		&startTime, &lastHeartbeat); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning build progress: %w", err)
	}

	p.Status = domain.BuildStatus(status)
	if startTime.Valid {
		p.StartTime = startTime.Time
	}
	if lastHeartbeat.Valid {
		p.LastHeartbeat = lastHeartbeat.Time
	}
	return &p, nil
}

// Save writes the singleton progress record.
func (s *progressStore) Save(ctx context.Context, p domain.BuildProgress) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO build_progress (id, status, owner, total_files, processed_count, start_time, last_heartbeat)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			owner = excluded.owner,
			total_files = excluded.total_files,
			processed_count = excluded.processed_count,
			start_time = excluded.start_time,
			last_heartbeat = excluded.last_heartbeat
	`, string(p.Status), p.Owner, p.TotalFiles, p.ProcessedCount, p.StartTime, p.LastHeartbeat)
	if err != nil {
		return fmt.Errorf("saving build progress: %w", err)
	}
	return nil
}

// Reset returns the record to idle and clears the processed log.
func (s *progressStore) Reset(ctx context.Context) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO build_progress (id, status, owner, total_files, processed_count, start_time, last_heartbeat)
		VALUES (1, ?, '', 0, 0, NULL, NULL)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			owner = '',
			total_files = 0,
			processed_count = 0,
			start_time = NULL,
			last_heartbeat = NULL
	`, string(domain.BuildIdle)); err != nil {
		return fmt.Errorf("resetting build progress: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM processed_files"); err != nil {
		return fmt.Errorf("clearing processed files: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// MarkProcessed appends a master file to the processed log.
func (s *progressStore) MarkProcessed(ctx context.Context, path string) error {
	_, err := s.store.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO processed_files (path) VALUES (?)", path)
	if err != nil {
		return fmt.Errorf("marking file processed: %w", err)
	}
	return nil
}

// Processed returns the processed-file log in insertion order.
func (s *progressStore) Processed(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT path FROM processed_files ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying processed files: %w", err)
	}
	defer rows.Close()

	var paths []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning processed file: %w", err)
		}
		paths = append(paths, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating processed files: %w", err)
	}
	return paths, nil
}

// ClearProcessed empties the processed-file log.
func (s *progressStore) ClearProcessed(ctx context.Context) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM processed_files")
	if err != nil {
		return fmt.Errorf("clearing processed files: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// messageColumns is the shared SELECT prefix for message scans. Queries
// appending a table alias use the unqualified form via messages m.
const messageColumns = `
	SELECT m.id_hash, m.name, m.presentable, m.translatable, m.description, m.meaning,
		m.file_path, m.start_line, m.end_line, m.updated_at
`

// scanMessage scans a single message row.
func scanMessage(row *sql.Row) (*domain.Message, error) {
	var msg domain.Message
	var updatedAt sql.NullTime
	if err := row.Scan(&msg.IDHash, &msg.Name, &msg.Presentable, &msg.Translatable,
		&msg.Description, &msg.Meaning, &msg.FilePath, &msg.StartLine, &msg.EndLine,
		&updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning message: %w", err)
	}
	if updatedAt.Valid {
		msg.UpdatedAt = updatedAt.Time
	}
	return &msg, nil
}

// collectMessages scans every remaining message row.
func collectMessages(rows *sql.Rows) ([]domain.Message, error) {
	var msgs []domain.Message //nolint:prealloc // size unknown from query
	for rows.Next() {
		var msg domain.Message
		var updatedAt sql.NullTime
		if err := rows.Scan(&msg.IDHash, &msg.Name, &msg.Presentable, &msg.Translatable,
			&msg.Description, &msg.Meaning, &msg.FilePath, &msg.StartLine, &msg.EndLine,
			&updatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if updatedAt.Valid {
			msg.UpdatedAt = updatedAt.Time
		}
		msgs = append(msgs, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return msgs, nil
}

// scanFile scans a single file row.
func scanFile(row *sql.Row) (*domain.File, error) {
	var file domain.File
	var kind string
	var modTime, indexedAt sql.NullTime
	if err := row.Scan(&file.Path, &kind, &file.Lang, &file.ParentPath,
		&modTime, &indexedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning file: %w", err)
	}
	file.Kind = domain.FileKind(kind)
	if modTime.Valid {
		file.ModTime = modTime.Time
	}
	if indexedAt.Valid {
		file.IndexedAt = indexedAt.Time
	}
	return &file, nil
}

// scanFileRows scans a file from *sql.Rows.
func scanFileRows(rows *sql.Rows) (*domain.File, error) {
	var file domain.File
	var kind string
	var modTime, indexedAt sql.NullTime
	if err := rows.Scan(&file.Path, &kind, &file.Lang, &file.ParentPath,
		&modTime, &indexedAt); err != nil {
		return nil, fmt.Errorf("scanning file: %w", err)
	}
	file.Kind = domain.FileKind(kind)
	if modTime.Valid {
		file.ModTime = modTime.Time
	}
	if indexedAt.Valid {
		file.IndexedAt = indexedAt.Time
	}
	return &file, nil
}

// collectTranslations scans translation rows into a map keyed by keyFn.
func collectTranslations(rows *sql.Rows, keyFn func(domain.Translation) string) (map[string]domain.Translation, error) {
	result := make(map[string]domain.Translation)
	for rows.Next() {
		var tr domain.Translation
		if err := rows.Scan(&tr.IDHash, &tr.Lang, &tr.Text, &tr.BundlePath); err != nil {
			return nil, fmt.Errorf("scanning translation: %w", err)
		}
		result[keyFn(tr)] = tr
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating translations: %w", err)
	}
	return result, nil
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// stringArgs widens a string slice for variadic query arguments.
func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// escapeLike escapes LIKE metacharacters in a user keyword.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
