package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/doctran/internal"
)

// ErrNotFound is returned when a run or memory entry does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	// RFC 3339-like timestamps keep ORDER BY on time columns chronological.
	dsn := dbPath
	if strings.Contains(dsn, "?") {
		dsn += "&_time_format=sqlite"
	} else {
		dsn += "?_time_format=sqlite"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		final_text TEXT NOT NULL,
		service_used TEXT,
		usage_count INTEGER DEFAULT 1,
		invalidated BOOLEAN DEFAULT FALSE,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, source_lang, target_lang)
	);

	-- runs records every finished batch run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_path TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		service TEXT,
		status TEXT NOT NULL,
		total INTEGER NOT NULL,
		processed INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	);

	-- run_failures lists files that exhausted their attempts, in run order
	CREATE TABLE IF NOT EXISTS run_failures (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		path TEXT NOT NULL,
		PRIMARY KEY (run_id, position),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON translation_memory(source_text, source_lang, target_lang);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error) {
	var finalText string
	var invalidated bool

	key := normalizeText(sourceText)
	err := s.db.QueryRowContext(ctx,
		`SELECT final_text, invalidated FROM translation_memory WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		key, sourceLang, targetLang).Scan(&finalText, &invalidated)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if invalidated {
		return "", false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ? WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		time.Now(), key, sourceLang, targetLang)

	return finalText, true, err
}

// SaveToMemory stores or replaces the translation for a source text and
// language pair. Replacing clears a previous invalidation.
func (s *Store) SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, finalText, serviceUsed string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translation_memory (id, source_text, source_lang, target_lang, final_text, service_used, usage_count, invalidated, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, FALSE, ?, ?)`,
		uuid.NewString(), normalizeText(sourceText), sourceLang, targetLang, finalText, serviceUsed, now, now)
	return err
}

// MemoryEntry is a row from the translation_memory table.
type MemoryEntry struct {
	ID          string
	SourceText  string
	SourceLang  string
	TargetLang  string
	FinalText   string
	ServiceUsed string
	UsageCount  int
	Invalidated bool
	LastUsed    time.Time
}

// CacheStats summarises translation memory usage.
type CacheStats struct {
	TotalEntries   int
	ActiveEntries  int
	InvalidEntries int
	TotalUsage     int
}

// InvalidateMemory hides an entry from lookups without deleting it.
func (s *Store) InvalidateMemory(ctx context.Context, id string) error {
	return s.execOne(ctx, `UPDATE translation_memory SET invalidated = TRUE WHERE id = ?`, id)
}

// DeleteMemory permanently removes a translation memory entry by ID.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	return s.execOne(ctx, `DELETE FROM translation_memory WHERE id = ?`, id)
}

// ClearMemory removes all translation memory entries.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListMemory returns all translation memory entries ordered by most recently used.
func (s *Store) ListMemory(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, source_lang, target_lang, final_text, COALESCE(service_used, ''), usage_count, invalidated, last_used FROM translation_memory ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.SourceLang, &e.TargetLang, &e.FinalText, &e.ServiceUsed, &e.UsageCount, &e.Invalidated, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// Stats returns summary statistics for the translation memory.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN NOT invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(usage_count), 0)
		FROM translation_memory`).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.InvalidEntries,
		&stats.TotalUsage,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// SaveRun persists a finished run together with its failed files.
func (s *Store) SaveRun(ctx context.Context, rec internal.RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, input_path, output_dir, source_lang, target_lang, service, status, total, processed, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.InputPath, rec.OutputDir, rec.SourceLang, rec.TargetLang, rec.Service, string(rec.Status), rec.Total, rec.Processed, rec.StartedAt.UTC(), rec.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, path := range rec.FailedFiles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_failures (run_id, position, path) VALUES (?, ?, ?)`,
			rec.ID, i, path); err != nil {
			return fmt.Errorf("failed to insert run failure: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs first, each with its failed files.
// limit <= 0 returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]internal.RunRecord, error) {
	query := `SELECT id, input_path, output_dir, source_lang, target_lang, COALESCE(service, ''), status, total, processed, started_at, finished_at
		FROM runs ORDER BY started_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var runs []internal.RunRecord
	for rows.Next() {
		var rec internal.RunRecord
		if err := scanRun(rows, &rec); err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// The pool holds one connection; release it before the next query.
	rows.Close()

	for i := range runs {
		if runs[i].FailedFiles, err = s.runFailures(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// GetRun loads one run with its failed files in run order.
func (s *Store) GetRun(ctx context.Context, id string) (*internal.RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input_path, output_dir, source_lang, target_lang, COALESCE(service, ''), status, total, processed, started_at, finished_at
		FROM runs WHERE id = ?`, id)

	var rec internal.RunRecord
	if err := scanRun(row, &rec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	failed, err := s.runFailures(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.FailedFiles = failed
	return &rec, nil
}

func (s *Store) runFailures(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM run_failures WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	failed := []string{}
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		failed = append(failed, path)
	}
	return failed, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner, rec *internal.RunRecord) error {
	var status string
	err := row.Scan(&rec.ID, &rec.InputPath, &rec.OutputDir, &rec.SourceLang, &rec.TargetLang, &rec.Service,
		&status, &rec.Total, &rec.Processed, &rec.StartedAt, &rec.FinishedAt)
	rec.Status = internal.RunStatus(status)
	return err
}

func (s *Store) execOne(ctx context.Context, query string, args ...interface{}) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent cache key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
