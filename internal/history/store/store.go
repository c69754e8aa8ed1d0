package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
)

// Entry is one recorded analysis
type Entry struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	Source     string                 `json:"source"`
	Locale     string                 `json:"locale"`
	Success    bool                   `json:"success"`
	ErrorCount int                    `json:"error_count"`
	TokenCount int                    `json:"token_count"`
	FirstError string                 `json:"first_error,omitempty"`
	DurationMS float64                `json:"duration_ms"`
	Content    string                 `json:"content,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Filter defines criteria for listing entries
type Filter struct {
	Source  string
	Success *bool
	Since   time.Time
	Limit   int
	Offset  int
}

// Stats summarizes the history
type Stats struct {
	Total       int64            `json:"total"`
	Successful  int64            `json:"successful"`
	Failed      int64            `json:"failed"`
	ErrorsByKey map[string]int64 `json:"errors_by_code"`
	LastEntry   time.Time        `json:"last_entry"`
}

// Store defines the interface for analysis history persistence
type Store interface {
	Record(ctx context.Context, entry *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	Query(ctx context.Context, filter Filter) ([]*Entry, error)
	Stats(ctx context.Context) (*Stats, error)

	// Maintenance
	Vacuum(ctx context.Context) error
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultConfig returns default configuration
func DefaultConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/history.db",
	}
}

// NewSQLiteStore creates a new SQLite-based history store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, dbError(err, "failed to create directory", "store.NewSQLiteStore").
			WithCode(mdwerror.CodeIOError).
			WithDetail("directory", dir)
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, dbError(err, "failed to open database", "store.NewSQLiteStore")
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize schema", "store.NewSQLiteStore")
	}

	return s, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		source TEXT NOT NULL,
		locale TEXT NOT NULL,
		success INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		token_count INTEGER NOT NULL,
		first_error TEXT,
		duration_ms REAL NOT NULL,
		content TEXT,
		metadata TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_timestamp ON analyses(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_analyses_source ON analyses(source);
	CREATE INDEX IF NOT EXISTS idx_analyses_first_error ON analyses(first_error);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores an analysis. Missing IDs and timestamps are filled in.
func (s *SQLiteStore) Record(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(entry)

	var metadataJSON []byte
	if entry.Metadata != nil {
		metadataJSON, _ = json.Marshal(entry.Metadata)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, timestamp, source, locale, success, error_count, token_count,
			first_error, duration_ms, content, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Timestamp, entry.Source, entry.Locale, entry.Success, entry.ErrorCount,
		entry.TokenCount, entry.FirstError, entry.DurationMS, entry.Content, metadataJSON)
	if err != nil {
		return dbError(err, "failed to insert analysis", "store.Record").
			WithDetail("id", entry.ID)
	}

	return nil
}

// Get returns the entry with the given ID
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, source, locale, success, error_count, token_count,
			first_error, duration_ms, content, metadata
		FROM analyses WHERE id = ?
	`, id)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, mdwerror.New(fmt.Sprintf("analysis not found: %s", id)).
			WithCode(mdwerror.CodeNotFound).
			WithOperation("store.Get").
			WithDetail("id", id)
	}
	if err != nil {
		return nil, dbError(err, "failed to read analysis", "store.Get").WithDetail("id", id)
	}
	return entry, nil
}

// Query retrieves entries newest first
func (s *SQLiteStore) Query(ctx context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, timestamp, source, locale, success, error_count, token_count,
		first_error, duration_ms, content, metadata FROM analyses WHERE 1=1`
	var args []interface{}

	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, filter.Source)
	}
	if filter.Success != nil {
		query += " AND success = ?"
		args = append(args, *filter.Success)
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query analyses", "store.Query")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, dbError(err, "failed to scan analysis", "store.Query")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to iterate analyses", "store.Query")
	}

	return entries, nil
}

// Stats returns history statistics
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ErrorsByKey: make(map[string]int64)}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(success), 0) FROM analyses
	`).Scan(&stats.Total, &stats.Successful)
	if err != nil {
		return nil, dbError(err, "failed to count analyses", "store.Stats")
	}
	stats.Failed = stats.Total - stats.Successful

	rows, err := s.db.QueryContext(ctx, `
		SELECT first_error, COUNT(*) FROM analyses
		WHERE first_error IS NOT NULL AND first_error != ''
		GROUP BY first_error
	`)
	if err != nil {
		return nil, dbError(err, "failed to group analyses", "store.Stats")
	}
	defer rows.Close()
	for rows.Next() {
		var code string
		var count int64
		if err := rows.Scan(&code, &count); err != nil {
			return nil, dbError(err, "failed to scan error counts", "store.Stats")
		}
		stats.ErrorsByKey[code] = count
	}

	var last sql.NullString
	s.db.QueryRowContext(ctx, `SELECT MAX(timestamp) FROM analyses`).Scan(&last)
	if last.Valid {
		stats.LastEntry = parseTimestamp(last.String)
	}

	return stats, nil
}

// Vacuum optimizes the database
func (s *SQLiteStore) Vacuum(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return dbError(err, "failed to vacuum database", "store.Vacuum")
	}
	return nil
}

// Prune removes entries older than the specified duration
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)

	result, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, dbError(err, "failed to prune analyses", "store.Prune")
	}
	deleted, _ := result.RowsAffected()

	return deleted, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*Entry, error) {
	var entry Entry
	var firstError, content, metadataJSON sql.NullString

	if err := row.Scan(&entry.ID, &entry.Timestamp, &entry.Source, &entry.Locale, &entry.Success,
		&entry.ErrorCount, &entry.TokenCount, &firstError, &entry.DurationMS, &content, &metadataJSON); err != nil {
		return nil, err
	}

	entry.FirstError = firstError.String
	entry.Content = content.String
	if metadataJSON.Valid && metadataJSON.String != "" {
		json.Unmarshal([]byte(metadataJSON.String), &entry.Metadata)
	}
	return &entry, nil
}

// parseTimestamp reads the text form SQLite returns for aggregates
func parseTimestamp(s string) time.Time {
	layouts := []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prepare(entry *Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Timestamp = entry.Timestamp.UTC()
}

func dbError(err error, message, operation string) *mdwerror.Error {
	return mdwerror.Wrap(err, message).
		WithCode(mdwerror.CodeDatabaseError).
		WithOperation(operation)
}

// MemoryStore is an in-memory implementation for testing and for running
// with history disabled
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemoryStore creates a new in-memory history store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make([]*Entry, 0),
	}
}

// Record stores an analysis
func (s *MemoryStore) Record(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(entry)
	copied := *entry
	s.entries = append(s.entries, &copied)
	return nil
}

// Get returns the entry with the given ID
func (s *MemoryStore) Get(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if entry.ID == id {
			copied := *entry
			return &copied, nil
		}
	}
	return nil, mdwerror.New(fmt.Sprintf("analysis not found: %s", id)).
		WithCode(mdwerror.CodeNotFound).
		WithOperation("store.Get").
		WithDetail("id", id)
}

// Query retrieves entries newest first
func (s *MemoryStore) Query(ctx context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*Entry
	for _, entry := range s.entries {
		if filter.Source != "" && entry.Source != filter.Source {
			continue
		}
		if filter.Success != nil && entry.Success != *filter.Success {
			continue
		}
		if !filter.Since.IsZero() && entry.Timestamp.Before(filter.Since) {
			continue
		}
		copied := *entry
		results = append(results, &copied)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(results) {
			return nil, nil
		}
		results = results[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(results) {
		results = results[:filter.Limit]
	}

	return results, nil
}

// Stats returns history statistics
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ErrorsByKey: make(map[string]int64)}
	for _, entry := range s.entries {
		stats.Total++
		if entry.Success {
			stats.Successful++
		} else {
			stats.Failed++
		}
		if entry.FirstError != "" {
			stats.ErrorsByKey[entry.FirstError]++
		}
		if entry.Timestamp.After(stats.LastEntry) {
			stats.LastEntry = entry.Timestamp
		}
	}
	return stats, nil
}

// Vacuum is a no-op for memory store
func (s *MemoryStore) Vacuum(ctx context.Context) error {
	return nil
}

// Prune removes old entries
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var deleted int64

	kept := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if entry.Timestamp.After(cutoff) {
			kept = append(kept, entry)
		} else {
			deleted++
		}
	}
	s.entries = kept

	return deleted, nil
}

// Close is a no-op for memory store
func (s *MemoryStore) Close() error {
	return nil
}
