package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"paperflow-hq/paperflow/pkg/audit"
)

// SchemaVersion is the current audit database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
    id TEXT PRIMARY KEY,
    document_id TEXT,
    user_id TEXT,
    category TEXT NOT NULL,
    title TEXT NOT NULL,
    details TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_document ON audit_events(document_id);
CREATE INDEX IF NOT EXISTS idx_audit_user ON audit_events(user_id);
CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_events(created_at);
`

// SQLiteConfig contains configuration for the SQLite audit storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite audit storage backend.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

// initialize sets up the database schema and pragmas.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}

	_, err := s.db.Exec(`
		INSERT INTO schema_version (version, applied_at)
		VALUES (?, datetime('now'))
		ON CONFLICT(version) DO NOTHING`, SchemaVersion)
	if err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}
	return nil
}

// Store persists one event.
func (s *SQLiteStorage) Store(ctx context.Context, event *audit.Event) error {
	var detailsJSON []byte
	if event.Details != nil {
		var err error
		detailsJSON, err = json.Marshal(event.Details)
		if err != nil {
			return audit.NewStorageError("sqlite", "encode_details", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, document_id, user_id, category, title, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.DocumentID, event.UserID, string(event.Category),
		event.Title, string(detailsJSON), event.CreatedAt)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// ListByDocument returns events for a document, newest first.
func (s *SQLiteStorage) ListByDocument(ctx context.Context, documentID string, limit int) ([]*audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, user_id, category, title, details, created_at
		FROM audit_events
		WHERE document_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, documentID, limit)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "list", err)
	}
	defer rows.Close()

	var results []*audit.Event
	for rows.Next() {
		var e audit.Event
		var category, detailsJSON string
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.UserID, &category, &e.Title, &detailsJSON, &e.CreatedAt); err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		e.Category = audit.Category(category)
		if detailsJSON != "" {
			if err := json.Unmarshal([]byte(detailsJSON), &e.Details); err != nil {
				return nil, audit.NewStorageError("sqlite", "decode_details", err)
			}
		}
		results = append(results, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "list", err)
	}
	return results, nil
}

// DeleteBefore removes events created before cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM audit_events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	deleted, _ := res.RowsAffected()
	return deleted, nil
}

// Count returns the number of stored events.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`).Scan(&count); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
