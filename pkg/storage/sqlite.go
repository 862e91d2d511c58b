package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"paperflow-hq/paperflow/pkg/fieldschema"
	"paperflow-hq/paperflow/pkg/policy"
)

// SQLiteConfig contains configuration for the SQLite store backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

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
		Path:        "data/paperflow.db",
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store backend. It initializes the
// schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "storage.sqlite")

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, NewError("sqlite", "open", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

// initialize sets up the database schema and pragmas.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersionSQL, SchemaVersion); err != nil {
		return NewError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersionSQL).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// ListPolicies returns every policy row owned by userID.
func (s *SQLiteStore) ListPolicies(ctx context.Context, userID string) ([]*policy.Policy, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT policy_id, api_version, kind, metadata, spec FROM policies WHERE user_id = ?`,
		userID)
	if err != nil {
		return nil, NewError("sqlite", "list_policies", err)
	}
	defer rows.Close()

	var results []*policy.Policy
	for rows.Next() {
		var p policy.Policy
		var metadataJSON, specJSON string
		if err := rows.Scan(&p.PolicyID, &p.APIVersion, &p.Kind, &metadataJSON, &specJSON); err != nil {
			return nil, NewError("sqlite", "scan_policy", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &p.Metadata); err != nil {
			return nil, NewError("sqlite", "decode_policy_metadata", err)
		}
		if err := json.Unmarshal([]byte(specJSON), &p.Spec); err != nil {
			return nil, NewError("sqlite", "decode_policy_spec", err)
		}
		results = append(results, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, NewError("sqlite", "list_policies", err)
	}
	return results, nil
}

// UpsertPolicy inserts or atomically replaces the row keyed by (userID, p.PolicyID).
func (s *SQLiteStore) UpsertPolicy(ctx context.Context, userID string, p *policy.Policy) (string, error) {
	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return "", NewError("sqlite", "encode_policy_metadata", err)
	}
	specJSON, err := json.Marshal(p.Spec)
	if err != nil {
		return "", NewError("sqlite", "encode_policy_spec", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO policies (user_id, policy_id, api_version, kind, metadata, spec, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(user_id, policy_id) DO UPDATE SET
			api_version = excluded.api_version,
			kind = excluded.kind,
			metadata = excluded.metadata,
			spec = excluded.spec,
			updated_at = excluded.updated_at`,
		userID, p.PolicyID, p.APIVersion, p.Kind, string(metadataJSON), string(specJSON))
	if err != nil {
		return "", NewError("sqlite", "upsert_policy", err)
	}
	return userID + "/" + p.PolicyID, nil
}

// PatchPolicyMetadata applies a narrow metadata merge inside a transaction
// and returns the number of rows matched.
func (s *SQLiteStore) PatchPolicyMetadata(ctx context.Context, userID, policyID string, patch policy.MetadataPatch) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, NewError("sqlite", "patch_policy", err)
	}
	defer tx.Rollback()

	var metadataJSON string
	err = tx.QueryRowContext(ctx,
		`SELECT metadata FROM policies WHERE user_id = ? AND policy_id = ?`,
		userID, policyID).Scan(&metadataJSON)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, NewError("sqlite", "patch_policy", err)
	}

	var md policy.Metadata
	if err := json.Unmarshal([]byte(metadataJSON), &md); err != nil {
		return 0, NewError("sqlite", "decode_policy_metadata", err)
	}
	patch.Apply(&md)

	updated, err := json.Marshal(md)
	if err != nil {
		return 0, NewError("sqlite", "encode_policy_metadata", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE policies SET metadata = ?, updated_at = datetime('now') WHERE user_id = ? AND policy_id = ?`,
		string(updated), userID, policyID)
	if err != nil {
		return 0, NewError("sqlite", "patch_policy", err)
	}
	matched, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, NewError("sqlite", "patch_policy", err)
	}
	return matched, nil
}

// DeletePolicy removes the row keyed by (userID, policyID).
func (s *SQLiteStore) DeletePolicy(ctx context.Context, userID, policyID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM policies WHERE user_id = ? AND policy_id = ?`,
		userID, policyID)
	if err != nil {
		return 0, NewError("sqlite", "delete_policy", err)
	}
	matched, _ := res.RowsAffected()
	return matched, nil
}

// ActiveSchemaVersion returns the owner's active version, or nil.
func (s *SQLiteStore) ActiveSchemaVersion(ctx context.Context, userID string) (*fieldschema.Version, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, version, context, fields, is_active, created_at
		FROM schema_versions
		WHERE user_id = ? AND is_active = 1
		LIMIT 1`, userID)

	v, err := scanSchemaVersion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, NewError("sqlite", "active_schema_version", err)
	}
	return v, nil
}

// ListSchemaVersions returns all versions for the owner, newest first.
func (s *SQLiteStore) ListSchemaVersions(ctx context.Context, userID string) ([]*fieldschema.Version, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, version, context, fields, is_active, created_at
		FROM schema_versions
		WHERE user_id = ?
		ORDER BY version DESC`, userID)
	if err != nil {
		return nil, NewError("sqlite", "list_schema_versions", err)
	}
	defer rows.Close()

	var results []*fieldschema.Version
	for rows.Next() {
		v, err := scanSchemaVersion(rows)
		if err != nil {
			return nil, NewError("sqlite", "scan_schema_version", err)
		}
		results = append(results, v)
	}
	if err := rows.Err(); err != nil {
		return nil, NewError("sqlite", "list_schema_versions", err)
	}
	return results, nil
}

// InsertSchemaVersion appends version max+1 for the owner. With activate set,
// the deactivate-all and active insert run inside one transaction so a
// concurrent reader never observes two active versions.
func (s *SQLiteStore) InsertSchemaVersion(ctx context.Context, userID, versionContext string, fields []fieldschema.Field, activate bool) (*fieldschema.Version, error) {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, NewError("sqlite", "encode_schema_fields", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, NewError("sqlite", "insert_schema_version", err)
	}
	defer tx.Rollback()

	var maxVersion int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_versions WHERE user_id = ?`,
		userID).Scan(&maxVersion)
	if err != nil {
		return nil, NewError("sqlite", "insert_schema_version", err)
	}

	if activate {
		if _, err := tx.ExecContext(ctx,
			`UPDATE schema_versions SET is_active = 0 WHERE user_id = ?`, userID); err != nil {
			return nil, NewError("sqlite", "deactivate_schema_versions", err)
		}
	}

	v := &fieldschema.Version{
		ID:        uuid.New().String(),
		UserID:    userID,
		Version:   maxVersion + 1,
		Context:   versionContext,
		Fields:    append([]fieldschema.Field(nil), fields...),
		IsActive:  activate,
		CreatedAt: time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO schema_versions (id, user_id, version, context, fields, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.Version, v.Context, string(fieldsJSON), boolToInt(v.IsActive), v.CreatedAt)
	if err != nil {
		return nil, NewError("sqlite", "insert_schema_version", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, NewError("sqlite", "insert_schema_version", err)
	}
	return v, nil
}

// ActivateSchemaVersion makes exactly versionID active for the owner,
// returning false when the row is absent or owned by someone else.
func (s *SQLiteStore) ActivateSchemaVersion(ctx context.Context, userID, versionID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, NewError("sqlite", "activate_schema_version", err)
	}
	defer tx.Rollback()

	var owned int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_versions WHERE id = ? AND user_id = ?`,
		versionID, userID).Scan(&owned)
	if err != nil {
		return false, NewError("sqlite", "activate_schema_version", err)
	}
	if owned == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE schema_versions SET is_active = 0 WHERE user_id = ?`, userID); err != nil {
		return false, NewError("sqlite", "deactivate_schema_versions", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE schema_versions SET is_active = 1 WHERE id = ? AND user_id = ?`,
		versionID, userID); err != nil {
		return false, NewError("sqlite", "activate_schema_version", err)
	}

	if err := tx.Commit(); err != nil {
		return false, NewError("sqlite", "activate_schema_version", err)
	}
	return true, nil
}

// UpdateDocumentLocation persists a document's current path and name.
func (s *SQLiteStore) UpdateDocumentLocation(ctx context.Context, userID, documentID, path, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (user_id, document_id, path, name, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(user_id, document_id) DO UPDATE SET
			path = excluded.path,
			name = excluded.name,
			updated_at = excluded.updated_at`,
		userID, documentID, path, name)
	if err != nil {
		return NewError("sqlite", "update_document_location", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner abstracts *sql.Row and *sql.Rows for schema version scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanSchemaVersion(row scanner) (*fieldschema.Version, error) {
	var v fieldschema.Version
	var fieldsJSON string
	var isActive int
	var versionContext sql.NullString

	if err := row.Scan(&v.ID, &v.UserID, &v.Version, &versionContext, &fieldsJSON, &isActive, &v.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &v.Fields); err != nil {
		return nil, err
	}
	v.Context = versionContext.String
	v.IsActive = isActive != 0
	return &v, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
