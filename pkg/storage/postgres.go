package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paperflow-hq/paperflow/pkg/fieldschema"
	"paperflow-hq/paperflow/pkg/policy"
)

// PostgresSchema contains the DDL for the postgres backend. It is applied on
// startup with CREATE IF NOT EXISTS semantics, mirroring the sqlite backend.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS policies (
    user_id TEXT NOT NULL,
    policy_id TEXT NOT NULL,
    api_version TEXT NOT NULL,
    kind TEXT NOT NULL,
    metadata JSONB NOT NULL,
    spec JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (user_id, policy_id)
);

CREATE TABLE IF NOT EXISTS schema_versions (
    id UUID PRIMARY KEY,
    user_id TEXT NOT NULL,
    version INTEGER NOT NULL,
    context TEXT,
    fields JSONB NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL,
    UNIQUE (user_id, version)
);

CREATE TABLE IF NOT EXISTS documents (
    user_id TEXT NOT NULL,
    document_id TEXT NOT NULL,
    path TEXT NOT NULL,
    name TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (user_id, document_id)
);

CREATE INDEX IF NOT EXISTS idx_schema_versions_active ON schema_versions(user_id, is_active);
`

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore creates a postgres store backend from a DSN and applies
// the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, NewError("postgres", "connect", err)
	}

	s := &PostgresStore{
		pool:   pool,
		logger: slog.Default().With("component", "storage.postgres"),
	}

	if _, err := pool.Exec(ctx, PostgresSchema); err != nil {
		pool.Close()
		return nil, NewError("postgres", "create_schema", err)
	}

	s.logger.Info("postgres store initialized")
	return s, nil
}

// ListPolicies returns every policy row owned by userID.
func (s *PostgresStore) ListPolicies(ctx context.Context, userID string) ([]*policy.Policy, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT policy_id, api_version, kind, metadata, spec FROM policies WHERE user_id = $1`,
		userID)
	if err != nil {
		return nil, NewError("postgres", "list_policies", err)
	}
	defer rows.Close()

	var results []*policy.Policy
	for rows.Next() {
		var p policy.Policy
		var metadataJSON, specJSON []byte
		if err := rows.Scan(&p.PolicyID, &p.APIVersion, &p.Kind, &metadataJSON, &specJSON); err != nil {
			return nil, NewError("postgres", "scan_policy", err)
		}
		if err := json.Unmarshal(metadataJSON, &p.Metadata); err != nil {
			return nil, NewError("postgres", "decode_policy_metadata", err)
		}
		if err := json.Unmarshal(specJSON, &p.Spec); err != nil {
			return nil, NewError("postgres", "decode_policy_spec", err)
		}
		results = append(results, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, NewError("postgres", "list_policies", err)
	}
	return results, nil
}

// UpsertPolicy inserts or atomically replaces the row keyed by (userID, p.PolicyID).
func (s *PostgresStore) UpsertPolicy(ctx context.Context, userID string, p *policy.Policy) (string, error) {
	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return "", NewError("postgres", "encode_policy_metadata", err)
	}
	specJSON, err := json.Marshal(p.Spec)
	if err != nil {
		return "", NewError("postgres", "encode_policy_spec", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO policies (user_id, policy_id, api_version, kind, metadata, spec, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (user_id, policy_id) DO UPDATE SET
			api_version = EXCLUDED.api_version,
			kind = EXCLUDED.kind,
			metadata = EXCLUDED.metadata,
			spec = EXCLUDED.spec,
			updated_at = EXCLUDED.updated_at`,
		userID, p.PolicyID, p.APIVersion, p.Kind, metadataJSON, specJSON)
	if err != nil {
		return "", NewError("postgres", "upsert_policy", err)
	}
	return userID + "/" + p.PolicyID, nil
}

// PatchPolicyMetadata applies a narrow metadata merge inside a transaction.
func (s *PostgresStore) PatchPolicyMetadata(ctx context.Context, userID, policyID string, patch policy.MetadataPatch) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, NewError("postgres", "patch_policy", err)
	}
	defer tx.Rollback(ctx)

	var metadataJSON []byte
	err = tx.QueryRow(ctx,
		`SELECT metadata FROM policies WHERE user_id = $1 AND policy_id = $2 FOR UPDATE`,
		userID, policyID).Scan(&metadataJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, NewError("postgres", "patch_policy", err)
	}

	var md policy.Metadata
	if err := json.Unmarshal(metadataJSON, &md); err != nil {
		return 0, NewError("postgres", "decode_policy_metadata", err)
	}
	patch.Apply(&md)

	updated, err := json.Marshal(md)
	if err != nil {
		return 0, NewError("postgres", "encode_policy_metadata", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE policies SET metadata = $1, updated_at = now() WHERE user_id = $2 AND policy_id = $3`,
		updated, userID, policyID)
	if err != nil {
		return 0, NewError("postgres", "patch_policy", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, NewError("postgres", "patch_policy", err)
	}
	return tag.RowsAffected(), nil
}

// DeletePolicy removes the row keyed by (userID, policyID).
func (s *PostgresStore) DeletePolicy(ctx context.Context, userID, policyID string) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM policies WHERE user_id = $1 AND policy_id = $2`,
		userID, policyID)
	if err != nil {
		return 0, NewError("postgres", "delete_policy", err)
	}
	return tag.RowsAffected(), nil
}

// ActiveSchemaVersion returns the owner's active version, or nil.
func (s *PostgresStore) ActiveSchemaVersion(ctx context.Context, userID string) (*fieldschema.Version, error) {
	v, err := s.scanVersionRow(s.pool.QueryRow(ctx, `
		SELECT id, user_id, version, context, fields, is_active, created_at
		FROM schema_versions
		WHERE user_id = $1 AND is_active
		LIMIT 1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, NewError("postgres", "active_schema_version", err)
	}
	return v, nil
}

// ListSchemaVersions returns all versions for the owner, newest first.
func (s *PostgresStore) ListSchemaVersions(ctx context.Context, userID string) ([]*fieldschema.Version, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, version, context, fields, is_active, created_at
		FROM schema_versions
		WHERE user_id = $1
		ORDER BY version DESC`, userID)
	if err != nil {
		return nil, NewError("postgres", "list_schema_versions", err)
	}
	defer rows.Close()

	var results []*fieldschema.Version
	for rows.Next() {
		v, err := s.scanVersionRow(rows)
		if err != nil {
			return nil, NewError("postgres", "scan_schema_version", err)
		}
		results = append(results, v)
	}
	if err := rows.Err(); err != nil {
		return nil, NewError("postgres", "list_schema_versions", err)
	}
	return results, nil
}

// InsertSchemaVersion appends version max+1 for the owner, transactionally
// deactivating the rest when activate is set.
func (s *PostgresStore) InsertSchemaVersion(ctx context.Context, userID, versionContext string, fields []fieldschema.Field, activate bool) (*fieldschema.Version, error) {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, NewError("postgres", "encode_schema_fields", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, NewError("postgres", "insert_schema_version", err)
	}
	defer tx.Rollback(ctx)

	var maxVersion int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_versions WHERE user_id = $1`,
		userID).Scan(&maxVersion)
	if err != nil {
		return nil, NewError("postgres", "insert_schema_version", err)
	}

	if activate {
		if _, err := tx.Exec(ctx,
			`UPDATE schema_versions SET is_active = FALSE WHERE user_id = $1`, userID); err != nil {
			return nil, NewError("postgres", "deactivate_schema_versions", err)
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

	_, err = tx.Exec(ctx, `
		INSERT INTO schema_versions (id, user_id, version, context, fields, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.UserID, v.Version, v.Context, fieldsJSON, v.IsActive, v.CreatedAt)
	if err != nil {
		return nil, NewError("postgres", "insert_schema_version", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, NewError("postgres", "insert_schema_version", err)
	}
	return v, nil
}

// ActivateSchemaVersion makes exactly versionID active for the owner.
func (s *PostgresStore) ActivateSchemaVersion(ctx context.Context, userID, versionID string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, NewError("postgres", "activate_schema_version", err)
	}
	defer tx.Rollback(ctx)

	var owned int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM schema_versions WHERE id = $1 AND user_id = $2`,
		versionID, userID).Scan(&owned)
	if err != nil {
		return false, NewError("postgres", "activate_schema_version", err)
	}
	if owned == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE schema_versions SET is_active = FALSE WHERE user_id = $1`, userID); err != nil {
		return false, NewError("postgres", "deactivate_schema_versions", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE schema_versions SET is_active = TRUE WHERE id = $1 AND user_id = $2`,
		versionID, userID); err != nil {
		return false, NewError("postgres", "activate_schema_version", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, NewError("postgres", "activate_schema_version", err)
	}
	return true, nil
}

// UpdateDocumentLocation persists a document's current path and name.
func (s *PostgresStore) UpdateDocumentLocation(ctx context.Context, userID, documentID, path, name string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (user_id, document_id, path, name, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id, document_id) DO UPDATE SET
			path = EXCLUDED.path,
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at`,
		userID, documentID, path, name)
	if err != nil {
		return NewError("postgres", "update_document_location", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type pgxRow interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanVersionRow(row pgxRow) (*fieldschema.Version, error) {
	var v fieldschema.Version
	var fieldsJSON []byte
	var versionContext *string

	if err := row.Scan(&v.ID, &v.UserID, &v.Version, &versionContext, &fieldsJSON, &v.IsActive, &v.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fieldsJSON, &v.Fields); err != nil {
		return nil, err
	}
	if versionContext != nil {
		v.Context = *versionContext
	}
	return &v, nil
}
