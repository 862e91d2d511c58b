package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the store schema.
const Schema = `
-- Policy documents, one row per (owner, policy id)
CREATE TABLE IF NOT EXISTS policies (
    user_id TEXT NOT NULL,
    policy_id TEXT NOT NULL,
    api_version TEXT NOT NULL,
    kind TEXT NOT NULL,
    metadata TEXT NOT NULL,     -- JSON
    spec TEXT NOT NULL,         -- JSON
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (user_id, policy_id)
);

-- Field schema versions, append-only per owner
CREATE TABLE IF NOT EXISTS schema_versions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    version INTEGER NOT NULL,
    context TEXT,
    fields TEXT NOT NULL,       -- JSON array
    is_active INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (user_id, version)
);

-- Durable ingestion records: current file location per document
CREATE TABLE IF NOT EXISTS documents (
    user_id TEXT NOT NULL,
    document_id TEXT NOT NULL,
    path TEXT NOT NULL,
    name TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (user_id, document_id)
);

-- Migration bookkeeping
CREATE TABLE IF NOT EXISTS store_schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_policies_user ON policies(user_id);
CREATE INDEX IF NOT EXISTS idx_schema_versions_user ON schema_versions(user_id);
CREATE INDEX IF NOT EXISTS idx_schema_versions_active ON schema_versions(user_id, is_active);
`

// InsertSchemaVersionSQL records the migration version.
const InsertSchemaVersionSQL = `
INSERT INTO store_schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersionSQL retrieves the latest applied migration version.
const GetSchemaVersionSQL = `
SELECT version FROM store_schema_version ORDER BY version DESC LIMIT 1;
`
