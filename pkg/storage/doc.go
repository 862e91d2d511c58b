// Package storage provides the relational store backends behind the policy
// registry, the versioned field schema registry, and the pipeline's document
// location writes.
//
// A Store value stands for one authenticated data-store session ("store
// handle"). Components receive it per call and must tolerate a nil handle:
// read paths degrade to empty results, write paths raise AuthRequired.
//
// Three backends are provided:
//   - Memory: mutex-guarded maps, for tests and single-process development
//   - SQLite: modernc.org/sqlite with WAL mode and a schema-version table
//   - Postgres: github.com/jackc/pgx/v5 connection pool
//
// The "exactly one active schema version per owner" invariant is enforced
// inside a single transaction (deactivate-all then activate-one) in the
// SQLite and Postgres backends, and under one mutex hold in the memory
// backend.
package storage
