// Package storage provides audit event storage backends.
//
// MemoryStorage is for tests; SQLiteStorage is the production backend, kept
// in a database file separate from the main store so that audit growth and
// retention pruning never contend with policy reads.
package storage
