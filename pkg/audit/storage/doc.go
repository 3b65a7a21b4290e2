// Package storage provides audit record storage backends.
//
// The SQLite backend is the production default: WAL mode for concurrent
// writes, indexes on timestamp, client key, and decision, and a schema
// version table. The memory backend serves tests.
package storage
