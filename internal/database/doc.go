// Package database loads the ordered question records the application needs at startup.
//
// Two backends are supported:
//   - sqlite: a local questions.db file (modernc.org/sqlite, no cgo)
//   - postgres: a pgx connection pool
//
// Handler state is never written back; storage is read once at startup.
package database
