package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Both dialects keep each entity collection as one JSON document per bucket.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS state (
    bucket     TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS state (
    bucket     TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)
`

// Dialect captures the differences between the supported SQL backends.
type Dialect struct {
	Name   string
	schema string
	dollar bool
	// snapshot is used for transactions that read several buckets and must
	// see them as of one instant.
	snapshot *sql.TxOptions
}

// postgresSnapshot makes a multi-statement read see one snapshot. A SQLite
// transaction already does with the default options.
var postgresSnapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

var (
	SQLite   = Dialect{Name: "sqlite", schema: sqliteSchema}
	Postgres = Dialect{Name: "postgres", schema: postgresSchema, dollar: true, snapshot: postgresSnapshot}
)

// SnapshotTxOptions returns the options for a consistent multi-bucket read.
// Nil means the driver default.
func (d Dialect) SnapshotTxOptions() *sql.TxOptions {
	return d.snapshot
}

// Rebind rewrites ? placeholders into the dialect's native form.
func (d Dialect) Rebind(query string) string {
	if !d.dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EnsureSchema creates all tables if they don't already exist.
func EnsureSchema(db *sql.DB, d Dialect) error {
	if _, err := db.Exec(d.schema); err != nil {
		return fmt.Errorf("creating %s schema: %w", d.Name, err)
	}
	return nil
}
