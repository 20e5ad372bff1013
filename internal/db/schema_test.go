package db

import (
	"database/sql"
	"testing"
)

func TestRebind(t *testing.T) {
	q := `INSERT INTO state (bucket, payload) VALUES (?, ?)`

	if got := SQLite.Rebind(q); got != q {
		t.Errorf("sqlite should keep ? placeholders, got %q", got)
	}

	want := `INSERT INTO state (bucket, payload) VALUES ($1, $2)`
	if got := Postgres.Rebind(q); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := EnsureSchema(database, SQLite); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("querying state table: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty state table, got %d rows", count)
	}
}

func TestSnapshotTxOptions(t *testing.T) {
	if opts := SQLite.SnapshotTxOptions(); opts != nil {
		t.Errorf("sqlite snapshot options = %+v, want driver default", opts)
	}
	opts := Postgres.SnapshotTxOptions()
	if opts == nil || opts.Isolation != sql.LevelRepeatableRead || !opts.ReadOnly {
		t.Errorf("postgres snapshot options = %+v, want read-only repeatable read", opts)
	}
}
