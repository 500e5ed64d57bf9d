package db

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
)

var testDBSeq atomic.Int64

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
// The database is shared-cache and named per test so every pooled connection
// sees the same data.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := fmt.Sprintf("testdb%d", testDBSeq.Add(1))
	db, err := Open(name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	// One connection keeps writers serialized on the shared in-memory database.
	db.SetMaxOpenConns(1)

	if err := EnsureSchema(db); err != nil {
		db.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
