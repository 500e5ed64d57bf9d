package db

import "testing"

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	// Running again must skip already applied migrations.
	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("counting migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 recorded migration, got %d", count)
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(
		`INSERT INTO claim_requests (item_id, claimant_id, message) VALUES (999, 1, 'mine')`,
	)
	if err == nil {
		t.Error("expected foreign key violation for missing item")
	}
}

func TestDSN(t *testing.T) {
	got := dsn("reclaim.sqlite3")
	if got[:len("file:reclaim.sqlite3?")] != "file:reclaim.sqlite3?" {
		t.Errorf("unexpected dsn prefix: %s", got)
	}

	got = dsn("mem?mode=memory")
	if got[:len("file:mem?mode=memory&")] != "file:mem?mode=memory&" {
		t.Errorf("expected existing query to be extended: %s", got)
	}
}
