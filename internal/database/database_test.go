package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// Foreign keys must be on for every connection the pool opens, not just the
// first one, or cascades and dangling-reference rejection silently stop
// working once a second connection is handed out.
func TestForeignKeysOnEveryPooledConnection(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(2)

	ctx := context.Background()

	conn1, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("conn 1: %v", err)
	}
	defer conn1.Close()
	conn2, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("conn 2: %v", err)
	}
	defer conn2.Close()

	for i, conn := range []*sql.Conn{conn1, conn2} {
		var fk int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("conn %d: read pragma: %v", i+1, err)
		}
		if fk != 1 {
			t.Errorf("conn %d: foreign_keys = %d, want 1", i+1, fk)
		}

		_, err := conn.ExecContext(ctx,
			`INSERT INTO items (product_id, store_id) VALUES (9999, 9999)`)
		if err == nil {
			t.Errorf("conn %d: dangling insert succeeded", i+1)
		}
	}
}
