package database

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Initialize(filepath.Join(t.TempDir(), "coach.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(context.Background()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	tables := []string{"lesson_progress", "word_progress", "daily_activity", "migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// A second run finds nothing left to do.
	if err := db.RunMigrations(ctx); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 recorded migration, got %d", count)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *Tx) error {
		id, err := tx.ExecReturningID(ctx,
			"INSERT INTO word_progress (language, word, correct, incorrect, box) VALUES (?, ?, ?, ?, ?)",
			"french", "chat", 1, 0, 2)
		if err != nil {
			return err
		}
		if id <= 0 {
			t.Errorf("ExecReturningID() = %d", id)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Committed transaction failed: %v", err)
	}

	var box int
	if err := db.QueryRowContext(ctx, "SELECT box FROM word_progress WHERE language = ? AND word = ?", "french", "chat").Scan(&box); err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if box != 2 {
		t.Errorf("Expected box 2, got %d", box)
	}

	// A failing callback rolls back.
	err = db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO word_progress (language, word) VALUES (?, ?)", "french", "chien"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO word_progress (language, word) VALUES (?, ?)", "french", "chat")
		return err
	})
	if err == nil {
		t.Fatal("Expected the duplicate insert to fail")
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM word_progress WHERE word = ?", "chien").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected rollback, found %d rows", count)
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "INSERT INTO daily_activity (activity_date, xp) VALUES (?, ?)", "2026-10-16", 30); err != nil {
		t.Fatalf("Failed to seed activity: %v", err)
	}

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			var xp int
			err := db.QueryRowContext(ctx, "SELECT xp FROM daily_activity WHERE activity_date = ?", "2026-10-16").Scan(&xp)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
			}
			if xp != 30 {
				t.Errorf("Expected xp 30, got %d", xp)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
