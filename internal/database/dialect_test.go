package database

import (
	"io/fs"
	"path"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for SQLite")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if result {
			t.Error("SupportsLastInsertId() should return false for PostgreSQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for MySQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM users WHERE id = ?",
			expected: "SELECT * FROM users WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM users WHERE id = ?",
			expected: "SELECT * FROM users WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO users (name, email) VALUES (?, ?)",
			expected: "INSERT INTO users (name, email) VALUES ($1, $2)",
		},
		{
			name:     "PostgreSQL quoted question mark",
			dialect:  NewPostgresDialect(),
			query:    "SELECT word FROM word_progress WHERE word <> '?' AND language = ?",
			expected: "SELECT word FROM word_progress WHERE word <> '?' AND language = $1",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE users SET name = ?, email = ? WHERE id = ?",
			expected: "UPDATE users SET name = ?, email = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAccumulateClause(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{NewSQLiteDialect(), "ON CONFLICT(activity_date) DO UPDATE SET xp = xp + excluded.xp, reviews = reviews + excluded.reviews"},
		{NewPostgresDialect(), "ON CONFLICT (activity_date) DO UPDATE SET xp = daily_activity.xp + EXCLUDED.xp, reviews = daily_activity.reviews + EXCLUDED.reviews"},
		{NewMySQLDialect(), "ON DUPLICATE KEY UPDATE xp = xp + VALUES(xp), reviews = reviews + VALUES(reviews)"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.DriverName(), func(t *testing.T) {
			got := tt.dialect.AccumulateClause("daily_activity", "activity_date", "xp", "reviews")
			if got != tt.want {
				t.Errorf("AccumulateClause() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	d := NewMySQLDialect()
	want := "coach:secret@tcp(db:3306)/coach"
	for _, url := range []string{want, "mysql://" + want} {
		if got := d.DSN(DialectConfig{URL: url}); got != want {
			t.Errorf("DSN(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestSplitStatements(t *testing.T) {
	content := `-- progress tables
CREATE TABLE a (id INTEGER);

CREATE TABLE b (id INTEGER); -- trailing
  ;
`
	got := splitStatements(content)
	if len(got) != 2 {
		t.Fatalf("splitStatements() = %q, want 2 statements", got)
	}
	if got[0] != "CREATE TABLE a (id INTEGER)" {
		t.Errorf("first statement = %q", got[0])
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, d := range []Dialect{NewSQLiteDialect(), NewPostgresDialect(), NewMySQLDialect()} {
		names, err := fs.Glob(migrationFiles, path.Join("migrations", d.MigrationsSubdir(), "*.sql"))
		if err != nil {
			t.Fatal(err)
		}
		if len(names) == 0 {
			t.Errorf("no migrations embedded for %s", d.MigrationsSubdir())
		}
	}
}
