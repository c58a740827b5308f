package database

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// PostgresDialect stores progress in PostgreSQL through lib/pq.
type PostgresDialect struct{}

// NewPostgresDialect creates a new PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// DSN passes DATABASE_URL through; lib/pq accepts both URLs and key=value strings.
func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

func (d *PostgresDialect) SupportsLastInsertId() bool {
	return false
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	configurePool(db)
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
}

// AccumulateClause qualifies the current value with the table name; an
// unqualified column is ambiguous next to EXCLUDED.
func (d *PostgresDialect) AccumulateClause(table, key string, columns ...string) string {
	return "ON CONFLICT (" + key + ") DO UPDATE SET " + accumulateAssignments(columns,
		func(col string) string { return table + "." + col },
		func(col string) string { return "EXCLUDED." + col },
	)
}
