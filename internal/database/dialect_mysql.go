package database

import (
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLDialect stores progress in MySQL or MariaDB.
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN accepts either a driver DSN or the same string with a mysql:// prefix.
func (d *MySQLDialect) DSN(config DialectConfig) string {
	return strings.TrimPrefix(config.URL, "mysql://")
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	return query
}

func (d *MySQLDialect) SupportsLastInsertId() bool {
	return true
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	configurePool(db)
	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}

// AccumulateClause relies on the table's primary or unique key; MySQL has
// no way to name the conflicting key, so key is unused.
func (d *MySQLDialect) AccumulateClause(table, key string, columns ...string) string {
	return "ON DUPLICATE KEY UPDATE " + accumulateAssignments(columns,
		func(col string) string { return col },
		func(col string) string { return "VALUES(" + col + ")" },
	)
}
