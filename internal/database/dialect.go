package database

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// Dialect hides the differences between the SQL backends the progress
// store runs on. Repositories write queries with ? placeholders and
// portable SQL; anything else goes through one of these methods.
type Dialect interface {
	DriverName() string
	DSN(config DialectConfig) string

	// RewriteQuery turns ? placeholders into the driver's own syntax.
	RewriteQuery(query string) string

	// SupportsLastInsertId is false when inserts need RETURNING id.
	SupportsLastInsertId() bool

	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the embedded migrations directory.
	MigrationsSubdir() string
	CreateMigrationsTableQuery() string

	// AccumulateClause is appended to an INSERT into table. When a row with
	// the same key already exists, each listed column is increased by the
	// inserted value instead of the insert failing.
	AccumulateClause(table, key string, columns ...string) string
}

// DialectConfig locates the database: a file path for SQLite, a URL or
// DSN for the server databases.
type DialectConfig struct {
	Path string
	URL  string
}

// Pool limits shared by every backend. The server writes one row per
// answered word, so a small pool is plenty.
const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = time.Minute
)

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)
}

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
// Question marks inside single-quoted literals are left alone.
func rewritePlaceholdersToNumbered(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// accumulateAssignments renders "col = <current> + <incoming>" for each
// column, joined with commas.
func accumulateAssignments(columns []string, current, incoming func(col string) string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col + " = " + current(col) + " + " + incoming(col)
	}
	return strings.Join(parts, ", ")
}
