package db

import (
	"strconv"
	"strings"
)

// Dialect carries the SQL differences between the supported drivers.
type Dialect struct {
	Name   string
	Driver string
}

var (
	// SQLite is served by modernc.org/sqlite.
	SQLite = Dialect{Name: "sqlite", Driver: "sqlite"}
	// Postgres is served by github.com/lib/pq.
	Postgres = Dialect{Name: "postgres", Driver: "postgres"}
)

// DialectFor picks the dialect from the shape of the DSN.
func DialectFor(dsn string) Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "sslmode=") {
		return Postgres
	}
	return SQLite
}

// Rebind rewrites "?" placeholders into the dialect's form.
func (d Dialect) Rebind(query string) string {
	if d.Name != Postgres.Name {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Like returns the case-insensitive pattern operator.
func (d Dialect) Like() string {
	if d.Name == Postgres.Name {
		return "ILIKE"
	}
	return "LIKE"
}

// NotLike returns the negated case-insensitive pattern operator.
func (d Dialect) NotLike() string {
	return "NOT " + d.Like()
}

// PrimaryKey returns the DDL of an auto-incremented integer key.
func (d Dialect) PrimaryKey() string {
	if d.Name == Postgres.Name {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// CastText returns an expression converting col to text, used to match IDs
// against search text.
func (d Dialect) CastText(col string) string {
	if d.Name == Postgres.Name {
		return col + "::text"
	}
	return "CAST(" + col + " AS TEXT)"
}
