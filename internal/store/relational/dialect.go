package relational

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\$\d+`)

// Dialect holds the statement differences between the supported engines.
// Statements are written once with $n placeholders and rendered per
// dialect; a statement must use each placeholder once, in order.
type Dialect struct {
	Name string

	positional bool
	returning  bool
	quote      byte

	textType     string
	floatType    string
	identityType string

	upsertClause string
	upsertCounts []int64
}

// Supported dialects.
var (
	Postgres = &Dialect{
		Name:         "postgres",
		returning:    true,
		quote:        '"',
		textType:     "TEXT",
		floatType:    "DOUBLE PRECISION",
		identityType: "BIGSERIAL PRIMARY KEY",
		upsertClause: "ON CONFLICT (table_id, ordinal_position) DO UPDATE SET column_statistic = excluded.column_statistic",
		upsertCounts: []int64{1},
	}

	SQLite = &Dialect{
		Name:         "sqlite",
		positional:   true,
		returning:    true,
		quote:        '"',
		textType:     "TEXT",
		floatType:    "REAL",
		identityType: "INTEGER PRIMARY KEY AUTOINCREMENT",
		upsertClause: "ON CONFLICT (table_id, ordinal_position) DO UPDATE SET column_statistic = excluded.column_statistic",
		upsertCounts: []int64{1},
	}

	// MySQL reports 2 affected rows when ON DUPLICATE KEY UPDATE changes
	// an existing row.
	MySQL = &Dialect{
		Name:         "mysql",
		positional:   true,
		quote:        '`',
		textType:     "VARCHAR(255)",
		floatType:    "DOUBLE",
		identityType: "BIGINT AUTO_INCREMENT PRIMARY KEY",
		upsertClause: "ON DUPLICATE KEY UPDATE column_statistic = VALUES(column_statistic)",
		upsertCounts: []int64{1, 2},
	}
)

// Rebind rewrites $n placeholders for engines that only take '?'.
func (d *Dialect) Rebind(query string) string {
	if !d.positional {
		return query
	}
	return placeholderPattern.ReplaceAllString(query, "?")
}

// Quote quotes an identifier. Catalog column names include reserved words
// such as keys.
func (d *Dialect) Quote(ident string) string {
	q := string(d.quote)
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// Returning reports whether inserts fetch the new id with RETURNING.
func (d *Dialect) Returning() bool {
	return d.returning
}

// UpsertApplied reports whether an upsert affected exactly one logical row.
func (d *Dialect) UpsertApplied(affected int64) bool {
	for _, n := range d.upsertCounts {
		if affected == n {
			return true
		}
	}
	return false
}

// columnList quotes and joins column names.
func (d *Dialect) columnList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.Quote(c)
	}
	return strings.Join(quoted, ", ")
}
