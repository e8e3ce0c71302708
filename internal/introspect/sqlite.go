package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ban-nobuhiro/metadata-manager/internal/schema"
	"github.com/ban-nobuhiro/metadata-manager/internal/store/relational"
)

// SQLiteExtractor handles schema extraction from SQLite
type SQLiteExtractor struct {
	db *sql.DB
}

// NewSQLiteExtractor creates a new SQLite schema extractor
func NewSQLiteExtractor(client *relational.SQLClient) *SQLiteExtractor {
	return &SQLiteExtractor{db: client.GetDB()}
}

// ExtractSchema extracts the complete schema for specified tables
// If tables is empty, extracts all tables in the database
func (e *SQLiteExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	return extractSchema(ctx, e, tables)
}

func (e *SQLiteExtractor) tableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableList []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableList = append(tableList, tableName)
	}

	return tableList, rows.Err()
}

func (e *SQLiteExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := &schema.Table{Name: tableName, Namespace: "main"}

	columns, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	}
	table.Columns = columns

	var count int64
	query := "SELECT COUNT(*) FROM " + relational.SQLite.Quote(tableName)
	if err := e.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}
	table.RowEstimate = float64(count)

	indexes, err := e.extractIndexes(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	table.Indexes = indexes

	return table, nil
}

func (e *SQLiteExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", relational.SQLite.Quote(tableName))

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var cid int64
		var name, colType string
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}

		col := schema.Column{
			Name:     name,
			Position: cid + 1,
			Type:     strings.ToLower(colType),
			// SQLite lets primary key columns hold NULL unless declared NOT NULL.
			Nullable: notNull == 0,
		}
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

type sqliteIndex struct {
	name   string
	unique bool
	origin string
}

func (e *SQLiteExtractor) extractIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := fmt.Sprintf("PRAGMA index_list(%s)", relational.SQLite.Quote(tableName))

	// The client holds one connection, so index_list is drained before
	// index_info is queried.
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	var list []sqliteIndex
	for rows.Next() {
		var seq, unique, partial int
		var idx sqliteIndex
		if err := rows.Scan(&seq, &idx.name, &unique, &idx.origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		idx.unique = unique == 1
		list = append(list, idx)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	var indexes []schema.Index
	for _, idx := range list {
		columns, err := e.indexColumns(ctx, idx.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read index %s: %w", idx.name, err)
		}
		indexes = append(indexes, schema.Index{
			Name:      idx.name,
			Columns:   columns,
			IsUnique:  idx.unique,
			IsPrimary: idx.origin == "pk",
		})
	}
	return indexes, nil
}

func (e *SQLiteExtractor) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	query := fmt.Sprintf("PRAGMA index_info(%s)", relational.SQLite.Quote(indexName))

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		// Expression keys have no column name.
		if name.Valid {
			columns = append(columns, name.String)
		}
	}

	return columns, rows.Err()
}
