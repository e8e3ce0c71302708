package introspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ban-nobuhiro/metadata-manager/internal/schema"
	"github.com/ban-nobuhiro/metadata-manager/internal/store/relational"
)

// MySQLExtractor handles schema extraction from MySQL
type MySQLExtractor struct {
	db       *sql.DB
	database string
}

// NewMySQLExtractor creates a new schema extractor for one MySQL database
func NewMySQLExtractor(client *relational.SQLClient, databaseName string) *MySQLExtractor {
	return &MySQLExtractor{
		db:       client.GetDB(),
		database: databaseName,
	}
}

// ExtractSchema extracts the complete schema for specified tables
// If tables is empty, extracts all tables in the database
func (e *MySQLExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	return extractSchema(ctx, e, tables)
}

func (e *MySQLExtractor) tableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.db.QueryContext(ctx, query, e.database)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

func (e *MySQLExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := &schema.Table{Name: tableName, Namespace: e.database}

	columns, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s.%s does not exist", e.database, tableName)
	}
	table.Columns = columns

	estimate, err := e.rowEstimate(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to read row estimate: %w", err)
	}
	table.RowEstimate = estimate

	indexes, err := e.extractIndexes(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	table.Indexes = indexes

	return table, nil
}

func (e *MySQLExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT column_name, data_type, is_nullable, column_default, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := e.db.QueryContext(ctx, query, e.database, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var nullable string
		var defaultVal sql.NullString

		if err := rows.Scan(&col.Name, &col.Type, &nullable, &defaultVal, &col.Position); err != nil {
			return nil, err
		}

		col.Type = strings.ToLower(col.Type)
		col.Nullable = (nullable == "YES")
		if defaultVal.Valid {
			col.DefaultValue = &defaultVal.String
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// rowEstimate returns information_schema.tables.table_rows, an engine
// estimate for InnoDB.
func (e *MySQLExtractor) rowEstimate(ctx context.Context, tableName string) (float64, error) {
	query := `
		SELECT table_rows
		FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?
	`

	var rowsEstimate sql.NullInt64
	err := e.db.QueryRowContext(ctx, query, e.database, tableName).Scan(&rowsEstimate)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !rowsEstimate.Valid) {
		return -1, nil
	}
	if err != nil {
		return 0, err
	}
	return float64(rowsEstimate.Int64), nil
}

func (e *MySQLExtractor) extractIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := `
		SELECT index_name, non_unique, column_name
		FROM information_schema.statistics
		WHERE table_schema = ? AND table_name = ?
		ORDER BY index_name, seq_in_index
	`

	rows, err := e.db.QueryContext(ctx, query, e.database, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var name string
		var nonUnique int
		var column sql.NullString
		if err := rows.Scan(&name, &nonUnique, &column); err != nil {
			return nil, err
		}

		// Every MySQL primary key is named PRIMARY; catalog index names are global.
		isPrimary := name == "PRIMARY"
		if isPrimary {
			name = tableName + "_pkey"
		}
		if n := len(indexes); n == 0 || indexes[n-1].Name != name {
			indexes = append(indexes, schema.Index{Name: name, IsUnique: nonUnique == 0, IsPrimary: isPrimary})
		}
		// Functional key parts have no column name.
		if column.Valid {
			last := &indexes[len(indexes)-1]
			last.Columns = append(last.Columns, column.String)
		}
	}

	return indexes, rows.Err()
}
