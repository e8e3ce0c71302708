// Package introspect reads table descriptions from a live PostgreSQL,
// MySQL or SQLite database and registers them in the catalog.
package introspect

import (
	"context"
	"fmt"

	"github.com/ban-nobuhiro/metadata-manager/internal/schema"
)

// Extractor reads table descriptions from a database
type Extractor interface {
	// ExtractSchema extracts the requested tables, or every base table
	// when tables is empty.
	ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error)
}

// tableReader is the per-backend half of an Extractor.
type tableReader interface {
	tableNames(ctx context.Context) ([]string, error)
	extractTable(ctx context.Context, name string) (*schema.Table, error)
}

func extractSchema(ctx context.Context, r tableReader, requested []string) (*schema.Schema, error) {
	tableNames := requested
	if len(tableNames) == 0 {
		names, err := r.tableNames(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get table names: %w", err)
		}
		tableNames = names
	}

	var extractedTables []schema.Table
	for _, tableName := range tableNames {
		table, err := r.extractTable(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
		}
		extractedTables = append(extractedTables, *table)
	}

	return &schema.Schema{Tables: extractedTables}, nil
}
