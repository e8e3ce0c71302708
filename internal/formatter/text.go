package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
)

// TextFormatter formats the catalog as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes every table in compact text format
func (f *TextFormatter) Format(s *Snapshot) error {
	for i, table := range s.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}

		if err := f.FormatTable(s, table); err != nil {
			return err
		}
	}
	return nil
}

// FormatTable writes a single table
func (f *TextFormatter) FormatTable(s *Snapshot, table *catalog.Table) error {
	_, err := fmt.Fprintf(f.writer, "TABLE %s (id: %d, tuples: %g)\n", qualifiedName(table), table.ID, table.Tuples)
	if err != nil {
		return err
	}

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(s, col))
	}

	indexes := s.tableIndexes(table.ID)
	if len(indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  INDEXES:")
		for _, idx := range indexes {
			_, _ = fmt.Fprintf(f.writer, "    %s (%s)%s\n", idx.Name, strings.Join(keyNames(table, idx), ", "), indexFlags(idx))
		}
	}

	return nil
}

func (f *TextFormatter) formatColumn(s *Snapshot, col catalog.Column) string {
	parts := []string{col.Name + ":", s.typeName(col.DataTypeID)}

	if col.Nullable != nil && !*col.Nullable {
		parts = append(parts, "NOT NULL")
	}

	if col.DefaultExpression != nil {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", *col.DefaultExpression))
	}

	return strings.Join(parts, " ")
}
