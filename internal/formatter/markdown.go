package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
)

// MarkdownFormatter formats the catalog as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes every table in markdown format
func (f *MarkdownFormatter) Format(s *Snapshot) error {
	_, _ = fmt.Fprintln(f.writer, "# Metadata Catalog")
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range s.Tables {
		if err := f.FormatTable(s, table); err != nil {
			return err
		}
	}
	return nil
}

// FormatTable writes a single table (also used by the multi-file formatter)
func (f *MarkdownFormatter) FormatTable(s *Snapshot, table *catalog.Table) error {
	if _, err := fmt.Fprintf(f.writer, "## %s\n\n", qualifiedName(table)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(f.writer, "Table id %d, estimated tuples %g.\n\n", table.ID, table.Tuples)

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)
	for _, col := range table.Columns {
		typeStr := s.typeName(col.DataTypeID)
		if constraintStr := f.formatConstraints(col); constraintStr != "" {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, typeStr, constraintStr)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, typeStr)
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	indexes := s.tableIndexes(table.ID)
	if len(indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Indexes")
		_, _ = fmt.Fprintln(f.writer)
		for _, idx := range indexes {
			flags := strings.ToLower(strings.TrimSpace(indexFlags(idx)))
			if flags != "" {
				flags = ", " + flags
			}
			_, _ = fmt.Fprintf(f.writer, "- %s on (%s)%s\n", idx.Name, strings.Join(keyNames(table, idx), ", "), flags)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	return nil
}

func (f *MarkdownFormatter) formatConstraints(col catalog.Column) string {
	var constraints []string

	if col.Nullable != nil && !*col.Nullable {
		constraints = append(constraints, "NOT NULL")
	}

	if col.DefaultExpression != nil {
		constraints = append(constraints, fmt.Sprintf("DEFAULT %s", *col.DefaultExpression))
	}

	return strings.Join(constraints, ", ")
}
