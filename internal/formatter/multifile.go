package formatter

import (
	"bytes"
	"fmt"
	"path"

	"github.com/go-git/go-billy/v6"

	"github.com/ban-nobuhiro/metadata-manager/internal/atomicfile"
)

// Output formats understood by MultiFileFormatter
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// MultiFileFormatter writes the catalog as one file per table plus an
// overview. Every file is replaced atomically.
type MultiFileFormatter struct {
	fs           billy.Filesystem
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter writing under
// outputDir on fs
func NewMultiFileFormatter(fs billy.Filesystem, outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		fs:           fs,
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the overview and one file per table
func (f *MultiFileFormatter) Format(s *Snapshot) error {
	if f.OutputFormat != FormatText && f.OutputFormat != FormatMarkdown {
		return fmt.Errorf("unsupported format: %s (use 'text' or 'markdown')", f.OutputFormat)
	}
	if err := f.fs.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(s); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range s.Tables {
		var buf bytes.Buffer
		var err error
		if f.OutputFormat == FormatMarkdown {
			err = NewMarkdownFormatter(&buf).FormatTable(s, table)
		} else {
			err = NewTextFormatter(&buf).FormatTable(s, table)
		}
		if err == nil {
			err = atomicfile.WriteFile(f.fs, f.fileName(table.Name), buf.Bytes())
		}
		if err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeOverview(s *Snapshot) error {
	var buf bytes.Buffer
	if f.OutputFormat == FormatMarkdown {
		_, _ = fmt.Fprintf(&buf, "# Catalog Overview\n\n")
		_, _ = fmt.Fprintf(&buf, "Each table has a corresponding file: `<table_name>%s`\n\n", f.extension())
		_, _ = fmt.Fprintf(&buf, "## Tables\n\n")
		for _, table := range s.Tables {
			_, _ = fmt.Fprintf(&buf, "- **%s** (%d columns)\n", qualifiedName(table), len(table.Columns))
		}
	} else {
		_, _ = fmt.Fprintf(&buf, "CATALOG OVERVIEW\n")
		_, _ = fmt.Fprintf(&buf, "Each table has a file: <table_name>%s\n\n", f.extension())
		for _, table := range s.Tables {
			_, _ = fmt.Fprintf(&buf, "%s (%d columns)\n", qualifiedName(table), len(table.Columns))
		}
	}
	return atomicfile.WriteFile(f.fs, f.fileName("_overview"), buf.Bytes())
}

func (f *MultiFileFormatter) fileName(base string) string {
	return path.Join(f.OutputDir, base+f.extension())
}

func (f *MultiFileFormatter) extension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}
