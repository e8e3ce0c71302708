package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	metadata "github.com/ban-nobuhiro/metadata-manager"
)

func (c *cli) importCmd() *cobra.Command {
	var tables, exclude, schemaName string

	cmd := &cobra.Command{
		Use:   "import SOURCE_URL",
		Short: "Register the tables of a live database",
		Long: `Import reads tables, row estimates and indexes from a PostgreSQL, MySQL or
SQLite database and adds them to the catalog. Tables already in the catalog and
tables with column types the catalog cannot represent are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, args []string) error {
			result, err := cat.Import(ctx, args[0], &metadata.ImportOptions{
				Tables:        splitList(tables),
				ExcludeTables: splitList(exclude),
				SchemaName:    schemaName,
			})
			if err != nil {
				return fmt.Errorf("failed to import: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "imported %d tables, %d indexes\n", len(result.Tables), len(result.Indexes))
			for _, s := range result.Skipped {
				_, _ = fmt.Fprintf(out, "skipped %s: %s\n", s.Name, s.Reason)
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	cmd.Flags().StringVarP(&exclude, "exclude", "x", "", "Tables to leave out (comma-separated)")
	cmd.Flags().StringVarP(&schemaName, "schema", "s", "", "Database schema name (default: public for PostgreSQL)")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var outputFile, outputDir, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the catalog as text or markdown",
		Args:  cobra.NoArgs,
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, _ []string) error {
			if outputDir != "" && outputFile != "" {
				return fmt.Errorf("cannot use both --output-dir and --output flags")
			}

			opts := &metadata.OutputOptions{Writer: cmd.OutOrStdout(), OutputDir: outputDir, Format: format}
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer func() {
					if err := f.Close(); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to close output file: %v\n", err)
					}
				}()
				opts.Writer = f
			}

			if err := cat.Export(ctx, opts); err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or markdown")
	return cmd
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
