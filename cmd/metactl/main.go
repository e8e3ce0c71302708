package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	metadata "github.com/ban-nobuhiro/metadata-manager"
)

// urlEnv names the environment variable read when --url is not given.
const urlEnv = "METADATA_URL"

type cli struct {
	url       string
	verbose   bool
	bootstrap bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:   "metactl",
		Short: "Manage a metadata catalog",
		Long: `metactl reads and changes the table, column statistic, index and data type
definitions of a metadata catalog stored as JSON documents (json://dir) or in
PostgreSQL, MySQL or SQLite. Objects are read and written as JSON.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.url, "url", "", "Catalog URL (default: $"+urlEnv+")")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log debug records to stderr")
	rootCmd.PersistentFlags().BoolVar(&c.bootstrap, "bootstrap", false, "Create missing catalog tables in a relational catalog")

	rootCmd.AddCommand(
		c.tablesCmd(),
		c.statsCmd(),
		c.indexesCmd(),
		c.datatypesCmd(),
		c.importCmd(),
		c.exportCmd(),
	)
	return rootCmd
}

// open opens the catalog named by --url or the environment.
func (c *cli) open(ctx context.Context, cmd *cobra.Command) (*metadata.Catalog, error) {
	url := c.url
	if url == "" {
		url = os.Getenv(urlEnv)
	}
	if url == "" {
		return nil, fmt.Errorf("--url or $%s must be specified", urlEnv)
	}

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return metadata.Open(ctx, url, &metadata.Options{Logger: logger, Bootstrap: c.bootstrap})
}

type catalogFunc func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, args []string) error

// withCatalog opens the catalog around fn and closes it afterwards.
func (c *cli) withCatalog(fn catalogFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cat, err := c.open(ctx, cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := cat.Close(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to close catalog: %v\n", err)
			}
		}()
		return fn(ctx, cmd, cat, args)
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
