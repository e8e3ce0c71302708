package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	metadata "github.com/ban-nobuhiro/metadata-manager"
	"github.com/ban-nobuhiro/metadata-manager/internal/codec"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

func (c *cli) tablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Add, read and remove tables",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a table and its columns from JSON",
		Args:  cobra.NoArgs,
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, _ []string) error {
			n, err := readInput(cmd)
			if err != nil {
				return err
			}
			t, err := codec.DecodeTable(n)
			if err != nil {
				return err
			}
			// An absent estimate decodes as the sentinel; a new table starts empty.
			if t.Tuples < 0 {
				t.Tuples = 0
			}
			id, err := cat.AddTable(ctx, t)
			if err != nil {
				return err
			}
			return writeID(cmd, id)
		}),
	}
	addInputFlag(add)

	get := &cobra.Command{
		Use:   "get NAME",
		Short: "Print a table with its columns",
		Args:  cobra.ExactArgs(1),
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, args []string) error {
			key, value := lookupKey(cmd, args[0])
			t, err := cat.GetTable(ctx, key, value)
			if err != nil {
				return err
			}
			return writeJSON(cmd, codec.EncodeTable(t))
		}),
	}
	addKeyFlag(get)

	list := &cobra.Command{
		Use:   "list",
		Short: "Print every table",
		Args:  cobra.NoArgs,
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, _ []string) error {
			tables, err := cat.GetTables(ctx)
			if err != nil {
				return err
			}
			out := tree.NewArray()
			for _, t := range tables {
				out.Append(codec.EncodeTable(t))
			}
			return writeJSON(cmd, out)
		}),
	}

	remove := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a table with its columns and column statistics",
		Args:  cobra.ExactArgs(1),
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, args []string) error {
			key, value := lookupKey(cmd, args[0])
			id, err := cat.RemoveTable(ctx, key, value)
			if err != nil {
				return err
			}
			return writeID(cmd, id)
		}),
	}
	addKeyFlag(remove)

	setTuples := &cobra.Command{
		Use:   "set-tuples NAME TUPLES",
		Short: "Set the estimated row count of a table",
		Args:  cobra.ExactArgs(2),
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, args []string) error {
			tuples, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid tuples: %q", args[1])
			}

			t := &metadata.Table{Tuples: tuples}
			key, value := lookupKey(cmd, args[0])
			if key == metadata.KeyID {
				if t.ID, err = parseID(value, "table id"); err != nil {
					return err
				}
			} else {
				t.Name = value
			}

			id, err := cat.SetTableStatistic(ctx, t)
			if err != nil {
				return err
			}
			return writeID(cmd, id)
		}),
	}
	addKeyFlag(setTuples)

	cmd.AddCommand(add, get, list, remove, setTuples)
	return cmd
}
