package main

import (
	"context"

	"github.com/spf13/cobra"

	metadata "github.com/ban-nobuhiro/metadata-manager"
	"github.com/ban-nobuhiro/metadata-manager/internal/codec"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

func (c *cli) indexesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Manage indexes",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add an index from JSON",
		Args:  cobra.NoArgs,
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, _ []string) error {
			idx, err := readIndex(cmd)
			if err != nil {
				return err
			}
			id, err := cat.AddIndex(ctx, idx)
			if err != nil {
				return err
			}
			return writeID(cmd, id)
		}),
	}
	addInputFlag(add)

	get := &cobra.Command{
		Use:   "get NAME",
		Short: "Print an index",
		Args:  cobra.ExactArgs(1),
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, args []string) error {
			key, value := lookupKey(cmd, args[0])
			idx, err := cat.GetIndex(ctx, key, value)
			if err != nil {
				return err
			}
			return writeJSON(cmd, codec.EncodeIndex(idx))
		}),
	}
	addKeyFlag(get)

	list := &cobra.Command{
		Use:   "list",
		Short: "Print every index",
		Args:  cobra.NoArgs,
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, _ []string) error {
			indexes, err := cat.GetIndexes(ctx)
			if err != nil {
				return err
			}
			out := tree.NewArray()
			for _, idx := range indexes {
				out.Append(codec.EncodeIndex(idx))
			}
			return writeJSON(cmd, out)
		}),
	}

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Replace an index with JSON, keeping its id",
		Args:  cobra.ExactArgs(1),
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, args []string) error {
			id, err := parseID(args[0], "index id")
			if err != nil {
				return err
			}
			idx, err := readIndex(cmd)
			if err != nil {
				return err
			}
			return cat.UpdateIndex(ctx, id, idx)
		}),
	}
	addInputFlag(update)

	remove := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove an index",
		Args:  cobra.ExactArgs(1),
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, args []string) error {
			key, value := lookupKey(cmd, args[0])
			id, err := cat.RemoveIndex(ctx, key, value)
			if err != nil {
				return err
			}
			return writeID(cmd, id)
		}),
	}
	addKeyFlag(remove)

	cmd.AddCommand(add, get, list, update, remove)
	return cmd
}

func readIndex(cmd *cobra.Command) (*metadata.Index, error) {
	n, err := readInput(cmd)
	if err != nil {
		return nil, err
	}
	return codec.DecodeIndex(n)
}

func (c *cli) datatypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datatypes",
		Short: "Read the reference data types",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print every data type",
		Args:  cobra.NoArgs,
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, _ []string) error {
			types, err := cat.GetDataTypes(ctx)
			if err != nil {
				return err
			}
			out := tree.NewArray()
			for _, dt := range types {
				out.Append(codec.EncodeDataType(dt))
			}
			return writeJSON(cmd, out)
		}),
	}

	get := &cobra.Command{
		Use:   "get NAME",
		Short: "Print a data type",
		Args:  cobra.ExactArgs(1),
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, args []string) error {
			key, value := lookupKey(cmd, args[0])
			dt, err := cat.GetDataType(ctx, key, value)
			if err != nil {
				return err
			}
			return writeJSON(cmd, codec.EncodeDataType(dt))
		}),
	}
	addKeyFlag(get)

	cmd.AddCommand(list, get)
	return cmd
}
