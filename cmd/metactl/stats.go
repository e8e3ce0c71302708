package main

import (
	"context"

	"github.com/spf13/cobra"

	metadata "github.com/ban-nobuhiro/metadata-manager"
	"github.com/ban-nobuhiro/metadata-manager/internal/codec"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

func (c *cli) statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Manage column statistics",
	}

	set := &cobra.Command{
		Use:   "set TABLE_ID POSITION",
		Short: "Store the JSON statistic of a column, replacing any previous one",
		Args:  cobra.ExactArgs(2),
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, args []string) error {
			tableID, pos, err := statArgs(args)
			if err != nil {
				return err
			}
			payload, err := readInput(cmd)
			if err != nil {
				return err
			}
			return cat.AddColumnStatistic(ctx, &metadata.ColumnStatistic{
				TableID:         tableID,
				OrdinalPosition: pos,
				Statistic:       payload,
			})
		}),
	}
	addInputFlag(set)

	get := &cobra.Command{
		Use:   "get TABLE_ID POSITION",
		Short: "Print the statistic of a column",
		Args:  cobra.ExactArgs(2),
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, args []string) error {
			tableID, pos, err := statArgs(args)
			if err != nil {
				return err
			}
			s, err := cat.GetColumnStatistic(ctx, tableID, pos)
			if err != nil {
				return err
			}
			return writeJSON(cmd, codec.EncodeColumnStatistic(s))
		}),
	}

	list := &cobra.Command{
		Use:   "list TABLE_ID",
		Short: "Print every column statistic of a table",
		Args:  cobra.ExactArgs(1),
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, args []string) error {
			tableID, err := parseID(args[0], "table id")
			if err != nil {
				return err
			}
			stats, err := cat.GetColumnStatistics(ctx, tableID)
			if err != nil {
				return err
			}
			out := tree.NewArray()
			for _, s := range stats {
				out.Append(codec.EncodeColumnStatistic(s))
			}
			return writeJSON(cmd, out)
		}),
	}

	remove := &cobra.Command{
		Use:   "remove TABLE_ID [POSITION]",
		Short: "Remove one column statistic, or all of a table",
		Args:  cobra.RangeArgs(1, 2),
		RunE: c.withCatalog(func(ctx context.Context, cmd *cobra.Command, cat *metadata.Catalog, args []string) error {
			if len(args) == 1 {
				tableID, err := parseID(args[0], "table id")
				if err != nil {
					return err
				}
				return cat.RemoveColumnStatistics(ctx, tableID)
			}
			tableID, pos, err := statArgs(args)
			if err != nil {
				return err
			}
			return cat.RemoveColumnStatistic(ctx, tableID, pos)
		}),
	}

	cmd.AddCommand(set, get, list, remove)
	return cmd
}

func statArgs(args []string) (metadata.ObjectID, int64, error) {
	tableID, err := parseID(args[0], "table id")
	if err != nil {
		return metadata.InvalidObjectID, 0, err
	}
	pos, err := parsePosition(args[1])
	if err != nil {
		return metadata.InvalidObjectID, 0, err
	}
	return tableID, pos, nil
}
