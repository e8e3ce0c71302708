package document

import (
	"context"
	"sort"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/codec"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

// StatisticsDAO stores column statistics in column_statistics.json
type StatisticsDAO struct {
	session *Session
}

// Upsert inserts the statistic or replaces the one with the same key.
func (d *StatisticsDAO) Upsert(_ context.Context, s *catalog.ColumnStatistic) error {
	return d.session.Modify(func(coll *tree.Node) error {
		n := codec.EncodeColumnStatistic(s)
		if pos := findStatistic(coll, s.TableID, s.OrdinalPosition); pos >= 0 {
			coll.ReplaceAt(pos, n)
			return nil
		}
		coll.Append(n)
		return nil
	})
}

// Select returns the statistic of one column.
func (d *StatisticsDAO) Select(_ context.Context, tableID catalog.ObjectID, ordinalPosition int64) (*catalog.ColumnStatistic, error) {
	coll, err := d.session.Collection()
	if err != nil {
		return nil, err
	}

	pos := findStatistic(coll, tableID, ordinalPosition)
	if pos < 0 {
		return nil, catalog.Errorf(catalog.ErrInvalidParameter,
			"no column statistic for table id %d, ordinal position %d", tableID, ordinalPosition)
	}
	return codec.DecodeColumnStatistic(coll.Items()[pos])
}

// SelectByTableID returns the statistics of tableID by ordinal position.
func (d *StatisticsDAO) SelectByTableID(_ context.Context, tableID catalog.ObjectID) ([]*catalog.ColumnStatistic, error) {
	coll, err := d.session.Collection()
	if err != nil {
		return nil, err
	}

	var stats []*catalog.ColumnStatistic
	for _, item := range coll.Items() {
		if !matchesTable(item, tableID) {
			continue
		}
		s, err := codec.DecodeColumnStatistic(item)
		if err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if len(stats) == 0 {
		return nil, catalog.Errorf(catalog.ErrInvalidParameter, "no column statistics for table id %d", tableID)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].OrdinalPosition < stats[j].OrdinalPosition
	})
	return stats, nil
}

// Delete removes the statistic of one column.
func (d *StatisticsDAO) Delete(_ context.Context, tableID catalog.ObjectID, ordinalPosition int64) error {
	return d.session.Modify(func(coll *tree.Node) error {
		pos := findStatistic(coll, tableID, ordinalPosition)
		if pos < 0 {
			return catalog.Errorf(catalog.ErrInvalidParameter,
				"no column statistic for table id %d, ordinal position %d", tableID, ordinalPosition)
		}
		coll.RemoveAt(pos)
		return nil
	})
}

// DeleteByTableID removes every statistic of tableID.
func (d *StatisticsDAO) DeleteByTableID(_ context.Context, tableID catalog.ObjectID) error {
	return d.session.Modify(func(coll *tree.Node) error {
		if removeWhere(coll, func(item *tree.Node) bool { return matchesTable(item, tableID) }) == 0 {
			return catalog.Errorf(catalog.ErrInvalidParameter, "no column statistics for table id %d", tableID)
		}
		return nil
	})
}

func findStatistic(coll *tree.Node, tableID catalog.ObjectID, ordinalPosition int64) int {
	for i, item := range coll.Items() {
		if matchesTable(item, tableID) && ordinalOf(item) == ordinalPosition {
			return i
		}
	}
	return -1
}
