package provider

import (
	"context"
	"errors"
	"strconv"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
)

// AddColumnStatistic stores s, replacing any statistic already recorded
// for the same (table id, ordinal position). The table must have a column
// at that ordinal position.
func (p *Provider) AddColumnStatistic(ctx context.Context, s *catalog.ColumnStatistic) error {
	if s.TableID <= catalog.InvalidObjectID {
		return catalog.Errorf(catalog.ErrInvalidParameter, "table id is required")
	}
	if s.OrdinalPosition <= 0 {
		return catalog.Errorf(catalog.ErrInvalidParameter, "ordinal position must be positive")
	}
	if s.Statistic == nil {
		return catalog.Errorf(catalog.ErrInvalidParameter, "column statistic payload is required")
	}

	return p.transact(ctx, "add column statistic", func(ctx context.Context) error {
		if _, err := p.store.Tables().Select(ctx, catalog.KeyID, strconv.FormatInt(int64(s.TableID), 10)); err != nil {
			return err
		}
		columns, err := p.store.Columns().SelectByTableID(ctx, s.TableID)
		if err != nil {
			return err
		}
		found := false
		for _, c := range columns {
			if c.OrdinalPosition == s.OrdinalPosition {
				found = true
				break
			}
		}
		if !found {
			return catalog.Errorf(catalog.ErrInvalidParameter,
				"table %d has no column at ordinal position %d", s.TableID, s.OrdinalPosition)
		}
		return p.store.Statistics().Upsert(ctx, s)
	})
}

// GetColumnStatistic returns the statistic of one column.
func (p *Provider) GetColumnStatistic(ctx context.Context, tableID catalog.ObjectID, ordinalPosition int64) (*catalog.ColumnStatistic, error) {
	return p.store.Statistics().Select(ctx, tableID, ordinalPosition)
}

// GetColumnStatistics returns every statistic of a table ordered by
// ordinal position. A table without statistics yields an empty list.
func (p *Provider) GetColumnStatistics(ctx context.Context, tableID catalog.ObjectID) ([]*catalog.ColumnStatistic, error) {
	stats, err := p.store.Statistics().SelectByTableID(ctx, tableID)
	if errors.Is(err, catalog.ErrInvalidParameter) {
		return []*catalog.ColumnStatistic{}, nil
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// RemoveColumnStatistic deletes the statistic of one column.
func (p *Provider) RemoveColumnStatistic(ctx context.Context, tableID catalog.ObjectID, ordinalPosition int64) error {
	return p.transact(ctx, "remove column statistic", func(ctx context.Context) error {
		return p.store.Statistics().Delete(ctx, tableID, ordinalPosition)
	})
}

// RemoveColumnStatistics deletes every statistic of a table. At least one
// statistic must exist.
func (p *Provider) RemoveColumnStatistics(ctx context.Context, tableID catalog.ObjectID) error {
	return p.transact(ctx, "remove column statistics", func(ctx context.Context) error {
		return p.store.Statistics().DeleteByTableID(ctx, tableID)
	})
}
