package relational

import (
	"context"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/codec"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

// TablesDAO runs the tables statement catalog.
type TablesDAO struct {
	client Client
}

// Insert stores t without its columns and returns the assigned id.
func (d *TablesDAO) Insert(ctx context.Context, t *catalog.Table) (catalog.ObjectID, error) {
	return insertID(ctx, d.client, stmtTablesInsert,
		t.Name, catalog.FormatVersion, catalog.Generation, t.Namespace, t.Tuples)
}

// Select returns the table whose key field equals value.
func (d *TablesDAO) Select(ctx context.Context, key catalog.Key, value string) (*catalog.Table, error) {
	n, err := selectOne(ctx, d.client, key, value, stmtTablesSelectByID, stmtTablesSelectByName)
	if err != nil {
		return nil, err
	}
	return codec.DecodeTable(n)
}

// SelectAll returns every table ordered by id.
func (d *TablesDAO) SelectAll(ctx context.Context) ([]*catalog.Table, error) {
	nodes, err := queryNodes(ctx, d.client, stmtTablesSelectAll, nil)
	if err != nil {
		return nil, err
	}
	return decodeAll(nodes, codec.DecodeTable)
}

// UpdateTuples sets the tuple-count estimate of one table.
func (d *TablesDAO) UpdateTuples(ctx context.Context, key catalog.Key, value string, tuples float64) (catalog.ObjectID, error) {
	t, err := d.Select(ctx, key, value)
	if err != nil {
		return catalog.InvalidObjectID, err
	}
	if err := execExactlyOne(ctx, d.client, stmtTablesUpdateTuples, tuples, int64(t.ID)); err != nil {
		return catalog.InvalidObjectID, err
	}
	return t.ID, nil
}

// Delete removes one table row and returns its id.
func (d *TablesDAO) Delete(ctx context.Context, key catalog.Key, value string) (catalog.ObjectID, error) {
	t, err := d.Select(ctx, key, value)
	if err != nil {
		return catalog.InvalidObjectID, err
	}
	if err := execExactlyOne(ctx, d.client, stmtTablesDelete, int64(t.ID)); err != nil {
		return catalog.InvalidObjectID, err
	}
	return t.ID, nil
}

// ColumnsDAO runs the columns statement catalog.
type ColumnsDAO struct {
	client Client
}

// Insert stores c as a column of tableID and returns the assigned id.
func (d *ColumnsDAO) Insert(ctx context.Context, tableID catalog.ObjectID, c *catalog.Column) (catalog.ObjectID, error) {
	return insertID(ctx, d.client, stmtColumnsInsert,
		c.Name, catalog.FormatVersion, catalog.Generation,
		int64(tableID), c.OrdinalPosition, int64(c.DataTypeID),
		nullableArg(c.Nullable), stringArg(c.DefaultExpression))
}

// SelectByTableID returns the columns of a table ordered by ordinal position.
func (d *ColumnsDAO) SelectByTableID(ctx context.Context, tableID catalog.ObjectID) ([]catalog.Column, error) {
	nodes, err := queryNodes(ctx, d.client, stmtColumnsSelectByTable, []any{int64(tableID)})
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, catalog.Errorf(catalog.ErrInvalidParameter, "no columns for table %d", tableID)
	}

	columns := make([]catalog.Column, 0, len(nodes))
	for _, n := range nodes {
		c, err := codec.DecodeColumn(n)
		if err != nil {
			return nil, err
		}
		columns = append(columns, *c)
	}
	return columns, nil
}

// DeleteByTableID removes every column of a table.
func (d *ColumnsDAO) DeleteByTableID(ctx context.Context, tableID catalog.ObjectID) error {
	return execAtLeastOne(ctx, d.client, stmtColumnsDeleteByTable, int64(tableID))
}

// StatisticsDAO runs the column statistics statement catalog.
type StatisticsDAO struct {
	client Client
}

// Upsert inserts or replaces one column statistic.
func (d *StatisticsDAO) Upsert(ctx context.Context, s *catalog.ColumnStatistic) error {
	payload, err := jsonArg(s.Statistic)
	if err != nil {
		return err
	}

	affected, err := d.client.Exec(ctx, stmtStatisticsUpsert, int64(s.TableID), s.OrdinalPosition, payload)
	if err != nil {
		return catalog.Internal("execute "+stmtStatisticsUpsert, err)
	}
	if !d.client.Dialect().UpsertApplied(affected) {
		return catalog.Errorf(catalog.ErrInvalidParameter, "%s affected %d rows, expected 1", stmtStatisticsUpsert, affected)
	}
	return nil
}

// Select returns the statistic of one column.
func (d *StatisticsDAO) Select(ctx context.Context, tableID catalog.ObjectID, ordinalPosition int64) (*catalog.ColumnStatistic, error) {
	nodes, err := queryNodes(ctx, d.client, stmtStatisticsSelect,
		[]any{int64(tableID), ordinalPosition}, statisticJSONColumns...)
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, catalog.Errorf(catalog.ErrInvalidParameter,
			"no statistic for table %d ordinal position %d", tableID, ordinalPosition)
	}
	return codec.DecodeColumnStatistic(nodes[0])
}

// SelectByTableID returns the statistics of a table ordered by ordinal position.
func (d *StatisticsDAO) SelectByTableID(ctx context.Context, tableID catalog.ObjectID) ([]*catalog.ColumnStatistic, error) {
	nodes, err := queryNodes(ctx, d.client, stmtStatisticsSelectByTable,
		[]any{int64(tableID)}, statisticJSONColumns...)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, catalog.Errorf(catalog.ErrInvalidParameter, "no statistics for table %d", tableID)
	}
	return decodeAll(nodes, codec.DecodeColumnStatistic)
}

// Delete removes the statistic of one column.
func (d *StatisticsDAO) Delete(ctx context.Context, tableID catalog.ObjectID, ordinalPosition int64) error {
	return execExactlyOne(ctx, d.client, stmtStatisticsDelete, int64(tableID), ordinalPosition)
}

// DeleteByTableID removes every statistic of a table.
func (d *StatisticsDAO) DeleteByTableID(ctx context.Context, tableID catalog.ObjectID) error {
	return execAtLeastOne(ctx, d.client, stmtStatisticsDeleteByTable, int64(tableID))
}

// IndexesDAO runs the indexes statement catalog.
type IndexesDAO struct {
	client Client
}

// Insert stores idx and returns the assigned id.
func (d *IndexesDAO) Insert(ctx context.Context, idx *catalog.Index) (catalog.ObjectID, error) {
	args, err := indexArgs(idx)
	if err != nil {
		return catalog.InvalidObjectID, err
	}
	args = append([]any{idx.Name, catalog.FormatVersion, catalog.Generation}, args...)
	return insertID(ctx, d.client, stmtIndexesInsert, args...)
}

// Select returns the index whose key field equals value.
func (d *IndexesDAO) Select(ctx context.Context, key catalog.Key, value string) (*catalog.Index, error) {
	n, err := selectOne(ctx, d.client, key, value, stmtIndexesSelectByID, stmtIndexesSelectByName, indexJSONColumns...)
	if err != nil {
		return nil, err
	}
	return codec.DecodeIndex(n)
}

// SelectAll returns every index ordered by id.
func (d *IndexesDAO) SelectAll(ctx context.Context) ([]*catalog.Index, error) {
	nodes, err := queryNodes(ctx, d.client, stmtIndexesSelectAll, nil, indexJSONColumns...)
	if err != nil {
		return nil, err
	}
	return decodeAll(nodes, codec.DecodeIndex)
}

// Update replaces the mutable fields of the index with the given id.
func (d *IndexesDAO) Update(ctx context.Context, id catalog.ObjectID, idx *catalog.Index) error {
	args, err := indexArgs(idx)
	if err != nil {
		return err
	}
	args = append([]any{idx.Name}, args...)
	args = append(args, int64(id))

	affected, err := d.client.Exec(ctx, stmtIndexesUpdate, args...)
	if err != nil {
		return catalog.Internal("execute "+stmtIndexesUpdate, err)
	}
	if affected != 1 {
		return catalog.ErrIDNotFound
	}
	return nil
}

// Delete removes one index and returns its id.
func (d *IndexesDAO) Delete(ctx context.Context, key catalog.Key, value string) (catalog.ObjectID, error) {
	idx, err := d.Select(ctx, key, value)
	if err != nil {
		return catalog.InvalidObjectID, err
	}
	if err := execExactlyOne(ctx, d.client, stmtIndexesDelete, int64(idx.ID)); err != nil {
		return catalog.InvalidObjectID, err
	}
	return idx.ID, nil
}

// indexArgs returns the arguments for every index column after the stamps.
func indexArgs(idx *catalog.Index) ([]any, error) {
	var lists [3]any
	for i, values := range [][]int64{idx.Keys, idx.KeysID, idx.Options} {
		v, err := jsonArg(tree.Ints(values))
		if err != nil {
			return nil, err
		}
		lists[i] = v
	}
	return []any{
		int64(idx.TableID), int64(idx.OwnerID), idx.AccessMethod,
		idx.IsUnique, idx.IsPrimary,
		idx.NumberOfColumns, idx.NumberOfKeyColumns,
		lists[0], lists[1], lists[2],
	}, nil
}

// DataTypesDAO runs the datatypes statement catalog.
type DataTypesDAO struct {
	client Client
}

// Select returns the data type whose key field equals value.
func (d *DataTypesDAO) Select(ctx context.Context, key catalog.Key, value string) (*catalog.DataType, error) {
	n, err := selectOne(ctx, d.client, key, value, stmtDataTypesSelectByID, stmtDataTypesSelectByName)
	if err != nil {
		return nil, err
	}
	return codec.DecodeDataType(n)
}

// SelectAll returns every data type ordered by id.
func (d *DataTypesDAO) SelectAll(ctx context.Context) ([]*catalog.DataType, error) {
	nodes, err := queryNodes(ctx, d.client, stmtDataTypesSelectAll, nil)
	if err != nil {
		return nil, err
	}
	return decodeAll(nodes, codec.DecodeDataType)
}

func decodeAll[T any](nodes []*tree.Node, decode func(*tree.Node) (*T, error)) ([]*T, error) {
	out := make([]*T, 0, len(nodes))
	for _, n := range nodes {
		v, err := decode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
