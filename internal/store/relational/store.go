package relational

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/store"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

// Options configures a relational store.
type Options struct {
	// Bootstrap creates missing catalog tables and seeds the data types.
	Bootstrap bool
	Logger    *slog.Logger
}

// Store is the relational metadata store. It owns its client.
type Store struct {
	client Client
	logger *slog.Logger

	tables     *TablesDAO
	columns    *ColumnsDAO
	statistics *StatisticsDAO
	indexes    *IndexesDAO
	datatypes  *DataTypesDAO
}

var _ store.MetadataStore = (*Store)(nil)

// New prepares the statement catalog on client and returns a store using it.
func New(ctx context.Context, client Client, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Bootstrap {
		if err := Bootstrap(ctx, client); err != nil {
			return nil, fmt.Errorf("failed to bootstrap catalog: %w", err)
		}
	}

	stmts := statements(client.Dialect())
	names := make([]string, 0, len(stmts))
	for name := range stmts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := client.Prepare(ctx, name, stmts[name]); err != nil {
			return nil, err
		}
	}
	logger.Debug("prepared catalog statements", "dialect", client.Dialect().Name, "count", len(names))

	s := &Store{client: client, logger: logger}
	s.tables = &TablesDAO{client: client}
	s.columns = &ColumnsDAO{client: client}
	s.statistics = &StatisticsDAO{client: client}
	s.indexes = &IndexesDAO{client: client}
	s.datatypes = &DataTypesDAO{client: client}
	return s, nil
}

// StartTransaction opens a transaction on the client.
func (s *Store) StartTransaction(ctx context.Context) error {
	if s.client.InTransaction() {
		return catalog.Errorf(catalog.ErrUnknown, "transaction already open")
	}
	if err := s.client.Begin(ctx); err != nil {
		return catalog.Internal("begin transaction", err)
	}
	return nil
}

// Commit commits the open transaction.
func (s *Store) Commit(ctx context.Context) error {
	if !s.client.InTransaction() {
		return catalog.Errorf(catalog.ErrUnknown, "no open transaction")
	}
	if err := s.client.Commit(ctx); err != nil {
		return catalog.Internal("commit transaction", err)
	}
	return nil
}

// Rollback aborts the open transaction.
func (s *Store) Rollback(ctx context.Context) error {
	if !s.client.InTransaction() {
		return catalog.Errorf(catalog.ErrUnknown, "no open transaction")
	}
	if err := s.client.Rollback(ctx); err != nil {
		return catalog.Internal("roll back transaction", err)
	}
	return nil
}

func (s *Store) Tables() store.TablesDAO         { return s.tables }
func (s *Store) Columns() store.ColumnsDAO       { return s.columns }
func (s *Store) Statistics() store.StatisticsDAO { return s.statistics }
func (s *Store) Indexes() store.IndexesDAO       { return s.indexes }
func (s *Store) DataTypes() store.DataTypesDAO   { return s.datatypes }

// Close closes the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// lookup maps a key lookup to its statement and argument. ok is false when
// the value cannot match any row.
func lookup(key catalog.Key, value, byID, byName string) (string, any, bool, error) {
	if err := key.Validate(); err != nil {
		return "", nil, false, err
	}
	if key == catalog.KeyName {
		return byName, value, true, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return "", nil, false, nil
	}
	return byID, id, true, nil
}

// selectOne runs a key lookup that must return exactly one row.
func selectOne(ctx context.Context, client Client, key catalog.Key, value, byID, byName string, jsonColumns ...string) (*tree.Node, error) {
	name, arg, ok, err := lookup(key, value, byID, byName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, key.NotFound()
	}

	nodes, err := queryNodes(ctx, client, name, []any{arg}, jsonColumns...)
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, key.NotFound()
	}
	return nodes[0], nil
}

// queryNodes runs a named query and converts every row into a tree.
func queryNodes(ctx context.Context, client Client, name string, args []any, jsonColumns ...string) ([]*tree.Node, error) {
	result, err := client.Query(ctx, name, args...)
	if err != nil {
		return nil, catalog.Internal("execute "+name, err)
	}

	nodes := make([]*tree.Node, 0, len(result.Rows))
	for _, row := range result.Rows {
		n, err := tree.FromRow(result.Columns, row, jsonColumns...)
		if err != nil {
			return nil, catalog.Internal("decode "+name+" row", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// execExactlyOne runs a named statement that must affect exactly one row.
func execExactlyOne(ctx context.Context, client Client, name string, args ...any) error {
	affected, err := client.Exec(ctx, name, args...)
	if err != nil {
		return catalog.Internal("execute "+name, err)
	}
	if affected != 1 {
		return catalog.Errorf(catalog.ErrInvalidParameter, "%s affected %d rows, expected 1", name, affected)
	}
	return nil
}

// execAtLeastOne runs a named statement that must affect one or more rows.
func execAtLeastOne(ctx context.Context, client Client, name string, args ...any) error {
	affected, err := client.Exec(ctx, name, args...)
	if err != nil {
		return catalog.Internal("execute "+name, err)
	}
	if affected < 1 {
		return catalog.Errorf(catalog.ErrInvalidParameter, "%s affected no rows", name)
	}
	return nil
}

// insertID runs a named insert and returns the assigned id.
func insertID(ctx context.Context, client Client, name string, args ...any) (catalog.ObjectID, error) {
	id, err := client.Insert(ctx, name, args...)
	if err != nil {
		return catalog.InvalidObjectID, catalog.Internal("execute "+name, err)
	}
	return catalog.ObjectID(id), nil
}

func nullableArg(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func stringArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func jsonArg(n *tree.Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	data, err := n.MarshalJSON()
	if err != nil {
		return nil, catalog.Internal("encode json column", err)
	}
	return string(data), nil
}
