package provider

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-git/go-billy/v6/memfs"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/codec"
	"github.com/ban-nobuhiro/metadata-manager/internal/store"
	"github.com/ban-nobuhiro/metadata-manager/internal/store/document"
	"github.com/ban-nobuhiro/metadata-manager/internal/store/relational"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

type backend struct {
	name string
	open func(t *testing.T) store.MetadataStore
}

var backends = []backend{
	{
		name: "document",
		open: func(t *testing.T) store.MetadataStore {
			t.Helper()
			s, err := document.Open(memfs.New(), nil)
			if err != nil {
				t.Fatalf("Failed to open document store: %v", err)
			}
			return s
		},
	},
	{
		name: "sqlite",
		open: func(t *testing.T) store.MetadataStore {
			t.Helper()
			ctx := context.Background()
			client, err := relational.NewSQLiteClient(ctx, filepath.Join(t.TempDir(), "catalog.db"))
			if err != nil {
				t.Fatalf("Failed to connect to SQLite: %v", err)
			}
			s, err := relational.New(ctx, client, relational.Options{Bootstrap: true})
			if err != nil {
				_ = client.Close(ctx)
				t.Fatalf("Failed to open relational store: %v", err)
			}
			t.Cleanup(func() { _ = s.Close(ctx) })
			return s
		},
	},
}

// forEachBackend runs fn once per backend on a fresh store.
func forEachBackend(t *testing.T, fn func(t *testing.T, p *Provider)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			fn(t, New(b.open(t), nil))
		})
	}
}

func sampleTable(name string, columns ...string) *catalog.Table {
	t := &catalog.Table{Object: catalog.Object{Name: name}, Tuples: 0}
	for i, c := range columns {
		t.Columns = append(t.Columns, catalog.Column{
			Object:          catalog.Object{Name: c},
			OrdinalPosition: int64(i + 1),
			DataTypeID:      catalog.ObjectID(i%3 + 1),
			Nullable:        catalog.Bool(i%2 == 0),
		})
	}
	return t
}

func idValue(id catalog.ObjectID) string {
	return strconv.FormatInt(int64(id), 10)
}

func TestAddTableRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *Provider) {
		ctx := context.Background()
		in := sampleTable("t1", "a", "b", "c")
		in.Namespace = "public"
		in.Columns[1].DefaultExpression = catalog.String("now()")

		id, err := p.AddTable(ctx, in)
		if err != nil {
			t.Fatalf("AddTable failed: %v", err)
		}
		if id == catalog.InvalidObjectID {
			t.Fatal("AddTable returned the invalid object id")
		}

		got, err := p.GetTable(ctx, catalog.KeyID, idValue(id))
		if err != nil {
			t.Fatalf("GetTable failed: %v", err)
		}
		if got.Name != "t1" || got.Namespace != "public" {
			t.Errorf("table = %q/%q, want public/t1", got.Namespace, got.Name)
		}
		if got.FormatVersion != catalog.FormatVersion || got.Generation != catalog.Generation {
			t.Errorf("stamps = %d/%d, want %d/%d", got.FormatVersion, got.Generation, catalog.FormatVersion, catalog.Generation)
		}
		if len(got.Columns) != len(in.Columns) {
			t.Fatalf("Expected %d columns, got %d", len(in.Columns), len(got.Columns))
		}
		for i, c := range got.Columns {
			want := in.Columns[i]
			if c.Name != want.Name || c.OrdinalPosition != want.OrdinalPosition || c.DataTypeID != want.DataTypeID {
				t.Errorf("column %d = %s/%d/%d, want %s/%d/%d", i,
					c.Name, c.OrdinalPosition, c.DataTypeID, want.Name, want.OrdinalPosition, want.DataTypeID)
			}
			if c.TableID != id {
				t.Errorf("column %s TableID = %d, want %d", c.Name, c.TableID, id)
			}
			if c.Nullable == nil || *c.Nullable != *want.Nullable {
				t.Errorf("column %s Nullable = %v, want %v", c.Name, c.Nullable, *want.Nullable)
			}
		}
		if d := got.Columns[1].DefaultExpression; d == nil || *d != "now()" {
			t.Errorf("DefaultExpression = %v, want now()", d)
		}
		if got.Columns[0].DefaultExpression != nil {
			t.Errorf("DefaultExpression = %v, want nil", *got.Columns[0].DefaultExpression)
		}

		byName, err := p.GetTable(ctx, catalog.KeyName, "t1")
		if err != nil {
			t.Fatalf("GetTable by name failed: %v", err)
		}
		if byName.ID != id || len(byName.Columns) != 3 {
			t.Errorf("GetTable by name = id %d with %d columns, want id %d with 3", byName.ID, len(byName.Columns), id)
		}
	})
}

func TestAddTableScenario(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *Provider) {
		ctx := context.Background()
		input, err := tree.Parse([]byte(`{"name":"t1","columns":[{"name":"a","ordinal_position":1,"data_type_id":1,"nullable":"NO"}]}`))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		table, err := codec.DecodeTable(input)
		if err != nil {
			t.Fatalf("DecodeTable failed: %v", err)
		}

		id, err := p.AddTable(ctx, table)
		if err != nil {
			t.Fatalf("AddTable failed: %v", err)
		}
		got, err := p.GetTable(ctx, catalog.KeyID, idValue(id))
		if err != nil {
			t.Fatalf("GetTable failed: %v", err)
		}
		if got.Name != "t1" || len(got.Columns) != 1 {
			t.Fatalf("table = %q with %d columns, want t1 with 1", got.Name, len(got.Columns))
		}
		c := got.Columns[0]
		if c.Name != "a" || c.OrdinalPosition != 1 || c.Nullable == nil || *c.Nullable {
			t.Errorf("column = %+v, want a at position 1, not nullable", c)
		}
	})
}

func TestAddTableValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *catalog.Table)
	}{
		{name: "empty table name", mutate: func(t *catalog.Table) { t.Name = "" }},
		{name: "empty column name", mutate: func(t *catalog.Table) { t.Columns[0].Name = "" }},
		{name: "zero ordinal position", mutate: func(t *catalog.Table) { t.Columns[1].OrdinalPosition = 0 }},
		{name: "duplicate ordinal position", mutate: func(t *catalog.Table) { t.Columns[1].OrdinalPosition = 1 }},
		{name: "duplicate column name", mutate: func(t *catalog.Table) { t.Columns[1].Name = "a" }},
		{name: "missing data type", mutate: func(t *catalog.Table) { t.Columns[0].DataTypeID = catalog.InvalidObjectID }},
		{name: "unknown data type", mutate: func(t *catalog.Table) { t.Columns[0].DataTypeID = 999 }},
		{name: "missing nullable", mutate: func(t *catalog.Table) { t.Columns[1].Nullable = nil }},
	}

	forEachBackend(t, func(t *testing.T, p *Provider) {
		ctx := context.Background()
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := sampleTable("invalid", "a", "b")
				tt.mutate(in)

				if _, err := p.AddTable(ctx, in); !errors.Is(err, catalog.ErrInvalidParameter) {
					t.Errorf("AddTable error = %v, want ErrInvalidParameter", err)
				}
			})
		}

		tables, err := p.GetTables(ctx)
		if err != nil {
			t.Fatalf("GetTables failed: %v", err)
		}
		if len(tables) != 0 {
			t.Errorf("Expected no tables after rejected inserts, got %d", len(tables))
		}
	})
}

func TestTableWithoutColumns(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *Provider) {
		ctx := context.Background()
		in := sampleTable("empty")
		in.Columns = []catalog.Column{}

		id, err := p.AddTable(ctx, in)
		if err != nil {
			t.Fatalf("AddTable failed: %v", err)
		}

		got, err := p.GetTable(ctx, catalog.KeyName, "empty")
		if err != nil {
			t.Fatalf("GetTable failed: %v", err)
		}
		if got.ID != id {
			t.Errorf("Expected id %d, got %d", id, got.ID)
		}
		if got.Columns == nil || len(got.Columns) != 0 {
			t.Errorf("Expected an empty column list, got %v", got.Columns)
		}

		removed, err := p.RemoveTable(ctx, catalog.KeyName, "empty")
		if err != nil {
			t.Fatalf("RemoveTable failed: %v", err)
		}
		if removed != id {
			t.Errorf("RemoveTable returned %d, want %d", removed, id)
		}
		if _, err := p.GetTable(ctx, catalog.KeyName, "empty"); !errors.Is(err, catalog.ErrNameNotFound) {
			t.Errorf("GetTable after remove error = %v, want ErrNameNotFound", err)
		}
	})
}

func TestAddTableDuplicateName(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *Provider) {
		ctx := context.Background()
		id, err := p.AddTable(ctx, sampleTable("orders", "id", "total"))
		if err != nil {
			t.Fatalf("AddTable failed: %v", err)
		}

		_, err = p.AddTable(ctx, sampleTable("orders", "x", "y", "z"))
		if !errors.Is(err, catalog.ErrAlreadyExists) {
			t.Fatalf("AddTable duplicate error = %v, want ErrAlreadyExists", err)
		}

		tables, err := p.GetTables(ctx)
		if err != nil {
			t.Fatalf("GetTables failed: %v", err)
		}
		if len(tables) != 1 {
			t.Fatalf("Expected 1 table, got %d", len(tables))
		}
		if tables[0].ID != id || len(tables[0].Columns) != 2 {
			t.Errorf("table = id %d with %d columns, want id %d with 2", tables[0].ID, len(tables[0].Columns), id)
		}
	})
}

// faultyStore fails the column insert with the given 1-based sequence number.
type faultyStore struct {
	store.MetadataStore
	failAt  int
	inserts int
}

type faultyColumns struct {
	store.ColumnsDAO
	parent *faultyStore
}

var errInjected = errors.New("injected column failure")

func (f *faultyStore) Columns() store.ColumnsDAO {
	return &faultyColumns{ColumnsDAO: f.MetadataStore.Columns(), parent: f}
}

func (c *faultyColumns) Insert(ctx context.Context, tableID catalog.ObjectID, col *catalog.Column) (catalog.ObjectID, error) {
	c.parent.inserts++
	if c.parent.inserts == c.parent.failAt {
		return catalog.InvalidObjectID, errInjected
	}
	return c.ColumnsDAO.Insert(ctx, tableID, col)
}

func TestAddTableColumnFailureRollsBack(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)
			p := New(&faultyStore{MetadataStore: s, failAt: 2}, nil)

			_, err := p.AddTable(ctx, sampleTable("partial", "a", "b", "c"))
			if !errors.Is(err, errInjected) {
				t.Fatalf("AddTable error = %v, want the column failure", err)
			}

			if _, err := p.GetTable(ctx, catalog.KeyName, "partial"); !errors.Is(err, catalog.ErrNameNotFound) {
				t.Errorf("GetTable after rollback error = %v, want ErrNameNotFound", err)
			}
			for id := catalog.ObjectID(1); id <= 3; id++ {
				if _, err := s.Columns().SelectByTableID(ctx, id); !errors.Is(err, catalog.ErrInvalidParameter) {
					t.Errorf("columns of table %d persisted after rollback (err = %v)", id, err)
				}
			}
		})
	}
}

func TestGetTableErrors(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *Provider) {
		ctx := context.Background()
		tests := []struct {
			name  string
			key   catalog.Key
			value string
			want  error
		}{
			{name: "unknown id", key: catalog.KeyID, value: "42", want: catalog.ErrIDNotFound},
			{name: "non-numeric id", key: catalog.KeyID, value: "abc", want: catalog.ErrIDNotFound},
			{name: "unknown name", key: catalog.KeyName, value: "nope", want: catalog.ErrNameNotFound},
			{name: "unsupported key", key: catalog.Key("namespace"), value: "public", want: catalog.ErrNotSupported},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := p.GetTable(ctx, tt.key, tt.value); !errors.Is(err, tt.want) {
					t.Errorf("GetTable error = %v, want %v", err, tt.want)
				}
			})
		}
	})
}

func TestGetTables(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *Provider) {
		ctx := context.Background()
		for _, name := range []string{"a", "b", "c"} {
			if _, err := p.AddTable(ctx, sampleTable(name, "x", "y")); err != nil {
				t.Fatalf("AddTable(%s) failed: %v", name, err)
			}
		}

		tables, err := p.GetTables(ctx)
		if err != nil {
			t.Fatalf("GetTables failed: %v", err)
		}
		if len(tables) != 3 {
			t.Fatalf("Expected 3 tables, got %d", len(tables))
		}
		for i, table := range tables {
			if i > 0 && table.ID <= tables[i-1].ID {
				t.Errorf("table ids not increasing: %d after %d", table.ID, tables[i-1].ID)
			}
			if len(table.Columns) != 2 {
				t.Errorf("table %s has %d columns, want 2", table.Name, len(table.Columns))
			}
		}
	})
}

func TestSetTableStatistic(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *Provider) {
		ctx := context.Background()
		id, err := p.AddTable(ctx, sampleTable("events", "ts"))
		if err != nil {
			t.Fatalf("AddTable failed: %v", err)
		}

		got, err := p.SetTableStatistic(ctx, &catalog.Table{Object: catalog.Object{ID: id}, Tuples: 1234.5})
		if err != nil {
			t.Fatalf("SetTableStatistic by id failed: %v", err)
		}
		if got != id {
			t.Errorf("SetTableStatistic returned %d, want %d", got, id)
		}

		if _, err := p.SetTableStatistic(ctx, &catalog.Table{Object: catalog.Object{Name: "events"}, Tuples: 99}); err != nil {
			t.Fatalf("SetTableStatistic by name failed: %v", err)
		}
		stat, err := p.GetTableStatistic(ctx, catalog.KeyName, "events")
		if err != nil {
			t.Fatalf("GetTableStatistic failed: %v", err)
		}
		if stat.Tuples != 99 {
			t.Errorf("Tuples = %v, want 99", stat.Tuples)
		}
		if stat.FormatVersion != catalog.FormatVersion || stat.Generation != catalog.Generation {
			t.Errorf("stamps changed by update: %+v", stat.Object)
		}

		tests := []struct {
			name  string
			table *catalog.Table
			want  error
		}{
			{name: "no key", table: &catalog.Table{Tuples: 1}, want: catalog.ErrInvalidParameter},
			{name: "absent tuples", table: &catalog.Table{Object: catalog.Object{ID: id}, Tuples: float64(catalog.InvalidValue)}, want: catalog.ErrInvalidParameter},
			{name: "unknown id", table: &catalog.Table{Object: catalog.Object{ID: 9999}, Tuples: 1}, want: catalog.ErrIDNotFound},
			{name: "unknown name", table: &catalog.Table{Object: catalog.Object{Name: "nope"}, Tuples: 1}, want: catalog.ErrNameNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := p.SetTableStatistic(ctx, tt.table); !errors.Is(err, tt.want) {
					t.Errorf("SetTableStatistic error = %v, want %v", err, tt.want)
				}
			})
		}
	})
}

func TestRemoveTableCascades(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *Provider) {
		ctx := context.Background()
		keep, err := p.AddTable(ctx, sampleTable("keep", "a"))
		if err != nil {
			t.Fatalf("AddTable failed: %v", err)
		}
		id, err := p.AddTable(ctx, sampleTable("drop", "a", "b"))
		if err != nil {
			t.Fatalf("AddTable failed: %v", err)
		}
		payload, _ := tree.Parse([]byte(`{"n_distinct":3}`))
		if err := p.AddColumnStatistic(ctx, &catalog.ColumnStatistic{TableID: id, OrdinalPosition: 2, Statistic: payload}); err != nil {
			t.Fatalf("AddColumnStatistic failed: %v", err)
		}

		removed, err := p.RemoveTable(ctx, catalog.KeyName, "drop")
		if err != nil {
			t.Fatalf("RemoveTable failed: %v", err)
		}
		if removed != id {
			t.Errorf("RemoveTable returned %d, want %d", removed, id)
		}

		if _, err := p.GetTable(ctx, catalog.KeyID, idValue(id)); !errors.Is(err, catalog.ErrIDNotFound) {
			t.Errorf("GetTable after remove error = %v, want ErrIDNotFound", err)
		}
		if _, err := p.Store().Columns().SelectByTableID(ctx, id); !errors.Is(err, catalog.ErrInvalidParameter) {
			t.Errorf("columns survived table removal (err = %v)", err)
		}
		stats, err := p.GetColumnStatistics(ctx, id)
		if err != nil {
			t.Fatalf("GetColumnStatistics failed: %v", err)
		}
		if len(stats) != 0 {
			t.Errorf("Expected statistics to be removed, got %d", len(stats))
		}

		// A table without statistics is removable too.
		if _, err := p.RemoveTable(ctx, catalog.KeyID, idValue(keep)); err != nil {
			t.Errorf("RemoveTable without statistics failed: %v", err)
		}
		if _, err := p.RemoveTable(ctx, catalog.KeyID, idValue(keep)); !errors.Is(err, catalog.ErrIDNotFound) {
			t.Errorf("second RemoveTable error = %v, want ErrIDNotFound", err)
		}
	})
}

func TestColumnStatistics(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *Provider) {
		ctx := context.Background()
		id, err := p.AddTable(ctx, sampleTable("stats", "a", "b", "c"))
		if err != nil {
			t.Fatalf("AddTable failed: %v", err)
		}

		first, _ := tree.Parse([]byte(`{"histogram":[1,2,3],"null_frac":0.5}`))
		second, _ := tree.Parse([]byte(`{"histogram":[4,5],"null_frac":0}`))
		for _, payload := range []*tree.Node{first, second} {
			if err := p.AddColumnStatistic(ctx, &catalog.ColumnStatistic{TableID: id, OrdinalPosition: 3, Statistic: payload}); err != nil {
				t.Fatalf("AddColumnStatistic failed: %v", err)
			}
		}
		if err := p.AddColumnStatistic(ctx, &catalog.ColumnStatistic{TableID: id, OrdinalPosition: 1, Statistic: first}); err != nil {
			t.Fatalf("AddColumnStatistic failed: %v", err)
		}

		stats, err := p.GetColumnStatistics(ctx, id)
		if err != nil {
			t.Fatalf("GetColumnStatistics failed: %v", err)
		}
		if len(stats) != 2 {
			t.Fatalf("Expected 2 statistics, got %d", len(stats))
		}
		if stats[0].OrdinalPosition != 1 || stats[1].OrdinalPosition != 3 {
			t.Errorf("ordinal positions = %d, %d; want 1, 3", stats[0].OrdinalPosition, stats[1].OrdinalPosition)
		}
		if !tree.Equal(stats[1].Statistic, second) {
			t.Error("Expected the second payload to replace the first")
		}

		one, err := p.GetColumnStatistic(ctx, id, 1)
		if err != nil {
			t.Fatalf("GetColumnStatistic failed: %v", err)
		}
		if !tree.Equal(one.Statistic, first) {
			t.Error("GetColumnStatistic returned the wrong payload")
		}

		invalid := []struct {
			name string
			stat *catalog.ColumnStatistic
			want error
		}{
			{name: "no payload", stat: &catalog.ColumnStatistic{TableID: id, OrdinalPosition: 1}, want: catalog.ErrInvalidParameter},
			{name: "no column at position", stat: &catalog.ColumnStatistic{TableID: id, OrdinalPosition: 9, Statistic: first}, want: catalog.ErrInvalidParameter},
			{name: "unknown table", stat: &catalog.ColumnStatistic{TableID: 999, OrdinalPosition: 1, Statistic: first}, want: catalog.ErrIDNotFound},
		}
		for _, tt := range invalid {
			t.Run(tt.name, func(t *testing.T) {
				if err := p.AddColumnStatistic(ctx, tt.stat); !errors.Is(err, tt.want) {
					t.Errorf("AddColumnStatistic error = %v, want %v", err, tt.want)
				}
			})
		}

		if err := p.RemoveColumnStatistic(ctx, id, 3); err != nil {
			t.Fatalf("RemoveColumnStatistic failed: %v", err)
		}
		if _, err := p.GetColumnStatistic(ctx, id, 3); !errors.Is(err, catalog.ErrInvalidParameter) {
			t.Errorf("GetColumnStatistic after remove error = %v, want ErrInvalidParameter", err)
		}
		if err := p.RemoveColumnStatistic(ctx, id, 3); !errors.Is(err, catalog.ErrInvalidParameter) {
			t.Errorf("second RemoveColumnStatistic error = %v, want ErrInvalidParameter", err)
		}
		if err := p.RemoveColumnStatistics(ctx, id); err != nil {
			t.Fatalf("RemoveColumnStatistics failed: %v", err)
		}
		if err := p.RemoveColumnStatistics(ctx, id); !errors.Is(err, catalog.ErrInvalidParameter) {
			t.Errorf("second RemoveColumnStatistics error = %v, want ErrInvalidParameter", err)
		}
	})
}

func TestIndexLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *Provider) {
		ctx := context.Background()
		tableID, err := p.AddTable(ctx, sampleTable("accounts", "id", "email"))
		if err != nil {
			t.Fatalf("AddTable failed: %v", err)
		}

		idx := &catalog.Index{
			Object:             catalog.Object{Name: "accounts_email_idx"},
			TableID:            tableID,
			OwnerID:            7,
			AccessMethod:       403,
			IsUnique:           true,
			NumberOfColumns:    2,
			NumberOfKeyColumns: 2,
			Keys:               []int64{2, 1},
			KeysID:             []int64{12, 11},
			Options:            []int64{0, 3},
		}
		id, err := p.AddIndex(ctx, idx)
		if err != nil {
			t.Fatalf("AddIndex failed: %v", err)
		}
		if _, err := p.AddIndex(ctx, idx); !errors.Is(err, catalog.ErrAlreadyExists) {
			t.Errorf("duplicate AddIndex error = %v, want ErrAlreadyExists", err)
		}
		if _, err := p.AddIndex(ctx, &catalog.Index{}); !errors.Is(err, catalog.ErrInvalidParameter) {
			t.Errorf("unnamed AddIndex error = %v, want ErrInvalidParameter", err)
		}

		got, err := p.GetIndex(ctx, catalog.KeyName, "accounts_email_idx")
		if err != nil {
			t.Fatalf("GetIndex failed: %v", err)
		}
		if got.ID != id || !got.IsUnique || got.IsPrimary || got.AccessMethod != 403 || got.OwnerID != 7 {
			t.Errorf("index = %+v", got)
		}
		if len(got.Keys) != 2 || got.Keys[0] != 2 || got.Keys[1] != 1 {
			t.Errorf("Keys = %v, want [2 1]", got.Keys)
		}
		if len(got.KeysID) != 2 || got.KeysID[0] != 12 {
			t.Errorf("KeysID = %v, want [12 11]", got.KeysID)
		}

		update := *idx
		update.Name = "accounts_email_key"
		update.IsPrimary = true
		update.Keys = []int64{1}
		if err := p.UpdateIndex(ctx, id, &update); err != nil {
			t.Fatalf("UpdateIndex failed: %v", err)
		}
		got, err = p.GetIndex(ctx, catalog.KeyID, idValue(id))
		if err != nil {
			t.Fatalf("GetIndex failed: %v", err)
		}
		if got.Name != "accounts_email_key" || !got.IsPrimary || len(got.Keys) != 1 {
			t.Errorf("updated index = %+v", got)
		}
		if got.FormatVersion != catalog.FormatVersion || got.Generation != catalog.Generation {
			t.Errorf("stamps changed by update: %+v", got.Object)
		}
		if err := p.UpdateIndex(ctx, 999, &update); !errors.Is(err, catalog.ErrIDNotFound) {
			t.Errorf("UpdateIndex(999) error = %v, want ErrIDNotFound", err)
		}

		all, err := p.GetIndexes(ctx)
		if err != nil {
			t.Fatalf("GetIndexes failed: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("Expected 1 index, got %d", len(all))
		}

		removed, err := p.RemoveIndex(ctx, catalog.KeyName, "accounts_email_key")
		if err != nil {
			t.Fatalf("RemoveIndex failed: %v", err)
		}
		if removed != id {
			t.Errorf("RemoveIndex returned %d, want %d", removed, id)
		}
		if _, err := p.GetIndex(ctx, catalog.KeyID, idValue(id)); !errors.Is(err, catalog.ErrIDNotFound) {
			t.Errorf("GetIndex after remove error = %v, want ErrIDNotFound", err)
		}
	})
}

func TestDataTypes(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *Provider) {
		ctx := context.Background()
		types, err := p.GetDataTypes(ctx)
		if err != nil {
			t.Fatalf("GetDataTypes failed: %v", err)
		}
		if len(types) != len(catalog.DefaultDataTypes()) {
			t.Errorf("Expected %d data types, got %d", len(catalog.DefaultDataTypes()), len(types))
		}

		dt, err := p.GetDataType(ctx, catalog.KeyName, "VARCHAR")
		if err != nil {
			t.Fatalf("GetDataType failed: %v", err)
		}
		if dt.PgDataType != 1043 || dt.PgDataTypeQualifiedName != "varchar" {
			t.Errorf("VARCHAR = %+v", dt)
		}
		if _, err := p.GetDataType(ctx, catalog.KeyID, "0"); !errors.Is(err, catalog.ErrIDNotFound) {
			t.Errorf("GetDataType(0) error = %v, want ErrIDNotFound", err)
		}
	})
}
