package document

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/util"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(memfs.New(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestOpenSeedsDataTypes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	types, err := s.DataTypes().SelectAll(ctx)
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(types) != len(catalog.DefaultDataTypes()) {
		t.Errorf("Expected %d data types, got %d", len(catalog.DefaultDataTypes()), len(types))
	}

	dt, err := s.DataTypes().Select(ctx, catalog.KeyName, "INT64")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if dt.PgDataTypeName != "int8" {
		t.Errorf("PgDataTypeName = %q, want int8", dt.PgDataTypeName)
	}

	if _, err := s.DataTypes().Select(ctx, catalog.KeyID, "999"); !errors.Is(err, catalog.ErrIDNotFound) {
		t.Errorf("Select(999) error = %v, want ErrIDNotFound", err)
	}
	if _, err := s.DataTypes().Select(ctx, catalog.Key("owner"), "1"); !errors.Is(err, catalog.ErrNotSupported) {
		t.Errorf("Select(owner) error = %v, want ErrNotSupported", err)
	}
}

func TestReopenLeavesSeededDataTypesUntouched(t *testing.T) {
	fs := memfs.New()
	if _, err := Open(fs, nil); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// Re-encode the seeded document by hand; a rewrite would normalize it.
	seeded, err := util.ReadFile(fs, DataTypesFile)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	marked := append([]byte("\n\n"), seeded...)
	if err := util.WriteFile(fs, DataTypesFile, marked, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s, err := Open(fs, nil)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	got, err := util.ReadFile(fs, DataTypesFile)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != string(marked) {
		t.Error("Expected the seeded data types document not to be rewritten")
	}

	types, err := s.DataTypes().SelectAll(context.Background())
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(types) != len(catalog.DefaultDataTypes()) {
		t.Errorf("Expected %d data types, got %d", len(catalog.DefaultDataTypes()), len(types))
	}
}

func TestTableInsertStampsAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Tables().Insert(ctx, &catalog.Table{Object: catalog.Object{Name: "t1"}, Tuples: 10})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id != 1 {
		t.Errorf("first table id = %d, want 1", id)
	}

	got, err := s.Tables().Select(ctx, catalog.KeyName, "t1")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got.ID != id || got.FormatVersion != catalog.FormatVersion || got.Generation != catalog.Generation {
		t.Errorf("stamps = %+v, want id %d and version/generation 1", got.Object, id)
	}

	if _, err := s.Tables().Insert(ctx, &catalog.Table{Object: catalog.Object{Name: "t1"}}); err == nil {
		t.Error("Expected duplicate insert to fail")
	}

	tables, err := s.Tables().SelectAll(ctx)
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(tables) != 1 {
		t.Errorf("Expected 1 table after failed duplicate, got %d", len(tables))
	}
}

func TestIdsNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.Tables().Insert(ctx, &catalog.Table{Object: catalog.Object{Name: "a"}})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := s.Tables().Delete(ctx, catalog.KeyID, strconv.FormatInt(int64(first), 10)); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	second, err := s.Tables().Insert(ctx, &catalog.Table{Object: catalog.Object{Name: "a"}})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if second <= first {
		t.Errorf("id after delete = %d, want > %d", second, first)
	}
}

func TestColumnsByTable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, pos := range []int64{2, 1} {
		c := &catalog.Column{Object: catalog.Object{Name: "c" + strconv.FormatInt(pos, 10)}, OrdinalPosition: pos, DataTypeID: 1}
		if _, err := s.Columns().Insert(ctx, 5, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	columns, err := s.Columns().SelectByTableID(ctx, 5)
	if err != nil {
		t.Fatalf("SelectByTableID failed: %v", err)
	}
	if len(columns) != 2 || columns[0].OrdinalPosition != 1 || columns[1].OrdinalPosition != 2 {
		t.Errorf("columns = %+v, want ordinal positions 1, 2", columns)
	}
	if columns[0].TableID != 5 {
		t.Errorf("TableID = %d, want 5", columns[0].TableID)
	}

	if _, err := s.Columns().SelectByTableID(ctx, 6); !errors.Is(err, catalog.ErrInvalidParameter) {
		t.Errorf("SelectByTableID(6) error = %v, want ErrInvalidParameter", err)
	}
	if err := s.Columns().DeleteByTableID(ctx, 5); err != nil {
		t.Fatalf("DeleteByTableID failed: %v", err)
	}
	if err := s.Columns().DeleteByTableID(ctx, 5); !errors.Is(err, catalog.ErrInvalidParameter) {
		t.Errorf("second DeleteByTableID error = %v, want ErrInvalidParameter", err)
	}
}

func TestStatisticUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, _ := tree.Parse([]byte(`{"n_distinct":10}`))
	second, _ := tree.Parse([]byte(`{"n_distinct":20}`))

	for _, payload := range []*tree.Node{first, second} {
		if err := s.Statistics().Upsert(ctx, &catalog.ColumnStatistic{TableID: 1, OrdinalPosition: 1, Statistic: payload}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	stats, err := s.Statistics().SelectByTableID(ctx, 1)
	if err != nil {
		t.Fatalf("SelectByTableID failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("Expected exactly 1 statistic, got %d", len(stats))
	}
	if !tree.Equal(stats[0].Statistic, second) {
		t.Error("Expected the second payload to be stored")
	}

	if err := s.Statistics().Delete(ctx, 1, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Statistics().Select(ctx, 1, 1); !errors.Is(err, catalog.ErrInvalidParameter) {
		t.Errorf("Select after delete error = %v, want ErrInvalidParameter", err)
	}
}

func TestIndexUpdatePreservesStamps(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Indexes().Insert(ctx, &catalog.Index{Object: catalog.Object{Name: "idx"}, Keys: []int64{1}})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	update := &catalog.Index{
		Object: catalog.Object{Name: "idx_renamed", FormatVersion: 99, Generation: 42},
		Keys:   []int64{2, 1},
	}
	if err := s.Indexes().Update(ctx, id, update); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := s.Indexes().Select(ctx, catalog.KeyID, strconv.FormatInt(int64(id), 10))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got.Name != "idx_renamed" {
		t.Errorf("Name = %q, want idx_renamed", got.Name)
	}
	if got.ID != id || got.FormatVersion != catalog.FormatVersion || got.Generation != catalog.Generation {
		t.Errorf("stamps = %+v, want preserved", got.Object)
	}
	if len(got.Keys) != 2 || got.Keys[0] != 2 || got.Keys[1] != 1 {
		t.Errorf("Keys = %v, want [2 1]", got.Keys)
	}

	if err := s.Indexes().Update(ctx, 99, update); !errors.Is(err, catalog.ErrIDNotFound) {
		t.Errorf("Update(99) error = %v, want ErrIDNotFound", err)
	}
}

func TestStoreRollbackDiscardsAllDocuments(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.StartTransaction(ctx); err != nil {
		t.Fatalf("StartTransaction failed: %v", err)
	}
	tableID, err := s.Tables().Insert(ctx, &catalog.Table{Object: catalog.Object{Name: "t"}})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := s.Columns().Insert(ctx, tableID, &catalog.Column{Object: catalog.Object{Name: "c"}, OrdinalPosition: 1}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := s.Rollback(ctx); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	if _, err := s.Tables().Select(ctx, catalog.KeyName, "t"); !errors.Is(err, catalog.ErrNameNotFound) {
		t.Errorf("Select after rollback error = %v, want ErrNameNotFound", err)
	}
	if _, err := s.Columns().SelectByTableID(ctx, tableID); !errors.Is(err, catalog.ErrInvalidParameter) {
		t.Errorf("SelectByTableID after rollback error = %v, want ErrInvalidParameter", err)
	}
}

func TestStoreCommitWritesAllDocuments(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()
	s, err := Open(fs, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := s.StartTransaction(ctx); err != nil {
		t.Fatalf("StartTransaction failed: %v", err)
	}
	if err := s.StartTransaction(ctx); !errors.Is(err, catalog.ErrUnknown) {
		t.Errorf("nested StartTransaction error = %v, want ErrUnknown", err)
	}
	tableID, err := s.Tables().Insert(ctx, &catalog.Table{Object: catalog.Object{Name: "t"}})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := s.Columns().Insert(ctx, tableID, &catalog.Column{Object: catalog.Object{Name: "c"}, OrdinalPosition: 1}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := s.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	reopened, err := Open(fs, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := reopened.Tables().Select(ctx, catalog.KeyName, "t"); err != nil {
		t.Errorf("Select after reopen failed: %v", err)
	}
	columns, err := reopened.Columns().SelectByTableID(ctx, tableID)
	if err != nil {
		t.Fatalf("SelectByTableID after reopen failed: %v", err)
	}
	if len(columns) != 1 {
		t.Errorf("Expected 1 column after reopen, got %d", len(columns))
	}
	if err := reopened.Commit(ctx); !errors.Is(err, catalog.ErrUnknown) {
		t.Errorf("Commit without transaction error = %v, want ErrUnknown", err)
	}
}
