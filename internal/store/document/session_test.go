package document

import (
	"errors"
	"io"
	"testing"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/util"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

func newTestSession(t *testing.T, fs billy.Filesystem) *Session {
	t.Helper()
	s := NewSession(fs, nil)
	s.Connect("tables.json", "tables")
	return s
}

func readDoc(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	f, err := fs.Open(name)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", name, err)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", name, err)
	}
	return string(data)
}

func TestLoadMissingDocument(t *testing.T) {
	s := newTestSession(t, memfs.New())

	coll, err := s.Collection()
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	if coll.Len() != 0 {
		t.Errorf("Expected empty collection, got %d items", coll.Len())
	}
}

func TestLoadIsIdempotentInTransaction(t *testing.T) {
	fs := memfs.New()
	s := newTestSession(t, fs)

	s.Begin()
	if err := s.Modify(func(coll *tree.Node) error {
		coll.Append(tree.NewObject().Set("id", tree.NewInt(1)).Set("name", tree.NewString("t1")))
		return nil
	}); err != nil {
		t.Fatalf("Modify failed: %v", err)
	}

	if err := s.LoadContents(); err != nil {
		t.Fatalf("LoadContents failed: %v", err)
	}
	coll, err := s.Collection()
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	if coll.Len() != 1 {
		t.Errorf("Expected uncommitted object to be visible, got %d items", coll.Len())
	}

	if _, err := fs.Stat("tables.json"); err == nil {
		t.Error("document written before commit")
	}

	s.Rollback()
	coll, err = s.Collection()
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	if coll.Len() != 0 {
		t.Errorf("Expected rollback to discard changes, got %d items", coll.Len())
	}
}

func TestCommitPersists(t *testing.T) {
	fs := memfs.New()
	s := newTestSession(t, fs)

	s.Begin()
	if err := s.Modify(func(coll *tree.Node) error {
		coll.Append(tree.NewObject().Set("id", tree.NewInt(7)).Set("name", tree.NewString("orders")))
		return nil
	}); err != nil {
		t.Fatalf("Modify failed: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if s.InTransaction() {
		t.Error("transaction still open after commit")
	}

	fresh := newTestSession(t, fs)
	coll, err := fresh.Collection()
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	if coll.Len() != 1 {
		t.Fatalf("Expected 1 committed object, got %d", coll.Len())
	}
	if name, _ := coll.Items()[0].GetString("name"); name != "orders" {
		t.Errorf("name = %q, want orders", name)
	}
}

func TestRollbackLeavesDocumentUnchanged(t *testing.T) {
	fs := memfs.New()
	original := `{"tables":[{"id":1,"name":"keep"}]}`
	if err := util.WriteFile(fs, "tables.json", []byte(original), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s := newTestSession(t, fs)
	s.Begin()
	if err := s.Modify(func(coll *tree.Node) error {
		coll.RemoveAt(0)
		return nil
	}); err != nil {
		t.Fatalf("Modify failed: %v", err)
	}
	s.Rollback()

	if got := readDoc(t, fs, "tables.json"); got != original {
		t.Errorf("document = %s, want %s", got, original)
	}
}

func TestReadsOutsideTransactionReload(t *testing.T) {
	fs := memfs.New()
	s := newTestSession(t, fs)

	if _, err := s.Collection(); err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	if err := util.WriteFile(fs, "tables.json", []byte(`{"tables":[{"id":1,"name":"a"}]}`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	coll, err := s.Collection()
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	if coll.Len() != 1 {
		t.Errorf("Expected reload to see 1 object, got %d", coll.Len())
	}
}

func TestModifyOutsideTransactionCommits(t *testing.T) {
	fs := memfs.New()
	s := newTestSession(t, fs)

	if err := s.Modify(func(coll *tree.Node) error {
		coll.Append(tree.NewObject().Set("id", tree.NewInt(1)))
		return nil
	}); err != nil {
		t.Fatalf("Modify failed: %v", err)
	}

	failing := errors.New("boom")
	if err := s.Modify(func(coll *tree.Node) error {
		coll.Append(tree.NewObject().Set("id", tree.NewInt(2)))
		return failing
	}); !errors.Is(err, failing) {
		t.Fatalf("Modify error = %v, want %v", err, failing)
	}

	coll, err := newTestSession(t, fs).Collection()
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	if coll.Len() != 1 {
		t.Errorf("Expected only the successful change to persist, got %d items", coll.Len())
	}
}

func TestLoadMalformedDocuments(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{tables:"},
		{name: "missing root key", content: `{"columns":[]}`},
		{name: "root not an array", content: `{"tables":{}}`},
		{name: "top level array", content: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := memfs.New()
			if err := util.WriteFile(fs, "tables.json", []byte(tt.content), 0644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			err := newTestSession(t, fs).LoadContents()
			if !errors.Is(err, catalog.ErrInternal) {
				t.Errorf("LoadContents error = %v, want ErrInternal", err)
			}
		})
	}
}

func TestUnconnectedSession(t *testing.T) {
	s := NewSession(memfs.New(), nil)
	if err := s.LoadContents(); !errors.Is(err, catalog.ErrUnknown) {
		t.Errorf("LoadContents error = %v, want ErrUnknown", err)
	}
}
