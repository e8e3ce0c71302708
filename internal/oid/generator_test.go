package oid

import (
	"testing"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/util"
	"gopkg.in/ini.v1"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
)

func TestGenerateIsStrictlyIncreasing(t *testing.T) {
	g := NewGenerator(memfs.New(), DefaultFile, nil)

	var last catalog.ObjectID
	for i := 0; i < 5; i++ {
		id := g.Generate("tables")
		if id <= last {
			t.Fatalf("Generate() = %d after %d, want strictly increasing", id, last)
		}
		last = id
	}
	if last != 5 {
		t.Errorf("fifth id = %d, want 5", last)
	}
}

func TestGenerateIndependentNames(t *testing.T) {
	g := NewGenerator(memfs.New(), DefaultFile, nil)

	if id := g.Generate("tables"); id != 1 {
		t.Errorf("first tables id = %d, want 1", id)
	}
	if id := g.Generate("tables"); id != 2 {
		t.Errorf("second tables id = %d, want 2", id)
	}
	if id := g.Generate("columns"); id != 1 {
		t.Errorf("first columns id = %d, want 1", id)
	}
}

func TestGenerateResumesAfterRestart(t *testing.T) {
	fs := memfs.New()

	first := NewGenerator(fs, DefaultFile, nil)
	if err := first.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		first.Generate("indexes")
	}

	restarted := NewGenerator(fs, DefaultFile, nil)
	if err := restarted.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if id := restarted.Generate("indexes"); id != 4 {
		t.Errorf("Generate() after restart = %d, want 4", id)
	}

	current, err := restarted.Current("indexes")
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if current != 4 {
		t.Errorf("Current() = %d, want 4", current)
	}
}

func TestGenerateFailsClosed(t *testing.T) {
	fs := memfs.New()
	if err := util.WriteFile(fs, DefaultFile, []byte("tables=not-a-number\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	g := NewGenerator(fs, DefaultFile, nil)
	if id := g.Generate("tables"); id != catalog.InvalidObjectID {
		t.Errorf("Generate() = %d, want InvalidObjectID", id)
	}
}

func TestCountersReadFromDefaultSection(t *testing.T) {
	fs := memfs.New()
	content := "; counters\ncolumns = 7\n\n[archive]\ncolumns = 99\n"
	if err := util.WriteFile(fs, DefaultFile, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	g := NewGenerator(fs, DefaultFile, nil)
	if id := g.Generate("columns"); id != 8 {
		t.Errorf("Generate() = %d, want 8", id)
	}

	data, err := util.ReadFile(fs, DefaultFile)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	cfg, err := ini.Load(data)
	if err != nil {
		t.Fatalf("written counter file does not parse: %v", err)
	}
	if got := cfg.Section("").Key("columns").MustInt64(0); got != 8 {
		t.Errorf("Expected persisted counter 8, got %d", got)
	}
	if got := cfg.Section("archive").Key("columns").MustInt64(0); got != 99 {
		t.Errorf("Expected other sections kept, got %d", got)
	}
}
