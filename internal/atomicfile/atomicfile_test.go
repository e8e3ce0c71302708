package atomicfile

import (
	"io"
	"os"
	"testing"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
)

func readFile(t *testing.T, fs billy.Filesystem, name string) string {
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

func listDir(t *testing.T, fs billy.Filesystem, dir string) []string {
	t.Helper()

	entries, err := fs.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWriteFileReplacesTarget(t *testing.T) {
	fs := memfs.New()

	if err := WriteFile(fs, "meta/tables.json", []byte("first")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := WriteFile(fs, "meta/tables.json", []byte("second")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if got := readFile(t, fs, "meta/tables.json"); got != "second" {
		t.Errorf("content = %q, want second", got)
	}
	if names := listDir(t, fs, "meta"); len(names) != 1 {
		t.Errorf("Expected only the target in meta/, got %v", names)
	}
}

func TestDiscardLeavesTargetUnchanged(t *testing.T) {
	fs := memfs.New()

	if err := WriteFile(fs, "doc.json", []byte("original")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	staged, err := Stage(fs, "doc.json", []byte("replacement"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if got := readFile(t, fs, "doc.json"); got != "original" {
		t.Errorf("content before publish = %q, want original", got)
	}

	staged.Discard()

	if got := readFile(t, fs, "doc.json"); got != "original" {
		t.Errorf("content after discard = %q, want original", got)
	}
	if names := listDir(t, fs, "."); len(names) != 1 {
		t.Errorf("Expected temporary file to be removed, got %v", names)
	}
	if err := staged.Publish(); err == nil {
		t.Error("Expected Publish after Discard to fail")
	}
}

func TestStageCreatesMissingTarget(t *testing.T) {
	fs := memfs.New()

	staged, err := Stage(fs, "new.ini", []byte("a=1\n"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if _, err := fs.Stat("new.ini"); !os.IsNotExist(err) {
		t.Errorf("target exists before Publish: %v", err)
	}
	if err := staged.Publish(); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if got := readFile(t, fs, "new.ini"); got != "a=1\n" {
		t.Errorf("content = %q, want a=1", got)
	}
}
