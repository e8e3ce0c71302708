// Package document implements the catalog on flat JSON documents, one file
// per entity kind, through a load/mutate/commit session per file.
//
// The backend has no concurrency control. Two processes writing the same
// directory overwrite each other (last writer wins) unless something
// outside this package serializes them.
//
// A store commit publishes each changed document by rename, one after the
// other. If a rename fails after an earlier one succeeded, the documents
// are left out of step (for example a table without its columns) and the
// failure is logged with the number of documents published.
package document

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v6"

	"github.com/ban-nobuhiro/metadata-manager/internal/atomicfile"
	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/codec"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

// Session owns the in-memory tree of one metadata document.
//
// Outside a transaction every load re-reads the file. Inside a transaction
// the first load reads the file and later loads return the same tree, so
// DAOs sharing the session see each other's uncommitted changes.
type Session struct {
	fs      billy.Filesystem
	path    string
	rootKey string
	logger  *slog.Logger

	contents *tree.Node
	inTx     bool
	dirty    bool
}

// NewSession creates an unconnected session on fs
func NewSession(fs billy.Filesystem, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{fs: fs, logger: logger}
}

// Connect records the document location and its root collection key.
// No I/O happens until the first load.
func (s *Session) Connect(path, rootKey string) {
	s.path = path
	s.rootKey = rootKey
	s.contents = nil
	s.dirty = false
}

// Path returns the document path.
func (s *Session) Path() string {
	return s.path
}

// Begin opens a transaction. The next load reads the file afresh.
func (s *Session) Begin() {
	s.inTx = true
	s.contents = nil
	s.dirty = false
}

// InTransaction reports whether a transaction is open.
func (s *Session) InTransaction() bool {
	return s.inTx
}

// LoadContents reads the document into memory. A missing file yields an
// empty root collection.
func (s *Session) LoadContents() error {
	if s.path == "" {
		return catalog.Errorf(catalog.ErrUnknown, "session is not connected")
	}
	if s.inTx && s.contents != nil {
		return nil
	}

	contents, err := s.read()
	if err != nil {
		return err
	}
	s.contents = contents
	s.dirty = false
	return nil
}

// Contents returns the loaded tree for direct mutation. The session
// writes it back on commit.
func (s *Session) Contents() *tree.Node {
	s.dirty = s.contents != nil
	return s.contents
}

// Collection loads the document and returns its root collection. The
// returned tree must not be mutated; use Modify.
func (s *Session) Collection() (*tree.Node, error) {
	if err := s.LoadContents(); err != nil {
		return nil, err
	}
	return codec.Collection(s.contents, s.rootKey)
}

// Modify applies fn to the root collection. Outside a transaction the
// change is committed immediately; a failing fn leaves the document as it was.
func (s *Session) Modify(fn func(coll *tree.Node) error) error {
	if !s.inTx {
		s.Begin()
		defer s.Rollback()
		if err := s.modify(fn); err != nil {
			return err
		}
		return s.Commit()
	}
	return s.modify(fn)
}

func (s *Session) modify(fn func(coll *tree.Node) error) error {
	coll, err := s.Collection()
	if err != nil {
		return err
	}
	if err := fn(coll); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// Commit durably replaces the document with the in-memory tree and ends
// the transaction.
func (s *Session) Commit() error {
	staged, err := s.stage()
	if err != nil {
		s.Rollback()
		return err
	}
	if staged != nil {
		if err := staged.Publish(); err != nil {
			s.Rollback()
			return catalog.Internal("commit "+s.path, err)
		}
	}
	s.finish()
	return nil
}

// Rollback discards in-memory changes and ends the transaction.
func (s *Session) Rollback() {
	s.finish()
}

func (s *Session) finish() {
	s.inTx = false
	s.contents = nil
	s.dirty = false
}

// stage writes the changed tree to a temporary file. It returns nil when
// there is nothing to write.
func (s *Session) stage() (*atomicfile.Staged, error) {
	if s.contents == nil || !s.dirty {
		return nil, nil
	}

	data, err := s.contents.Indent()
	if err != nil {
		return nil, catalog.Internal("encode "+s.path, err)
	}
	staged, err := atomicfile.Stage(s.fs, s.path, data)
	if err != nil {
		return nil, catalog.Internal("stage "+s.path, err)
	}
	return staged, nil
}

func (s *Session) read() (*tree.Node, error) {
	f, err := s.fs.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("metadata document does not exist yet", "path", s.path)
		return tree.NewObject().Set(s.rootKey, tree.NewArray()), nil
	}
	if err != nil {
		return nil, catalog.Internal("open "+s.path, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, catalog.Internal("read "+s.path, err)
	}

	contents, err := tree.Parse(data)
	if err != nil {
		return nil, catalog.Errorf(catalog.ErrInternal, "malformed document %s: %v", s.path, err)
	}
	if _, err := codec.Collection(contents, s.rootKey); err != nil {
		return nil, fmt.Errorf("document %s: %w", s.path, err)
	}
	return contents, nil
}
