package document

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/osfs"

	"github.com/ban-nobuhiro/metadata-manager/internal/atomicfile"
	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/oid"
	"github.com/ban-nobuhiro/metadata-manager/internal/store"
)

// Document files and their root collection keys.
const (
	TablesFile           = "tables.json"
	ColumnsFile          = "columns.json"
	ColumnStatisticsFile = "column_statistics.json"
	IndexesFile          = "indexes.json"
	DataTypesFile        = "datatypes.json"
)

// Store is the document-backed metadata store.
type Store struct {
	fs        billy.Filesystem
	logger    *slog.Logger
	generator *oid.Generator
	sessions  []*Session
	inTx      bool

	tables     *TablesDAO
	columns    *ColumnsDAO
	statistics *StatisticsDAO
	indexes    *IndexesDAO
	datatypes  *DataTypesDAO
}

var _ store.MetadataStore = (*Store)(nil)

// OpenDir opens a document store rooted at dir, creating it if needed.
func OpenDir(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return Open(osfs.New(dir), logger)
}

// Open opens a document store on fs. The object id counter file is
// created and the data types document seeded when missing.
func Open(fs billy.Filesystem, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	generator := oid.NewGenerator(fs, oid.DefaultFile, logger)
	if err := generator.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize object id generator: %w", err)
	}

	s := &Store{fs: fs, logger: logger, generator: generator}
	connect := func(path, rootKey string) *Session {
		session := NewSession(fs, logger)
		session.Connect(path, rootKey)
		s.sessions = append(s.sessions, session)
		return session
	}

	s.tables = &TablesDAO{session: connect(TablesFile, catalog.TablesTable), generator: generator}
	s.columns = &ColumnsDAO{session: connect(ColumnsFile, catalog.ColumnsTable), generator: generator}
	s.statistics = &StatisticsDAO{session: connect(ColumnStatisticsFile, catalog.ColumnStatisticsTable)}
	s.indexes = &IndexesDAO{session: connect(IndexesFile, catalog.IndexesTable), generator: generator}
	s.datatypes = &DataTypesDAO{session: connect(DataTypesFile, catalog.DataTypesTable)}

	if err := s.datatypes.seed(); err != nil {
		return nil, fmt.Errorf("failed to seed data types: %w", err)
	}

	return s, nil
}

// Generator returns the object id generator owned by the store.
func (s *Store) Generator() *oid.Generator {
	return s.generator
}

// StartTransaction opens a transaction on every document session.
func (s *Store) StartTransaction(_ context.Context) error {
	if s.inTx {
		return catalog.Errorf(catalog.ErrUnknown, "transaction already open")
	}
	for _, session := range s.sessions {
		session.Begin()
	}
	s.inTx = true
	return nil
}

// Commit writes every changed document. All documents are staged first;
// none is replaced unless every one staged successfully.
func (s *Store) Commit(_ context.Context) error {
	if !s.inTx {
		return catalog.Errorf(catalog.ErrUnknown, "no transaction open")
	}
	defer s.end()

	var staged []*atomicfile.Staged
	for _, session := range s.sessions {
		st, err := session.stage()
		if err != nil {
			for _, prev := range staged {
				prev.Discard()
			}
			return err
		}
		if st != nil {
			staged = append(staged, st)
		}
	}

	for i, st := range staged {
		if err := st.Publish(); err != nil {
			for _, rest := range staged[i+1:] {
				rest.Discard()
			}
			s.logger.Error("commit published only part of the metadata documents", "published", i, "staged", len(staged), "error", err)
			return catalog.Internal("commit metadata documents", err)
		}
	}
	return nil
}

// Rollback discards every in-memory change.
func (s *Store) Rollback(_ context.Context) error {
	if !s.inTx {
		return catalog.Errorf(catalog.ErrUnknown, "no transaction open")
	}
	s.end()
	return nil
}

func (s *Store) end() {
	for _, session := range s.sessions {
		session.Rollback()
	}
	s.inTx = false
}

// Tables returns the tables DAO.
func (s *Store) Tables() store.TablesDAO { return s.tables }

// Columns returns the columns DAO.
func (s *Store) Columns() store.ColumnsDAO { return s.columns }

// Statistics returns the column statistics DAO.
func (s *Store) Statistics() store.StatisticsDAO { return s.statistics }

// Indexes returns the indexes DAO.
func (s *Store) Indexes() store.IndexesDAO { return s.indexes }

// DataTypes returns the data types DAO.
func (s *Store) DataTypes() store.DataTypesDAO { return s.datatypes }

// Close discards any open transaction.
func (s *Store) Close(_ context.Context) error {
	if s.inTx {
		s.end()
	}
	return nil
}
