// Package oid issues object ids from durable per-table counters.
//
// Counters live in an INI file, one "table_name = last_id" key per entity
// table in the default section. The file is rewritten atomically on every
// issuance. There is no locking between processes: two processes sharing a
// counter file need an external mutual exclusion mechanism.
package oid

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/util"
	"gopkg.in/ini.v1"

	"github.com/ban-nobuhiro/metadata-manager/internal/atomicfile"
	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
)

// DefaultFile is the counter file name used by the document store.
const DefaultFile = "oid_metadata.ini"

// Generator issues strictly increasing ids per entity-table name
type Generator struct {
	fs     billy.Filesystem
	path   string
	logger *slog.Logger
}

// NewGenerator creates a generator persisting its counters to path on fs
func NewGenerator(fs billy.Filesystem, path string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		fs:     fs,
		path:   path,
		logger: logger,
	}
}

// Init creates an empty counter file if none exists.
func (g *Generator) Init() error {
	if _, err := g.fs.Stat(g.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", g.path, err)
	}
	if err := atomicfile.WriteFile(g.fs, g.path, nil); err != nil {
		return fmt.Errorf("failed to create %s: %w", g.path, err)
	}
	return nil
}

// Generate returns the next id for tableName. The counter is persisted
// before returning. Any failure yields InvalidObjectID.
func (g *Generator) Generate(tableName string) catalog.ObjectID {
	cfg, err := g.load()
	if err != nil {
		g.logger.Error("failed to read object id counters", "path", g.path, "error", err)
		return catalog.InvalidObjectID
	}
	// An unseen table starts at 0 so the first id is 1.
	last, err := counter(cfg, tableName)
	if err != nil {
		g.logger.Error("failed to read object id counters", "path", g.path, "error", err)
		return catalog.InvalidObjectID
	}
	next := last + 1
	cfg.Section(ini.DefaultSection).Key(tableName).SetValue(strconv.FormatInt(next, 10))

	if err := g.store(cfg); err != nil {
		g.logger.Error("failed to persist object id counters", "path", g.path, "error", err)
		return catalog.InvalidObjectID
	}

	g.logger.Debug("issued object id", "table", tableName, "id", next)
	return catalog.ObjectID(next)
}

// Current returns the last id issued for tableName, or InvalidObjectID if
// none has been issued.
func (g *Generator) Current(tableName string) (catalog.ObjectID, error) {
	cfg, err := g.load()
	if err != nil {
		return catalog.InvalidObjectID, err
	}
	n, err := counter(cfg, tableName)
	if err != nil {
		return catalog.InvalidObjectID, err
	}
	return catalog.ObjectID(n), nil
}

func (g *Generator) load() (*ini.File, error) {
	data, err := util.ReadFile(g.fs, g.path)
	if errors.Is(err, os.ErrNotExist) {
		return ini.Empty(), nil
	}
	if err != nil {
		return nil, err
	}
	return ini.Load(data)
}

// counter reads the last id issued for name from the default section.
// A missing key is 0; a malformed one is an error.
func counter(cfg *ini.File, name string) (int64, error) {
	section := cfg.Section(ini.DefaultSection)
	if !section.HasKey(name) {
		return 0, nil
	}
	n, err := section.Key(name).Int64()
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid counter %s=%q", name, section.Key(name).String())
	}
	return n, nil
}

func (g *Generator) store(cfg *ini.File) error {
	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return err
	}
	return atomicfile.WriteFile(g.fs, g.path, buf.Bytes())
}
