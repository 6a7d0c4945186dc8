// Package registry persists deployment records, keyed by (network, name).
// Records are append-only: re-recording the same address is a no-op and a
// different address is rejected with a RecordConflictError.
package registry

import (
	"fmt"
	"path/filepath"

	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// SQLiteFile is the default database file name for the sqlite driver
const SQLiteFile = "registry.db"

// NewRegistry opens the registry backend selected by [registry] in sling.toml
func NewRegistry(cfg *config.RuntimeConfig) (usecase.DeploymentRegistry, error) {
	regCfg := cfg.SlingConfig.Registry

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(cfg.ProjectRoot, DataDir)
	}

	path := regCfg.Path
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(cfg.ProjectRoot, path)
	}

	switch regCfg.Driver {
	case "", config.RegistryDriverFile:
		if path == "" {
			path = dataDir
		}
		return NewFileRegistry(path)
	case config.RegistryDriverSQLite:
		if path == "" {
			path = filepath.Join(dataDir, SQLiteFile)
		}
		if err := ensureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
		return NewSQLiteRegistry(path)
	default:
		return nil, fmt.Errorf("unknown registry driver %q (want %q or %q)",
			regCfg.Driver, config.RegistryDriverFile, config.RegistryDriverSQLite)
	}
}
