// Package drive exposes the factories for the Drive backends while keeping
// their implementations internal.
package drive

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/sheetsdb/internal/memory"
	"github.com/mesh-intelligence/sheetsdb/internal/sqlite"
	"github.com/mesh-intelligence/sheetsdb/internal/xlsx"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// NewMemory returns an empty in-process drive. Nothing it holds outlives
// the process.
func NewMemory() types.Drive {
	return memory.NewDrive()
}

// OpenSQLite opens or creates the SQLite database in dataDir.
//
// Example:
//
//	d, err := drive.OpenSQLite(".sheetsdb-db")
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
func OpenSQLite(dataDir string, logger *slog.Logger) (types.Drive, error) {
	return sqlite.Open(dataDir, sqlite.WithLogger(logger))
}

// OpenXLSX returns a drive over the .xlsx workbooks below dir.
func OpenXLSX(dir string, logger *slog.Logger) (types.Drive, error) {
	return xlsx.Open(dir, xlsx.WithLogger(logger))
}

// Open validates cfg and opens the backend it names. A nil logger means
// slog.Default().
func Open(cfg types.Config, logger *slog.Logger) (types.Drive, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	switch cfg.Backend {
	case types.BackendMemory:
		return NewMemory(), nil
	case types.BackendSQLite:
		return OpenSQLite(cfg.DataDir, logger)
	case types.BackendXLSX:
		return OpenXLSX(cfg.DataDir, logger)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, cfg.Backend)
	}
}
