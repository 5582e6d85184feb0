package drive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sheetsdb/internal/testutil"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

func TestOpen(t *testing.T) {
	logger := testutil.NewTestLogger(t)

	tests := []struct {
		name    string
		cfg     func(dir string) types.Config
		wantErr error
		check   func(t *testing.T, dir string)
	}{
		{
			name: "memory needs no directory",
			cfg:  func(string) types.Config { return types.Config{Backend: types.BackendMemory} },
		},
		{
			name: "sqlite creates its database file",
			cfg: func(dir string) types.Config {
				return types.Config{Backend: types.BackendSQLite, DataDir: dir}
			},
			check: func(t *testing.T, dir string) {
				_, err := os.Stat(filepath.Join(dir, "sheetsdb.db"))
				assert.NoError(t, err)
			},
		},
		{
			name: "xlsx roots the drive at the directory",
			cfg: func(dir string) types.Config {
				return types.Config{Backend: types.BackendXLSX, DataDir: dir}
			},
		},
		{
			name:    "xlsx without a directory",
			cfg:     func(string) types.Config { return types.Config{Backend: types.BackendXLSX} },
			wantErr: types.ErrDataDirRequired,
		},
		{
			name:    "unknown backend",
			cfg:     func(string) types.Config { return types.Config{Backend: "gdrive"} },
			wantErr: types.ErrBackendUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			d, err := Open(tt.cfg(dir), logger)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer d.Close()

			root, err := d.Root()
			require.NoError(t, err)
			book, err := root.CreateSpreadsheet("Inventory")
			require.NoError(t, err)
			sheet, err := book.WorksheetByTitle("Sheet1")
			require.NoError(t, err)
			require.NotNil(t, sheet)

			if tt.check != nil {
				tt.check(t, dir)
			}
		})
	}
}

func TestNewMemoryIsIsolated(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	rootA, err := a.Root()
	require.NoError(t, err)
	_, err = rootA.CreateSpreadsheet("only in a")
	require.NoError(t, err)

	rootB, err := b.Root()
	require.NoError(t, err)
	books, err := rootB.Spreadsheets()
	require.NoError(t, err)
	assert.Empty(t, books)
}
