package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

func TestFormatParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		kind string
		id   string
	}{
		{"spreadsheet", types.KindSpreadsheet, "0190b3c4-7a1e-7c3d-9f00-1234567890ab"},
		{"collection", types.KindCollection, "folder-1"},
		{"file", types.KindFile, "notes"},
		{"id with slashes", types.KindSpreadsheet, "team/projects.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := Format(DefaultBase, tt.kind, tt.id)
			got, err := Parse(url)
			require.NoError(t, err)
			assert.Equal(t, tt.id, got)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"spreadsheet edit url", "https://example.com/spreadsheets/d/abc123/edit#gid=0", "abc123", nil},
		{"folder url", "https://example.com/drive/folders/xyz", "xyz", nil},
		{"open by id query", "https://example.com/open?id=q1", "q1", nil},
		{"bare id", "abc123", "", types.ErrInvalidLocator},
		{"relative path", "/spreadsheets/d/abc", "", types.ErrInvalidLocator},
		{"url without id", "https://example.com/about", "", types.ErrInvalidLocator},
		{"empty", "", "", types.ErrInvalidLocator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
