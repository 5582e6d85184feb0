package jsonl

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSkipsBlankAndMalformedLines(t *testing.T) {
	input := "{\"id\":1}\n\n  \nnot json\n{\"id\":2}\n"
	records, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"id":1}`, string(records[0]))
	assert.JSONEq(t, `{"id":2}`, string(records[1]))
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.jsonl")
	records := []json.RawMessage{
		json.RawMessage(`{"id":1,"name":"Anna"}`),
		json.RawMessage(`{"id":2,"name":"Jesse"}`),
	}
	require.NoError(t, Write(path, records))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":1,\"name\":\"Anna\"}\n{\"id\":2,\"name\":\"Jesse\"}\n", string(raw))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshalUnmarshal(t *testing.T) {
	lines, err := Marshal([]map[string]any{{"id": 12, "tags": "a,b"}})
	require.NoError(t, err)
	require.Len(t, lines, 1)

	records, err := Unmarshal(lines)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, json.Number("12"), records[0]["id"])
	assert.Equal(t, "a,b", records[0]["tags"])

	_, err = Unmarshal([]json.RawMessage{json.RawMessage(`[1,2]`)})
	assert.Error(t, err)
}
