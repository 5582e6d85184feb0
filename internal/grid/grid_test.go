package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

func TestGridSetGrowsAndCounts(t *testing.T) {
	g := New(nil)
	require.NoError(t, g.Set(3, 2, "x"))

	assert.Equal(t, 3, g.NumRows())
	assert.Equal(t, 2, g.NumCols())

	v, err := g.Get(3, 2)
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	v, err = g.Get(10, 10)
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestGridTrailingBlanksDoNotCount(t *testing.T) {
	g := New([][]string{
		{"id", "name", ""},
		{"1", "Anna", ""},
		{"", "", ""},
	})
	assert.Equal(t, 2, g.NumRows())
	assert.Equal(t, 2, g.NumCols())
	assert.Equal(t, [][]string{{"id", "name"}, {"1", "Anna"}}, g.Rows())
}

func TestGridUpdateBlock(t *testing.T) {
	g := New(nil)
	require.NoError(t, g.Update(1, 1, [][]string{{"a", "b"}, {"c", "d"}}))
	require.NoError(t, g.Update(1, 1, [][]string{{"", ""}, {"", ""}}))
	assert.Equal(t, 0, g.NumRows())
}

func TestGridInvalidPosition(t *testing.T) {
	g := New(nil)
	_, err := g.Get(0, 1)
	assert.ErrorIs(t, err, types.ErrInvalidPosition)
	assert.ErrorIs(t, g.Set(1, 0, "x"), types.ErrInvalidPosition)
}

func TestGridCloneIsIndependent(t *testing.T) {
	g := New([][]string{{"a"}})
	c := g.Clone()
	require.NoError(t, c.Set(1, 1, "b"))

	v, _ := g.Get(1, 1)
	assert.Equal(t, "a", v)
}
