package sheetsdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sheetsdb/internal/memory"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

func TestRowStagedValueWins(t *testing.T) {
	w, raw := newPeople(t)
	row := mustFind(t, w, 2)

	require.NoError(t, row.Set("first_name", "Jess"))
	v, err := row.Get("first_name")
	require.NoError(t, err)
	assert.Equal(t, "Jess", v)
	assert.Equal(t, "Jesse", raw.Committed()[2][1], "nothing is written before Save")
	assert.Equal(t, map[string]any{"first_name": "Jess"}, row.StagedAttributes())
}

func TestRowLoadsEachAttributeOnce(t *testing.T) {
	w, raw := newPeople(t)
	row := w.Row(2)
	_, err := w.Columns()
	require.NoError(t, err)
	raw.ResetCounters()

	for range 3 {
		v, err := row.Get("last_name")
		require.NoError(t, err)
		assert.Equal(t, "Bell", v)
	}
	assert.Equal(t, 1, raw.CellReads(2))
}

func TestRowSaveClearsCaches(t *testing.T) {
	w, raw := newPeople(t)
	row := mustFind(t, w, 1)

	_, err := row.Get("last_name")
	require.NoError(t, err)
	require.NoError(t, row.Set("first_name", "Ann"))
	require.NoError(t, row.Save())

	assert.Empty(t, row.attributes)
	assert.Empty(t, row.associations)
	assert.Empty(t, row.StagedAttributes())
	assert.Equal(t, "Ann", raw.Committed()[1][1])

	v, err := row.Get("first_name")
	require.NoError(t, err)
	assert.Equal(t, "Ann", v, "values are re-read after Save")
}

func TestRowStagedNilClearsCell(t *testing.T) {
	w, raw := newPeople(t)
	row := mustFind(t, w, 1)

	require.NoError(t, row.Set("last_name", nil))
	assert.Equal(t, map[string]any{"last_name": nil}, row.StagedAttributes())
	require.NoError(t, row.Save())
	assert.Equal(t, "", raw.Committed()[1][3])
}

func TestRowSaveWithoutChangesDoesNotWrite(t *testing.T) {
	w, raw := newPeople(t)
	row := mustFind(t, w, 1)
	raw.ResetCounters()

	require.NoError(t, row.Save())
	assert.Equal(t, 0, raw.SyncCount())
}

func TestRowNew(t *testing.T) {
	w, raw := newPeople(t)

	row, err := w.New(map[string]any{"first_name": "Mia"})
	require.NoError(t, err)
	assert.True(t, row.IsNew())
	assert.Equal(t, 0, row.Position())
	assert.Equal(t, "person(new)", row.String())

	last, err := row.Get("last_name")
	require.NoError(t, err)
	assert.Nil(t, last, "an unsaved row has no persisted values")

	require.NoError(t, row.Save())
	assert.Equal(t, 4, row.Position())
	assert.Equal(t, "person@4", row.String())
	assert.Equal(t, []string{"", "Mia", "", ""}, raw.Committed()[3])

	_, err = w.New(map[string]any{"age": 3})
	assert.ErrorIs(t, err, types.ErrUnknownAttribute)
}

func TestRowSaveRejectsEmptyNewRow(t *testing.T) {
	w, raw := newPeople(t)

	_, err := w.Create(nil)
	assert.ErrorIs(t, err, types.ErrEmptyRow)
	blank, err := w.New(map[string]any{"first_name": nil, "last_name": ""})
	require.NoError(t, err)
	assert.ErrorIs(t, blank.Save(), types.ErrEmptyRow)
	assert.True(t, blank.IsNew())

	mia, err := w.Create(map[string]any{"id": 9, "first_name": "Mia"})
	require.NoError(t, err)
	assert.Equal(t, 4, mia.Position())
	assert.False(t, mia.Equal(blank))
	assert.Len(t, raw.Committed(), 4)
}

func TestRowUpdateAttributes(t *testing.T) {
	w, raw := newPeople(t)
	row := mustFind(t, w, 2)

	require.NoError(t, row.UpdateAttributes(map[string]any{"first_name": "J.", "last_name": "R."}))
	assert.Equal(t, []string{"2", "J.", "", "R."}, raw.Committed()[2])
}

func TestRowReloadDropsStagedValues(t *testing.T) {
	w, _ := newPeople(t)
	row := mustFind(t, w, 1)

	require.NoError(t, row.Set("first_name", "Zed"))
	require.NoError(t, row.Reload())
	v, err := row.Get("first_name")
	require.NoError(t, err)
	assert.Equal(t, "Anna", v)
}

func TestRowUnknownAttribute(t *testing.T) {
	w, _ := newPeople(t)
	row := mustFind(t, w, 1)

	_, err := row.Get("age")
	assert.ErrorIs(t, err, types.ErrUnknownAttribute)
	assert.ErrorIs(t, row.Set("age", 3), types.ErrUnknownAttribute)
	_, err = row.Association("first_name")
	assert.ErrorIs(t, err, types.ErrNotAnAssociation)
}

func tagsSheet(t *testing.T) *Worksheet {
	t.Helper()
	raw := memory.NewWorksheet("posts", [][]string{
		{"id", "tags", "owner"},
		{"1", "go, sheets", "ana"},
		{"2", "", ""},
	})
	schema := Define("post").
		Attribute("tags", Multiple()).
		Attribute("owner").
		MustBuild()
	return NewWorksheet(raw, schema)
}

func TestRowAddElementToAttribute(t *testing.T) {
	w := tagsSheet(t)
	row := mustFind(t, w, 1)

	require.NoError(t, row.AddElementToAttribute("tags", "sheets"))
	assert.Empty(t, row.StagedAttributes(), "present element is a no-op")

	require.NoError(t, row.AddElementToAttribute("tags", "orm"))
	v, err := row.Get("tags")
	require.NoError(t, err)
	assert.Equal(t, []any{"go", "sheets", "orm"}, v)

	empty := mustFind(t, w, 2)
	require.NoError(t, empty.AddElementToAttribute("tags", "new"))
	v, err = empty.Get("tags")
	require.NoError(t, err)
	assert.Equal(t, []any{"new"}, v)

	require.NoError(t, empty.AddElementToAttribute("owner", "bo"))
	v, err = empty.Get("owner")
	require.NoError(t, err)
	assert.Equal(t, "bo", v)
}

func TestRowRemoveElementFromAttribute(t *testing.T) {
	w := tagsSheet(t)
	row := mustFind(t, w, 1)

	require.NoError(t, row.RemoveElementFromAttribute("tags", "rust"))
	assert.Empty(t, row.StagedAttributes(), "absent element is a no-op")

	require.NoError(t, row.RemoveElementFromAttribute("tags", "go"))
	v, err := row.Get("tags")
	require.NoError(t, err)
	assert.Equal(t, []any{"sheets"}, v)

	require.NoError(t, row.RemoveElementFromAttribute("owner", "someone"))
	_, staged := row.StagedAttributes()["owner"]
	assert.False(t, staged)

	require.NoError(t, row.RemoveElementFromAttribute("owner", "ana"))
	assert.Equal(t, map[string]any{"tags": []any{"sheets"}, "owner": nil}, row.StagedAttributes())

	require.NoError(t, row.Save())
	raw := w.Raw().(*memory.Worksheet)
	assert.Equal(t, []string{"1", "sheets", ""}, raw.Committed()[1])
}

func TestRowEqual(t *testing.T) {
	w, _ := newPeople(t)

	assert.True(t, w.Row(2).Equal(w.Row(2)))
	assert.False(t, w.Row(2).Equal(w.Row(3)))

	a, err := w.New(nil)
	require.NoError(t, err)
	b, err := w.New(nil)
	require.NoError(t, err)
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b), "unsaved rows are only equal to themselves")
	assert.False(t, a.Equal(nil))
}

func TestRowToMap(t *testing.T) {
	w, _ := newPeople(t)
	row := mustFind(t, w, 1)

	m, err := row.ToMap(0)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": 1, "first_name": "Anna", "last_name": "Bell"}, m)
}

func TestRowToMapExpandsAssociations(t *testing.T) {
	p := newProjectBook(t)
	user := mustFind(t, p.users, 2)

	m, err := user.ToMap(1)
	require.NoError(t, err)
	assert.Equal(t, "Jesse", m["name"])
	assert.Equal(t, map[string]any{"id": 7, "name": "Mobile"}, m["team"])
	assert.Equal(t, []map[string]any{}, m["tasks"])
}
