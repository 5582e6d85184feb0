package sheetsdb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sheetsdb/internal/memory"
	"github.com/mesh-intelligence/sheetsdb/internal/testutil"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// peopleRows has a blank header in column 3 that must never be addressable.
var peopleRows = [][]string{
	{"id", "first_name", "", "last_name"},
	{"1", "Anna", "stray", "Bell"},
	{"2", "Jesse", "", "Rhutoni"},
}

func peopleSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := Define("person").
		Attribute("first_name").
		Attribute("last_name").
		Build()
	require.NoError(t, err)
	return s
}

func newPeople(t *testing.T) (*Worksheet, *memory.Worksheet) {
	t.Helper()
	raw := memory.NewWorksheet("people", peopleRows)
	return NewWorksheet(raw, peopleSchema(t), WithLogger(testutil.NewTestLogger(t))), raw
}

// projectBook builds a spreadsheet with teams, users, and tasks tables:
//
//	team 12 owns tasks 1 and 2; task 3 belongs to team 7
//	user 1 is on team 12, leads it, and works on tasks 1 and 3
//	user 2 is on team 7 with no tasks
type projectBook struct {
	sheet *Spreadsheet
	teams *Worksheet
	users *Worksheet
	tasks *Worksheet
	raw   map[string]*memory.Worksheet
}

func newProjectBook(t *testing.T) *projectBook {
	t.Helper()

	team := Define("team").
		Attribute("name").
		BelongsToMany("tasks", "tasks", "team_id").
		BelongsToMany("members", "users", "team_id").
		BelongsToOne("lead", "users", "lead_of").
		MustBuild()
	user := Define("user").
		Attribute("name").
		Attribute("team_id", WithType(types.ValueTypeInteger)).
		Attribute("task_ids", WithType(types.ValueTypeInteger), Multiple()).
		Attribute("lead_of", WithType(types.ValueTypeInteger)).
		HasOne("team", "teams", "team_id").
		HasMany("tasks", "tasks", "task_ids").
		MustBuild()
	task := Define("task").
		Attribute("title").
		Attribute("team_id", WithType(types.ValueTypeInteger)).
		HasOne("team", "teams", "team_id").
		BelongsToMany("assignees", "users", "task_ids").
		MustBuild()

	bookType := DefineSpreadsheet("project_book")
	require.NoError(t, bookType.HasMany("teams", "Teams", team))
	require.NoError(t, bookType.HasMany("users", "Users", user))
	require.NoError(t, bookType.HasMany("tasks", "Tasks", task))

	drive := memory.NewDrive()
	session := NewSession(drive, WithSessionLogger(testutil.NewTestLogger(t)))
	root, err := drive.Root()
	require.NoError(t, err)
	rawBook, err := root.CreateSpreadsheet("Projects")
	require.NoError(t, err)

	book, err := session.FindSpreadsheetByID(rawBook.ID(), bookType)
	require.NoError(t, err)

	seed := map[string][][]string{
		"teams": {{"id", "name"}, {"12", "Platform"}, {"7", "Mobile"}},
		"users": {
			{"id", "name", "team_id", "task_ids", "lead_of"},
			{"1", "Anna", "12", "1, 3", "12"},
			{"2", "Jesse", "7", "", ""},
		},
		"tasks": {
			{"id", "title", "team_id"},
			{"1", "Design", "12"},
			{"2", "Build", "12"},
			{"3", "Ship", "7"},
		},
	}
	p := &projectBook{sheet: book, raw: make(map[string]*memory.Worksheet)}
	for name, rows := range seed {
		w, err := book.Worksheet(name)
		require.NoError(t, err)
		require.NoError(t, w.WriteMatrix(rows))
		p.raw[name] = w.Raw().(*memory.Worksheet)
	}
	p.teams, _ = book.Worksheet("teams")
	p.users, _ = book.Worksheet("users")
	p.tasks, _ = book.Worksheet("tasks")
	return p
}

func mustFind(t *testing.T, w *Worksheet, id int) *Row {
	t.Helper()
	row, err := w.FindByID(id)
	require.NoError(t, err)
	require.NotNil(t, row, "row %d", id)
	return row
}
