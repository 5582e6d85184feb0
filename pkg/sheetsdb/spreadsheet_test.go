package sheetsdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sheetsdb/internal/memory"
	"github.com/mesh-intelligence/sheetsdb/internal/testutil"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

func TestSpreadsheetWorksheetIsMemoized(t *testing.T) {
	p := newProjectBook(t)

	again, err := p.sheet.Worksheet("teams")
	require.NoError(t, err)
	assert.Same(t, p.teams, again)
	assert.Same(t, p.sheet, again.Resolver())

	_, err = p.sheet.Worksheet("projects")
	assert.ErrorIs(t, err, types.ErrUnknownAttribute)

	require.NoError(t, p.sheet.Reload())
	fresh, err := p.sheet.Worksheet("teams")
	require.NoError(t, err)
	assert.NotSame(t, p.teams, fresh)
	assert.True(t, p.teams.Equal(fresh))
}

func TestSpreadsheetCreatesDeclaredWorksheets(t *testing.T) {
	p := newProjectBook(t)

	sheets, err := p.sheet.raw.Worksheets()
	require.NoError(t, err)
	titles := make([]string, 0, len(sheets))
	for _, s := range sheets {
		titles = append(titles, s.Title())
	}
	assert.ElementsMatch(t, []string{"Sheet1", "Teams", "Users", "Tasks"}, titles)
	assert.Equal(t, []string{"teams", "users", "tasks"}, p.sheet.Type().WorksheetNames())
}

func TestSpreadsheetFindWorksheet(t *testing.T) {
	p := newProjectBook(t)
	schema := peopleSchema(t)

	_, err := p.sheet.FindWorksheet("People", schema, false)
	assert.ErrorIs(t, err, types.ErrChildResourceNotFound)

	w, err := p.sheet.FindWorksheet("People", schema, true)
	require.NoError(t, err)
	assert.Equal(t, "People", w.Title())

	again, err := p.sheet.FindWorksheet("People", schema, false)
	require.NoError(t, err)
	assert.True(t, w.Equal(again))
}

func TestSpreadsheetFinders(t *testing.T) {
	p := newProjectBook(t)

	row, err := p.sheet.FindAssociationByID("tasks", 3)
	require.NoError(t, err)
	require.NotNil(t, row)
	title, err := row.Get("title")
	require.NoError(t, err)
	assert.Equal(t, "Ship", title)

	rows, err := p.sheet.FindAssociationsByIDs("tasks", []any{3, 1})
	require.NoError(t, err)
	assert.Equal(t, []any{3, 1}, ids(t, rows))

	rows, err = p.sheet.FindAssociationsByAttribute("users", "task_ids", 3)
	require.NoError(t, err)
	assert.Equal(t, []any{1}, ids(t, rows))

	rows, err = p.sheet.SelectFromAssociation("tasks", func(r *Row) (bool, error) {
		teamID, err := Get[int](r, "team_id")
		return teamID == 12, err
	})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, ids(t, rows))
}

func TestSpreadsheetTypeDeclarations(t *testing.T) {
	schema := Define("thing").MustBuild()
	st := DefineSpreadsheet("book")

	require.NoError(t, st.HasMany("things", "Things", schema))
	assert.ErrorIs(t, st.HasMany("things", "Other", schema), types.ErrWorksheetAssociationAlreadyRegistered)
	assert.ErrorIs(t, st.HasMany("", "Things", schema), types.ErrInvalidName)
	assert.ErrorIs(t, st.HasMany("more", "More", nil), types.ErrInvalidName)

	folder := DefineCollection("folder")
	require.NoError(t, st.BelongsToMany("folders", folder))
	assert.ErrorIs(t, st.BelongsToMany("again", folder), types.ErrAssociationKindAlreadyRegistered)
	assert.ErrorIs(t, DefineSpreadsheet("x").BelongsToMany("folders", nil), types.ErrInvalidResourceType)

	assert.Equal(t, "book", st.TypeName())
	assert.Equal(t, types.KindSpreadsheet, st.Kind())
}

func TestCollectionTypeDeclarations(t *testing.T) {
	folder := DefineCollection("folder")
	book := DefineSpreadsheet("book")

	require.NoError(t, folder.Collects("books", book))
	require.NoError(t, folder.Collects("folders", folder))

	tests := []struct {
		name    string
		assoc   string
		child   ResourceType
		wantErr error
	}{
		{"second spreadsheet association", "ledgers", DefineSpreadsheet("ledger"), types.ErrAssociationKindAlreadyRegistered},
		{"second collection association", "archives", DefineCollection("archive"), types.ErrAssociationKindAlreadyRegistered},
		{"nil child", "nothing", nil, types.ErrInvalidResourceType},
		{"typed nil child", "nothing", (*CollectionType)(nil), types.ErrInvalidResourceType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, folder.Collects(tt.assoc, tt.child), tt.wantErr)
		})
	}

	other := DefineCollection("other")
	require.NoError(t, other.Collects("items", book))
	assert.ErrorIs(t, other.Collects("items", other), types.ErrAttributeAlreadyRegistered)
}

// folderTree declares folders that hold folders and books, where books know
// the folders they sit in.
func folderTree(t *testing.T) (*Session, *CollectionType, *SpreadsheetType) {
	t.Helper()
	folder := DefineCollection("folder")
	book := DefineSpreadsheet("book")
	require.NoError(t, book.HasMany("people", "People", peopleSchema(t)))
	require.NoError(t, book.BelongsToMany("folders", folder))
	require.NoError(t, folder.Collects("books", book))
	require.NoError(t, folder.Collects("folders", folder))
	require.NoError(t, folder.BelongsToMany("parents", folder))

	session := NewSession(memory.NewDrive(), WithSessionLogger(testutil.NewTestLogger(t)))
	return session, folder, book
}

func TestCollectionFindAndCreate(t *testing.T) {
	session, folder, _ := folderTree(t)
	root, err := session.RootCollection(folder)
	require.NoError(t, err)

	_, err = root.FindSpreadsheet("books", "Ledger", false)
	assert.ErrorIs(t, err, types.ErrChildResourceNotFound)
	_, err = root.FindCollection("folders", "Archive", false)
	assert.ErrorIs(t, err, types.ErrChildResourceNotFound)

	ledger, err := root.FindSpreadsheet("books", "Ledger", true)
	require.NoError(t, err)
	assert.Equal(t, "Ledger", ledger.Name())
	assert.Equal(t, "book", ledger.Type().TypeName())

	archive, err := root.FindCollection("folders", "Archive", true)
	require.NoError(t, err)

	again, err := root.FindSpreadsheet("books", "Ledger", false)
	require.NoError(t, err)
	assert.True(t, ledger.Equal(&again.Resource))

	books, err := root.Spreadsheets("books")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, ledger.ID(), books[0].ID())

	folders, err := root.Collections("folders")
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, archive.ID(), folders[0].ID())

	_, err = root.Spreadsheets("folders")
	assert.ErrorIs(t, err, types.ErrUnknownAttribute)
	_, err = root.Collections("nope")
	assert.ErrorIs(t, err, types.ErrUnknownAttribute)
}

func TestResourceParents(t *testing.T) {
	session, folder, _ := folderTree(t)
	root, err := session.RootCollection(folder)
	require.NoError(t, err)
	archive, err := root.FindCollection("folders", "Archive", true)
	require.NoError(t, err)
	ledger, err := archive.FindSpreadsheet("books", "Ledger", true)
	require.NoError(t, err)

	parents, err := ledger.Parents()
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, archive.ID(), parents[0].ID())
	assert.Equal(t, "folder", parents[0].Type().TypeName())
	assert.Equal(t, "folders", ledger.ParentsName())

	grand, err := parents[0].Parents()
	require.NoError(t, err)
	require.Len(t, grand, 1)
	assert.Equal(t, root.ID(), grand[0].ID())

	untyped, err := session.FindSpreadsheetByID(ledger.ID(), nil)
	require.NoError(t, err)
	_, err = untyped.Parents()
	assert.ErrorIs(t, err, types.ErrNotAnAssociation)
	assert.Equal(t, "", untyped.ParentsName())
}

func TestResourceBaseAttributesAndDelete(t *testing.T) {
	session, folder, book := folderTree(t)
	root, err := session.RootCollection(folder)
	require.NoError(t, err)
	ledger, err := root.FindSpreadsheet("books", "Ledger", true)
	require.NoError(t, err)

	attrs := ledger.BaseAttributes()
	assert.Equal(t, ledger.ID(), attrs["id"])
	assert.Equal(t, "Ledger", attrs["name"])
	assert.Equal(t, ledger.HumanURL(), attrs["url"])
	assert.Contains(t, attrs, "created_at")
	assert.Contains(t, attrs, "updated_at")
	assert.False(t, ledger.CreatedAt().IsZero())

	require.NoError(t, ledger.Delete())
	_, err = session.FindSpreadsheetByID(ledger.ID(), book)
	assert.ErrorIs(t, err, types.ErrResourceNotFound)
}

func TestSessionFinders(t *testing.T) {
	session, folder, book := folderTree(t)
	root, err := session.RootCollection(folder)
	require.NoError(t, err)
	ledger, err := root.FindSpreadsheet("books", "Ledger", true)
	require.NoError(t, err)

	byURL, err := session.FindSpreadsheet(ledger.HumanURL(), book)
	require.NoError(t, err)
	assert.Equal(t, ledger.ID(), byURL.ID())

	byID, err := session.FindSpreadsheet(ledger.ID(), book)
	require.NoError(t, err)
	assert.Equal(t, ledger.ID(), byID.ID())

	viaURL, err := session.FindSpreadsheetByURL(ledger.HumanURL(), book)
	require.NoError(t, err)
	assert.Equal(t, ledger.ID(), viaURL.ID())

	_, err = session.FindSpreadsheetByURL("not a url", book)
	assert.ErrorIs(t, err, types.ErrInvalidLocator)

	_, err = session.FindSpreadsheet("missing", book)
	assert.ErrorIs(t, err, types.ErrResourceNotFound)

	_, err = session.FindCollection(ledger.ID(), folder)
	assert.ErrorIs(t, err, types.ErrResourceTypeMismatch)
	_, err = session.FindSpreadsheet(root.HumanURL(), book)
	assert.ErrorIs(t, err, types.ErrResourceTypeMismatch)

	found, err := session.FindCollectionByURL(root.HumanURL(), folder)
	require.NoError(t, err)
	assert.Equal(t, root.ID(), found.ID())
	found, err = session.FindCollectionByID(root.ID(), nil)
	require.NoError(t, err)
	assert.Equal(t, root.Name(), found.Type().TypeName())

	people, err := byID.Worksheet("people")
	require.NoError(t, err)
	assert.Equal(t, "People", people.Title())
}

func TestSessionClose(t *testing.T) {
	session, folder, _ := folderTree(t)
	require.NoError(t, session.Close())

	_, err := session.RootCollection(folder)
	assert.ErrorIs(t, err, types.ErrDriveClosed)
}

func TestDefaultSession(t *testing.T) {
	t.Cleanup(ClearDefaultSession)
	ClearDefaultSession()

	_, err := DefaultSession()
	assert.ErrorIs(t, err, types.ErrNoDefaultSession)
	assert.ErrorIs(t, SetDefaultSession(nil), types.ErrIllegalDefault)

	session := NewSession(memory.NewDrive())
	require.NoError(t, SetDefaultSession(session))
	got, err := DefaultSession()
	require.NoError(t, err)
	assert.Same(t, session, got)
}
