package sheetsdb_test

import (
	"fmt"

	"github.com/mesh-intelligence/sheetsdb/internal/memory"
	"github.com/mesh-intelligence/sheetsdb/pkg/sheetsdb"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

func Example() {
	person := sheetsdb.Define("person").
		Attribute("first_name").
		Attribute("last_name").
		Attribute("tags", sheetsdb.Multiple()).
		MustBuild()

	raw := memory.NewWorksheet("People", [][]string{
		{"id", "first_name", "", "last_name", "tags"},
		{"1", "Anna", "", "Bell", "admin, ops"},
	})
	people := sheetsdb.NewWorksheet(raw, person)

	anna, _ := people.FindByID(1)
	name, _ := sheetsdb.Get[string](anna, "first_name")
	tags, _ := sheetsdb.Values[string](anna, "tags")
	fmt.Println(name, tags)

	_ = anna.AddElementToAttribute("tags", "dev")
	_ = anna.Save()

	_, _ = people.Create(map[string]any{"id": 2, "first_name": "Jesse", "last_name": "Rhutoni"})
	fmt.Println(raw)
	// Output:
	// Anna [admin ops]
	// id	first_name		last_name	tags
	// 1	Anna		Bell	admin,ops,dev
	// 2	Jesse		Rhutoni	
}

func ExampleRow_SetMany() {
	team := sheetsdb.Define("team").
		BelongsToMany("tasks", "tasks", "team_id").
		MustBuild()
	task := sheetsdb.Define("task").
		Attribute("team_id", sheetsdb.WithType(types.ValueTypeInteger)).
		MustBuild()

	book := sheetsdb.DefineSpreadsheet("book")
	_ = book.HasMany("teams", "Teams", team)
	_ = book.HasMany("tasks", "Tasks", task)

	drive := memory.NewDrive()
	root, _ := drive.Root()
	rawBook, _ := root.CreateSpreadsheet("Book")
	sheet, _ := sheetsdb.NewSession(drive).FindSpreadsheetByID(rawBook.ID(), book)

	teams, _ := sheet.Worksheet("teams")
	tasks, _ := sheet.Worksheet("tasks")
	_ = teams.WriteMatrix([][]string{{"id"}, {"1"}})
	_ = tasks.WriteMatrix([][]string{{"id", "team_id"}, {"10", "1"}, {"11", ""}})

	t1, _ := teams.FindByID(1)
	t11, _ := tasks.FindByID(11)
	_ = t1.SetMany("tasks", []*sheetsdb.Row{t11})
	_ = t1.Save()

	matrix, _ := tasks.ReadMatrix()
	fmt.Println(matrix)
	// Output:
	// [[id team_id] [10 ] [11 1]]
}
