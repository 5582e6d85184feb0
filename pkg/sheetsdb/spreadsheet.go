package sheetsdb

import (
	"fmt"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// worksheetAssociation binds a name to a sheet title and record type.
type worksheetAssociation struct {
	name   string
	title  string
	schema *Schema
}

// SpreadsheetType declares the worksheets a kind of spreadsheet holds.
// Declarations are made once at init time; the type is then read-only.
type SpreadsheetType struct {
	name       string
	worksheets map[string]worksheetAssociation
	order      []string
	parents    *parentAssociation
}

// DefineSpreadsheet starts a spreadsheet type.
func DefineSpreadsheet(name string) *SpreadsheetType {
	return &SpreadsheetType{
		name:       name,
		worksheets: make(map[string]worksheetAssociation),
	}
}

func (t *SpreadsheetType) TypeName() string                     { return t.name }
func (t *SpreadsheetType) Kind() string                         { return types.KindSpreadsheet }
func (t *SpreadsheetType) parentAssociation() *parentAssociation { return t.parents }

// HasMany declares that rows of schema live on the sheet titled
// worksheetTitle and are reached through name.
func (t *SpreadsheetType) HasMany(name, worksheetTitle string, schema *Schema) error {
	if name == "" || worksheetTitle == "" || schema == nil {
		return fmt.Errorf("%w: worksheet association on %s", types.ErrInvalidName, t.name)
	}
	if _, exists := t.worksheets[name]; exists {
		return fmt.Errorf("%w: %s.%s", types.ErrWorksheetAssociationAlreadyRegistered, t.name, name)
	}
	t.worksheets[name] = worksheetAssociation{name: name, title: worksheetTitle, schema: schema}
	t.order = append(t.order, name)
	return nil
}

// BelongsToMany declares the collection type that contains spreadsheets of
// this type. It may be declared once.
func (t *SpreadsheetType) BelongsToMany(name string, parent *CollectionType) error {
	return registerParents(&t.parents, t.name, name, parent)
}

// WorksheetNames returns the declared worksheet associations in order.
func (t *SpreadsheetType) WorksheetNames() []string {
	return append([]string(nil), t.order...)
}

// Spreadsheet is a typed view over a raw spreadsheet. It resolves
// associations between the rows of its worksheets.
type Spreadsheet struct {
	Resource
	typ        *SpreadsheetType
	raw        types.RawSpreadsheet
	worksheets map[string]*Worksheet
}

var _ AssociationResolver = (*Spreadsheet)(nil)

func newSpreadsheet(raw types.RawSpreadsheet, t *SpreadsheetType, s *Session) *Spreadsheet {
	return &Spreadsheet{
		Resource:   Resource{file: raw, session: s, parents: t.parents},
		typ:        t,
		raw:        raw,
		worksheets: make(map[string]*Worksheet),
	}
}

// Type returns the spreadsheet's declared type.
func (s *Spreadsheet) Type() *SpreadsheetType { return s.typ }

// Worksheet returns the table behind a declared association. The sheet is
// created when the spreadsheet does not have it yet.
func (s *Spreadsheet) Worksheet(name string) (*Worksheet, error) {
	if w, ok := s.worksheets[name]; ok {
		return w, nil
	}
	assoc, ok := s.typ.worksheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no worksheet association %q", types.ErrUnknownAttribute, s.typ.name, name)
	}
	w, err := s.FindWorksheet(assoc.title, assoc.schema, true)
	if err != nil {
		return nil, err
	}
	s.worksheets[name] = w
	return w, nil
}

// FindWorksheet binds the sheet with the given title to schema. With create
// set a missing sheet is added; otherwise ErrChildResourceNotFound.
func (s *Spreadsheet) FindWorksheet(title string, schema *Schema, create bool) (*Worksheet, error) {
	raw, err := s.raw.WorksheetByTitle(title)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		if !create {
			return nil, fmt.Errorf("%w: worksheet %q in %s", types.ErrChildResourceNotFound, title, s.Name())
		}
		if raw, err = s.raw.AddWorksheet(title); err != nil {
			return nil, err
		}
	}
	return NewWorksheet(raw, schema, WithResolver(s), WithLogger(s.logger())), nil
}

// FindAssociationByID returns the row with id from the named table, or nil.
func (s *Spreadsheet) FindAssociationByID(name string, id any) (*Row, error) {
	w, err := s.Worksheet(name)
	if err != nil {
		return nil, err
	}
	return w.FindByID(id)
}

// FindAssociationsByIDs returns rows of the named table in id order.
func (s *Spreadsheet) FindAssociationsByIDs(name string, ids []any) ([]*Row, error) {
	w, err := s.Worksheet(name)
	if err != nil {
		return nil, err
	}
	return w.FindByIDs(ids)
}

// FindAssociationsByAttribute scans the named table for rows whose
// attribute equals or contains value.
func (s *Spreadsheet) FindAssociationsByAttribute(name, attribute string, value any) ([]*Row, error) {
	w, err := s.Worksheet(name)
	if err != nil {
		return nil, err
	}
	return w.FindByAttribute(attribute, value)
}

// SelectFromAssociation returns rows of the named table for which keep
// returns true.
func (s *Spreadsheet) SelectFromAssociation(name string, keep func(*Row) (bool, error)) ([]*Row, error) {
	w, err := s.Worksheet(name)
	if err != nil {
		return nil, err
	}
	rows := []*Row{}
	for row, err := range w.Rows() {
		if err != nil {
			return nil, err
		}
		ok, err := keep(row)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// Reload re-reads metadata and drops the bound worksheets.
func (s *Spreadsheet) Reload() error {
	s.worksheets = make(map[string]*Worksheet)
	return s.Resource.Reload()
}
