package sheetsdb

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// Worksheet is a table of rows of one record type. Row 1 holds the column
// headers; data rows start at position 2.
type Worksheet struct {
	raw      types.RawWorksheet
	resolver AssociationResolver
	schema   *Schema
	logger   *slog.Logger

	columns       Columns
	columnsLoaded bool
	synchronizing bool
}

// WorksheetOption configures a Worksheet.
type WorksheetOption func(*Worksheet)

// WithResolver sets the resolver used for row associations.
func WithResolver(r AssociationResolver) WorksheetOption {
	return func(w *Worksheet) { w.resolver = r }
}

// WithLogger sets the worksheet's logger. The default is slog.Default().
func WithLogger(l *slog.Logger) WorksheetOption {
	return func(w *Worksheet) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorksheet binds a raw sheet to a record type.
func NewWorksheet(raw types.RawWorksheet, schema *Schema, opts ...WorksheetOption) *Worksheet {
	w := &Worksheet{
		raw:           raw,
		schema:        schema,
		logger:        slog.Default(),
		synchronizing: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("worksheet", raw.Title(), "type", schema.Name())
	return w
}

// Raw returns the underlying sheet.
func (w *Worksheet) Raw() types.RawWorksheet { return w.raw }

// Schema returns the record type of the rows.
func (w *Worksheet) Schema() *Schema { return w.schema }

// Resolver returns the association resolver, or nil.
func (w *Worksheet) Resolver() AssociationResolver { return w.resolver }

// Title returns the sheet title.
func (w *Worksheet) Title() string { return w.raw.Title() }

// Columns returns the header directory, reading row 1 on first use.
func (w *Worksheet) Columns() (Columns, error) {
	if w.columnsLoaded {
		return w.columns, nil
	}
	n, err := w.raw.NumCols()
	if err != nil {
		return nil, err
	}
	header := make([]string, n)
	for col := 1; col <= n; col++ {
		v, err := w.raw.Cell(1, col)
		if err != nil {
			return nil, err
		}
		header[col-1] = v
	}
	w.columns = NewColumns(header)
	w.columnsLoaded = true
	return w.columns, nil
}

// ColumnNames returns the non-blank header names in sheet order.
func (w *Worksheet) ColumnNames() ([]string, error) {
	cols, err := w.Columns()
	if err != nil {
		return nil, err
	}
	return cols.Names(), nil
}

// column finds the first header matching the column name or an alias.
func (w *Worksheet) column(def *AttributeDefinition) (Column, bool, error) {
	cols, err := w.Columns()
	if err != nil {
		return Column{}, false, err
	}
	for _, name := range def.ColumnCandidates() {
		if col, ok := cols.Lookup(name); ok {
			return col, true, nil
		}
	}
	return Column{}, false, nil
}

// AttributeAtRowPosition reads and decodes one attribute of the row at
// position. DateTime attributes read the cell's input value.
func (w *Worksheet) AttributeAtRowPosition(name string, position int) (any, error) {
	def, ok := w.schema.Attribute(name)
	if !ok || def.IsAssociation() {
		return nil, fmt.Errorf("%w: %s.%s", types.ErrUnknownAttribute, w.schema.Name(), name)
	}
	col, found, err := w.column(def)
	if err != nil {
		return nil, err
	}
	if !found {
		return w.valueIfColumnMissing(def)
	}

	var raw string
	if def.Type == types.ValueTypeDateTime {
		raw, err = w.raw.InputValue(position, col.Position)
	} else {
		raw, err = w.raw.Cell(position, col.Position)
	}
	if err != nil {
		return nil, err
	}
	return Decode(raw, def)
}

// ValueIfColumnMissing returns the attribute's fallback value, or
// ErrColumnNotFound when it declares none.
func (w *Worksheet) ValueIfColumnMissing(name string) (any, error) {
	def, ok := w.schema.Attribute(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", types.ErrUnknownAttribute, w.schema.Name(), name)
	}
	return w.valueIfColumnMissing(def)
}

func (w *Worksheet) valueIfColumnMissing(def *AttributeDefinition) (any, error) {
	if def.IfColumnMissing == nil {
		return nil, fmt.Errorf("%w: %q in worksheet %q", types.ErrColumnNotFound, def.ColumnName, w.raw.Title())
	}
	return def.IfColumnMissing(), nil
}

// UpdateAttributesAtRowPosition writes each value to its cell and then
// synchronizes once, unless synchronization is suppressed. Every name is
// checked before the first cell is written, so a rejected batch leaves the
// sheet untouched.
func (w *Worksheet) UpdateAttributesAtRowPosition(values map[string]any, position int) error {
	if position < 2 {
		return fmt.Errorf("%w: data rows start at 2, got %d", types.ErrInvalidPosition, position)
	}
	for name := range values {
		if _, ok := w.schema.defs[name]; !ok {
			return fmt.Errorf("%w: %s.%s", types.ErrUnknownAttribute, w.schema.Name(), name)
		}
	}

	type cellWrite struct {
		col   int
		value string
	}
	writes := make([]cellWrite, 0, len(values))
	for _, name := range w.schema.order {
		value, ok := values[name]
		if !ok {
			continue
		}
		def := w.schema.defs[name]
		if def.IsAssociation() {
			return fmt.Errorf("%w: %s is an association", types.ErrTypeMismatch, name)
		}
		col, found, err := w.column(def)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %q in worksheet %q", types.ErrColumnNotFound, def.ColumnName, w.raw.Title())
		}
		writes = append(writes, cellWrite{col: col.Position, value: Encode(value, def)})
	}

	for _, cw := range writes {
		if err := w.raw.SetCell(position, cw.col, cw.value); err != nil {
			return err
		}
	}
	if !w.synchronizing {
		return nil
	}
	return w.Synchronize()
}

// Synchronize flushes pending cell writes.
func (w *Worksheet) Synchronize() error {
	w.logger.Debug("synchronizing")
	return w.raw.Synchronize()
}

// Row returns the record at a physical position without reading it.
func (w *Worksheet) Row(position int) *Row {
	return newRow(w, position)
}

// Rows yields a record for every data row. Each call re-reads the row count,
// so the sequence can be ranged over again after the sheet changes.
func (w *Worksheet) Rows() iter.Seq2[*Row, error] {
	return func(yield func(*Row, error) bool) {
		n, err := w.raw.NumRows()
		if err != nil {
			yield(nil, err)
			return
		}
		for pos := 2; pos <= n; pos++ {
			if !yield(newRow(w, pos), nil) {
				return
			}
		}
	}
}

// All returns every data row.
func (w *Worksheet) All() ([]*Row, error) {
	var rows []*Row
	for row, err := range w.Rows() {
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FindByID returns the row with the given id, or nil.
func (w *Worksheet) FindByID(id any) (*Row, error) {
	rows, err := w.FindByIDs([]any{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// FindByIDs returns the rows with the given ids in the order requested.
// Missing ids are skipped. The scan stops as soon as every id is found.
func (w *Worksheet) FindByIDs(ids []any) ([]*Row, error) {
	if len(ids) == 0 {
		return []*Row{}, nil
	}
	wanted := make(map[string][]int, len(ids))
	for i, id := range ids {
		key := encodeScalar(id)
		wanted[key] = append(wanted[key], i)
	}
	remaining := len(wanted)
	found := make([]*Row, len(ids))

	for row, err := range w.Rows() {
		if err != nil {
			return nil, err
		}
		id, err := row.ID()
		if err != nil {
			return nil, err
		}
		if id == nil {
			continue
		}
		indexes, ok := wanted[encodeScalar(id)]
		if !ok {
			continue
		}
		for _, i := range indexes {
			found[i] = row
		}
		delete(wanted, encodeScalar(id))
		remaining--
		if remaining == 0 {
			break
		}
	}

	rows := make([]*Row, 0, len(ids))
	for _, row := range found {
		if row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// FindByAttribute scans every row for those whose attribute equals value or,
// for multi-valued attributes, contains it.
func (w *Worksheet) FindByAttribute(name string, value any) ([]*Row, error) {
	def, ok := w.schema.Attribute(name)
	if !ok || def.IsAssociation() {
		return nil, fmt.Errorf("%w: %s.%s", types.ErrUnknownAttribute, w.schema.Name(), name)
	}
	rows := []*Row{}
	for row, err := range w.Rows() {
		if err != nil {
			return nil, err
		}
		v, err := row.Get(name)
		if err != nil {
			return nil, err
		}
		if def.Multiple {
			if containsValue(toList(v), value) {
				rows = append(rows, row)
			}
			continue
		}
		if sameValue(v, value) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// New returns an unsaved row with attrs staged.
func (w *Worksheet) New(attrs map[string]any) (*Row, error) {
	row := newRow(w, 0)
	if err := row.StageAttributes(attrs); err != nil {
		return nil, err
	}
	return row, nil
}

// Create stages attrs on a new row and saves it.
func (w *Worksheet) Create(attrs map[string]any) (*Row, error) {
	row, err := w.New(attrs)
	if err != nil {
		return nil, err
	}
	if err := row.Save(); err != nil {
		return nil, err
	}
	return row, nil
}

// Import creates one row per record inside a Transaction, so the sheet is
// synchronized once at the end. Rows created before a failure stay written.
func (w *Worksheet) Import(records []map[string]any) ([]*Row, error) {
	rows := make([]*Row, 0, len(records))
	err := w.Transaction(func() error {
		for _, attrs := range records {
			row, err := w.Create(attrs)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return rows, err
	}
	w.logger.Debug("imported rows", "count", len(rows))
	return rows, nil
}

// NextAvailableRowPosition returns the position a new row is written to.
func (w *Worksheet) NextAvailableRowPosition() (int, error) {
	n, err := w.raw.NumRows()
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// Transaction runs fn with synchronization suppressed and synchronizes once
// if fn succeeds. It does not roll back: cells written before a failure
// remain staged. Synchronization is re-enabled on every exit path.
func (w *Worksheet) Transaction(fn func() error) error {
	w.DisableSynchronization()
	defer w.EnableSynchronization()

	if err := fn(); err != nil {
		w.logger.Warn("transaction aborted, skipping synchronize", "error", err)
		return err
	}
	return w.Synchronize()
}

// DisableSynchronization defers flushing until EnableSynchronization.
func (w *Worksheet) DisableSynchronization() { w.synchronizing = false }

// EnableSynchronization restores flushing after each update.
func (w *Worksheet) EnableSynchronization() { w.synchronizing = true }

// Synchronizing reports whether updates flush immediately.
func (w *Worksheet) Synchronizing() bool { return w.synchronizing }

// Reload discards pending writes and the cached header.
func (w *Worksheet) Reload() error {
	w.columns = nil
	w.columnsLoaded = false
	return w.raw.Reload()
}

// ReadMatrix returns every populated cell, header row first.
func (w *Worksheet) ReadMatrix() ([][]string, error) {
	return w.raw.Rows()
}

// WriteMatrix writes a block starting at the top-left cell. It is the way to
// seed a header row on an empty sheet.
func (w *Worksheet) WriteMatrix(values [][]string) error {
	if err := w.raw.UpdateCells(1, 1, values); err != nil {
		return err
	}
	w.columnsLoaded = false
	if !w.synchronizing {
		return nil
	}
	return w.Synchronize()
}

// Clear blanks every populated cell, header included.
func (w *Worksheet) Clear() error {
	rows, err := w.raw.Rows()
	if err != nil {
		return err
	}
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	blank := make([][]string, len(rows))
	for i := range blank {
		blank[i] = make([]string, width)
	}
	return w.WriteMatrix(blank)
}

// Equal reports whether both worksheets wrap the same sheet with the same
// record type.
func (w *Worksheet) Equal(other *Worksheet) bool {
	if w == other {
		return true
	}
	if w == nil || other == nil {
		return false
	}
	return w.schema == other.schema && w.raw.ID() == other.raw.ID()
}
