package sheetsdb

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// attributeState caches one attribute. original is the decoded persisted
// value; changed is the staged value awaiting Save. Either slot may be unset.
type attributeState struct {
	original       any
	originalLoaded bool
	changed        any
	changedSet     bool
}

// Row is a materialized record bound to one physical row of a Worksheet.
// Attributes load lazily on first read; writes are staged until Save.
//
// A Row is not safe for concurrent use.
type Row struct {
	worksheet *Worksheet
	position  int // 0 until the row is first saved

	attributes          map[string]*attributeState
	associations        map[string]any
	changedForeignItems []*Row
}

func newRow(w *Worksheet, position int) *Row {
	return &Row{
		worksheet:    w,
		position:     position,
		attributes:   make(map[string]*attributeState),
		associations: make(map[string]any),
	}
}

// Worksheet returns the table the row belongs to.
func (r *Row) Worksheet() *Worksheet {
	return r.worksheet
}

// Schema returns the row's record type.
func (r *Row) Schema() *Schema {
	return r.worksheet.schema
}

// Position returns the 1-based physical row, or 0 for an unsaved row.
func (r *Row) Position() int {
	return r.position
}

// IsNew reports whether the row has never been saved.
func (r *Row) IsNew() bool {
	return r.position == 0
}

// Spreadsheet returns the resolver the row uses for associations, or nil.
func (r *Row) Spreadsheet() AssociationResolver {
	return r.worksheet.resolver
}

// ID returns the row's id attribute.
func (r *Row) ID() (any, error) {
	return r.Get(IDAttribute)
}

// Get returns the named attribute or association. A staged value wins over
// the persisted one; persisted values are fetched once and cached.
func (r *Row) Get(name string) (any, error) {
	def, err := r.definition(name)
	if err != nil {
		return nil, err
	}
	if def.IsAssociation() {
		return r.Association(name)
	}
	return r.attribute(def)
}

// Set stages a value for the named attribute, or assigns an association.
// Nothing reaches the sheet until Save.
func (r *Row) Set(name string, value any) error {
	def, err := r.definition(name)
	if err != nil {
		return err
	}
	if def.IsAssociation() {
		return r.SetAssociation(name, value)
	}
	r.stage(name, value)
	return nil
}

func (r *Row) definition(name string) (*AttributeDefinition, error) {
	def, ok := r.worksheet.schema.Attribute(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", types.ErrUnknownAttribute, r.worksheet.schema.Name(), name)
	}
	return def, nil
}

func (r *Row) state(name string) *attributeState {
	st, ok := r.attributes[name]
	if !ok {
		st = &attributeState{}
		r.attributes[name] = st
	}
	return st
}

func (r *Row) attribute(def *AttributeDefinition) (any, error) {
	st := r.state(def.Name)
	if st.changedSet {
		return st.changed, nil
	}
	if st.originalLoaded {
		return st.original, nil
	}
	if r.position == 0 {
		return types.EmptyValue(def.Multiple), nil
	}
	v, err := r.worksheet.AttributeAtRowPosition(def.Name, r.position)
	if err != nil {
		return nil, err
	}
	st.original = v
	st.originalLoaded = true
	return v, nil
}

func (r *Row) stage(name string, value any) {
	st := r.state(name)
	st.changed = value
	st.changedSet = true
}

// StageAttributes stages every value in attrs.
func (r *Row) StageAttributes(attrs map[string]any) error {
	for _, name := range r.orderedNames(attrs) {
		if err := r.Set(name, attrs[name]); err != nil {
			return err
		}
	}
	return nil
}

// UpdateAttributes stages attrs and saves the row.
func (r *Row) UpdateAttributes(attrs map[string]any) error {
	if err := r.StageAttributes(attrs); err != nil {
		return err
	}
	return r.Save()
}

// StagedAttributes returns every value attribute that has been set since the
// last Save or Reload. A staged nil clears its cell on Save.
func (r *Row) StagedAttributes() map[string]any {
	staged := make(map[string]any)
	for name, st := range r.attributes {
		if st.changedSet {
			staged[name] = st.changed
		}
	}
	return staged
}

// Save writes staged attributes in one batch, assigning a position first
// when the row is new. Rows whose foreign keys changed through a
// belongs-to assignment are saved next. All caches are then cleared.
func (r *Row) Save() error {
	if r.position == 0 {
		if !r.hasContent() {
			return fmt.Errorf("%w: new %s row has no values to write", types.ErrEmptyRow, r.worksheet.schema.Name())
		}
		pos, err := r.worksheet.NextAvailableRowPosition()
		if err != nil {
			return err
		}
		r.position = pos
	}

	if staged := r.StagedAttributes(); len(staged) > 0 {
		if err := r.worksheet.UpdateAttributesAtRowPosition(staged, r.position); err != nil {
			return fmt.Errorf("save %s row %d: %w", r.worksheet.schema.Name(), r.position, err)
		}
	}

	for len(r.changedForeignItems) > 0 {
		item := r.changedForeignItems[0]
		r.changedForeignItems = r.changedForeignItems[1:]
		if err := item.Save(); err != nil {
			return err
		}
	}

	r.ResetCaches()
	return nil
}

// hasContent reports whether some staged attribute writes a non-blank cell.
func (r *Row) hasContent() bool {
	for name, value := range r.StagedAttributes() {
		def, ok := r.worksheet.schema.Attribute(name)
		if ok && Encode(value, def) != "" {
			return true
		}
	}
	return false
}

// Reload discards cached and staged state and reloads the worksheet.
func (r *Row) Reload() error {
	if err := r.worksheet.Reload(); err != nil {
		return err
	}
	r.ResetCaches()
	r.changedForeignItems = nil
	return nil
}

// ResetCaches empties the attribute and association caches. Staged values
// are dropped too.
func (r *Row) ResetCaches() {
	r.attributes = make(map[string]*attributeState)
	r.associations = make(map[string]any)
}

// Attributes returns every value attribute keyed by name.
func (r *Row) Attributes() (map[string]any, error) {
	out := make(map[string]any)
	for _, def := range r.worksheet.schema.ValueAttributes() {
		v, err := r.attribute(def)
		if err != nil {
			return nil, err
		}
		out[def.Name] = v
	}
	return out, nil
}

// Associations resolves every association keyed by name.
func (r *Row) Associations() (map[string]any, error) {
	out := make(map[string]any)
	for _, assoc := range r.worksheet.schema.Associations() {
		v, err := r.Association(assoc.Name)
		if err != nil {
			return nil, err
		}
		out[assoc.Name] = v
	}
	return out, nil
}

// ToMap returns the attributes as a map. With depth > 0 associations are
// included, each expanded to depth-1.
func (r *Row) ToMap(depth int) (map[string]any, error) {
	out, err := r.Attributes()
	if err != nil {
		return nil, err
	}
	if depth <= 0 {
		return out, nil
	}
	for _, assoc := range r.worksheet.schema.Associations() {
		v, err := r.Association(assoc.Name)
		if err != nil {
			return nil, err
		}
		switch x := v.(type) {
		case *Row:
			m, err := x.ToMap(depth - 1)
			if err != nil {
				return nil, err
			}
			out[assoc.Name] = m
		case []*Row:
			list := make([]map[string]any, 0, len(x))
			for _, item := range x {
				m, err := item.ToMap(depth - 1)
				if err != nil {
					return nil, err
				}
				list = append(list, m)
			}
			out[assoc.Name] = list
		default:
			out[assoc.Name] = nil
		}
	}
	return out, nil
}

// AddElementToAttribute appends element to a multi-valued attribute or sets
// a single-valued one. It is a no-op when element is already present.
func (r *Row) AddElementToAttribute(name string, element any) error {
	def, err := r.definition(name)
	if err != nil {
		return err
	}
	current, err := r.Get(name)
	if err != nil {
		return err
	}
	if def.Multiple {
		list := toList(current)
		if containsValue(list, element) {
			return nil
		}
		r.stage(name, append(slices.Clone(list), element))
		return nil
	}
	if sameValue(current, element) {
		return nil
	}
	r.stage(name, element)
	return nil
}

// RemoveElementFromAttribute filters element out of a multi-valued attribute
// or clears a single-valued one holding it. It is a no-op when element is
// absent.
func (r *Row) RemoveElementFromAttribute(name string, element any) error {
	def, err := r.definition(name)
	if err != nil {
		return err
	}
	current, err := r.Get(name)
	if err != nil {
		return err
	}
	if def.Multiple {
		list := toList(current)
		if !containsValue(list, element) {
			return nil
		}
		kept := make([]any, 0, len(list))
		for _, item := range list {
			if !sameValue(item, element) {
				kept = append(kept, item)
			}
		}
		r.stage(name, kept)
		return nil
	}
	if !sameValue(current, element) {
		return nil
	}
	r.stage(name, nil)
	return nil
}

// ChangedForeignItems returns rows mutated by association writes that will
// be saved with this row.
func (r *Row) ChangedForeignItems() []*Row {
	return slices.Clone(r.changedForeignItems)
}

// Equal reports whether both rows address the same physical row of the same
// record type. Unsaved rows are only equal to themselves.
func (r *Row) Equal(other *Row) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil || r.position == 0 || other.position == 0 {
		return false
	}
	return r.position == other.position && r.worksheet.Equal(other.worksheet)
}

// String identifies the row for logs.
func (r *Row) String() string {
	if r.position == 0 {
		return fmt.Sprintf("%s(new)", r.worksheet.schema.Name())
	}
	return fmt.Sprintf("%s@%d", r.worksheet.schema.Name(), r.position)
}

// orderedNames returns the keys of attrs in schema order, unknown names last
// so Set reports them.
func (r *Row) orderedNames(attrs map[string]any) []string {
	names := make([]string, 0, len(attrs))
	for _, name := range r.worksheet.schema.order {
		if _, ok := attrs[name]; ok {
			names = append(names, name)
		}
	}
	var unknown []string
	for name := range attrs {
		if _, ok := r.worksheet.schema.defs[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)
	return append(names, unknown...)
}
