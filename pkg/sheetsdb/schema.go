package sheetsdb

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// IDAttribute is the integer attribute every schema starts with. Finders
// and foreign-key scans match against it.
const IDAttribute = "id"

// AttributeDefinition describes how one attribute maps to a sheet column.
type AttributeDefinition struct {
	Name     string
	Type     types.ValueType
	Multiple bool

	// Transform runs on every decoded non-nil value.
	Transform func(any) any

	// ColumnName defaults to Name. Aliases are tried in order when no
	// column carries ColumnName.
	ColumnName string
	Aliases    []string

	// IfColumnMissing supplies the value when no candidate column exists.
	// Without it a missing column is ErrColumnNotFound.
	IfColumnMissing func() any

	// Strip trims surrounding whitespace before decoding. Defaults to true.
	Strip bool

	// Association is set for association attributes.
	Association *AssociationDefinition
}

// IsAssociation reports whether the definition is an association.
func (d *AttributeDefinition) IsAssociation() bool {
	return d.Association != nil
}

// ColumnCandidates returns the column name followed by the aliases.
func (d *AttributeDefinition) ColumnCandidates() []string {
	return append([]string{d.ColumnName}, d.Aliases...)
}

func (d *AttributeDefinition) clone() *AttributeDefinition {
	cp := *d
	cp.Aliases = slices.Clone(d.Aliases)
	if d.Association != nil {
		assoc := *d.Association
		cp.Association = &assoc
	}
	return &cp
}

// AssociationDefinition describes how a row reaches rows of another table
// in the same spreadsheet.
type AssociationDefinition struct {
	Kind types.AssociationKind
	Name string

	// FromCollection names the spreadsheet's worksheet association that
	// holds the remote rows.
	FromCollection string

	// Key is the local attribute holding remote ids (HasOne, HasMany).
	Key string

	// ForeignKey is the remote attribute holding the local id
	// (BelongsToOne, BelongsToMany).
	ForeignKey string
}

// AttributeOption customizes an attribute definition.
type AttributeOption func(*AttributeDefinition)

// WithType sets the value type. The default is Text.
func WithType(vt types.ValueType) AttributeOption {
	return func(d *AttributeDefinition) { d.Type = vt }
}

// Multiple marks the attribute as a comma-delimited list.
func Multiple() AttributeOption {
	return func(d *AttributeDefinition) { d.Multiple = true }
}

// WithTransform sets a function applied to decoded values.
func WithTransform(fn func(any) any) AttributeOption {
	return func(d *AttributeDefinition) { d.Transform = fn }
}

// WithColumnName reads the attribute from a column named differently.
func WithColumnName(name string) AttributeOption {
	return func(d *AttributeDefinition) { d.ColumnName = name }
}

// WithAliases adds fallback column names, tried in order.
func WithAliases(aliases ...string) AttributeOption {
	return func(d *AttributeDefinition) { d.Aliases = append(d.Aliases, aliases...) }
}

// IfColumnMissing sets the fallback used when no candidate column exists.
func IfColumnMissing(fn func() any) AttributeOption {
	return func(d *AttributeDefinition) { d.IfColumnMissing = fn }
}

// WithoutStrip keeps surrounding whitespace in cell values.
func WithoutStrip() AttributeOption {
	return func(d *AttributeDefinition) { d.Strip = false }
}

// Schema is the immutable set of attribute and association definitions for
// one record type. Build a Schema with Define or Extend.
type Schema struct {
	name   string
	parent *Schema
	order  []string
	defs   map[string]*AttributeDefinition
}

// Name returns the record type name.
func (s *Schema) Name() string {
	return s.name
}

// Parent returns the schema this one was extended from, or nil.
func (s *Schema) Parent() *Schema {
	return s.parent
}

// Attribute returns the definition registered under name.
func (s *Schema) Attribute(name string) (*AttributeDefinition, bool) {
	def, ok := s.defs[name]
	return def, ok
}

// AttributeNames returns every registered name, associations included, in
// declaration order.
func (s *Schema) AttributeNames() []string {
	return slices.Clone(s.order)
}

// ValueAttributes returns the non-association definitions in declaration
// order.
func (s *Schema) ValueAttributes() []*AttributeDefinition {
	var defs []*AttributeDefinition
	for _, name := range s.order {
		if d := s.defs[name]; !d.IsAssociation() {
			defs = append(defs, d)
		}
	}
	return defs
}

// Associations returns the association definitions in declaration order.
func (s *Schema) Associations() []*AssociationDefinition {
	var assocs []*AssociationDefinition
	for _, name := range s.order {
		if d := s.defs[name]; d.IsAssociation() {
			assocs = append(assocs, d.Association)
		}
	}
	return assocs
}

// Extend starts a builder for a subtype. The subtype receives a copy of
// every definition; nothing registered on it reaches this schema.
func (s *Schema) Extend(name string) *SchemaBuilder {
	b := &SchemaBuilder{schema: &Schema{
		name:   name,
		parent: s,
		order:  slices.Clone(s.order),
		defs:   make(map[string]*AttributeDefinition, len(s.defs)),
	}}
	for k, d := range s.defs {
		b.schema.defs[k] = d.clone()
	}
	return b
}

// SchemaBuilder accumulates definitions. Registration errors are kept and
// the first one is returned by Build.
type SchemaBuilder struct {
	schema *Schema
	err    error
	built  bool
}

// Define starts a builder for a new record type. The schema begins with the
// integer id attribute.
func Define(name string) *SchemaBuilder {
	b := &SchemaBuilder{schema: &Schema{
		name: name,
		defs: make(map[string]*AttributeDefinition),
	}}
	return b.Attribute(IDAttribute, WithType(types.ValueTypeInteger))
}

// Attribute registers a value attribute.
func (b *SchemaBuilder) Attribute(name string, opts ...AttributeOption) *SchemaBuilder {
	def := &AttributeDefinition{
		Name:       name,
		Type:       types.ValueTypeText,
		ColumnName: name,
		Strip:      true,
	}
	for _, opt := range opts {
		opt(def)
	}
	if def.ColumnName == "" {
		def.ColumnName = name
	}
	if !types.IsValidValueType(def.Type) {
		b.fail(fmt.Errorf("%w: %s.%s has type %q", types.ErrInvalidValue, b.schema.name, name, def.Type))
		return b
	}
	b.register(def)
	return b
}

// HasOne registers a keyed lookup: the key attribute holds one remote id.
func (b *SchemaBuilder) HasOne(name, fromCollection, key string) *SchemaBuilder {
	return b.association(types.AssociationHasOne, name, fromCollection, key, "")
}

// HasMany registers a keyed lookup: the key attribute holds remote ids.
func (b *SchemaBuilder) HasMany(name, fromCollection, key string) *SchemaBuilder {
	return b.association(types.AssociationHasMany, name, fromCollection, key, "")
}

// BelongsToOne registers a foreign-key scan resolving to at most one row.
func (b *SchemaBuilder) BelongsToOne(name, fromCollection, foreignKey string) *SchemaBuilder {
	return b.association(types.AssociationBelongsToOne, name, fromCollection, "", foreignKey)
}

// BelongsToMany registers a foreign-key scan resolving to a list of rows.
func (b *SchemaBuilder) BelongsToMany(name, fromCollection, foreignKey string) *SchemaBuilder {
	return b.association(types.AssociationBelongsToMany, name, fromCollection, "", foreignKey)
}

func (b *SchemaBuilder) association(kind types.AssociationKind, name, from, key, foreignKey string) *SchemaBuilder {
	if from == "" || (kind.KeyedLookup() && key == "") || (!kind.KeyedLookup() && foreignKey == "") {
		b.fail(fmt.Errorf("%w: %s.%s needs a collection and key", types.ErrInvalidName, b.schema.name, name))
		return b
	}
	b.register(&AttributeDefinition{
		Name:       name,
		Type:       types.ValueTypeOpaque,
		Multiple:   kind.Multiple(),
		ColumnName: name,
		Strip:      true,
		Association: &AssociationDefinition{
			Kind:           kind,
			Name:           name,
			FromCollection: from,
			Key:            key,
			ForeignKey:     foreignKey,
		},
	})
	return b
}

func (b *SchemaBuilder) register(def *AttributeDefinition) {
	if b.built {
		b.fail(fmt.Errorf("%w: schema %s is already built", types.ErrAttributeAlreadyRegistered, b.schema.name))
		return
	}
	if def.Name == "" {
		b.fail(fmt.Errorf("%w: empty attribute name on %s", types.ErrInvalidName, b.schema.name))
		return
	}
	if _, exists := b.schema.defs[def.Name]; exists {
		b.fail(fmt.Errorf("%w: %s.%s", types.ErrAttributeAlreadyRegistered, b.schema.name, def.Name))
		return
	}
	b.schema.defs[def.Name] = def
	b.schema.order = append(b.schema.order, def.Name)
}

func (b *SchemaBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build validates the definitions and returns the schema. Keyed lookups
// must name a declared value attribute as their key.
func (b *SchemaBuilder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return b.schema, nil
	}
	for _, name := range b.schema.order {
		def := b.schema.defs[name]
		if !def.IsAssociation() || !def.Association.Kind.KeyedLookup() {
			continue
		}
		key, ok := b.schema.defs[def.Association.Key]
		if !ok || key.IsAssociation() {
			return nil, fmt.Errorf("%w: %s.%s key %q", types.ErrUnknownAttribute, b.schema.name, name, def.Association.Key)
		}
	}
	b.built = true
	return b.schema, nil
}

// MustBuild is like Build but panics on error. Use it for package-level
// schema declarations.
func (b *SchemaBuilder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
