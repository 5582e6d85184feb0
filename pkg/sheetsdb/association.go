package sheetsdb

import (
	"fmt"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// AssociationResolver finds rows in sibling tables. A Spreadsheet is the
// usual implementation; name is the spreadsheet's worksheet association.
//
// Lookup misses are not errors: they return nil or an empty slice.
type AssociationResolver interface {
	// FindAssociationsByIDs returns rows whose id is in ids, in the order
	// the ids were given.
	FindAssociationsByIDs(name string, ids []any) ([]*Row, error)

	// FindAssociationsByAttribute returns rows whose attribute equals value
	// or, for multi-valued attributes, contains it.
	FindAssociationsByAttribute(name, attribute string, value any) ([]*Row, error)
}

// Association resolves and memoizes the named association. HasOne and
// BelongsToOne yield *Row (nil when nothing matches); HasMany and
// BelongsToMany yield []*Row.
func (r *Row) Association(name string) (any, error) {
	def, err := r.associationDefinition(name)
	if err != nil {
		return nil, err
	}
	if v, ok := r.associations[name]; ok {
		return v, nil
	}

	rows, err := r.resolve(def)
	if err != nil {
		return nil, err
	}

	var v any
	if def.Kind.Multiple() {
		v = rows
	} else if len(rows) > 0 {
		v = rows[0]
	}
	r.associations[name] = v
	return v, nil
}

// One resolves a single-row association.
func (r *Row) One(name string) (*Row, error) {
	v, err := r.Association(name)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	row, ok := v.(*Row)
	if !ok {
		return nil, fmt.Errorf("%w: %s resolves to a list", types.ErrTypeMismatch, name)
	}
	return row, nil
}

// Many resolves a list association.
func (r *Row) Many(name string) ([]*Row, error) {
	v, err := r.Association(name)
	if err != nil {
		return nil, err
	}
	rows, ok := v.([]*Row)
	if !ok {
		return nil, fmt.Errorf("%w: %s resolves to a single row", types.ErrTypeMismatch, name)
	}
	return rows, nil
}

// SetAssociation assigns *Row or []*Row to the named association.
func (r *Row) SetAssociation(name string, value any) error {
	def, err := r.associationDefinition(name)
	if err != nil {
		return err
	}
	if def.Kind.Multiple() {
		var rows []*Row
		switch x := value.(type) {
		case nil:
		case []*Row:
			rows = x
		default:
			return fmt.Errorf("%w: %s takes []*Row, got %T", types.ErrTypeMismatch, name, value)
		}
		return r.SetMany(name, rows)
	}
	switch x := value.(type) {
	case nil:
		return r.SetOne(name, nil)
	case *Row:
		return r.SetOne(name, x)
	default:
		return fmt.Errorf("%w: %s takes *Row, got %T", types.ErrTypeMismatch, name, value)
	}
}

// SetOne assigns a HasOne or BelongsToOne association. A nil target clears
// it.
func (r *Row) SetOne(name string, target *Row) error {
	def, err := r.associationDefinition(name)
	if err != nil {
		return err
	}
	if def.Kind.Multiple() {
		return fmt.Errorf("%w: %s is a list association", types.ErrTypeMismatch, name)
	}

	if def.Kind.KeyedLookup() {
		var id any
		if target != nil {
			if id, err = target.ID(); err != nil {
				return err
			}
		}
		r.stage(def.Key, id)
		r.memoize(name, target)
		return nil
	}

	existing, err := r.One(name)
	if err != nil {
		return err
	}
	var before, after []*Row
	if existing != nil {
		before = []*Row{existing}
	}
	if target != nil {
		after = []*Row{target}
	}
	if err := r.reconcile(def, before, after); err != nil {
		return err
	}
	r.memoize(name, target)
	return nil
}

// SetMany assigns a HasMany or BelongsToMany association.
func (r *Row) SetMany(name string, targets []*Row) error {
	def, err := r.associationDefinition(name)
	if err != nil {
		return err
	}
	if !def.Kind.Multiple() {
		return fmt.Errorf("%w: %s is a single-row association", types.ErrTypeMismatch, name)
	}
	if targets == nil {
		targets = []*Row{}
	}

	if def.Kind.KeyedLookup() {
		ids := make([]any, 0, len(targets))
		for _, t := range targets {
			id, err := t.ID()
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		r.stage(def.Key, ids)
		r.associations[name] = targets
		return nil
	}

	existing, err := r.Many(name)
	if err != nil {
		return err
	}
	if err := r.reconcile(def, existing, targets); err != nil {
		return err
	}
	r.associations[name] = targets
	return nil
}

// reconcile moves the local id into the foreign key of rows that join the
// association and out of rows that leave it. Rows in both sets are not
// touched. Every mutated row is queued for saving with this row.
func (r *Row) reconcile(def *AssociationDefinition, existing, desired []*Row) error {
	localID, err := r.ID()
	if err != nil {
		return err
	}
	if localID == nil {
		return fmt.Errorf("%w: %s has no id to associate", types.ErrInvalidValue, r)
	}

	for _, d := range desired {
		if containsRow(existing, d) {
			continue
		}
		if err := d.AddElementToAttribute(def.ForeignKey, localID); err != nil {
			return err
		}
		r.trackForeignItem(d)
	}
	for _, e := range existing {
		if containsRow(desired, e) {
			continue
		}
		if err := e.RemoveElementFromAttribute(def.ForeignKey, localID); err != nil {
			return err
		}
		r.trackForeignItem(e)
	}
	return nil
}

func (r *Row) resolve(def *AssociationDefinition) ([]*Row, error) {
	resolver := r.worksheet.resolver
	if resolver == nil {
		return nil, fmt.Errorf("%w: %s.%s", types.ErrNoResolver, r.worksheet.schema.Name(), def.Name)
	}

	if def.Kind.KeyedLookup() {
		key, err := r.Get(def.Key)
		if err != nil {
			return nil, err
		}
		ids := nonNil(toList(key))
		if len(ids) == 0 {
			return []*Row{}, nil
		}
		return resolver.FindAssociationsByIDs(def.FromCollection, ids)
	}

	if r.position == 0 {
		return []*Row{}, nil
	}
	id, err := r.ID()
	if err != nil {
		return nil, err
	}
	if id == nil {
		return []*Row{}, nil
	}
	return resolver.FindAssociationsByAttribute(def.FromCollection, def.ForeignKey, id)
}

func (r *Row) associationDefinition(name string) (*AssociationDefinition, error) {
	def, err := r.definition(name)
	if err != nil {
		return nil, err
	}
	if !def.IsAssociation() {
		return nil, fmt.Errorf("%w: %s.%s", types.ErrNotAnAssociation, r.worksheet.schema.Name(), name)
	}
	return def.Association, nil
}

func (r *Row) memoize(name string, target *Row) {
	if target == nil {
		r.associations[name] = nil
		return
	}
	r.associations[name] = target
}

// trackForeignItem queues item for saving. A later instance of an already
// queued physical row replaces the earlier one.
func (r *Row) trackForeignItem(item *Row) {
	for i, existing := range r.changedForeignItems {
		if existing.Equal(item) {
			r.changedForeignItems[i] = item
			return
		}
	}
	r.changedForeignItems = append(r.changedForeignItems, item)
}

func containsRow(rows []*Row, row *Row) bool {
	for _, candidate := range rows {
		if candidate.Equal(row) {
			return true
		}
	}
	return false
}

func nonNil(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}
