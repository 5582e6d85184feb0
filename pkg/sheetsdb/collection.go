package sheetsdb

import (
	"fmt"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// Retrieval strategies a collection association can use. A collection type
// may declare at most one association per strategy.
const (
	retrieveSubcollections = "subcollections"
	retrieveSpreadsheets   = "spreadsheets"
)

type collectsAssociation struct {
	name     string
	strategy string
	child    ResourceType
}

// CollectionType declares which children a kind of collection holds.
type CollectionType struct {
	name       string
	byName     map[string]collectsAssociation
	byStrategy map[string]string
	parents    *parentAssociation
}

// DefineCollection starts a collection type.
func DefineCollection(name string) *CollectionType {
	return &CollectionType{
		name:       name,
		byName:     make(map[string]collectsAssociation),
		byStrategy: make(map[string]string),
	}
}

func (t *CollectionType) TypeName() string                     { return t.name }
func (t *CollectionType) Kind() string                         { return types.KindCollection }
func (t *CollectionType) parentAssociation() *parentAssociation { return t.parents }

// Collects declares that children of the given type are reached through
// name. Subcollections and spreadsheets may each be declared once.
func (t *CollectionType) Collects(name string, child ResourceType) error {
	var strategy string
	switch c := child.(type) {
	case *CollectionType:
		if c != nil {
			strategy = retrieveSubcollections
		}
	case *SpreadsheetType:
		if c != nil {
			strategy = retrieveSpreadsheets
		}
	}
	if strategy == "" {
		return fmt.Errorf("%w: %s.%s must collect a collection or spreadsheet type", types.ErrInvalidResourceType, t.name, name)
	}
	if existing, ok := t.byStrategy[strategy]; ok {
		return fmt.Errorf("%w: %s already collects %s as %s", types.ErrAssociationKindAlreadyRegistered, t.name, strategy, existing)
	}
	if _, ok := t.byName[name]; ok {
		return fmt.Errorf("%w: %s.%s", types.ErrAttributeAlreadyRegistered, t.name, name)
	}
	t.byName[name] = collectsAssociation{name: name, strategy: strategy, child: child}
	t.byStrategy[strategy] = name
	return nil
}

// BelongsToMany declares the collection type that contains collections of
// this type. It may be declared once.
func (t *CollectionType) BelongsToMany(name string, parent *CollectionType) error {
	return registerParents(&t.parents, t.name, name, parent)
}

// Collection is a typed view over a raw collection.
type Collection struct {
	Resource
	typ *CollectionType
	raw types.RawCollection
}

func newCollection(raw types.RawCollection, t *CollectionType, s *Session) *Collection {
	if t == nil {
		t = DefineCollection(raw.Name())
	}
	return &Collection{
		Resource: Resource{file: raw, session: s, parents: t.parents},
		typ:      t,
		raw:      raw,
	}
}

// Type returns the collection's declared type.
func (c *Collection) Type() *CollectionType { return c.typ }

func (c *Collection) association(name, strategy string) (collectsAssociation, error) {
	assoc, ok := c.typ.byName[name]
	if !ok || assoc.strategy != strategy {
		return collectsAssociation{}, fmt.Errorf("%w: %s has no %s association %q", types.ErrUnknownAttribute, c.typ.name, strategy, name)
	}
	return assoc, nil
}

// Collections returns the subcollections reached through name.
func (c *Collection) Collections(name string) ([]*Collection, error) {
	assoc, err := c.association(name, retrieveSubcollections)
	if err != nil {
		return nil, err
	}
	raws, err := c.raw.Subcollections()
	if err != nil {
		return nil, err
	}
	out := make([]*Collection, 0, len(raws))
	for _, raw := range raws {
		out = append(out, newCollection(raw, assoc.child.(*CollectionType), c.session))
	}
	return out, nil
}

// Spreadsheets returns the spreadsheets reached through name.
func (c *Collection) Spreadsheets(name string) ([]*Spreadsheet, error) {
	assoc, err := c.association(name, retrieveSpreadsheets)
	if err != nil {
		return nil, err
	}
	raws, err := c.raw.Spreadsheets()
	if err != nil {
		return nil, err
	}
	out := make([]*Spreadsheet, 0, len(raws))
	for _, raw := range raws {
		out = append(out, newSpreadsheet(raw, assoc.child.(*SpreadsheetType), c.session))
	}
	return out, nil
}

// FindSpreadsheet returns the child spreadsheet titled title, typed by the
// association name. With create set a missing spreadsheet is created;
// otherwise ErrChildResourceNotFound.
func (c *Collection) FindSpreadsheet(name, title string, create bool) (*Spreadsheet, error) {
	assoc, err := c.association(name, retrieveSpreadsheets)
	if err != nil {
		return nil, err
	}
	raw, err := c.raw.SpreadsheetByTitle(title)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		if !create {
			return nil, fmt.Errorf("%w: spreadsheet %q in %s", types.ErrChildResourceNotFound, title, c.Name())
		}
		if raw, err = c.raw.CreateSpreadsheet(title); err != nil {
			return nil, err
		}
		c.logger().Debug("created spreadsheet", "title", title, "collection", c.Name())
	}
	return newSpreadsheet(raw, assoc.child.(*SpreadsheetType), c.session), nil
}

// FindCollection returns the subcollection titled title, typed by the
// association name. With create set a missing subcollection is created;
// otherwise ErrChildResourceNotFound.
func (c *Collection) FindCollection(name, title string, create bool) (*Collection, error) {
	assoc, err := c.association(name, retrieveSubcollections)
	if err != nil {
		return nil, err
	}
	raw, err := c.raw.SubcollectionByTitle(title)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		if !create {
			return nil, fmt.Errorf("%w: collection %q in %s", types.ErrChildResourceNotFound, title, c.Name())
		}
		if raw, err = c.raw.CreateSubcollection(title); err != nil {
			return nil, err
		}
		c.logger().Debug("created collection", "title", title, "collection", c.Name())
	}
	return newCollection(raw, assoc.child.(*CollectionType), c.session), nil
}
