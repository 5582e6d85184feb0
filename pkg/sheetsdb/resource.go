package sheetsdb

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// ResourceType is implemented by *SpreadsheetType and *CollectionType.
type ResourceType interface {
	// TypeName is the declared name of the type.
	TypeName() string

	// Kind is types.KindSpreadsheet or types.KindCollection.
	Kind() string

	parentAssociation() *parentAssociation
}

// parentAssociation records a type's single BelongsToMany declaration.
type parentAssociation struct {
	name string
	typ  *CollectionType
}

func registerParents(current **parentAssociation, typeName, name string, parent *CollectionType) error {
	if parent == nil {
		return fmt.Errorf("%w: parents of %s must be a collection type", types.ErrInvalidResourceType, typeName)
	}
	if *current != nil {
		return fmt.Errorf("%w: %s already belongs to %s", types.ErrAssociationKindAlreadyRegistered, typeName, (*current).name)
	}
	*current = &parentAssociation{name: name, typ: parent}
	return nil
}

// Resource holds what every stored file exposes.
type Resource struct {
	file    types.File
	session *Session
	parents *parentAssociation
}

func (r *Resource) logger() *slog.Logger {
	if r.session == nil {
		return slog.Default()
	}
	return r.session.logger
}

// Raw returns the backend file.
func (r *Resource) Raw() types.File { return r.file }

// Session returns the session the resource was found through.
func (r *Resource) Session() *Session { return r.session }

func (r *Resource) ID() string           { return r.file.ID() }
func (r *Resource) Name() string         { return r.file.Name() }
func (r *Resource) HumanURL() string     { return r.file.HumanURL() }
func (r *Resource) CreatedAt() time.Time { return r.file.CreatedTime() }
func (r *Resource) UpdatedAt() time.Time { return r.file.ModifiedTime() }

// BaseAttributes returns the identifying metadata of the resource.
func (r *Resource) BaseAttributes() map[string]any {
	return map[string]any{
		"id":         r.ID(),
		"name":       r.Name(),
		"url":        r.HumanURL(),
		"created_at": r.CreatedAt(),
		"updated_at": r.UpdatedAt(),
	}
}

// Reload re-reads name and timestamps.
func (r *Resource) Reload() error {
	return r.file.ReloadMetadata()
}

// Delete removes the file from its drive.
func (r *Resource) Delete() error {
	return r.file.Delete()
}

// Equal reports whether both resources wrap the same file.
func (r *Resource) Equal(other *Resource) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.file.Kind() == other.file.Kind() && r.file.ID() == other.file.ID()
}

// Parents returns the containing collections, typed by the type's
// BelongsToMany declaration.
func (r *Resource) Parents() ([]*Collection, error) {
	if r.parents == nil {
		return nil, fmt.Errorf("%w: no parents declared", types.ErrNotAnAssociation)
	}
	raws, err := r.file.Parents()
	if err != nil {
		return nil, err
	}
	out := make([]*Collection, 0, len(raws))
	for _, raw := range raws {
		out = append(out, newCollection(raw, r.parents.typ, r.session))
	}
	return out, nil
}

// ParentsName returns the declared name of the parents association, or ""
// when none is declared.
func (r *Resource) ParentsName() string {
	if r.parents == nil {
		return ""
	}
	return r.parents.name
}
