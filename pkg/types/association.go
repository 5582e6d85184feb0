package types

// AssociationKind names how a row association is resolved.
type AssociationKind string

// Row association kinds.
const (
	// HasOne and HasMany read remote ids from a local key attribute.
	AssociationHasOne  AssociationKind = "has_one"
	AssociationHasMany AssociationKind = "has_many"

	// BelongsToOne and BelongsToMany scan the remote table for rows whose
	// foreign key holds the local id.
	AssociationBelongsToOne  AssociationKind = "belongs_to_one"
	AssociationBelongsToMany AssociationKind = "belongs_to_many"
)

// Multiple reports whether the association resolves to a list.
func (k AssociationKind) Multiple() bool {
	return k == AssociationHasMany || k == AssociationBelongsToMany
}

// KeyedLookup reports whether the local row holds the remote ids.
func (k AssociationKind) KeyedLookup() bool {
	return k == AssociationHasOne || k == AssociationHasMany
}
