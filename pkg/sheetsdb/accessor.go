package sheetsdb

import (
	"fmt"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// Get reads an attribute as T. A nil value yields the zero T.
func Get[T any](r *Row, name string) (T, error) {
	var zero T
	v, err := r.Get(name)
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T, not %T", types.ErrTypeMismatch, name, v, zero)
	}
	return t, nil
}

// Values reads a multi-valued attribute as []T. Nil pieces are skipped.
func Values[T any](r *Row, name string) ([]T, error) {
	v, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	items := toList(v)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		t, ok := item.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("%w: %s holds %T, not %T", types.ErrTypeMismatch, name, item, zero)
		}
		out = append(out, t)
	}
	return out, nil
}

// Field is a typed handle on one attribute, declared next to a schema:
//
//	var FirstName = sheetsdb.NewField[string]("first_name")
//	name, err := FirstName.Get(row)
type Field[T any] struct {
	Name string
}

// NewField returns a handle on the named attribute.
func NewField[T any](name string) Field[T] {
	return Field[T]{Name: name}
}

// Get reads the attribute from r.
func (f Field[T]) Get(r *Row) (T, error) {
	return Get[T](r, f.Name)
}

// Set stages v on r.
func (f Field[T]) Set(r *Row, v T) error {
	return r.Set(f.Name, v)
}
