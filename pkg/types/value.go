package types

// ValueType determines how a raw cell string converts to a typed value.
type ValueType string

// Attribute value types.
const (
	ValueTypeText     ValueType = "text"
	ValueTypeInteger  ValueType = "integer"
	ValueTypeDecimal  ValueType = "decimal"
	ValueTypeDateTime ValueType = "datetime"
	ValueTypeBoolean  ValueType = "boolean"
	ValueTypeOpaque   ValueType = "opaque"
)

// validValueTypes is the set of recognized value types.
var validValueTypes = map[ValueType]bool{
	ValueTypeText:     true,
	ValueTypeInteger:  true,
	ValueTypeDecimal:  true,
	ValueTypeDateTime: true,
	ValueTypeBoolean:  true,
	ValueTypeOpaque:   true,
}

// IsValidValueType reports whether vt is a recognized value type.
func IsValidValueType(vt ValueType) bool {
	return validValueTypes[vt]
}

// ParseValueType maps a name such as "integer" to its ValueType.
// Returns ErrInvalidValue for unknown names.
func ParseValueType(name string) (ValueType, error) {
	vt := ValueType(name)
	if !validValueTypes[vt] {
		return "", ErrInvalidValue
	}
	return vt, nil
}

// EmptyValue returns what an empty cell decodes to: nil for single-valued
// attributes and an empty list for multi-valued ones.
func EmptyValue(multiple bool) any {
	if multiple {
		return []any{}
	}
	return nil
}

// String implements fmt.Stringer.
func (vt ValueType) String() string {
	return string(vt)
}
