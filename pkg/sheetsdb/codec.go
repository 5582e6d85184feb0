package sheetsdb

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

// Cell encodings shared with every spreadsheet written by this package.
const (
	// DateTimeLayout is how DateTime values are written.
	DateTimeLayout = "01/02/2006 15:04:05"

	// dateTimeParseLayout accepts one- or two-digit months and days.
	dateTimeParseLayout = "1/2/2006 15:04:05"

	// MultiValueSeparator joins the pieces of a multi-valued cell on write.
	MultiValueSeparator = ","
)

// multiValueSplit tolerates whitespace after each comma on read.
var multiValueSplit = regexp.MustCompile(`,\s*`)

var (
	truthy = map[string]bool{"y": true, "yes": true, "true": true, "1": true}
	falsy  = map[string]bool{"n": true, "no": true, "false": true, "0": true}
)

// Decode converts a raw cell string to the attribute's typed value.
//
// Empty input decodes to nil for single-valued attributes and to an empty
// []any for multi-valued ones. Multi-valued cells are split on a comma
// followed by optional whitespace and each piece is decoded on its own. The
// attribute's transform, if any, runs last on the non-nil result.
func Decode(raw string, def *AttributeDefinition) (any, error) {
	if def.Multiple {
		trimmed := raw
		if def.Strip {
			trimmed = strings.TrimSpace(raw)
		}
		if trimmed == "" {
			return applyTransform(def, types.EmptyValue(true)), nil
		}
		pieces := SplitMultiValue(trimmed)
		values := make([]any, 0, len(pieces))
		for _, piece := range pieces {
			v, err := decodeScalar(piece, def.Type, def.Strip)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", def.Name, err)
			}
			values = append(values, v)
		}
		return applyTransform(def, values), nil
	}

	v, err := decodeScalar(raw, def.Type, def.Strip)
	if err != nil {
		return nil, fmt.Errorf("attribute %s: %w", def.Name, err)
	}
	return applyTransform(def, v), nil
}

func applyTransform(def *AttributeDefinition, v any) any {
	if def.Transform == nil || v == nil {
		return v
	}
	return def.Transform(v)
}

// decodeScalar converts one cell piece. Integer parsing is strict: "12abc"
// is an error, not 12.
func decodeScalar(raw string, vt types.ValueType, strip bool) (any, error) {
	if strip {
		raw = strings.TrimSpace(raw)
	}
	if raw == "" {
		return nil, nil
	}

	switch vt {
	case types.ValueTypeInteger:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", types.ErrInvalidValue, raw)
		}
		return n, nil
	case types.ValueTypeDecimal:
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a decimal", types.ErrInvalidValue, raw)
		}
		return d, nil
	case types.ValueTypeDateTime:
		t, err := time.ParseInLocation(dateTimeParseLayout, strings.TrimSpace(raw), time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a date-time", types.ErrInvalidValue, raw)
		}
		return t, nil
	case types.ValueTypeBoolean:
		token := strings.ToLower(strings.TrimSpace(raw))
		if truthy[token] {
			return true, nil
		}
		if falsy[token] {
			return false, nil
		}
		return nil, nil
	default:
		return raw, nil
	}
}

// Encode converts a typed value to the string stored in its cell. Lists are
// joined with a bare comma and nil encodes as an empty cell.
func Encode(value any, def *AttributeDefinition) string {
	if value == nil {
		return ""
	}
	if def != nil && def.Multiple {
		items := toList(value)
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = encodeScalar(item)
		}
		return JoinMultiValue(parts)
	}
	return encodeScalar(value)
}

func encodeScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.UTC().Format(DateTimeLayout)
	case *Row:
		id, err := x.ID()
		if err != nil {
			return ""
		}
		return encodeScalar(id)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// SplitMultiValue splits a multi-valued cell into its pieces.
func SplitMultiValue(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return multiValueSplit.Split(raw, -1)
}

// JoinMultiValue joins pieces with a bare comma.
func JoinMultiValue(parts []string) string {
	return strings.Join(parts, MultiValueSeparator)
}

// toList flattens any slice value into []any. Non-slices become a one
// element list and nil becomes an empty list.
func toList(v any) []any {
	switch x := v.(type) {
	case nil:
		return []any{}
	case []any:
		return x
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []*Row:
		out := make([]any, len(x))
		for i, r := range x {
			out[i] = r
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range rv.Len() {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// sameValue compares two scalars by their cell encoding so that an int id
// matches the same id read back as text.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return encodeScalar(a) == encodeScalar(b)
}

// containsValue reports whether list holds an element equal to v.
func containsValue(list []any, v any) bool {
	for _, item := range list {
		if sameValue(item, v) {
			return true
		}
	}
	return false
}
