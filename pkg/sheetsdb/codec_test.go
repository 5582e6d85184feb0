package sheetsdb

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

func def(vt types.ValueType, opts ...AttributeOption) *AttributeDefinition {
	d := &AttributeDefinition{Name: "attr", Type: vt, ColumnName: "attr", Strip: true}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func TestDecodeScalars(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		def  *AttributeDefinition
		want any
	}{
		{"text passes through", "hello", def(types.ValueTypeText), "hello"},
		{"text is stripped", "  hello ", def(types.ValueTypeText), "hello"},
		{"strip disabled keeps whitespace", "  hello ", def(types.ValueTypeText, WithoutStrip()), "  hello "},
		{"integer", "42", def(types.ValueTypeInteger), 42},
		{"negative integer", "-7", def(types.ValueTypeInteger), -7},
		{"date time", "4/15/2016 10:15:30", def(types.ValueTypeDateTime), time.Date(2016, 4, 15, 10, 15, 30, 0, time.UTC)},
		{"padded date time", "04/05/2016 09:05:00", def(types.ValueTypeDateTime), time.Date(2016, 4, 5, 9, 5, 0, 0, time.UTC)},
		{"boolean y", "y", def(types.ValueTypeBoolean), true},
		{"boolean YES", "YES", def(types.ValueTypeBoolean), true},
		{"boolean True", "True", def(types.ValueTypeBoolean), true},
		{"boolean 1", "1", def(types.ValueTypeBoolean), true},
		{"boolean n", "n", def(types.ValueTypeBoolean), false},
		{"boolean No", "No", def(types.ValueTypeBoolean), false},
		{"boolean false", "false", def(types.ValueTypeBoolean), false},
		{"boolean 0", "0", def(types.ValueTypeBoolean), false},
		{"boolean unknown token", "maybe", def(types.ValueTypeBoolean), nil},
		{"opaque passes through", "{x}", def(types.ValueTypeOpaque), "{x}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw, tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeDecimal(t *testing.T) {
	got, err := Decode("12.50", def(types.ValueTypeDecimal))
	require.NoError(t, err)
	d, ok := got.(decimal.Decimal)
	require.True(t, ok, "got %T", got)
	assert.True(t, d.Equal(decimal.RequireFromString("12.5")))
}

func TestDecodeEmptyIsNilForEveryType(t *testing.T) {
	for _, vt := range []types.ValueType{
		types.ValueTypeText, types.ValueTypeInteger, types.ValueTypeDecimal,
		types.ValueTypeDateTime, types.ValueTypeBoolean, types.ValueTypeOpaque,
	} {
		t.Run(string(vt), func(t *testing.T) {
			got, err := Decode("", def(vt))
			require.NoError(t, err)
			assert.Nil(t, got)

			got, err = Decode("   ", def(vt))
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestDecodeEmptyMultiValuedIsEmptyList(t *testing.T) {
	got, err := Decode("", def(types.ValueTypeInteger, Multiple()))
	require.NoError(t, err)
	assert.Equal(t, []any{}, got)
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		vt   types.ValueType
	}{
		{"integer with suffix", "12abc", types.ValueTypeInteger},
		{"integer word", "twelve", types.ValueTypeInteger},
		{"decimal word", "lots", types.ValueTypeDecimal},
		{"iso date", "2016-04-15T10:15:30Z", types.ValueTypeDateTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw, def(tt.vt))
			assert.ErrorIs(t, err, types.ErrInvalidValue)
		})
	}
}

func TestDecodeMultiValued(t *testing.T) {
	got, err := Decode("1, 2,3", def(types.ValueTypeInteger, Multiple()))
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, got)

	got, err = Decode("red,  green", def(types.ValueTypeText, Multiple()))
	require.NoError(t, err)
	assert.Equal(t, []any{"red", "green"}, got)
}

func TestDecodeTransformRunsLast(t *testing.T) {
	upper := WithTransform(func(v any) any { return strings.ToUpper(v.(string)) })
	got, err := Decode(" anna ", def(types.ValueTypeText, upper))
	require.NoError(t, err)
	assert.Equal(t, "ANNA", got)

	count := WithTransform(func(v any) any { return len(v.([]any)) })
	got, err = Decode("a,b,c", def(types.ValueTypeText, Multiple(), count))
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = Decode("", def(types.ValueTypeText, upper))
	require.NoError(t, err)
	assert.Nil(t, got, "transform does not run on nil")
}

func TestEncode(t *testing.T) {
	when := time.Date(2016, 4, 5, 9, 5, 0, 0, time.UTC)
	tests := []struct {
		name  string
		value any
		def   *AttributeDefinition
		want  string
	}{
		{"nil", nil, def(types.ValueTypeText), ""},
		{"text", "x", def(types.ValueTypeText), "x"},
		{"integer", 42, def(types.ValueTypeInteger), "42"},
		{"decimal", decimal.RequireFromString("1.25"), def(types.ValueTypeDecimal), "1.25"},
		{"date time", when, def(types.ValueTypeDateTime), "04/05/2016 09:05:00"},
		{"boolean", true, def(types.ValueTypeBoolean), "true"},
		{"list joins with bare comma", []any{1, 2, 3}, def(types.ValueTypeInteger, Multiple()), "1,2,3"},
		{"string slice", []string{"a", "b"}, def(types.ValueTypeText, Multiple()), "a,b"},
		{"empty list", []any{}, def(types.ValueTypeText, Multiple()), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.value, tt.def))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value any
		vt    types.ValueType
	}{
		{"integer", 1234, types.ValueTypeInteger},
		{"date time", time.Date(2020, 12, 31, 23, 59, 59, 0, time.UTC), types.ValueTypeDateTime},
		{"true", true, types.ValueTypeBoolean},
		{"false", false, types.ValueTypeBoolean},
		{"text", "plain", types.ValueTypeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := def(tt.vt)
			got, err := Decode(Encode(tt.value, d), d)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}

	t.Run("decimal", func(t *testing.T) {
		d := def(types.ValueTypeDecimal)
		want := decimal.RequireFromString("-0.075")
		got, err := Decode(Encode(want, d), d)
		require.NoError(t, err)
		assert.True(t, want.Equal(got.(decimal.Decimal)))
	})
}

func TestMultiValueJoinSplit(t *testing.T) {
	for _, s := range []string{"a,b,c", "1,2", "solo"} {
		assert.Equal(t, s, JoinMultiValue(SplitMultiValue(s)))
	}

	// Reading tolerates a space after commas; writing never emits one.
	assert.Equal(t, "a,b", JoinMultiValue(SplitMultiValue("a, b")))
	assert.Equal(t, []string{}, SplitMultiValue(""))
}
