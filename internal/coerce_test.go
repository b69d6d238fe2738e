package internal_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pageforge/internal"
)

func TestParseBool(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"1", "true", "T", "yes", "Y", "on", "TRUE", " on "} {
		require.True(t, internal.ParseBool(v), v)
	}
	for _, v := range []string{"0", "false", "F", "no", "N", "off", "Off"} {
		require.False(t, internal.ParseBool(v), v)
	}

	require.True(t, internal.ParseBool("maybe"), "non-empty fallback")
	require.False(t, internal.ParseBool(""))
}

func TestIsTruthy(t *testing.T) {
	t.Parallel()

	require.True(t, internal.IsTruthy("true"))
	require.True(t, internal.IsTruthy("1"))
	require.False(t, internal.IsTruthy("maybe"))
	require.False(t, internal.IsTruthy(""))
}

func TestCoerceScalar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		typ  internal.Type
		want any
		ok   bool
	}{
		{name: "int", raw: "42", typ: internal.Int, want: 42, ok: true},
		{name: "int padded", raw: " 7 ", typ: internal.Int, want: 7, ok: true},
		{name: "int failure keeps raw", raw: "abc", typ: internal.Int, want: "abc", ok: false},
		{name: "float", raw: "2.5", typ: internal.Float, want: 2.5, ok: true},
		{name: "float failure keeps raw", raw: "x", typ: internal.Float, want: "x", ok: false},
		{name: "bool", raw: "off", typ: internal.Bool, want: false, ok: true},
		{name: "optional int", raw: "3", typ: internal.Optional(internal.Int), want: 3, ok: true},
		{name: "string", raw: "hi", typ: internal.String, want: "hi", ok: true},
		{name: "any", raw: "hi", typ: internal.Any, want: "hi", ok: true},
		{name: "untyped", raw: "5", typ: internal.Untyped, want: "5", ok: true},
		{name: "unknown named type passes raw", raw: "f47ac10b", typ: internal.Named("uuid"), want: "f47ac10b", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := internal.CoerceScalar(tt.raw, tt.typ)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.ok, ok)
		})
	}
}

func TestCoerceQuery(t *testing.T) {
	t.Parallel()

	q := url.Values{
		"x":    {"1", "2", "3"},
		"mix":  {"1", "two"},
		"page": {"1", "9"},
		"on":   {""},
	}

	t.Run("list of ints keeps order", func(t *testing.T) {
		t.Parallel()
		v, ok := internal.CoerceQuery(q, internal.P("x", internal.List(internal.Int)))
		require.True(t, ok)
		require.Equal(t, []any{1, 2, 3}, v)
	})

	t.Run("list element failure keeps raw", func(t *testing.T) {
		t.Parallel()
		v, ok := internal.CoerceQuery(q, internal.P("mix", internal.Optional(internal.List(internal.Int))))
		require.True(t, ok)
		require.Equal(t, []any{1, "two"}, v)
	})

	t.Run("scalar takes last value", func(t *testing.T) {
		t.Parallel()
		v, ok := internal.CoerceQuery(q, internal.P("page", internal.Int))
		require.True(t, ok)
		require.Equal(t, 9, v)
	})

	t.Run("empty value present", func(t *testing.T) {
		t.Parallel()
		v, ok := internal.CoerceQuery(q, internal.P("on", internal.Bool))
		require.True(t, ok)
		require.Equal(t, false, v)
	})

	t.Run("absent key", func(t *testing.T) {
		t.Parallel()
		_, ok := internal.CoerceQuery(q, internal.P("missing", internal.Int))
		require.False(t, ok)
	})
}

func TestType_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "optional[list[int]]", internal.Optional(internal.List(internal.Int)).String())
	require.Equal(t, "uuid", internal.Named("uuid").String())
	require.True(t, internal.Optional(internal.List(internal.String)).IsList())
	require.False(t, internal.Optional(internal.Int).IsList())
}
