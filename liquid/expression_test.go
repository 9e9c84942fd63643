package liquid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"liquidvars/settings"
)

func testStore(t *testing.T) *settings.Store {
	t.Helper()
	data := `{
	  "current": {
	    "radius": 14,
	    "font_stack": "futura, helvetica",
	    "scale": 1.2,
	    "accent_color": "#ff8000",
	    "enabled": true
	  }
	}`
	schema := `[{"name":"x","settings":[{"id":"spacing","default":12}]}]`
	return settings.Parse([]byte(data), []byte(schema))
}

func TestEvaluateLiterals(t *testing.T) {
	e := NewEvaluator(testStore(t))

	require.Equal(t, "hello", e.Evaluate("'hello'", nil).String())
	require.Equal(t, "he'llo", e.Evaluate(`'he\'llo'`, nil).String())
	require.Equal(t, "42", e.Evaluate("42", nil).String())
	require.Equal(t, "1.5", e.Evaluate("1.5", nil).String())
	require.True(t, e.Evaluate("true", nil).Truthy())
	require.False(t, e.Evaluate("false", nil).Truthy())
}

func TestEvaluateSettings(t *testing.T) {
	e := NewEvaluator(testStore(t))

	require.Equal(t, "14", e.Evaluate("settings.radius", nil).String())
	require.Equal(t, "12", e.Evaluate("settings.spacing", nil).String())
	require.Equal(t, "255, 128, 0", e.Evaluate("settings.accent_color.rgb", nil).String())
	require.True(t, e.Evaluate("settings.missing", nil).IsNil())
}

func TestEvaluateSettingsBracketIndex(t *testing.T) {
	e := NewEvaluator(testStore(t))

	// The index expression is evaluated before the lookup.
	vars := Bindings{"key": Str("radius")}
	require.Equal(t, "14", e.Evaluate("settings[key]", vars).String())
	require.Equal(t, "14", e.Evaluate("settings['radius']", nil).String())
}

func TestEvaluateArrayIndex(t *testing.T) {
	e := NewEvaluator(testStore(t))
	vars := Bindings{"parts": Arr([]Value{Str("a"), Str("b"), Str("c")})}

	require.Equal(t, "b", e.Evaluate("parts[1]", vars).String())
	// Fractional indexes floor-truncate.
	require.Equal(t, "b", e.Evaluate("parts[1.9]", vars).String())
	require.True(t, e.Evaluate("parts[9]", vars).IsNil())
	// Unbound name passes through as text.
	require.Equal(t, "nope[0]", e.Evaluate("nope[0]", vars).String())
}

func TestEvaluateIdentifierFallback(t *testing.T) {
	e := NewEvaluator(testStore(t))

	vars := Bindings{"x": Num(3)}
	require.Equal(t, "3", e.Evaluate("x", vars).String())
	// Unbound identifiers fall back to their own text.
	require.Equal(t, "unbound", e.Evaluate("unbound", vars).String())
	// Same for dotted access on an absent binding.
	require.Equal(t, "obj.prop", e.Evaluate("obj.prop", vars).String())
	// Dotted bindings resolve by their full key.
	vars["forloop.index"] = Num(2)
	require.Equal(t, "2", e.Evaluate("forloop.index", vars).String())
}

func TestEvaluateNeverRaises(t *testing.T) {
	e := NewEvaluator(testStore(t))

	// Unsupported shapes pass through unresolved.
	require.Equal(t, "a ?: b !! c", e.Evaluate("a ?: b !! c", nil).String())
	// Bracketed placeholder tokens substitute from bindings.
	vars := Bindings{"size": Str("14px")}
	require.Equal(t, "calc([size] / 2)", e.Evaluate("calc([size] / 2)", nil).String())
	require.Equal(t, "calc(14px / 2)", e.Evaluate("calc([size] / 2)", vars).String())
}

func TestFilterSplit(t *testing.T) {
	e := NewEvaluator(testStore(t))

	v := e.Evaluate("'a,b,c' | split: ','", nil)
	require.Equal(t, KindArray, v.Kind())
	items := v.Items()
	require.Len(t, items, 3)
	require.Equal(t, "a", items[0].String())
	require.Equal(t, "b", items[1].String())
	require.Equal(t, "c", items[2].String())

	// Delimiters inside quotes do not split the pipe chain.
	v = e.Evaluate("'a|b' | append: '!'", nil)
	require.Equal(t, "a|b!", v.String())
}

func TestFilterAppendAndReplace(t *testing.T) {
	e := NewEvaluator(testStore(t))

	require.Equal(t, "14px", e.Evaluate("settings.radius | append: 'px'", nil).String())
	require.Equal(t, "futura_helvetica",
		e.Evaluate("settings.font_stack | replace: ', ', '_'", nil).String())
}

func TestFilterArithmetic(t *testing.T) {
	e := NewEvaluator(testStore(t))

	require.Equal(t, "28", e.Evaluate("settings.radius | times: 2", nil).String())
	require.Equal(t, "7", e.Evaluate("settings.radius | divided_by: 2", nil).String())
	require.Equal(t, "0", e.Evaluate("settings.radius | divided_by: 0", nil).String())
	require.Equal(t, "12", e.Evaluate("settings.radius | minus: 2", nil).String())
	require.Equal(t, "16", e.Evaluate("settings.radius | plus: 2", nil).String())
	// Non-numeric operands normalize to 0.
	require.Equal(t, "0", e.Evaluate("'banana' | times: 2", nil).String())
	// 5-decimal rounding suppresses float noise.
	require.Equal(t, "0.36", e.Evaluate("1.2 | times: 0.3", nil).String())
}

func TestFilterUniqAndSortNatural(t *testing.T) {
	e := NewEvaluator(testStore(t))

	v := e.Evaluate("'b,a,b,c,a' | split: ',' | uniq", nil)
	require.Equal(t, "b,a,c", v.String())

	v = e.Evaluate("'item10,item2,item1' | split: ',' | sort_natural", nil)
	require.Equal(t, "item1,item2,item10", v.String())
}

func TestFilterFindIndex(t *testing.T) {
	e := NewEvaluator(testStore(t))

	require.Equal(t, "1", e.Evaluate("'a,b,c' | split: ',' | find_index: 'b'", nil).String())
	require.Equal(t, "-1", e.Evaluate("'a,b,c' | split: ',' | find_index: 'z'", nil).String())
	// Numeric fallback tolerates leading-zero formatting differences.
	require.Equal(t, "1", e.Evaluate("'00,01,02' | split: ',' | find_index: 1", nil).String())
}

func TestUnknownFiltersAreIdentity(t *testing.T) {
	e := NewEvaluator(testStore(t))

	require.Equal(t, "14", e.Evaluate("settings.radius | font_modify: 'weight', 'bold'", nil).String())
	require.Equal(t, "14", e.Evaluate("settings.radius | made_up_filter", nil).String())
}
