package liquid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"liquidvars/settings"
)

func condStore(t *testing.T) *settings.Store {
	t.Helper()
	data := `{
	  "current": {
	    "radius": 14,
	    "style": "rounded-large",
	    "enabled": true,
	    "disabled": false,
	    "empty_text": "",
	    "zero": 0
	  }
	}`
	return settings.Parse([]byte(data), nil)
}

func TestConditionContains(t *testing.T) {
	e := NewEvaluator(condStore(t))

	require.True(t, e.EvalCondition("settings.style contains 'rounded'", nil))
	require.False(t, e.EvalCondition("settings.style contains 'sharp'", nil))
	require.True(t, e.EvalCondition("'a,b,c' contains 'b'", nil))
}

func TestConditionComparisons(t *testing.T) {
	e := NewEvaluator(condStore(t))

	require.True(t, e.EvalCondition("settings.radius > 10", nil))
	require.False(t, e.EvalCondition("settings.radius > 20", nil))
	require.True(t, e.EvalCondition("settings.radius >= 14", nil))
	require.True(t, e.EvalCondition("settings.radius <= 14", nil))
	require.True(t, e.EvalCondition("settings.radius < 20", nil))
	require.True(t, e.EvalCondition("settings.radius == 14", nil))
	require.True(t, e.EvalCondition("settings.radius == '14'", nil))
	require.False(t, e.EvalCondition("settings.radius == 15", nil))
	// Ordering against a non-numeric operand is false, not an error.
	require.False(t, e.EvalCondition("settings.style > 3", nil))
}

func TestConditionLooseEquality(t *testing.T) {
	e := NewEvaluator(condStore(t))

	require.True(t, e.EvalCondition("settings.enabled == true", nil))
	require.True(t, e.EvalCondition("settings.style == 'rounded-large'", nil))
	// Absent equals only the empty string.
	require.True(t, e.EvalCondition("settings.missing == ''", nil))
	require.False(t, e.EvalCondition("settings.missing == false", nil))
}

func TestConditionTruthiness(t *testing.T) {
	e := NewEvaluator(condStore(t))

	require.True(t, e.EvalCondition("settings.enabled", nil))
	require.True(t, e.EvalCondition("settings.radius", nil))
	require.True(t, e.EvalCondition("settings.style", nil))
	require.False(t, e.EvalCondition("settings.disabled", nil))
	require.False(t, e.EvalCondition("settings.empty_text", nil))
	require.False(t, e.EvalCondition("settings.zero", nil))
	require.False(t, e.EvalCondition("settings.missing", nil))
}

// The split takes the first comparison operator found anywhere in the
// condition, even when it sits inside an operand. Callers may depend on
// this parse, so it is pinned here.
func TestConditionFirstOperatorSplit(t *testing.T) {
	e := NewEvaluator(condStore(t))

	// "'a<b' == 'a<b'" splits at the '<' inside the left literal, producing
	// "'a" < "b' == 'a<b'" which compares non-numerically: false.
	require.False(t, e.EvalCondition("'a<b' == 'a<b'", nil))
}
