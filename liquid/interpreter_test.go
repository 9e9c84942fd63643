package liquid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"liquidvars/settings"
)

func TestRunBlockAssignEcho(t *testing.T) {
	e := NewEvaluator(testStore(t))

	out := e.RunBlock(`
		assign size = settings.radius
		echo size
		echo 'px'
	`, nil)
	require.Equal(t, "14px", out)
}

func TestRunBlockFilterChainInAssign(t *testing.T) {
	e := NewEvaluator(testStore(t))

	out := e.RunBlock(`
		assign doubled = settings.radius | times: 2 | append: 'px'
		echo doubled
	`, nil)
	require.Equal(t, "28px", out)
}

func TestRunBlockForLoop(t *testing.T) {
	e := NewEvaluator(testStore(t))

	out := e.RunBlock(`
		assign names = 'a,b,c' | split: ','
		for name in names
			echo name
			echo forloop.index
		endfor
	`, nil)
	require.Equal(t, "a1b2c3", out)
}

func TestRunBlockForLoopUnboundArray(t *testing.T) {
	e := NewEvaluator(testStore(t))

	out := e.RunBlock(`
		for item in missing_array
			echo 'never'
		endfor
		echo 'after'
	`, nil)
	require.Equal(t, "after", out)
}

func TestRunBlockIfBranches(t *testing.T) {
	e := NewEvaluator(testStore(t))

	out := e.RunBlock(`
		if settings.radius > 20
			echo 'large'
		elsif settings.radius > 10
			echo 'medium'
		else
			echo 'small'
		endif
	`, nil)
	require.Equal(t, "medium", out)
}

func TestRunBlockOnlyWinningBranchRuns(t *testing.T) {
	e := NewEvaluator(testStore(t))

	// The losing branch's assign must not execute.
	out := e.RunBlock(`
		assign label = 'none'
		if settings.enabled
			assign label = 'on'
		else
			assign label = 'off'
		endif
		echo label
	`, nil)
	require.Equal(t, "on", out)
}

func TestRunBlockNestedIfDepth(t *testing.T) {
	e := NewEvaluator(testStore(t))

	// The inner endif must not close the outer if.
	out := e.RunBlock(`
		assign names = 'x' | split: ','
		for name in names
			if settings.enabled
				echo 'outer'
			endif
		endfor
		echo '!'
	`, nil)
	require.Equal(t, "outer!", out)
}

func TestRunBlockUnless(t *testing.T) {
	e := NewEvaluator(testStore(t))

	out := e.RunBlock(`
		unless settings.missing
			echo 'fallback'
		endunless
		unless settings.enabled
			echo 'hidden'
		endunless
	`, nil)
	require.Equal(t, "fallback", out)
}

func TestRunBlockCommentSkipsVerbatim(t *testing.T) {
	e := NewEvaluator(testStore(t))

	out := e.RunBlock(`
		comment
			echo 'never emitted'
			assign x = 1
		endcomment
		echo 'visible'
	`, nil)
	require.Equal(t, "visible", out)
}

func TestRunBlockMalformedLinesIgnored(t *testing.T) {
	e := NewEvaluator(testStore(t))

	out := e.RunBlock(`
		assign
		garbage %% line
		cycle 'a', 'b'
		echo 'ok'
	`, nil)
	require.Equal(t, "ok", out)
}

func TestRunBlockBindingsScopedToCall(t *testing.T) {
	e := NewEvaluator(settings.Parse(nil, nil))

	vars := Bindings{}
	e.RunBlock(`assign x = 1`, vars)
	require.Contains(t, vars, "x")

	// A fresh call sees nothing from the previous block.
	out := e.RunBlock(`echo x`, nil)
	require.Equal(t, "x", out)
}
