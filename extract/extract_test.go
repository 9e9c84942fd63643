package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindStyleRegions(t *testing.T) {
	source := `
<div>markup</div>
{% style %}
  :root { --a: 1; }
{% endstyle %}
{% stylesheet %}
  .card { color: red; }
{% endstylesheet %}
<style>
  :root { --b: 2; }
</style>
`
	regions := FindStyleRegions(source)
	// The stylesheet block has no :root and is not a candidate.
	require.Len(t, regions, 2)
	require.Contains(t, regions[0], "--a")
	require.Contains(t, regions[1], "--b")
}

func TestExtractFirstWriteWins(t *testing.T) {
	css := `
:root {
  --x: 1px;
  --y: red;
}
:root {
  --x: 2px;
}
`
	reg := NewRegistry()
	ExtractFromCSS(css, "snippet.liquid", true, reg)

	v, ok := reg.Lookup("--x")
	require.True(t, ok)
	require.Equal(t, "1px", v.Value)
	require.Equal(t, "snippet.liquid", v.SourceFile)
	require.Equal(t, 2, reg.Len())
}

func TestExtractMediaVariants(t *testing.T) {
	css := `
:root {
  --page-width: 1200px;
}
@media (min-width: 768px) {
  :root {
    --page-width: 720px;
  }
}
@media screen and (max-width: 480px) {
  :root {
    --page-width: 100%;
  }
}
`
	reg := NewRegistry()
	ExtractFromCSS(css, "theme.liquid", true, reg)

	v, ok := reg.Lookup("--page-width")
	require.True(t, ok)
	// Base value is untouched by the media redeclarations.
	require.Equal(t, "1200px", v.Value)
	require.Len(t, v.Media, 2)
	require.Equal(t, "(min-width: 768px)", v.Media[0].Query)
	require.Equal(t, "720px", v.Media[0].Value)
	require.Equal(t, "screen and (max-width: 480px)", v.Media[1].Query)
}

func TestExtractMediaOnlyNamesIgnored(t *testing.T) {
	css := `
:root { --known: 1; }
@media (min-width: 768px) {
  :root { --media-only: 2; }
}
`
	reg := NewRegistry()
	ExtractFromCSS(css, "a.liquid", true, reg)

	require.Equal(t, 1, reg.Len())
	_, ok := reg.Lookup("--media-only")
	require.False(t, ok)
}

func TestExtractCommaJoinedRootSelector(t *testing.T) {
	css := `:root, .color-scheme-1 { --t: #111; }`
	reg := NewRegistry()
	ExtractFromCSS(css, "a.liquid", true, reg)

	v, ok := reg.Lookup("--t")
	require.True(t, ok)
	require.Equal(t, "#111", v.Value)
}

func TestExtractClassRulesOnlyWhenEnabled(t *testing.T) {
	css := `
:root { --a: 1; }
.button { --btn-bg: blue; }
`
	reg := NewRegistry()
	ExtractFromCSS(css, "a.liquid", true, reg)
	_, ok := reg.Lookup("--btn-bg")
	require.False(t, ok)

	reg = NewRegistry()
	ExtractFromCSS(css, "a.liquid", false, reg)
	v, ok := reg.Lookup("--btn-bg")
	require.True(t, ok)
	require.Equal(t, "blue", v.Value)
	// Class extraction never creates media variants.
	require.Empty(t, v.Media)
}

func TestExtractUnmatchedBraceSkipsRegion(t *testing.T) {
	css := `
:root { --broken: 1;
:root { --ok: 2; }
`
	reg := NewRegistry()
	ExtractFromCSS(css, "a.liquid", true, reg)

	// The unclosed first rule is skipped; scanning continues and the
	// well-formed second rule is still found by its own opening.
	_, ok := reg.Lookup("--broken")
	require.False(t, ok)
	v, ok := reg.Lookup("--ok")
	require.True(t, ok)
	require.Equal(t, "2", v.Value)
}

func TestRegistryInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Add("--b", "2", "f")
	reg.Add("--a", "1", "f")
	reg.Add("--b", "9", "f") // duplicate, ignored

	vars := reg.Variables()
	require.Len(t, vars, 2)
	require.Equal(t, "--b", vars[0].Name)
	require.Equal(t, "2", vars[0].Value)
	require.Equal(t, "--a", vars[1].Name)
}
