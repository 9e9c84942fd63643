package liquid

import (
	"regexp"
	"strings"

	"liquidvars/settings"
)

// unresolvedOutput replaces {{ ... }} outputs the engine cannot resolve.
// A zero keeps the surrounding declaration syntactically plausible CSS.
const unresolvedOutput = "0"

var (
	liquidBlockRe = regexp.MustCompile(`(?s)\{%-?\s*liquid\b(.*?)-?%\}`)

	schemeLoopRe   = regexp.MustCompile(`(?s)\{%-?\s*for\s+(\w+)\s+in\s+settings\.color_schemes\s*-?%\}(.*?)\{%-?\s*endfor\s*-?%\}`)
	schemeIDRe     = regexp.MustCompile(`\{\{-?\s*\w+\.id\s*-?\}\}`)
	loopIndexOutRe = regexp.MustCompile(`\{\{-?\s*forloop\.index0?\s*-?\}\}`)
	firstIndexIfRe = regexp.MustCompile(`(?s)\{%-?\s*if\s+forloop\.index0?\s*==\s*[01]\s*-?%\}(.*?)\{%-?\s*endif\s*-?%\}`)
	otherIndexIfRe = regexp.MustCompile(`(?s)\{%-?\s*if\s+forloop\.index0?\s*[^%]*?-?%\}(.*?)\{%-?\s*endif\s*-?%\}`)

	assignTagRe = regexp.MustCompile(`\{%-?\s*assign\b[^%]*?-?%\}`)

	conditionalRe = regexp.MustCompile(`(?s)\{%-?\s*if\s+([^%]+?)\s*-?%\}(.*?)\{%-?\s*endif\s*-?%\}`)
	branchTagRe   = regexp.MustCompile(`\{%-?\s*(elsif\s+([^%]+?)|else)\s*-?%\}`)

	schemeSettingRe = regexp.MustCompile(`\{\{-?\s*\w+\.settings\.([\w.]+)\s*(?:\|\s*append:\s*(?:'([^']*)'|"([^"]*)")\s*)?-?\}\}`)
	settingOutRe    = regexp.MustCompile(`\{\{-?\s*settings\.([\w.]+)\s*(?:\|\s*append:\s*(?:'([^']*)'|"([^"]*)")\s*)?-?\}\}`)
	bareOutputRe    = regexp.MustCompile(`\{\{-?\s*[\w.\[\]'" |:,-]*?\s*-?\}\}`)
	anyTagRe        = regexp.MustCompile(`(?s)\{%-?.*?-?%\}`)
	anyOutputRe     = regexp.MustCompile(`(?s)\{\{.*?\}\}`)
)

// Renderer reduces one templated stylesheet block to plain stylesheet text.
// The pipeline is a fixed sequence of textual stages; each stage assumes the
// earlier ones already removed the constructs they own. This is a deliberate
// approximation of a renderer, not a parser.
type Renderer struct {
	eval  *Evaluator
	store *settings.Store
}

// NewRenderer creates a renderer over one scan's settings store.
func NewRenderer(store *settings.Store) *Renderer {
	if store == nil {
		store = settings.Empty()
	}
	return &Renderer{eval: NewEvaluator(store), store: store}
}

// Render runs the full transform pipeline over one block's text.
func (r *Renderer) Render(src string) string {
	out := r.runLiquidBlocks(src)
	out = r.reduceSchemeLoops(out)
	out = assignTagRe.ReplaceAllString(out, "")
	out = r.ReduceConditionals(out)
	out = reduceGenericConditionals(out)
	out = r.substituteSchemeSettings(out)
	out = r.substituteSettings(out)
	out = bareOutputRe.ReplaceAllString(out, unresolvedOutput)
	out = anyTagRe.ReplaceAllString(out, "")
	out = anyOutputRe.ReplaceAllString(out, "")
	return out
}

// runLiquidBlocks executes {% liquid ... %} multi-statement blocks and
// substitutes their echo output in place.
func (r *Renderer) runLiquidBlocks(src string) string {
	return liquidBlockRe.ReplaceAllStringFunc(src, func(match string) string {
		m := liquidBlockRe.FindStringSubmatch(match)
		if m == nil {
			return ""
		}
		return r.eval.RunBlock(m[1], Bindings{})
	})
}

// reduceSchemeLoops materializes exactly the first iteration of a loop over
// the theme's color schemes: the scheme identifier and loop index are
// substituted, first-iteration guards collapse to their contents and every
// other loop-index guard is discarded. Only the first scheme is ever
// rendered; later iterations would only restate the same declarations under
// other scheme ids.
func (r *Renderer) reduceSchemeLoops(src string) string {
	return schemeLoopRe.ReplaceAllStringFunc(src, func(match string) string {
		m := schemeLoopRe.FindStringSubmatch(match)
		if m == nil {
			return ""
		}
		scheme, ok := r.store.FirstScheme()
		if !ok {
			return ""
		}
		body := m[2]
		body = firstIndexIfRe.ReplaceAllString(body, "$1")
		body = otherIndexIfRe.ReplaceAllString(body, "")
		body = schemeIDRe.ReplaceAllString(body, scheme.ID)
		body = loopIndexOutRe.ReplaceAllString(body, formatIndex(1))
		return body
	})
}

// ReduceConditionals statically resolves settings-gated conditional regions
// in raw document text, keeping exactly the first branch whose condition
// holds. It must run before value substitution: the conditions reference
// settings keys, not substituted text. Conditionals that do not reference
// settings are left for the generic pass.
func (r *Renderer) ReduceConditionals(src string) string {
	return conditionalRe.ReplaceAllStringFunc(src, func(match string) string {
		m := conditionalRe.FindStringSubmatch(match)
		if m == nil {
			return match
		}
		if !strings.Contains(m[1], "settings.") {
			return match
		}
		return r.selectBranch(m[1], m[2])
	})
}

func (r *Renderer) selectBranch(firstCond, body string) string {
	conds := []string{firstCond}
	texts := []string{}

	rest := body
	for {
		loc := branchTagRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			texts = append(texts, rest)
			break
		}
		texts = append(texts, rest[:loc[0]])
		if loc[4] >= 0 { // elsif with condition
			conds = append(conds, rest[loc[4]:loc[5]])
		} else { // else
			conds = append(conds, "")
		}
		rest = rest[loc[1]:]
	}

	for i, cond := range conds {
		if cond == "" || r.eval.EvalCondition(cond, Bindings{}) {
			return texts[i]
		}
	}
	return ""
}

// reduceGenericConditionals optimistically keeps the then-branch of any
// conditional the settings pass left behind. Unsound when the condition is
// false, but these shapes reference runtime-only state the extractor cannot
// evaluate, and the then-branch is where themes declare their variables.
func reduceGenericConditionals(src string) string {
	return conditionalRe.ReplaceAllStringFunc(src, func(match string) string {
		m := conditionalRe.FindStringSubmatch(match)
		if m == nil {
			return match
		}
		body := m[2]
		if loc := branchTagRe.FindStringIndex(body); loc != nil {
			body = body[:loc[0]]
		}
		return body
	})
}

func (r *Renderer) substituteSchemeSettings(src string) string {
	scheme, haveScheme := r.store.FirstScheme()
	return schemeSettingRe.ReplaceAllStringFunc(src, func(match string) string {
		m := schemeSettingRe.FindStringSubmatch(match)
		if m == nil {
			return unresolvedOutput
		}
		if !haveScheme {
			return unresolvedOutput
		}
		raw, ok := r.store.SchemeValue(scheme, m[1])
		if !ok {
			return unresolvedOutput
		}
		return settings.FormatValue(raw) + appendSuffix(m)
	})
}

func (r *Renderer) substituteSettings(src string) string {
	return settingOutRe.ReplaceAllStringFunc(src, func(match string) string {
		m := settingOutRe.FindStringSubmatch(match)
		if m == nil {
			return unresolvedOutput
		}
		raw, ok := r.store.Get(m[1])
		if !ok {
			return unresolvedOutput
		}
		return settings.FormatValue(raw) + appendSuffix(m)
	})
}

// appendSuffix returns the literal from an optional | append: '...' filter
// captured by the substitution patterns.
func appendSuffix(m []string) string {
	if m[2] != "" {
		return m[2]
	}
	return m[3]
}
