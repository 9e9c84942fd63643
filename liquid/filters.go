package liquid

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// applyFilter applies one filter to the current value. Unknown filters, and
// the font filters the engine deliberately does not emulate, are identity.
func (e *Evaluator) applyFilter(v Value, name, arg string, vars Bindings) Value {
	switch name {
	case "split":
		return filterSplit(v, arg)
	case "replace":
		return e.filterReplace(v, arg, vars)
	case "append":
		return Str(v.String() + e.Evaluate(arg, vars).String())
	case "times", "divided_by", "minus", "plus":
		return e.filterArithmetic(v, name, arg, vars)
	case "uniq":
		return filterUniq(v)
	case "sort_natural":
		return filterSortNatural(v)
	case "find_index":
		return e.filterFindIndex(v, arg, vars)
	case "font_modify", "font_face":
		return v
	default:
		return v
	}
}

func filterSplit(v Value, arg string) Value {
	delim := ","
	if arg != "" {
		if inner, ok := unquote(arg); ok {
			delim = inner
		} else {
			delim = arg
		}
	}
	if delim == "" {
		delim = ","
	}
	parts := strings.Split(v.String(), delim)
	items := make([]Value, 0, len(parts))
	for _, p := range parts {
		items = append(items, Str(p))
	}
	return Arr(items)
}

// filterReplace takes "'search', replacement". The search text is always a
// literal; the replacement is evaluated as an expression and falls back to
// its own text when unresolvable.
func (e *Evaluator) filterReplace(v Value, arg string, vars Bindings) Value {
	args := splitUnquoted(arg, ',')
	if len(args) < 2 {
		return v
	}
	search := strings.TrimSpace(args[0])
	if inner, ok := unquote(search); ok {
		search = inner
	}
	if search == "" {
		return v
	}
	replacement := e.Evaluate(strings.TrimSpace(args[1]), vars).String()
	return Str(strings.ReplaceAll(v.String(), search, replacement))
}

func (e *Evaluator) filterArithmetic(v Value, op, arg string, vars Bindings) Value {
	a := arithmeticFloat(v)
	b := arithmeticFloat(e.Evaluate(arg, vars))

	var out float64
	switch op {
	case "times":
		out = roundPlaces(a*b, 5)
	case "divided_by":
		if b == 0 {
			return Num(0)
		}
		out = roundPlaces(a/b, 5)
	case "minus":
		out = a - b
	case "plus":
		out = a + b
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return Num(0)
	}
	return Num(out)
}

// arithmeticFloat is the arithmetic coercion: absent reads as 0, anything
// unparseable reads as NaN so the operation normalizes to 0.
func arithmeticFloat(v Value) float64 {
	if v.IsNil() {
		return 0
	}
	f, ok := v.Float()
	if !ok {
		return math.NaN()
	}
	return f
}

// roundPlaces suppresses floating-point noise like 0.30000000000000004.
func roundPlaces(f float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(f*shift) / shift
}

func filterUniq(v Value) Value {
	items := v.Items()
	if items == nil {
		return v
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]Value, 0, len(items))
	for _, it := range items {
		key := it.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return Arr(out)
}

func filterSortNatural(v Value) Value {
	items := v.Items()
	if items == nil {
		return v
	}
	out := make([]Value, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return naturalLess(out[i].String(), out[j].String())
	})
	return Arr(out)
}

// naturalLess compares strings chunk-wise, ordering digit runs numerically
// so "item2" sorts before "item10".
func naturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		aChunk, aNum, aRest := nextChunk(a)
		bChunk, bNum, bRest := nextChunk(b)
		if aNum && bNum {
			an, _ := strconv.ParseFloat(aChunk, 64)
			bn, _ := strconv.ParseFloat(bChunk, 64)
			if an != bn {
				return an < bn
			}
		} else if aChunk != bChunk {
			return aChunk < bChunk
		}
		a, b = aRest, bRest
	}
	return len(a) < len(b)
}

func nextChunk(s string) (chunk string, numeric bool, rest string) {
	if s == "" {
		return "", false, ""
	}
	isDigit := func(c byte) bool { return c >= '0' && c <= '9' }
	numeric = isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == numeric {
		i++
	}
	return s[:i], numeric, s[i:]
}

// filterFindIndex locates the argument in an array: exact string match
// first, then numeric equality to tolerate leading-zero formatting
// differences. Absent values yield -1.
func (e *Evaluator) filterFindIndex(v Value, arg string, vars Bindings) Value {
	items := v.Items()
	if items == nil {
		return Num(-1)
	}
	target := e.Evaluate(arg, vars)
	targetStr := target.String()
	for i, it := range items {
		if it.String() == targetStr {
			return Num(float64(i))
		}
	}
	if tf, ok := target.Float(); ok {
		for i, it := range items {
			if f, ok := it.Float(); ok && f == tf {
				return Num(float64(i))
			}
		}
	}
	return Num(-1)
}
