package liquid

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"liquidvars/settings"
)

// Bindings maps identifiers to values for one block execution. Loop context
// is carried as the dotted key "forloop.index".
type Bindings map[string]Value

// Evaluator resolves Liquid expressions against one scan's settings store.
type Evaluator struct {
	store *settings.Store
}

// NewEvaluator creates an evaluator over the given settings store.
func NewEvaluator(store *settings.Store) *Evaluator {
	if store == nil {
		store = settings.Empty()
	}
	return &Evaluator{store: store}
}

var (
	bracketRe     = regexp.MustCompile(`^(\w+)\[(.+)\]$`)
	identifierRe  = regexp.MustCompile(`^[A-Za-z_]\w*$`)
	dottedRe      = regexp.MustCompile(`^[A-Za-z_][\w.]*$`)
	placeholderRe = regexp.MustCompile(`\[(\w+)\]`)
)

// Evaluate resolves a pipe-delimited expression: the first segment is the
// base value, the rest are filters applied in order. Never errors; an
// expression it cannot resolve comes back as its own text.
func (e *Evaluator) Evaluate(expr string, vars Bindings) Value {
	segments := splitUnquoted(expr, '|')
	if len(segments) == 0 {
		return Str(strings.TrimSpace(expr))
	}

	v := e.evalBase(strings.TrimSpace(segments[0]), vars)
	for _, seg := range segments[1:] {
		name, arg := splitFilter(seg)
		if name == "" {
			continue
		}
		v = e.applyFilter(v, name, arg, vars)
	}
	return v
}

func (e *Evaluator) evalBase(expr string, vars Bindings) Value {
	if expr == "" {
		return Str("")
	}

	if inner, ok := unquote(expr); ok {
		return Str(inner)
	}

	if m := bracketRe.FindStringSubmatch(expr); m != nil {
		return e.evalIndex(m[1], m[2], vars)
	}

	switch expr {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "nil", "null":
		return Nil()
	}

	if strings.Contains(expr, ".") && dottedRe.MatchString(expr) {
		return e.evalDotted(expr, vars)
	}

	if identifierRe.MatchString(expr) {
		if v, ok := vars[expr]; ok {
			return v
		}
		return Str(expr)
	}

	if f, err := strconv.ParseFloat(expr, 64); err == nil {
		return Num(f)
	}

	// Unresolvable shape: pass through, substituting any [placeholder]
	// tokens that happen to be bound.
	out := placeholderRe.ReplaceAllStringFunc(expr, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if v, ok := vars[name]; ok {
			return v.String()
		}
		return tok
	})
	return Str(out)
}

func (e *Evaluator) evalIndex(name, indexExpr string, vars Bindings) Value {
	idx := e.Evaluate(indexExpr, vars)

	if name == "settings" {
		raw, ok := e.store.Get(idx.String())
		if !ok {
			return Nil()
		}
		return FromAny(raw)
	}

	bound, ok := vars[name]
	if !ok {
		return Str(name + "[" + indexExpr + "]")
	}
	f, ok := idx.Float()
	if !ok {
		return Nil()
	}
	i := int(math.Floor(f))
	items := bound.Items()
	if i < 0 || i >= len(items) {
		return Nil()
	}
	return items[i]
}

func (e *Evaluator) evalDotted(expr string, vars Bindings) Value {
	if path, ok := strings.CutPrefix(expr, "settings."); ok {
		raw, found := e.store.Get(path)
		if !found {
			return Nil()
		}
		return FromAny(raw)
	}

	// Dotted bindings (forloop.index) are stored under their full key.
	if v, ok := vars[expr]; ok {
		return v
	}
	return Str(expr)
}

// splitUnquoted splits on an unquoted delimiter, tracking single/double
// quote state character by character and honoring backslash escapes.
func splitUnquoted(s string, delim byte) []string {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			i++ // skip escaped character
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == delim:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func splitFilter(segment string) (name, arg string) {
	segment = strings.TrimSpace(segment)
	if colon := strings.IndexByte(segment, ':'); colon >= 0 {
		return strings.TrimSpace(segment[:colon]), strings.TrimSpace(segment[colon+1:])
	}
	return segment, ""
}

// unquote strips matching outer quotes and unescapes interior quote
// characters. Reports false when the text is not a quoted literal.
func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '\'' && q != '"') || s[len(s)-1] != q {
		return "", false
	}
	inner := s[1 : len(s)-1]
	inner = strings.ReplaceAll(inner, `\`+string(q), string(q))
	return inner, true
}
