package liquid

import (
	"regexp"
	"strings"
)

// comparisonRe splits on the first comparison operator found anywhere in the
// condition. Operands containing comparison characters can misparse; callers
// rely on this exact split order, so it stays.
var comparisonRe = regexp.MustCompile(`^(.+?)\s*(>=|<=|>|<|==)\s*(.+)$`)

// EvalCondition evaluates a boolean condition: "a contains b", a binary
// comparison, or a plain truthiness test on the evaluated expression.
func (e *Evaluator) EvalCondition(cond string, vars Bindings) bool {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return false
	}

	if left, right, ok := strings.Cut(cond, " contains "); ok {
		l := e.Evaluate(strings.TrimSpace(left), vars).String()
		r := e.Evaluate(strings.TrimSpace(right), vars).String()
		return strings.Contains(l, r)
	}

	if m := comparisonRe.FindStringSubmatch(cond); m != nil {
		left := e.Evaluate(strings.TrimSpace(m[1]), vars)
		right := e.Evaluate(strings.TrimSpace(m[3]), vars)
		switch m[2] {
		case "==":
			return looseEqual(left, right)
		default:
			lf, lok := left.Float()
			rf, rok := right.Float()
			if !lok || !rok {
				return false
			}
			switch m[2] {
			case ">=":
				return lf >= rf
			case "<=":
				return lf <= rf
			case ">":
				return lf > rf
			case "<":
				return lf < rf
			}
			return false
		}
	}

	return e.Evaluate(cond, vars).Truthy()
}

// looseEqual compares numerically when both sides read as numbers,
// otherwise by string form. Absent equals only the empty string.
func looseEqual(a, b Value) bool {
	if af, ok := a.Float(); ok {
		if bf, ok := b.Float(); ok {
			return af == bf
		}
	}
	return a.String() == b.String()
}
