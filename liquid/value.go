// Package liquid implements the restricted Liquid subset used inside theme
// stylesheets: expression and filter evaluation, condition evaluation, the
// {% liquid %} block interpreter, and the template-to-stylesheet transform
// pipeline. It is a deliberate best-effort approximation, not a conformant
// renderer: anything it cannot resolve passes through unchanged.
package liquid

import (
	"strconv"
	"strings"
)

// Kind discriminates the Value union.
type Kind int

const (
	KindNil Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
)

// Value is the tagged union every evaluator and filter operates on. Absent
// values coerce to "" in output contexts and to 0/false in arithmetic and
// boolean contexts.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	arr  []Value
}

func Nil() Value             { return Value{kind: KindNil} }
func Str(s string) Value     { return Value{kind: KindString, str: s} }
func Num(f float64) Value    { return Value{kind: KindNumber, num: f} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Arr(items []Value) Value { return Value{kind: KindArray, arr: items} }

// FromAny converts a decoded-JSON settings value into a Value.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Nil()
	case string:
		return Str(t)
	case bool:
		return Bool(t)
	case float64:
		return Num(t)
	case int:
		return Num(float64(t))
	case []any:
		items := make([]Value, 0, len(t))
		for _, it := range t {
			items = append(items, FromAny(it))
		}
		return Arr(items)
	default:
		return Str("[object]")
	}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNil() bool { return v.kind == KindNil }

// Items returns the array elements, or nil for non-arrays.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// String renders the value for output. Numbers use their shortest exact
// form, nil renders empty, arrays render comma-joined.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return ""
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindArray:
		parts := make([]string, 0, len(v.arr))
		for _, it := range v.arr {
			parts = append(parts, it.String())
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// Float reports the numeric reading of the value. Booleans read as 0/1;
// nil, arrays and non-numeric strings do not read as numbers.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Truthy implements the engine's truthiness rule: absent, empty string,
// false and 0 are falsy; everything else is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindString:
		return v.str != ""
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0
	case KindArray:
		return true
	}
	return false
}
