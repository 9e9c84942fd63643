package liquid

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	assignRe = regexp.MustCompile(`^assign\s+(\w+)\s*=\s*(.+)$`)
	forRe    = regexp.MustCompile(`^for\s+(\w+)\s+in\s+([\w.\[\]'"-]+)$`)
)

// RunBlock executes the statement lines of one {% liquid %} block and
// returns the concatenated echo output. Bindings live for the duration of
// this call only. Malformed lines are ignored: the engine fails open on
// arbitrary authored templates.
func (e *Evaluator) RunBlock(src string, vars Bindings) string {
	if vars == nil {
		vars = Bindings{}
	}
	lines := statementLines(src)

	var out strings.Builder
	i := 0
	for i < len(lines) {
		line := lines[i]
		switch {
		case line == "comment":
			i = skipComment(lines, i+1)
			continue
		case strings.HasPrefix(line, "assign "):
			e.execAssign(line, vars)
		case strings.HasPrefix(line, "echo "):
			out.WriteString(e.Evaluate(strings.TrimPrefix(line, "echo "), vars).String())
		case strings.HasPrefix(line, "for "):
			body, next := collectBlock(lines, i+1, "for ", "endfor")
			e.execFor(line, body, vars, &out)
			i = next
			continue
		case strings.HasPrefix(line, "if "):
			body, next := collectBlock(lines, i+1, "if ", "endif")
			e.execIf(line, body, vars, &out)
			i = next
			continue
		case strings.HasPrefix(line, "unless "):
			body, next := collectBlock(lines, i+1, "unless ", "endunless")
			e.execUnless(line, body, vars, &out)
			i = next
			continue
		}
		i++
	}
	return out.String()
}

func statementLines(src string) []string {
	raw := strings.Split(src, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func skipComment(lines []string, start int) int {
	for i := start; i < len(lines); i++ {
		if lines[i] == "endcomment" {
			return i + 1
		}
	}
	return len(lines)
}

// collectBlock gathers the body lines of a block up to its matching end tag,
// depth-counting same-tag nesting. A missing end tag consumes the rest.
func collectBlock(lines []string, start int, openPrefix, endTag string) (body []string, next int) {
	depth := 1
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, openPrefix) {
			depth++
		} else if line == endTag {
			depth--
			if depth == 0 {
				return lines[start:i], i + 1
			}
		}
	}
	return lines[start:], len(lines)
}

func (e *Evaluator) execAssign(line string, vars Bindings) {
	m := assignRe.FindStringSubmatch(line)
	if m == nil {
		return
	}
	vars[m[1]] = e.Evaluate(m[2], vars)
}

// execFor iterates a bound array, exposing the item and a 1-based
// forloop.index per iteration. An unbound or non-array variable makes the
// loop a no-op. Loop bodies support echo, assign and nested if blocks.
func (e *Evaluator) execFor(line string, body []string, vars Bindings, out *strings.Builder) {
	m := forRe.FindStringSubmatch(line)
	if m == nil {
		return
	}
	itemName, arrayVar := m[1], m[2]

	bound, ok := vars[arrayVar]
	if !ok {
		return
	}
	items := bound.Items()

	for idx, item := range items {
		vars[itemName] = item
		vars["forloop.index"] = Num(float64(idx + 1))
		vars["forloop.index0"] = Num(float64(idx))
		e.execSimpleLines(body, vars, out)
	}
	delete(vars, itemName)
	delete(vars, "forloop.index")
	delete(vars, "forloop.index0")
}

// execSimpleLines runs echo/assign lines and nested if blocks, ignoring
// everything else. Used for loop bodies and unless bodies.
func (e *Evaluator) execSimpleLines(lines []string, vars Bindings, out *strings.Builder) {
	i := 0
	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "assign "):
			e.execAssign(line, vars)
		case strings.HasPrefix(line, "echo "):
			out.WriteString(e.Evaluate(strings.TrimPrefix(line, "echo "), vars).String())
		case strings.HasPrefix(line, "if "):
			body, next := collectBlock(lines, i+1, "if ", "endif")
			e.execIf(line, body, vars, out)
			i = next
			continue
		}
		i++
	}
}

type branch struct {
	cond  string // empty for else
	lines []string
}

// execIf collects the if/elsif/else branches in order and executes only the
// first one whose condition holds. Within the winning branch only echo and
// assign lines run.
func (e *Evaluator) execIf(line string, body []string, vars Bindings, out *strings.Builder) {
	branches := []branch{{cond: strings.TrimPrefix(line, "if ")}}
	depth := 0
	for _, l := range body {
		switch {
		case strings.HasPrefix(l, "if "):
			depth++
		case l == "endif":
			depth--
		case depth == 0 && strings.HasPrefix(l, "elsif "):
			branches = append(branches, branch{cond: strings.TrimPrefix(l, "elsif ")})
			continue
		case depth == 0 && l == "else":
			branches = append(branches, branch{})
			continue
		}
		branches[len(branches)-1].lines = append(branches[len(branches)-1].lines, l)
	}

	for _, br := range branches {
		if br.cond != "" && !e.EvalCondition(br.cond, vars) {
			continue
		}
		for _, l := range br.lines {
			switch {
			case strings.HasPrefix(l, "assign "):
				e.execAssign(l, vars)
			case strings.HasPrefix(l, "echo "):
				out.WriteString(e.Evaluate(strings.TrimPrefix(l, "echo "), vars).String())
			}
		}
		return
	}
}

func (e *Evaluator) execUnless(line string, body []string, vars Bindings, out *strings.Builder) {
	cond := strings.TrimPrefix(line, "unless ")
	if e.EvalCondition(cond, vars) {
		return
	}
	for _, l := range body {
		switch {
		case strings.HasPrefix(l, "assign "):
			e.execAssign(l, vars)
		case strings.HasPrefix(l, "echo "):
			out.WriteString(e.Evaluate(strings.TrimPrefix(l, "echo "), vars).String())
		}
	}
}

// formatIndex is used by the transform pipeline when materializing the
// first loop iteration.
func formatIndex(i int) string { return strconv.Itoa(i) }
