package extract

import (
	"regexp"
	"strings"
)

var (
	styleTagRe      = regexp.MustCompile(`(?s)\{%-?\s*style\s*-?%\}(.*?)\{%-?\s*endstyle\s*-?%\}`)
	stylesheetTagRe = regexp.MustCompile(`(?s)\{%-?\s*stylesheet\s*-?%\}(.*?)\{%-?\s*endstylesheet\s*-?%\}`)
	styleElementRe  = regexp.MustCompile(`(?s)<style[^>]*>(.*?)</style>`)

	rootOpenRe  = regexp.MustCompile(`:root[^{}]*\{`)
	mediaOpenRe = regexp.MustCompile(`@media[^{}]*\{`)
	classOpenRe = regexp.MustCompile(`(?m)^\s*\.[A-Za-z_][^{};@]*\{`)

	declarationRe = regexp.MustCompile(`(--[A-Za-z0-9_-]+)\s*:\s*([^;{}]+);`)
)

// FindStyleRegions returns the templated stylesheet regions of a source
// file in document order: {% style %}, {% stylesheet %} and inline <style>
// blocks. Only regions containing a :root rule are candidates; everything
// else is presentation CSS the extractor does not care about.
func FindStyleRegions(source string) []string {
	type span struct {
		start int
		text  string
	}
	var spans []span
	for _, re := range []*regexp.Regexp{styleTagRe, stylesheetTagRe, styleElementRe} {
		for _, loc := range re.FindAllStringSubmatchIndex(source, -1) {
			spans = append(spans, span{start: loc[0], text: source[loc[2]:loc[3]]})
		}
	}

	// Document order regardless of which pattern matched.
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j-1].start > spans[j].start; j-- {
			spans[j-1], spans[j] = spans[j], spans[j-1]
		}
	}

	var regions []string
	for _, sp := range spans {
		if strings.Contains(sp.text, ":root") {
			regions = append(regions, sp.text)
		}
	}
	return regions
}

// ExtractFromCSS scans plain stylesheet text for custom-property
// declarations and records them. Root-rule declarations establish base
// values (first occurrence wins); media-query redeclarations of known names
// become variants; class-rule extraction only runs when onlyRoot is false
// and never produces media variants.
func ExtractFromCSS(css, sourceFile string, onlyRoot bool, reg *Registry) {
	mediaSpans := findMediaSpans(css)

	for _, loc := range rootOpenRe.FindAllStringIndex(css, -1) {
		if insideAny(loc[0], mediaSpans) {
			continue
		}
		body, ok := ruleBody(css, loc[1]-1)
		if !ok {
			continue
		}
		for _, decl := range declarationRe.FindAllStringSubmatch(body, -1) {
			reg.Add(decl[1], strings.TrimSpace(decl[2]), sourceFile)
		}
	}

	for _, ms := range mediaSpans {
		for _, decl := range declarationRe.FindAllStringSubmatch(ms.body, -1) {
			reg.AddMediaVariant(decl[1], ms.query, strings.TrimSpace(decl[2]))
		}
	}

	if onlyRoot {
		return
	}
	for _, loc := range classOpenRe.FindAllStringIndex(css, -1) {
		if insideAny(loc[0], mediaSpans) {
			continue
		}
		body, ok := ruleBody(css, loc[1]-1)
		if !ok {
			continue
		}
		for _, decl := range declarationRe.FindAllStringSubmatch(body, -1) {
			reg.Add(decl[1], strings.TrimSpace(decl[2]), sourceFile)
		}
	}
}

type mediaSpan struct {
	start int
	end   int
	query string
	body  string
}

func findMediaSpans(css string) []mediaSpan {
	var spans []mediaSpan
	for _, loc := range mediaOpenRe.FindAllStringIndex(css, -1) {
		open := loc[1] - 1
		end := matchBrace(css, open)
		if end < 0 {
			continue
		}
		header := strings.TrimSpace(css[loc[0] : loc[1]-1])
		query := strings.TrimSpace(strings.TrimPrefix(header, "@media"))
		spans = append(spans, mediaSpan{
			start: loc[0],
			end:   end,
			query: query,
			body:  css[open+1 : end-1],
		})
	}
	return spans
}

func insideAny(pos int, spans []mediaSpan) bool {
	for _, sp := range spans {
		if pos > sp.start && pos < sp.end {
			return true
		}
	}
	return false
}

// ruleBody returns the text between a rule's opening brace and its matching
// closing brace. Reports false when the braces never balance; that single
// region is skipped rather than failing the file.
func ruleBody(css string, open int) (string, bool) {
	end := matchBrace(css, open)
	if end < 0 {
		return "", false
	}
	return css[open+1 : end-1], true
}

// matchBrace finds the index one past the brace matching css[open] using an
// explicit depth counter. A regex cannot do this: media and rule nesting is
// unbounded.
func matchBrace(css string, open int) int {
	if open < 0 || open >= len(css) || css[open] != '{' {
		return -1
	}
	depth := 1
	pos := open + 1
	for pos < len(css) && depth > 0 {
		switch css[pos] {
		case '{':
			depth++
		case '}':
			depth--
		}
		pos++
	}
	if depth != 0 {
		return -1
	}
	return pos
}
