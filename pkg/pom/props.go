package pom

import "strings"

// maxPasses bounds iterative placeholder expansion so that circular
// property definitions (a → b → a) terminate.
const maxPasses = 10

// ResolveProperties substitutes ${name} placeholders in text against the
// property table. Values may themselves contain placeholders; the text is
// re-scanned up to maxPasses times to expand chains like ${a} → ${b} → literal.
// Names absent from the table are left verbatim, and the result of the final
// pass is returned as-is even if unresolved markers remain. Absence of a key
// is never an error; the caller decides whether a leftover ${ marker makes
// the value unusable.
func ResolveProperties(text string, props map[string]string) string {
	if text == "" || !strings.Contains(text, "${") {
		return text
	}
	for range maxPasses {
		next, changed := substitute(text, props)
		if !changed {
			return next
		}
		text = next
		if !strings.Contains(text, "${") {
			return text
		}
	}
	return text
}

// HasPlaceholder reports whether s still contains an unexpanded ${...} marker.
func HasPlaceholder(s string) bool {
	return strings.Contains(s, "${")
}

// substitute performs a single left-to-right pass, replacing each known
// ${name} with its value. It reports whether any replacement happened.
func substitute(text string, props map[string]string) (string, bool) {
	var b strings.Builder
	changed := false
	for {
		start := strings.Index(text, "${")
		if start < 0 {
			b.WriteString(text)
			return b.String(), changed
		}
		end := strings.Index(text[start:], "}")
		if end < 0 {
			b.WriteString(text)
			return b.String(), changed
		}
		end += start

		b.WriteString(text[:start])
		name := text[start+2 : end]
		if val, ok := props[name]; ok {
			b.WriteString(val)
			changed = true
		} else {
			b.WriteString(text[start : end+1])
		}
		text = text[end+1:]
	}
}
