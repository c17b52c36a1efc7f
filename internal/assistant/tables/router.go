// internal/assistant/tables/router.go
package tables

import (
	"strings"
	"unicode"
)

const wholeWordBonus = 5

// Route maps a lower-cased question onto the most likely target table, or ""
// when no entity keyword matched and no fallback heuristic applied.
//
// Each candidate table sums a score over its keyword list: base score is the
// keyword's character length, plus a bonus when the keyword matches as a
// whole word rather than a substring. Equal scores resolve to the table
// declared first.
func Route(question string) string {
	q := strings.ToLower(question)

	// Contextual override: "perusahaan dari pelanggan X" is customer data,
	// regardless of how the companies table scores.
	if containsAny(q, companyWords) && containsAny(q, affiliationWords) {
		return "customers"
	}

	best := ""
	bestScore := 0
	for _, rule := range tableRules {
		score := 0
		for _, kw := range rule.keywords {
			switch {
			case containsWord(q, kw):
				score += len(kw) + wholeWordBonus
			case strings.Contains(q, kw):
				score += len(kw)
			}
		}
		if score > bestScore {
			best = rule.name
			bestScore = score
		}
	}

	if bestScore > 0 {
		return best
	}

	if containsAny(q, genericDataVerbs) {
		return DefaultTable
	}

	return ""
}

func containsAny(q string, words []string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

// containsWord reports whether kw occurs in q bounded by non-letter,
// non-digit runes on both sides.
func containsWord(q, kw string) bool {
	for from := 0; ; {
		idx := strings.Index(q[from:], kw)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(kw)

		leftOK := start == 0 || isBoundary(rune(q[start-1]))
		rightOK := end == len(q) || isBoundary(rune(q[end]))
		if leftOK && rightOK {
			return true
		}

		from = start + 1
		if from >= len(q) {
			return false
		}
	}
}

func isBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
