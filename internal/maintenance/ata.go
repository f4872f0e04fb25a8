package maintenance

import (
	"regexp"
	"strings"

	"github.com/ihcair/fleetdash/internal/fleet"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	paddedPunct   = regexp.MustCompile(`\s*([-./])\s*`)
	wordSeparator = regexp.MustCompile(`([A-Z0-9])[./]([A-Z])`)
	chapterPrefix = regexp.MustCompile(`^\d{2}\s+`)
)

// NormalizeATA normalizes an ATA string for matching: uppercase, collapsed
// whitespace, no padding around punctuation, and dot/slash word separators
// converted to dashes so "24MO.INSPECTION" compares equal to
// "24MO-INSPECTION". Empty input normalizes to the empty string.
func NormalizeATA(text string) string {
	s := strings.ToUpper(strings.TrimSpace(text))
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = paddedPunct.ReplaceAllString(s, "$1")
	// Repeat until stable: the replacement consumes the following letter,
	// so chained separators ("A.B.C") need another pass.
	for {
		next := wordSeparator.ReplaceAllString(s, "$1-$2")
		if next == s {
			break
		}
		s = next
	}
	return s
}

// StripChapter removes a leading two-digit ATA chapter code and its
// trailing space from a normalized string:
//
//	"05 12MO-INSPECTION" -> "12MO-INSPECTION"
//	"63 11-20 INTERIM"   -> "11-20 INTERIM"
//
// Input without a chapter prefix is returned unchanged.
func StripChapter(normalized string) string {
	return strings.TrimSpace(chapterPrefix.ReplaceAllString(normalized, ""))
}

// MatchesRule reports whether an ATA value matches a configured inspection
// rule. Both operands are normalized first; an empty value on either side
// never matches.
func MatchesRule(ataText string, rule fleet.Rule) bool {
	a := NormalizeATA(ataText)
	t := NormalizeATA(rule.Pattern())
	if a == "" || t == "" {
		return false
	}

	switch rule.Mode {
	case fleet.MatchExact:
		if a == t {
			return true
		}
		for _, token := range strings.Fields(a) {
			if token == t {
				return true
			}
		}
		return false
	case fleet.MatchStripChapter:
		return strings.Contains(StripChapter(a), StripChapter(t))
	default:
		// contains
		return strings.Contains(a, t)
	}
}
