package wiki

import (
	"regexp"
	"strings"
)

var (
	refMarker    = regexp.MustCompile(`\[[a-zA-Z0-9]\]`)
	citationOnly = regexp.MustCompile(`^(?:\[[a-zA-Z0-9]+\]|\s)+$`)
	parenGroup   = regexp.MustCompile(`\(([^()]*)\)`)

	// Pronunciation debris that clutters the opening parenthetical of
	// most biography articles: IPA /slash/ spans, "pronunciation: [...]"
	// and "lang: [...]" hints, respelling guides and the audio marker.
	parenNoise = regexp.MustCompile(
		`/[^/]+/|(?:[a-zA-Z]+\s+)?pronunciation:\s*\[[^\]]+\]|[a-zA-Z]+:\s*\[[^\]]+\]|van BYOO-r\x{259}n|\x{24d8}`,
	)
)

// CleanText removes footnote reference markers and pronunciation noise
// from an article paragraph, leaving the prose itself untouched.
func CleanText(text string) string {
	text = refMarker.ReplaceAllString(text, "")
	return parenGroup.ReplaceAllStringFunc(text, cleanParenthetical)
}

func cleanParenthetical(match string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(match, "("), ")")
	inner = parenNoise.ReplaceAllString(inner, "")
	inner = strings.TrimSpace(inner)
	for strings.HasPrefix(inner, ";") {
		inner = strings.TrimSpace(strings.TrimPrefix(inner, ";"))
	}
	return "(" + inner + ")"
}

// isCitationOnly reports whether a paragraph consists of nothing but
// citation markers and whitespace.
func isCitationOnly(text string) bool {
	return citationOnly.MatchString(text)
}
