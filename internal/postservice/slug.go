package postservice

import (
	"regexp"
	"strings"
)

var (
	whitespaceRX = regexp.MustCompile(`\s+`)
	nonWordRX    = regexp.MustCompile(`[^\w-]+`)
	hyphenRunRX  = regexp.MustCompile(`--+`)
)

// Slugify derives a URL-safe slug: lowercase, whitespace runs become single
// hyphens, everything outside [0-9a-z_-] is stripped, hyphen runs collapse,
// and leading/trailing hyphens are trimmed. Deterministic; may return "".
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRX.ReplaceAllString(s, "-")
	s = nonWordRX.ReplaceAllString(s, "")
	s = hyphenRunRX.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
