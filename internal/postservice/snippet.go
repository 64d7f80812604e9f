package postservice

import (
	"regexp"
	"strings"
)

// SnippetMaxLength bounds the plain-text preview generated for post listings.
const SnippetMaxLength = 250

// minSnippetLength: previews at or below this length carry no information
// worth showing and are dropped entirely.
const minSnippetLength = 10

var tagRX = regexp.MustCompile(`<[^>]+>`)

// Snippet produces a plain-text preview of an HTML body. Tags are replaced
// with spaces, whitespace is collapsed, and the result is truncated on the
// last word boundary within SnippetMaxLength. Trivially short results yield "".
func Snippet(html string) string {
	text := tagRX.ReplaceAllString(html, " ")
	text = strings.TrimSpace(whitespaceRX.ReplaceAllString(text, " "))

	if len(text) > SnippetMaxLength {
		truncated := text[:SnippetMaxLength]
		if i := strings.LastIndex(truncated, " "); i > 0 {
			truncated = truncated[:i]
		}
		return truncated + "..."
	}

	if len(text) > minSnippetLength {
		return text
	}
	return ""
}
