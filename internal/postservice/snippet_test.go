package postservice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnippet(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tags stripped and spacing preserved",
			input:    "<p>Hello <b>wonderful world</b></p>",
			expected: "Hello wonderful world",
		},
		{
			name:     "whitespace collapsed",
			input:    "<div>\n  spaced   out\n\ttext here\n</div>",
			expected: "spaced out text here",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "trivially short text discarded",
			input:    "<p>Hi there</p>",
			expected: "",
		},
		{
			name:     "tags only",
			input:    "<p><br/><img src='x.png'/></p>",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Snippet(tc.input))
		})
	}
}

func TestSnippetTruncatesOnWordBoundary(t *testing.T) {
	// 30 eleven-char words; well over the maximum.
	long := "<p>" + strings.Repeat("abcdefghij ", 30) + "</p>"

	got := Snippet(long)

	assert.True(t, strings.HasSuffix(got, "..."))
	text := strings.TrimSuffix(got, "...")
	assert.LessOrEqual(t, len(text), SnippetMaxLength)
	// Truncation never splits a word: the kept text is whole words only.
	for _, word := range strings.Split(text, " ") {
		assert.Equal(t, "abcdefghij", word)
	}
}

func TestSnippetAtBoundaryIsUntouched(t *testing.T) {
	text := strings.Repeat("a", SnippetMaxLength)

	assert.Equal(t, text, Snippet(text))
}
