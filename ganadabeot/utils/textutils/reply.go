package textutils

import (
	"regexp"
	"strings"
)

// Assistants with file search attach citation markers like 【4:0†guide.pdf】.
var reCitation = regexp.MustCompile(`【[^】]*†[^】]*】`)

var reBlankLines = regexp.MustCompile(`\n{3,}`)

// CleanReply tidies assistant output for display.
//
// It drops BOMs and zero-width characters, removes file citation markers,
// normalises CRLF line endings, collapses runs of blank lines and trims
// surrounding whitespace.
func CleanReply(input string) string {
	input = strings.Map(func(r rune) rune {
		if r == '\uFEFF' || r == '\u200B' || r == '\u200C' || r == '\u200D' {
			return -1
		}
		return r
	}, input)

	input = reCitation.ReplaceAllString(input, "")
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = reBlankLines.ReplaceAllString(input, "\n\n")

	return strings.TrimSpace(input)
}
