// Package sanitize cleans free text before it is written into the
// line-oriented simulator files. A label carrying a newline or an
// "EndEvent" keyword on its own line would otherwise split a block.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxLabelLength is the maximum length of an event label.
const MaxLabelLength = 120

var (
	// reWhitespace matches runs of spaces and tabs.
	reWhitespace = regexp.MustCompile(`[ \t]+`)

	// reBlockKeyword matches the block terminators of the conf and pro formats.
	reBlockKeyword = regexp.MustCompile(`\bEnd(Event|NeuralPopulation|TargetPopulation|Receptor)\b`)
)

// Label returns s reduced to a single line safe for a Label= entry:
//  1. Replace newlines and carriage returns with spaces
//  2. Strip remaining ASCII control characters
//  3. Break up block terminator keywords
//  4. Collapse repeated whitespace and trim
//  5. Truncate to MaxLabelLength
func Label(s string) string {
	if s == "" {
		return ""
	}

	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	s = stripControlChars(s)
	s = reBlockKeyword.ReplaceAllString(s, "End-$1")
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if len(s) > MaxLabelLength {
		s = s[:MaxLabelLength]
	}
	return s
}

// stripControlChars removes ASCII control characters (0x00-0x1F and 0x7F),
// except tab which is later collapsed.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r < 0x20 && r != '\t') || r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
