package common

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseListItems pulls list entries out of free-form LLM output. A line
// counts as an entry when it starts with a digit or a dash. Numbering ("1.",
// "2)") and dashes are stripped; digits not followed by "." or ")" are text.
func ParseListItems(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		first, _ := utf8.DecodeRuneInString(line)
		switch {
		case unicode.IsDigit(first):
			rest := strings.TrimLeftFunc(line, unicode.IsDigit)
			if strings.HasPrefix(rest, ".") || strings.HasPrefix(rest, ")") {
				line = rest[1:]
			}
		case first == '-' || first == '*':
			line = line[1:]
		default:
			continue
		}

		if item := strings.TrimSpace(line); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Truncate shortens s to at most n runes, appending suffix when it cuts.
func Truncate(s string, n int, suffix string) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + suffix
}
