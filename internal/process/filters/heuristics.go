package filters

import (
	"strings"
	"unicode"
)

var boilerplatePrefixes = []string{
	"subscribe",
	"share this",
	"share",
	"donate",
	"support us",
	"follow us",
	"follow",
	"click here",
	"buy tickets",
	"get tickets",
	"rsvp",
	"more info",
	"see website",
}

// IsEmojiOnly reports whether text has no letters or digits.
func IsEmojiOnly(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}

	hasLetterOrDigit := false

	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			hasLetterOrDigit = true
			break
		}
	}

	return !hasLetterOrDigit
}

// IsBoilerplateOnly reports whether every non-empty line is a call to action.
// A line that is a bare URL counts as content.
func IsBoilerplateOnly(text string) bool {
	lines := splitLines(text)
	hasNonEmpty := false

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		hasNonEmpty = true

		if looksLikeURL(line) {
			return false
		}

		if !isBoilerplateLine(line) {
			return false
		}
	}

	return hasNonEmpty
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

func isBoilerplateLine(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	return false
}

func looksLikeURL(line string) bool {
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "www.")
}
