package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// Matches ```json\n{...}\n```, ```{...}``` and the language-less form, newlines optional.
	codeFenceWholeRegex = regexp.MustCompile("(?s)^`{3}(?:json|JSON|javascript|js)?\\s*\\n?(.*?)\\n?`{3}\\s*$")
	codeFenceAnyRegex   = regexp.MustCompile("(?s)`{3}(?:json|JSON|javascript|js)?\\s*\\n?(.*?)\\n?`{3}")
)

// StripCodeFence removes a markdown code fence wrapped around a model response.
// Text without a fence is returned trimmed.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)

	if m := codeFenceWholeRegex.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}

	if m := codeFenceAnyRegex.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}

	return trimmed
}

// ExtractJSON returns the outermost JSON object or array in text, preferring
// whichever starts first. A bracketed aside before an object, as in
// "Listings [2] and [3] match: {...}", yields the object. Text with no brackets is
// returned unchanged.
func ExtractJSON(text string) string {
	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")

	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		if end := strings.LastIndex(text, "]"); end > arrStart && json.Valid([]byte(text[arrStart:end+1])) {
			return text[arrStart : end+1]
		}
	}

	if objStart != -1 {
		if obj, ok := decodeObject(text[objStart:]); ok {
			return obj
		}

		if end := strings.LastIndex(text, "}"); end > objStart {
			return text[objStart : end+1]
		}
	}

	if arrStart != -1 {
		if end := strings.LastIndex(text, "]"); end > arrStart {
			return text[arrStart : end+1]
		}
	}

	return text
}

// decodeObject reads the first complete JSON value at the start of text, ignoring
// whatever follows it.
func decodeObject(text string) (string, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(text)).Decode(&raw); err != nil {
		return "", false
	}

	return string(raw), true
}
