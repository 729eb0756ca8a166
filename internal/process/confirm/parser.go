package confirm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lueurxax/event-dedup/internal/core/llm"
)

// ParsedGroup is one structurally valid group from a response. Indices are kept as
// decoded; mapping to records happens later and may still drop some of them.
type ParsedGroup struct {
	Remove []float64
	Reason string
}

// ParseResult is the outcome of parsing a confirmation response. On failure Success is
// false, Error says why and Groups is empty; the caller moves on to the next day.
type ParseResult struct {
	Success      bool
	Groups       []ParsedGroup
	Warnings     []string
	Error        string
	OriginalText string
}

// ParseResponse decodes {"duplicates":[{"remove":[...],"reason":"..."}]}. A surrounding
// markdown code fence or chatter around the object is tolerated. Groups with the wrong
// shape are dropped with a warning; a missing or non-array duplicates field fails the parse.
func ParseResponse(text string) ParseResult {
	result := ParseResult{OriginalText: text}

	body := llm.StripCodeFence(text)
	if body == "" {
		result.Error = "empty response"

		return result
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		extracted := llm.ExtractJSON(body)
		if extracted == body {
			result.Error = fmt.Sprintf("invalid JSON: %v", err)

			return result
		}

		if err := json.Unmarshal([]byte(extracted), &envelope); err != nil {
			result.Error = fmt.Sprintf("invalid JSON: %v", err)

			return result
		}
	}

	raw, ok := envelope["duplicates"]
	if !ok {
		result.Error = `missing "duplicates" field`

		return result
	}

	var groups []json.RawMessage
	if err := json.Unmarshal(raw, &groups); err != nil || isNull(raw) {
		result.Error = `"duplicates" is not an array`

		return result
	}

	result.Success = true
	result.Groups = make([]ParsedGroup, 0, len(groups))

	for i, g := range groups {
		group, warning := parseGroup(g)
		if warning != "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("group %d: %s", i, warning))
			continue
		}

		result.Groups = append(result.Groups, group)
	}

	return result
}

func parseGroup(raw json.RawMessage) (ParsedGroup, string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return ParsedGroup{}, "not an object"
	}

	var remove []any
	if err := json.Unmarshal(fields["remove"], &remove); err != nil || len(remove) == 0 {
		return ParsedGroup{}, `"remove" must be a non-empty array`
	}

	indices := make([]float64, 0, len(remove))

	for _, v := range remove {
		n, ok := v.(float64)
		if !ok {
			return ParsedGroup{}, fmt.Sprintf(`"remove" holds non-number %v`, v)
		}

		indices = append(indices, n)
	}

	var reason string
	if err := json.Unmarshal(fields["reason"], &reason); err != nil || isNull(fields["reason"]) {
		return ParsedGroup{}, `"reason" must be a string`
	}

	return ParsedGroup{Remove: indices, Reason: reason}, ""
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
