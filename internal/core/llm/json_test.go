package llm

import "testing"

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: `{"duplicates":[]}`, want: `{"duplicates":[]}`},
		{name: "json fence", input: "```json\n{\"duplicates\":[]}\n```", want: `{"duplicates":[]}`},
		{name: "bare fence", input: "```\n{\"duplicates\":[]}\n```", want: `{"duplicates":[]}`},
		{name: "fence without newlines", input: "```json{\"duplicates\":[]}```", want: `{"duplicates":[]}`},
		{name: "surrounding whitespace", input: "  \n```json\n{\"a\":1}\n```\n ", want: `{"a":1}`},
		{name: "fence after preamble", input: "Here you go:\n```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.input); got != tt.want {
				t.Errorf("StripCodeFence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "pure_object", input: `{"key":"value"}`, want: `{"key":"value"}`},
		{name: "pure_array", input: `[{"a":1}]`, want: `[{"a":1}]`},
		{name: "array_with_preamble", input: `Here is the result: [{"a":1}]`, want: `[{"a":1}]`},
		{name: "object_with_preamble", input: `Here: {"key":"value"} done.`, want: `{"key":"value"}`},
		{name: "object_containing_array", input: `{"duplicates":[{"remove":[1]}]}`, want: `{"duplicates":[{"remove":[1]}]}`},
		{name: "bracketed_aside_before_object", input: `Listings [2] and [3] match: {"duplicates":[{"remove":[3],"reason":"same"}]}`, want: `{"duplicates":[{"remove":[3],"reason":"same"}]}`},
		{name: "object_then_trailing_braces", input: `{"a":1} see {note}`, want: `{"a":1}`},
		{name: "no_json", input: `nothing here`, want: `nothing here`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.input); got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
