package htmlutils

import (
	"strings"
	"testing"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain text", input: "Live  jazz\nall night", expected: "Live jazz all night"},
		{name: "inline tags", input: "<b>Live</b> <i>jazz</i>", expected: "Live jazz"},
		{name: "block tags separate words", input: "<p>Doors 7pm</p><p>Show 8pm</p>", expected: "Doors 7pm Show 8pm"},
		{name: "line breaks", input: "Doors 7pm<br>Show 8pm", expected: "Doors 7pm Show 8pm"},
		{name: "entities", input: "Rock &amp; Roll", expected: "Rock & Roll"},
		{name: "script dropped", input: "<p>Hi</p><script>alert(1)</script>", expected: "Hi"},
		{name: "style dropped", input: "<style>p{color:red}</style><p>Hi</p>", expected: "Hi"},
		{name: "empty", input: "", expected: ""},
		{name: "unicode", input: "<p>Café 🎷</p>", expected: "Café 🎷"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.expected {
				t.Errorf("PlainText() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestStripHTMLTags(t *testing.T) {
	if got := StripHTMLTags("<b>Bold</b>  &lt;tag&gt;"); got != "Bold <tag>" {
		t.Errorf("StripHTMLTags() = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{name: "short", input: "abc", max: 5, expected: "abc"},
		{name: "exact", input: "abcde", max: 5, expected: "abcde"},
		{name: "cut", input: "abcdef", max: 5, expected: "abcde..."},
		{name: "runes not bytes", input: "ééééé", max: 3, expected: "ééé..."},
		{name: "trailing space trimmed", input: "ab cd", max: 3, expected: "ab..."},
		{name: "disabled", input: "abcdef", max: 0, expected: "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.max); got != tt.expected {
				t.Errorf("Truncate() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTruncate_Length(t *testing.T) {
	got := Truncate(strings.Repeat("x", 400), 300)

	if n := len([]rune(got)); n != 300+len(Ellipsis) {
		t.Errorf("len = %d", n)
	}
}
