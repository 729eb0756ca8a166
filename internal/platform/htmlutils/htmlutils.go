// Package htmlutils turns listing descriptions, which sources often publish as HTML
// fragments, into compact plain text.
package htmlutils

import (
	"html"
	"regexp"
	"strings"

	nethtml "golang.org/x/net/html"
)

// Ellipsis is appended to text cut by Truncate.
const Ellipsis = "..."

var (
	tagRegex        = regexp.MustCompile(`<(/?)([a-zA-Z0-9-]+)([^>]*)>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// skippedElements hold no human-readable text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

// blockElements separate words even when the markup has no whitespace between them.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "td": true, "th": true, "section": true, "article": true, "blockquote": true,
}

// PlainText returns the visible text of an HTML fragment with whitespace collapsed.
// Text without markup passes through with entities decoded.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapse(fragment)
	}

	doc, err := nethtml.Parse(strings.NewReader(fragment))
	if err != nil {
		return StripHTMLTags(fragment)
	}

	var sb strings.Builder

	var traverse func(*nethtml.Node)

	traverse = func(n *nethtml.Node) {
		if n.Type == nethtml.ElementNode && skippedElements[n.Data] {
			return
		}

		if n.Type == nethtml.TextNode {
			sb.WriteString(n.Data)
		}

		if n.Type == nethtml.ElementNode && blockElements[n.Data] {
			sb.WriteByte(' ')
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}

		if n.Type == nethtml.ElementNode && blockElements[n.Data] {
			sb.WriteByte(' ')
		}
	}

	traverse(doc)

	return collapse(sb.String())
}

// StripHTMLTags removes all HTML tags from text, keeping only the content.
func StripHTMLTags(text string) string {
	result := tagRegex.ReplaceAllString(text, "")
	result = html.UnescapeString(result)

	return collapse(result)
}

// Truncate cuts text to at most maxRunes runes and appends Ellipsis when it cut anything.
// A non-positive maxRunes disables truncation.
func Truncate(text string, maxRunes int) string {
	if maxRunes <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	return strings.TrimRight(string(runes[:maxRunes]), " ") + Ellipsis
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
