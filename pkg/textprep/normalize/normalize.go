// Package normalize strips symbols and punctuation from raw text before
// tokenization.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Normalize replaces every "&" with "and" and then deletes every rune that
// is neither a word character (letter, number, underscore) nor whitespace.
// Combining marks are not word characters, so a decomposed "e\u0301"
// loses its accent; run Compose first to keep it.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "&", "and")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Compose returns the NFC form of text, folding base letters and
// combining marks into precomposed runes where Unicode defines them.
func Compose(text string) string {
	return norm.NFC.String(text)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// StripHTML extracts the text content of an HTML document. Script and
// style bodies are dropped and block boundaries become spaces.
// If parsing fails the input is returned unchanged.
func StripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.Join(strings.Fields(buf.String()), " ")
}
