// Package extract decomposes feed items into sentence records annotated with
// version tokens, allow-listed vendors and a version-keyword flag.
package extract

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// DefaultMaxSentences caps the sentences taken from one feed item
const DefaultMaxSentences = 200

// SplitSentences splits text after '.', '!' or '?' when followed by
// whitespace. Parts are trimmed, empties dropped, and at most max returned.
func SplitSentences(text string, max int) []string {
	text = strings.TrimSpace(text)
	if text == "" || max <= 0 {
		return nil
	}

	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		sentences = appendTrimmed(sentences, string(runes[start:i+1]))
		// swallow the whole whitespace run
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
		if len(sentences) >= max {
			return sentences
		}
	}
	sentences = appendTrimmed(sentences, string(runes[start:]))
	if len(sentences) > max {
		sentences = sentences[:max]
	}
	return sentences
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}

// HasVersionKeyword reports whether s mentions "version" or "release"
func HasVersionKeyword(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "version") || strings.Contains(lower, "release")
}

// looksLikeHTML is a cheap check for markup in release notes
func looksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	return i >= 0 && strings.IndexByte(s[i:], '>') > 0
}

// VisibleText reduces an HTML fragment to its text nodes, skipping
// script and style content. Plain text is returned unchanged.
func VisibleText(s string) string {
	if !looksLikeHTML(s) {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(buf.String())
}
