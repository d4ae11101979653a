package block

import (
	"strings"

	"golang.org/x/net/html"
)

// FlattenHTML reduces a free-text note to plain paragraphs. Upstream editors
// hand notes over as HTML fragments; tags are stripped, block-level elements
// become paragraph breaks, and scripts/styles are dropped entirely. Plain
// text passes through as newline-separated paragraphs.
func FlattenHTML(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.ContainsRune(s, '<') {
		return splitParagraphs(s)
	}

	nodes, err := html.ParseFragment(strings.NewReader(s), nil)
	if err != nil {
		return splitParagraphs(s)
	}

	var b strings.Builder
	for _, n := range nodes {
		collectText(n, &b)
	}
	return splitParagraphs(b.String())
}

func collectText(n *html.Node, b *strings.Builder) {
	blockElem := false
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "br":
			b.WriteString("\n")
		case "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
			blockElem = true
			b.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
	if blockElem {
		b.WriteString("\n")
	}
}

func splitParagraphs(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
