package orbit

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ParseListing returns the text of every <a href> element that mentions an
// EOF file, with spaces removed.
func ParseListing(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	var names []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasAttr(n, "href") {
			text := strings.ReplaceAll(textOf(n), " ", "")
			text = strings.TrimSpace(text)
			if strings.Contains(text, "EOF") {
				names = append(names, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return names, nil
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
		case html.ElementNode:
			sb.WriteString(textOf(c))
		}
	}
	return sb.String()
}
