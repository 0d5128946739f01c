// Package dom provides the detached HTML tree model for the patch
// pipeline: parsing, the change-locus differ, and XPath addressing so a
// node found in a parsed copy can be located again in the live page.
package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses a full HTML document into a detached tree. The tree is
// never attached to a live page; only rendered fragments of it are.
func Parse(raw []byte) (*html.Node, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return doc, nil
}

// Body returns the document's body element, the primary content root for
// diffing. Returns nil if the document has none.
func Body(doc *html.Node) *html.Node {
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if doc != nil {
		walk(doc)
	}
	return body
}

// ElementChildren returns the element-node children of n in document order.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// DirectText concatenates the immediate text-node children of n, each
// trimmed of leading and trailing whitespace. Text inside descendant
// elements is not included.
func DirectText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(c.Data))
		}
	}
	return sb.String()
}

// Attr returns the value of the named attribute, or "" if absent.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Render serialises a node subtree to its outer HTML.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("dom: render: %w", err)
	}
	return buf.String(), nil
}
