package dom

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// XPath returns an absolute element path for n, e.g. /html/body/div[2]/p.
// A positional predicate is emitted only when the element has same-tag
// siblings. Returns "" for nil or non-element nodes.
func XPath(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	var steps []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		steps = append(steps, xpathStep(cur))
	}

	// Steps were collected leaf-first.
	var sb strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		sb.WriteByte('/')
		sb.WriteString(steps[i])
	}
	return sb.String()
}

func xpathStep(n *html.Node) string {
	idx, total := 1, 0
	if n.Parent != nil {
		for s := n.Parent.FirstChild; s != nil; s = s.NextSibling {
			if s.Type != html.ElementNode || s.Data != n.Data {
				continue
			}
			total++
			if s == n {
				idx = total
			}
		}
	}
	if total > 1 {
		return fmt.Sprintf("%s[%d]", n.Data, idx)
	}
	return n.Data
}

// FindXPath resolves an absolute path produced by XPath against a parsed
// document and returns the matching element, or nil. Steps are "tag" or
// "tag[n]" with n counting same-tag element siblings, 1-based.
func FindXPath(doc *html.Node, xpath string) *html.Node {
	if doc == nil || !strings.HasPrefix(xpath, "/") {
		return nil
	}

	cur := doc
	for _, step := range strings.Split(xpath[1:], "/") {
		if step == "" {
			continue
		}
		tag, idx := parseStep(step)
		if tag == "" {
			return nil
		}

		var next *html.Node
		seen := 0
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.Data != tag {
				continue
			}
			seen++
			if seen == idx {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}

	if cur == doc {
		return nil
	}
	return cur
}

// parseStep parses "div" or "div[2]" into tag and 1-based index.
func parseStep(step string) (string, int) {
	open := strings.IndexByte(step, '[')
	if open < 0 {
		return step, 1
	}
	close := strings.IndexByte(step, ']')
	if close < open {
		return "", 0
	}
	n, err := strconv.Atoi(step[open+1 : close])
	if err != nil || n < 1 {
		return "", 0
	}
	return step[:open], n
}
