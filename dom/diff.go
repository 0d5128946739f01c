package dom

import "golang.org/x/net/html"

// Locus is the lowest pair of corresponding nodes, one per tree, whose
// subtrees jointly contain every difference found between the two trees.
// Replacing Current with Next is sufficient to bring the live tree up to
// date.
type Locus struct {
	Current *html.Node // node in the live tree
	Next    *html.Node // corresponding node in the fetched tree
}

// Diff walks both trees in a paired depth-first descent and returns the
// change locus, or ok=false when the trees are identical under this
// procedure. Either root being nil also yields ok=false.
//
// The search is greedy and first-difference: at most one locus is ever
// reported, and no minimal-edit alignment of children is attempted. Any
// insertion or removal in a child list makes the parent the locus.
func Diff(cur, next *html.Node) (*Locus, bool) {
	if cur == nil || next == nil {
		return nil, false
	}
	return descend(cur, next)
}

func descend(cur, next *html.Node) (*Locus, bool) {
	if !equivalent(cur, next) {
		return &Locus{Current: cur, Next: next}, true
	}

	cc := ElementChildren(cur)
	nc := ElementChildren(next)
	if len(cc) != len(nc) {
		return &Locus{Current: cur, Next: next}, true
	}

	// Pairwise recursion in document order. The first child that yields a
	// locus short-circuits the search; later siblings are never inspected.
	for i := range cc {
		if l, ok := descend(cc[i], nc[i]); ok {
			return l, true
		}
	}

	if DirectText(cur) != DirectText(next) {
		return &Locus{Current: cur, Next: next}, true
	}

	return nil, false
}

// equivalent reports whether two element nodes match on tag name, id and
// class list. The class list is compared as an exact string, not as a set.
func equivalent(a, b *html.Node) bool {
	if a.Type != b.Type || a.Data != b.Data {
		return false
	}
	if Attr(a, "id") != Attr(b, "id") {
		return false
	}
	return Attr(a, "class") == Attr(b, "class")
}
