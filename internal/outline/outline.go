package outline

import (
	"strings"
)

// Rank is a heading level. H0 is the synthetic root and is always the coarsest.
type Rank int

const (
	H0 Rank = iota
	H1
	H2
	H3
	H4
)

// ParseRank maps a heading tag name ("h1".."h4", any casing) to its Rank.
func ParseRank(tag string) (Rank, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "h1":
		return H1, true
	case "h2":
		return H2, true
	case "h3":
		return H3, true
	case "h4":
		return H4, true
	}
	return H0, false
}

func (r Rank) String() string {
	return "H" + string(rune('0'+int(r)))
}

// Valid reports whether r is a real heading rank (H1..H4).
func (r Rank) Valid() bool {
	return r >= H1 && r <= H4
}

// compare returns 0 when a and b are equal, a positive number when a is finer
// (deeper) than b and a negative number when a is coarser.
func compare(a, b Rank) int {
	return int(a) - int(b)
}

// Record is a single heading as found in the page, in document order.
type Record struct {
	Rank   Rank
	ID     string
	Text   string // plain display text, may carry surrounding whitespace
	Markup string // inner HTML of the heading, rendered verbatim when Href is empty
	Href   string // explicit xref target or "#<id>"; empty when neither exists
}

// Node is a heading placed in the outline.
type Node struct {
	Rank     Rank
	ID       string
	Text     string
	Markup   string
	Href     string
	Children []*Node

	parent int // index into Tree.nodes; -1 for the root
}

// Tree is the outline of a single page. The root is a synthetic H0 node that
// is never rendered.
type Tree struct {
	nodes []*Node
}

// Build reconstructs the heading hierarchy from a flat sequence of records
// with a single forward scan. Records whose rank is not H1..H4 are ignored.
func Build(records []Record) *Tree {
	t := &Tree{nodes: make([]*Node, 1, len(records)+1)}
	t.nodes[0] = &Node{Rank: H0, parent: -1}
	current := 0

	for _, rec := range records {
		if !rec.Rank.Valid() {
			continue
		}
		n := &Node{
			Rank:   rec.Rank,
			ID:     rec.ID,
			Text:   rec.Text,
			Markup: rec.Markup,
			Href:   rec.Href,
			parent: current,
		}
		idx := len(t.nodes)
		t.nodes = append(t.nodes, n)

		cur := t.nodes[current]
		switch c := compare(n.Rank, cur.Rank); {
		case c == 0:
			t.attach(cur.parent, idx)
		case c > 0:
			t.attach(current, idx)
		default:
			// Root is H0 and every record is at least H1, so this walk stops
			// at the root at the latest.
			anc := cur.parent
			for compare(t.nodes[anc].Rank, n.Rank) >= 0 {
				anc = t.nodes[anc].parent
			}
			t.attach(anc, idx)
		}
		current = idx
	}
	return t
}

func (t *Tree) attach(parent, child int) {
	p := t.nodes[parent]
	t.nodes[child].parent = parent
	p.Children = append(p.Children, t.nodes[child])
}

// Root returns the synthetic H0 node.
func (t *Tree) Root() *Node {
	return t.nodes[0]
}

// Len returns the number of real headings in the tree.
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// Parent returns the parent of n, or nil for the root and for nodes that do
// not belong to t.
func (t *Tree) Parent(n *Node) *Node {
	if n == nil || n.parent < 0 || n.parent >= len(t.nodes) {
		return nil
	}
	p := t.nodes[n.parent]
	for _, c := range p.Children {
		if c == n {
			return p
		}
	}
	return nil
}

// Forest returns the top-level headings to render. Reference pages drop their
// own title heading: the children of the first top-level heading are promoted.
// Conceptual pages keep the full top level.
func (t *Tree) Forest(conceptual bool) []*Node {
	root := t.Root()
	if len(root.Children) > 0 && !conceptual {
		return root.Children[0].Children
	}
	return root.Children
}
