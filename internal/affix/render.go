package affix

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/dgallion1/docaffix/internal/outline"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Options controls the markup of the rendered list.
type Options struct {
	// Classes are added to every nested list after the depth token.
	Classes []string
	// Scope is added to the outermost list only.
	Scope string
}

// Render builds the nested <ul> navigation list for a forest of headings.
// It returns nil when there is nothing to show, including a forest whose
// headings are all blank.
func Render(forest []*outline.Node, opts Options) *html.Node {
	return renderList(forest, 1, opts.Classes, opts.Scope)
}

// RenderString renders the forest and serializes it. Returns "" when there is
// nothing to show.
func RenderString(forest []*outline.Node, opts Options) (string, error) {
	n := Render(forest, opts)
	if n == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderList(children []*outline.Node, depth int, classes []string, scope string) *html.Node {
	if len(children) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(classes)+2)
	tokens = append(tokens, "level"+strconv.Itoa(depth))
	tokens = append(tokens, classes...)
	tokens = append(tokens, scope)

	ul := element(atom.Ul, html.Attribute{Key: "class", Val: joinClasses(tokens)})
	for _, c := range children {
		if isBlank(c.Text) {
			continue
		}
		li := element(atom.Li)
		if c.Href != "" {
			a := element(atom.A, html.Attribute{Key: "href", Val: c.Href})
			a.AppendChild(&html.Node{Type: html.TextNode, Data: strings.TrimSpace(c.Text)})
			li.AppendChild(a)
		} else {
			for _, n := range rawContent(c, li) {
				li.AppendChild(n)
			}
		}
		// The scope class belongs to the outermost list only.
		if sub := renderList(c.Children, depth+1, classes, ""); sub != nil {
			li.AppendChild(sub)
		}
		ul.AppendChild(li)
	}
	// Every child was blank.
	if ul.FirstChild == nil {
		return nil
	}
	return ul
}

// rawContent returns the heading's inner markup as nodes, so inline elements
// survive without being escaped. Falls back to a text node.
func rawContent(n *outline.Node, context *html.Node) []*html.Node {
	if n.Markup != "" {
		nodes, err := html.ParseFragment(strings.NewReader(n.Markup), context)
		if err == nil && len(nodes) > 0 {
			return nodes
		}
	}
	return []*html.Node{{Type: html.TextNode, Data: n.Text}}
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func joinClasses(tokens []string) string {
	var out []string
	for _, t := range tokens {
		out = append(out, strings.Fields(t)...)
	}
	return strings.Join(out, " ")
}
