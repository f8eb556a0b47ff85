package page

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Options names the markers the generated pages use.
type Options struct {
	PlaceholderID   string // element whose contents are replaced by the affix
	ConceptualClass string // marks narrative pages
	XrefClass       string // marks a trailing cross-reference link inside a heading
}

// DefaultOptions returns the markers used by the stock page templates.
func DefaultOptions() Options {
	return Options{
		PlaceholderID:   "affix",
		ConceptualClass: "conceptual",
		XrefClass:       "xref",
	}
}

// Page is a parsed HTML document.
type Page struct {
	doc *html.Node
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Page{doc: doc}, nil
}

// Write serializes the document.
func (p *Page) Write(w io.Writer) error {
	if err := html.Render(w, p.doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// Title returns the text of the <title> element, if any.
func (p *Page) Title() string {
	if n := findFirst(p.doc, func(n *html.Node) bool { return n.DataAtom == atom.Title }); n != nil {
		return strings.TrimSpace(textContent(n))
	}
	return ""
}

// article returns the region headings are collected from: the first <article>,
// else the element with id "_content", else <body>, else the whole document.
func (p *Page) article() *html.Node {
	if n := findFirst(p.doc, func(n *html.Node) bool { return n.DataAtom == atom.Article }); n != nil {
		return n
	}
	if n := findByID(p.doc, "_content"); n != nil {
		return n
	}
	if n := findFirst(p.doc, func(n *html.Node) bool { return n.DataAtom == atom.Body }); n != nil {
		return n
	}
	return p.doc
}

// IsConceptual reports whether the article region, or its first element
// child, carries the conceptual marker class.
func (p *Page) IsConceptual(opts Options) bool {
	if opts.ConceptualClass == "" {
		return false
	}
	art := p.article()
	if hasClass(art, opts.ConceptualClass) {
		return true
	}
	for c := art.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return hasClass(c, opts.ConceptualClass)
		}
	}
	return false
}

// Splice replaces the contents of the placeholder with list. A nil list
// empties the placeholder and hides it. Returns false when the page has no
// placeholder.
func (p *Page) Splice(list *html.Node, opts Options) bool {
	ph := findByID(p.doc, opts.PlaceholderID)
	if ph == nil {
		return false
	}
	for c := ph.FirstChild; c != nil; {
		next := c.NextSibling
		ph.RemoveChild(c)
		c = next
	}
	if list == nil {
		setAttr(ph, "hidden", "")
		return true
	}
	removeAttr(ph, "hidden")
	ph.AppendChild(list)
	return true
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := findFirst(c, match); m != nil {
			return m
		}
	}
	return nil
}

func findByID(n *html.Node, id string) *html.Node {
	if id == "" {
		return nil
	}
	return findFirst(n, func(n *html.Node) bool { return attr(n, "id") == id })
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool { return a.Key == key })
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}
