package page

import (
	"strings"

	"github.com/dgallion1/docaffix/internal/outline"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Headings returns the h1-h4 elements of the article region in document
// order. The placeholder subtree is skipped so a previously rendered affix is
// never read back as content.
func (p *Page) Headings(opts Options) []outline.Record {
	var records []outline.Record

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Template:
				return
			case atom.H1, atom.H2, atom.H3, atom.H4:
				rank, _ := outline.ParseRank(n.Data)
				records = append(records, headingRecord(n, rank, opts))
				return // Headings do not nest.
			}
			if opts.PlaceholderID != "" && attr(n, "id") == opts.PlaceholderID {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(p.article())

	return records
}

func headingRecord(n *html.Node, rank outline.Rank, opts Options) outline.Record {
	rec := outline.Record{
		Rank: rank,
		ID:   attr(n, "id"),
	}

	// A trailing xref link only redirects the item; its text stays part of
	// the heading.
	if xref := trailingXref(n, opts.XrefClass); xref != nil {
		rec.Href = attr(xref, "href")
	}
	if rec.Href == "" && rec.ID != "" {
		rec.Href = "#" + rec.ID
	}

	var markup strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		// Rendering an in-memory node only fails on writer errors.
		_ = html.Render(&markup, c)
	}
	rec.Text = collapseSpace(textContent(n))
	rec.Markup = strings.TrimSpace(markup.String())
	return rec
}

// trailingXref returns the heading's last element child when it is a link
// carrying the cross-reference class. Trailing whitespace is ignored.
func trailingXref(n *html.Node, class string) *html.Node {
	if class == "" {
		return nil
	}
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		if c.Type == html.ElementNode && c.DataAtom == atom.A && hasClass(c, class) {
			return c
		}
		return nil
	}
	return nil
}

// collapseSpace folds internal runs of whitespace. Leading and trailing
// whitespace is kept as a single space so the renderer decides on trimming.
func collapseSpace(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	inner := strings.Join(strings.Fields(s), " ")
	if isSpace(s[0]) {
		inner = " " + inner
	}
	if isSpace(s[len(s)-1]) {
		inner += " "
	}
	return inner
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
