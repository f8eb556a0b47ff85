package affix

import (
	"github.com/dgallion1/docaffix/internal/outline"
	"github.com/dgallion1/docaffix/internal/page"
)

// Result summarizes what Apply did to a page.
type Result struct {
	Headings    int  `json:"headings"`
	Items       int  `json:"items"`
	Conceptual  bool `json:"conceptual"`
	Placeholder bool `json:"placeholder"`
	Empty       bool `json:"empty"`
}

// Apply builds the page's outline and splices the rendered list into its
// placeholder. A page without a placeholder is left untouched.
func Apply(p *page.Page, pageOpts page.Options, opts Options) Result {
	records := p.Headings(pageOpts)
	tree := outline.Build(records)
	conceptual := p.IsConceptual(pageOpts)
	forest := tree.Forest(conceptual)

	list := Render(forest, opts)
	res := Result{
		Headings:   tree.Len(),
		Conceptual: conceptual,
		Empty:      list == nil,
		Items:      countItems(forest),
	}
	res.Placeholder = p.Splice(list, pageOpts)
	return res
}

// countItems counts the headings that produce a list item.
func countItems(nodes []*outline.Node) int {
	n := 0
	for _, c := range nodes {
		if isBlank(c.Text) {
			continue
		}
		n += 1 + countItems(c.Children)
	}
	return n
}
