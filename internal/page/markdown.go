package page

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// FromMarkdown renders a Markdown document into a page shell with an empty
// placeholder and a conceptual article, ready for Apply.
func FromMarkdown(src []byte, title string, opts Options) (*Page, error) {
	var body bytes.Buffer
	if err := markdown.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	var doc bytes.Buffer
	fmt.Fprintf(&doc, "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>%s</title></head><body>",
		html.EscapeString(title))
	fmt.Fprintf(&doc, "<nav class=\"sideaffix\"><div id=\"%s\"></div></nav>", html.EscapeString(opts.PlaceholderID))
	fmt.Fprintf(&doc, "<article class=\"content wrap\"><div class=\"%s\">", html.EscapeString(opts.ConceptualClass))
	doc.Write(body.Bytes())
	doc.WriteString("</div></article></body></html>")

	return Parse(&doc)
}
